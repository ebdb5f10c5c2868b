package sim

import (
	"context"
	"time"

	"codeblue-sim/internal/complication"
	"codeblue-sim/internal/logging"
	"codeblue-sim/internal/patient"
	"codeblue-sim/internal/scenario"
	"codeblue-sim/internal/telemetry"
)

// Run starts the session loop. It returns when the scenario is decided or ctx is done;
// the result is nil when the session was abandoned.
func (s *Session) Run(ctx context.Context) *Result {
	log := s.logger(ctx)
	log.Info("starting session", "scenario", s.key, "tick_interval", s.tickInterval)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.step(ctx)
		case <-s.done:
			res, _ := s.Result()
			log.Info("session finished", "outcome", res.Outcome, "reason", res.Reason, "score", res.PerformanceScore)
			return &res
		case <-ctx.Done():
			s.abandon(ctx)
			log.Info("stopping session")
			return nil
		}
	}
}

// step advances the session by one simulated second.
func (s *Session) step(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return
	}
	s.ctx = ctx
	s.tick++

	s.ctrl.Tick()
	s.advancePhase(ctx)

	cctx := complication.Context{
		PatientCondition: s.scenario.Condition,
		ActiveEquipment:  s.workingEquipment(),
		ElapsedSeconds:   float64(s.tick),
		Difficulty:       s.currentDifficulty(),
		PerformanceScore: s.score,
	}
	if ev, ok := s.selector.Select(cctx); ok {
		if err := s.ctrl.Offer(ev); err != nil {
			logging.FromContext(ctx).Debug("complication dropped", "session", s.id, "event", ev.Key, "err", err)
		}
	}

	s.flushEvents(ctx)
	s.writeVitals(ctx)
	s.evaluate(ctx)
}

// workingEquipment lists devices that can still fail.
func (s *Session) workingEquipment() []patient.Equipment {
	out := make([]patient.Equipment, 0, len(s.equipment))
	for _, eq := range s.equipment {
		if !eq.Malfunctioning {
			out = append(out, eq)
		}
	}
	return out
}

func (s *Session) flushEvents(ctx context.Context) {
	if len(s.pending) == 0 {
		return
	}
	rows := make([]telemetry.EventRow, 0, len(s.pending))
	for _, tr := range s.pending {
		rows = append(rows, s.gen.Event(tr))
	}
	s.pending = s.pending[:0]

	log := logging.FromContext(ctx)
	// Batch support if writer implements WriteEvents
	if bw, ok := s.writer.(batchEventWriter); ok {
		if err := bw.WriteEvents(rows); err != nil {
			log.Error("event batch write failed", "session", s.id, "err", err)
		}
		return
	}
	for _, row := range rows {
		if err := s.writer.WriteEvent(row); err != nil {
			log.Error("event write failed", "session", s.id, "event", row.EventID, "err", err)
		}
	}
}

func (s *Session) writeVitals(ctx context.Context) {
	row := s.gen.Vitals(s.tick, float64(s.tick), s.phase, s.score, s.vitals, s.equipment)
	if err := s.writer.WriteVitals(row); err != nil {
		logging.FromContext(ctx).Error("vitals write failed", "session", s.id, "tick", s.tick, "err", err)
	}
}

// advancePhase follows every trigger that currently matches.
func (s *Session) advancePhase(ctx context.Context) {
	if s.phase == "" {
		return
	}
	for i := 0; i < len(s.scenario.Phases); i++ {
		next, ok := s.nextPhase()
		if !ok || next == s.phase {
			return
		}
		logging.FromContext(ctx).Info("phase changed", "session", s.id, "from", s.phase, "to", next, "elapsed_s", s.tick)
		s.phase = next
	}
}

func (s *Session) nextPhase() (string, bool) {
	events := []scenario.Event{
		{Type: scenario.EventTimeElapsed, Value: int(s.tick)},
		{Type: scenario.EventAcknowledged, Value: s.acknowledged},
		{Type: scenario.EventExpired, Value: s.expired},
	}
	for _, ev := range events {
		if next, ok := s.scenario.NextPhase(s.phase, ev); ok {
			return next, true
		}
	}
	return "", false
}

func (s *Session) evaluate(ctx context.Context) {
	out, reason := s.scenario.Evaluate(s.vitals, float64(s.tick))
	if !out.Finished() {
		return
	}
	s.finish(ctx, out, reason)
}

// finish records the outcome. Callers hold s.mu.
func (s *Session) finish(ctx context.Context, out scenario.Outcome, reason string) {
	s.outcome, s.reason = out, reason
	s.ctrl.Reset()
	s.flushEvents(ctx)

	res := &Result{
		SessionID:        s.id,
		Scenario:         s.key,
		Outcome:          out,
		Reason:           reason,
		ElapsedSeconds:   float64(s.tick),
		PerformanceScore: s.score,
		Acknowledged:     s.acknowledged,
		Expired:          s.expired,
	}
	won := out == scenario.Won
	tierLabel := ""
	if s.tracker != nil {
		rec, err := s.tracker.Record(ctx, won)
		if err != nil {
			logging.FromContext(ctx).Error("streak update failed", "session", s.id, "err", err)
		}
		res.Streak = rec
		if tier, ok := s.tracker.Tiers().Lookup(rec.CurrentStreak); ok {
			res.Tier = &tier
			tierLabel = tier.Label
		}
		if won {
			res.XP, res.Funds = s.tracker.Tiers().Reward(s.reward.BaseXP, s.reward.BaseFunds, rec.CurrentStreak)
		}
	} else if won {
		res.XP, res.Funds = s.reward.BaseXP, s.reward.BaseFunds
	}
	s.result = res

	if ow, ok := s.writer.(OutcomeWriter); ok {
		row := s.gen.Outcome(string(out), reason, won, res.ElapsedSeconds, res.PerformanceScore,
			res.Streak.CurrentStreak, res.Streak.BestStreak, tierLabel)
		if err := ow.WriteOutcome(row); err != nil {
			logging.FromContext(ctx).Error("outcome write failed", "session", s.id, "err", err)
		}
	}
	close(s.done)
}

// abandon stops an unfinished session without touching the streak.
func (s *Session) abandon(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return
	}
	s.ctrl.Reset()
	s.flushEvents(ctx)
}
