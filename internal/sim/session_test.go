package sim

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"codeblue-sim/internal/catalog"
	"codeblue-sim/internal/lifecycle"
	"codeblue-sim/internal/patient"
	"codeblue-sim/internal/scenario"
	"codeblue-sim/internal/streak"
)

// zeroSource always draws 0, so every tick fires the first candidate with the lowest delta.
type zeroSource struct{}

func (zeroSource) Float64() float64 { return 0 }

func spo2Floor(v float64) *float64 { return &v }

func testScenario(duration int) scenario.Scenario {
	return scenario.Scenario{
		Name:            "Test Case",
		Condition:       "test",
		Difficulty:      6,
		DurationSeconds: duration,
		InitialVitals: patient.Vitals{
			patient.HeartRate: patient.Number(80),
			patient.SpO2:      patient.Number(95),
		},
		Limits: []scenario.Limit{{Vital: patient.SpO2, Min: spo2Floor(50)}},
	}
}

func desatCatalog(timeLimit int, timeoutDrop float64) *catalog.Catalog {
	return &catalog.Catalog{
		PatientComplications: []catalog.PatientComplication{{
			Key:              "desat",
			Title:            "Desaturation",
			Descriptions:     []string{"Sats are falling."},
			Conditions:       []string{"test"},
			Severity:         catalog.SeverityWarning,
			VitalChanges:     catalog.Changes{patient.SpO2: catalog.Delta(-10, -10)},
			RequiresAction:   true,
			TimeLimitSeconds: timeLimit,
			TimeoutChanges:   catalog.Changes{patient.SpO2: catalog.Delta(timeoutDrop, timeoutDrop)},
		}},
	}
}

func newTestSession(t *testing.T, sc scenario.Scenario, cat *catalog.Catalog, w Writer, tr *streak.Tracker) *Session {
	t.Helper()
	s, err := NewSession(Options{
		SessionID:   "s1",
		ScenarioKey: "test",
		Scenario:    sc,
		Catalog:     cat,
		RNG:         zeroSource{},
		Writer:      w,
		Tracker:     tr,
		Reward:      RewardConfig{BaseXP: 100, BaseFunds: 500},
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func spo2(t *testing.T, s *Session) float64 {
	t.Helper()
	v, ok := s.Snapshot().Vitals.Numeric(patient.SpO2)
	if !ok {
		t.Fatalf("spo2 missing")
	}
	return v
}

func TestNewSessionRequiresWriter(t *testing.T) {
	if _, err := NewSession(Options{Scenario: testScenario(10)}); err == nil {
		t.Fatalf("expected error without writer")
	}
}

func TestNewSessionRejectsInvalidScenario(t *testing.T) {
	sc := testScenario(10)
	sc.Condition = ""
	if _, err := NewSession(Options{Scenario: sc, Writer: &recordWriter{}}); err == nil {
		t.Fatalf("expected scenario validation error")
	}
}

func TestNewSessionInstallsResolver(t *testing.T) {
	w := &recordWriter{}
	newTestSession(t, testScenario(10), desatCatalog(0, 0), w, nil)
	if w.resolver == nil {
		t.Fatalf("resolver should be installed on resolver writers")
	}
}

func TestSessionTimeoutPenalty(t *testing.T) {
	w := &recordWriter{}
	s := newTestSession(t, testScenario(100), desatCatalog(2, -20), w, nil)
	ctx := context.Background()

	s.step(ctx) // offer
	if st := s.Snapshot().Active; st.State != lifecycle.Active || st.Remaining != 2 {
		t.Fatalf("expected active event with 2s left, got %+v", st)
	}
	s.step(ctx) // busy, dropped
	s.step(ctx) // expires, next offer activates

	snap := s.Snapshot()
	if snap.Expired != 1 {
		t.Fatalf("expired = %d, want 1", snap.Expired)
	}
	if snap.PerformanceScore != InitialScore-ExpiryPenalty {
		t.Fatalf("score = %v, want %v", snap.PerformanceScore, InitialScore-ExpiryPenalty)
	}
	if got := spo2(t, s); got != 65 {
		t.Fatalf("spo2 = %v, want 65 after effect and escalation", got)
	}
	want := []string{"active", "expired", "dormant", "active"}
	if got := w.states(); !reflect.DeepEqual(got, want) {
		t.Fatalf("event states = %v, want %v", got, want)
	}
	if len(w.vitals) != 3 {
		t.Fatalf("expected one vitals row per tick, got %d", len(w.vitals))
	}
	if w.vitals[2].SpO2 != 65 || w.vitals[2].PerformanceScore != 85 {
		t.Fatalf("unexpected vitals row: %+v", w.vitals[2])
	}
}

func TestSessionAcknowledge(t *testing.T) {
	w := &recordWriter{}
	s := newTestSession(t, testScenario(100), desatCatalog(2, -20), w, nil)
	ctx := context.Background()
	s.step(ctx)
	s.step(ctx)
	s.step(ctx)

	id := s.Snapshot().Active.Event.ID
	if err := s.Dismiss(ctx, id); !errors.Is(err, lifecycle.ErrActionRequired) {
		t.Fatalf("dismiss of an action event: got %v", err)
	}
	if err := s.Acknowledge(ctx, "nope"); !errors.Is(err, lifecycle.ErrUnknownEvent) {
		t.Fatalf("unknown id: got %v", err)
	}
	if err := s.Acknowledge(ctx, id); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}

	snap := s.Snapshot()
	if snap.Acknowledged != 1 {
		t.Fatalf("acknowledged = %d", snap.Acknowledged)
	}
	if snap.PerformanceScore != 90 {
		t.Fatalf("score = %v, want 90", snap.PerformanceScore)
	}
	if got := spo2(t, s); got != 55 {
		t.Fatalf("spo2 = %v, want 55", got)
	}
	if snap.Active.State != lifecycle.Acknowledged {
		t.Fatalf("state = %s", snap.Active.State)
	}
	states := w.states()
	if states[len(states)-1] != "acknowledged" {
		t.Fatalf("last logged state = %s", states[len(states)-1])
	}
	if err := s.Acknowledge(ctx, id); !errors.Is(err, lifecycle.ErrNoActiveEvent) {
		t.Fatalf("second acknowledge: got %v", err)
	}
}

func TestSessionResolverAcknowledges(t *testing.T) {
	w := &recordWriter{}
	s := newTestSession(t, testScenario(100), desatCatalog(5, -20), w, nil)
	s.step(context.Background())
	id := s.Snapshot().Active.Event.ID
	if err := w.resolver(id, false); err != nil {
		t.Fatalf("resolver: %v", err)
	}
	if s.Snapshot().Acknowledged != 1 {
		t.Fatalf("resolver did not acknowledge")
	}
}

func TestSessionWinRecordsStreak(t *testing.T) {
	ctx := context.Background()
	store := streak.NewMemoryStore()
	if err := store.Set(ctx, streak.RecordKey, []byte(`{"currentStreak":4,"bestStreak":4}`)); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	tr := streak.NewTracker(store, nil)
	w := &recordWriter{}
	s := newTestSession(t, testScenario(3), &catalog.Catalog{}, w, tr)

	for i := 0; i < 3; i++ {
		s.step(ctx)
	}
	select {
	case <-s.Done():
	default:
		t.Fatalf("session should be done after its duration")
	}
	res, ok := s.Result()
	if !ok {
		t.Fatalf("missing result")
	}
	if res.Outcome != scenario.Won {
		t.Fatalf("outcome = %s, want won", res.Outcome)
	}
	if res.Streak != (streak.Record{CurrentStreak: 5, BestStreak: 5}) {
		t.Fatalf("streak = %+v", res.Streak)
	}
	if res.Tier == nil || res.Tier.Label != "On Fire" {
		t.Fatalf("tier = %+v", res.Tier)
	}
	if res.XP != 125 || res.Funds != 750 {
		t.Fatalf("reward = %d xp %d funds", res.XP, res.Funds)
	}
	if len(w.outcomes) != 1 || !w.outcomes[0].Won || w.outcomes[0].Tier != "On Fire" {
		t.Fatalf("unexpected outcome rows: %+v", w.outcomes)
	}
	if err := s.Acknowledge(ctx, "any"); !errors.Is(err, ErrFinished) {
		t.Fatalf("resolve after finish: got %v", err)
	}
	s.step(ctx)
	if len(w.vitals) != 3 {
		t.Fatalf("finished session should not tick, got %d vitals rows", len(w.vitals))
	}
}

func TestSessionLossResetsStreak(t *testing.T) {
	ctx := context.Background()
	store := streak.NewMemoryStore()
	if err := store.Set(ctx, streak.RecordKey, []byte(`{"currentStreak":3,"bestStreak":5}`)); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	w := &recordWriter{}
	s := newTestSession(t, testScenario(100), desatCatalog(1, -60), w, streak.NewTracker(store, nil))

	s.step(ctx)
	s.step(ctx) // expires: 95 - 10 - 60 breaches the spo2 floor

	res, ok := s.Result()
	if !ok {
		t.Fatalf("session should have ended")
	}
	if res.Outcome != scenario.Lost {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.Streak != (streak.Record{CurrentStreak: 0, BestStreak: 5}) {
		t.Fatalf("streak = %+v", res.Streak)
	}
	if res.Tier != nil || res.XP != 0 || res.Funds != 0 {
		t.Fatalf("loss should pay nothing: %+v", res)
	}
	if st := s.Snapshot().Active.State; st != lifecycle.Dormant {
		t.Fatalf("controller should be reset, got %s", st)
	}
	states := w.states()
	if states[len(states)-1] != "dormant" {
		t.Fatalf("final logged state = %s", states[len(states)-1])
	}
}

func TestSessionWinWithoutTrackerPaysBase(t *testing.T) {
	s := newTestSession(t, testScenario(1), &catalog.Catalog{}, &recordWriter{}, nil)
	s.step(context.Background())
	res, ok := s.Result()
	if !ok || res.XP != 100 || res.Funds != 500 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSessionPhaseAdvance(t *testing.T) {
	sc := testScenario(100)
	sc.Phases = []scenario.Phase{
		{Name: "calm", Triggers: []scenario.Trigger{{Event: scenario.EventTimeElapsed, Value: 2, Next: "busy"}}},
		{Name: "busy", DifficultyBonus: 1},
	}
	sc.Difficulty = 3
	s := newTestSession(t, sc, &catalog.Catalog{}, &recordWriter{}, nil)
	ctx := context.Background()
	s.step(ctx)
	if snap := s.Snapshot(); snap.Phase != "calm" || snap.Difficulty != 3 {
		t.Fatalf("tick 1: phase %s difficulty %d", snap.Phase, snap.Difficulty)
	}
	s.step(ctx)
	if snap := s.Snapshot(); snap.Phase != "busy" || snap.Difficulty != 4 {
		t.Fatalf("tick 2: phase %s difficulty %d", snap.Phase, snap.Difficulty)
	}
}

func TestSessionRun(t *testing.T) {
	s, err := NewSession(Options{
		Scenario:     testScenario(3),
		Catalog:      &catalog.Catalog{},
		TickInterval: time.Millisecond,
		Writer:       &recordWriter{},
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := s.Run(ctx)
	if res == nil || res.Outcome != scenario.Won {
		t.Fatalf("unexpected result: %+v", res)
	}
	if s.ID() == "" {
		t.Fatalf("session id should default to a uuid")
	}
}

func TestSessionRunAbandoned(t *testing.T) {
	w := &recordWriter{}
	s := newTestSession(t, testScenario(1000), desatCatalog(30, -5), w, nil)
	s.step(context.Background())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := s.Run(ctx); res != nil {
		t.Fatalf("abandoned session should return nil, got %+v", res)
	}
	if _, ok := s.Result(); ok {
		t.Fatalf("abandoned session has no result")
	}
	if st := s.Snapshot().Active.State; st != lifecycle.Dormant {
		t.Fatalf("abandon should reset the controller, got %s", st)
	}
}
