// Session orchestrating complications, vitals and outcomes
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeblue-sim/internal/catalog"
	"codeblue-sim/internal/complication"
	"codeblue-sim/internal/lifecycle"
	"codeblue-sim/internal/logging"
	"codeblue-sim/internal/patient"
	"codeblue-sim/internal/scenario"
	"codeblue-sim/internal/streak"
	"codeblue-sim/internal/telemetry"
)

// Performance score rules.
const (
	InitialScore     = 100.0
	AcknowledgeBonus = 5.0
	ExpiryPenalty    = 15.0
)

// ErrFinished is returned when resolving events after the session ended.
var ErrFinished = errors.New("session finished")

// Options configures a Session.
type Options struct {
	SessionID    string
	ScenarioKey  string
	Scenario     scenario.Scenario
	Catalog      *catalog.Catalog
	Difficulty   int // overrides the scenario difficulty when > 0
	TickInterval time.Duration
	RNG          complication.RandomSource
	Writer       Writer
	Tracker      *streak.Tracker
	Reward       RewardConfig
}

// RewardConfig is the base payout of a won scenario.
type RewardConfig struct {
	BaseXP    int
	BaseFunds int
}

// Result summarises a finished session.
type Result struct {
	SessionID        string           `json:"session_id"`
	Scenario         string           `json:"scenario"`
	Outcome          scenario.Outcome `json:"outcome"`
	Reason           string           `json:"reason,omitempty"`
	ElapsedSeconds   float64          `json:"elapsed_s"`
	PerformanceScore float64          `json:"performance_score"`
	Acknowledged     int              `json:"acknowledged"`
	Expired          int              `json:"expired"`
	Streak           streak.Record    `json:"streak"`
	Tier             *streak.Tier     `json:"tier,omitempty"`
	XP               int              `json:"xp"`
	Funds            int              `json:"funds"`
}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	SessionID        string              `json:"session_id"`
	Scenario         string              `json:"scenario"`
	Title            string              `json:"title"`
	Phase            string              `json:"phase"`
	Tick             int64               `json:"tick"`
	ElapsedSeconds   float64             `json:"elapsed_s"`
	DurationSeconds  int                 `json:"duration_s"`
	Difficulty       int                 `json:"difficulty"`
	Vitals           patient.Vitals      `json:"vitals"`
	Equipment        []patient.Equipment `json:"equipment"`
	PerformanceScore float64             `json:"performance_score"`
	Acknowledged     int                 `json:"acknowledged"`
	Expired          int                 `json:"expired"`
	Active           lifecycle.Status    `json:"active"`
	Outcome          scenario.Outcome    `json:"outcome"`
	Reason           string              `json:"reason,omitempty"`
}

// Session runs one scenario on a single timeline. One tick is one simulated second.
type Session struct {
	id           string
	key          string
	scenario     scenario.Scenario
	difficulty   int
	tickInterval time.Duration
	selector     *complication.Selector
	applier      *complication.Applier
	ctrl         *lifecycle.Controller
	tracker      *streak.Tracker
	reward       RewardConfig
	gen          *telemetry.Generator
	writer       Writer

	mu           sync.Mutex
	ctx          context.Context
	tick         int64
	phase        string
	vitals       patient.Vitals
	equipment    []patient.Equipment
	score        float64
	acknowledged int
	expired      int
	pending      []lifecycle.Transition
	outcome      scenario.Outcome
	reason       string
	result       *Result
	done         chan struct{}
}

// NewSession prepares a session. It does not start ticking.
func NewSession(opts Options) (*Session, error) {
	if opts.Writer == nil {
		return nil, errors.New("session writer is required")
	}
	if err := opts.Scenario.Validate(); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.BuiltIn()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.RNG == nil {
		opts.RNG = complication.DefaultSource()
	}
	key := opts.ScenarioKey
	if key == "" {
		key = opts.Scenario.Name
	}
	s := &Session{
		id:           opts.SessionID,
		key:          key,
		scenario:     opts.Scenario,
		difficulty:   opts.Difficulty,
		tickInterval: opts.TickInterval,
		selector:     complication.NewSelector(opts.Catalog, opts.RNG),
		applier:      complication.NewApplier(opts.RNG),
		tracker:      opts.Tracker,
		reward:       opts.Reward,
		gen:          telemetry.NewGenerator(opts.SessionID, key),
		writer:       opts.Writer,
		ctx:          context.Background(),
		phase:        opts.Scenario.FirstPhase(),
		vitals:       opts.Scenario.InitialVitals.Clone(),
		equipment:    patient.CloneEquipment(opts.Scenario.Equipment),
		score:        InitialScore,
		outcome:      scenario.Ongoing,
		done:         make(chan struct{}),
	}
	// Controller callbacks always run while s.mu is held by the caller.
	s.ctrl = lifecycle.NewController(lifecycle.Options{
		OnTransition: s.onTransition,
		OnTimeout:    s.onTimeout,
	})
	if rw, ok := opts.Writer.(ResolverWriter); ok {
		rw.SetResolver(func(id string, dismiss bool) error {
			if dismiss {
				return s.Dismiss(context.Background(), id)
			}
			return s.Acknowledge(context.Background(), id)
		})
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Done is closed when the scenario is won or lost.
func (s *Session) Done() <-chan struct{} { return s.done }

// Result returns the outcome once the session has finished.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// Acknowledge resolves the active event.
func (s *Session) Acknowledge(ctx context.Context, id string) error {
	return s.resolve(ctx, id, false)
}

// Dismiss resolves an informational event.
func (s *Session) Dismiss(ctx context.Context, id string) error {
	return s.resolve(ctx, id, true)
}

func (s *Session) resolve(ctx context.Context, id string, dismiss bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return ErrFinished
	}
	s.ctx = ctx
	var err error
	if dismiss {
		err = s.ctrl.Dismiss(id)
	} else {
		err = s.ctrl.Acknowledge(id)
	}
	if err != nil {
		return err
	}
	s.flushEvents(ctx)
	s.advancePhase(ctx)
	s.evaluate(ctx)
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SessionID:        s.id,
		Scenario:         s.key,
		Title:            s.scenario.Name,
		Phase:            s.phase,
		Tick:             s.tick,
		ElapsedSeconds:   float64(s.tick),
		DurationSeconds:  s.scenario.DurationSeconds,
		Difficulty:       s.currentDifficulty(),
		Vitals:           s.vitals.Clone(),
		Equipment:        patient.CloneEquipment(s.equipment),
		PerformanceScore: s.score,
		Acknowledged:     s.acknowledged,
		Expired:          s.expired,
		Active:           s.ctrl.Status(),
		Outcome:          s.outcome,
		Reason:           s.reason,
	}
}

func (s *Session) currentDifficulty() int {
	if s.difficulty > 0 {
		sc := s.scenario
		sc.Difficulty = s.difficulty
		return sc.DifficultyIn(s.phase)
	}
	return s.scenario.DifficultyIn(s.phase)
}

func (s *Session) onTransition(tr lifecycle.Transition) {
	s.pending = append(s.pending, tr)
	if tr.To != lifecycle.Acknowledged {
		return
	}
	s.vitals, s.equipment = s.applier.Apply(tr.Event, s.vitals, s.equipment)
	s.acknowledged++
	s.adjustScore(AcknowledgeBonus)
}

func (s *Session) onTimeout(ev complication.Event) {
	s.vitals, s.equipment = s.applier.Apply(ev, s.vitals, s.equipment)
	s.vitals = s.applier.Escalate(ev, s.vitals)
	s.expired++
	s.adjustScore(-ExpiryPenalty)
	logging.FromContext(s.ctx).Warn("complication expired", "session", s.id, "event", ev.Key, "id", ev.ID)
}

func (s *Session) adjustScore(delta float64) {
	s.score += delta
	if s.score > InitialScore {
		s.score = InitialScore
	}
	if s.score < 0 {
		s.score = 0
	}
}

func (s *Session) logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx).With("session", s.id)
}
