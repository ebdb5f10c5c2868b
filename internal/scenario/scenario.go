package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"codeblue-sim/internal/complication"
	"codeblue-sim/internal/patient"
)

// Scenario defines a patient case with ordered phases and the limits that end it.
type Scenario struct {
	Name            string              `yaml:"name,omitempty"`
	Description     string              `yaml:"description,omitempty"`
	Condition       string              `yaml:"condition"`
	Difficulty      int                 `yaml:"difficulty"`
	DurationSeconds int                 `yaml:"duration_seconds"`
	InitialVitals   patient.Vitals      `yaml:"initial_vitals"`
	Equipment       []patient.Equipment `yaml:"equipment,omitempty"`
	Limits          []Limit             `yaml:"limits,omitempty"`
	Phases          []Phase             `yaml:"phases,omitempty"`
}

// Limit loses the scenario when a numeric vital leaves [Min, Max].
type Limit struct {
	Vital patient.Name `yaml:"vital"`
	Min   *float64     `yaml:"min,omitempty"`
	Max   *float64     `yaml:"max,omitempty"`
}

// Phase is a stage of the case. DifficultyBonus raises the selector difficulty while it lasts.
type Phase struct {
	Name            string    `yaml:"name"`
	Description     string    `yaml:"description,omitempty"`
	DifficultyBonus int       `yaml:"difficulty_bonus,omitempty"`
	Triggers        []Trigger `yaml:"triggers,omitempty"`
}

// Trigger moves the scenario to another phase based on an event.
type Trigger struct {
	Event string `yaml:"event"`
	Value int    `yaml:"value"`
	Next  string `yaml:"next"`
}

// Trigger event types.
const (
	EventTimeElapsed  = "time_elapsed"
	EventAcknowledged = "events_acknowledged"
	EventExpired      = "events_expired"
)

// Event represents a runtime occurrence that may advance the scenario.
type Event struct {
	Type  string
	Value int
}

// Outcome of a scenario evaluation.
type Outcome string

const (
	Ongoing Outcome = "ongoing"
	Won     Outcome = "won"
	Lost    Outcome = "lost"
)

// Finished reports whether the outcome ends the session.
func (o Outcome) Finished() bool { return o == Won || o == Lost }

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the fields a session depends on.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Condition == "" {
		errs = append(errs, errors.New("condition is required"))
	}
	if s.Difficulty < 1 || s.Difficulty > complication.MaxDifficulty {
		errs = append(errs, fmt.Errorf("difficulty %d outside 1..%d", s.Difficulty, complication.MaxDifficulty))
	}
	if s.DurationSeconds <= 0 {
		errs = append(errs, errors.New("duration_seconds must be positive"))
	}
	if len(s.InitialVitals) == 0 {
		errs = append(errs, errors.New("initial_vitals are required"))
	}
	names := make(map[string]bool, len(s.Phases))
	for _, p := range s.Phases {
		names[p.Name] = true
	}
	for _, p := range s.Phases {
		for _, tr := range p.Triggers {
			if !names[tr.Next] {
				errs = append(errs, fmt.Errorf("phase %s: trigger leads to unknown phase %q", p.Name, tr.Next))
			}
		}
	}
	for _, l := range s.Limits {
		if l.Min != nil && l.Max != nil && *l.Min > *l.Max {
			errs = append(errs, fmt.Errorf("limit %s: min above max", l.Vital))
		}
	}
	return errors.Join(errs...)
}

// FirstPhase returns the name of the opening phase, or "" when the scenario has none.
func (s *Scenario) FirstPhase() string {
	if len(s.Phases) == 0 {
		return ""
	}
	return s.Phases[0].Name
}

// NextPhase returns the name of the next phase given the current phase and event.
// If no trigger matches, ok will be false.
func (s *Scenario) NextPhase(current string, ev Event) (next string, ok bool) {
	for _, p := range s.Phases {
		if p.Name != current {
			continue
		}
		for _, tr := range p.Triggers {
			if tr.Event == ev.Type && ev.Value >= tr.Value {
				return tr.Next, true
			}
		}
	}
	return "", false
}

// DifficultyIn returns the selector difficulty during phase, clamped to 1..MaxDifficulty.
func (s *Scenario) DifficultyIn(phase string) int {
	d := s.Difficulty
	for _, p := range s.Phases {
		if p.Name == phase {
			d += p.DifficultyBonus
			break
		}
	}
	if d < 1 {
		d = 1
	}
	if d > complication.MaxDifficulty {
		d = complication.MaxDifficulty
	}
	return d
}

// Evaluate decides whether the case is over. A breached limit loses; reaching
// the duration with every limit held wins. The reason names the breached limit.
func (s *Scenario) Evaluate(vitals patient.Vitals, elapsedSeconds float64) (Outcome, string) {
	for _, l := range s.Limits {
		v, ok := vitals.Numeric(l.Vital)
		if !ok {
			continue
		}
		if l.Min != nil && v < *l.Min {
			return Lost, fmt.Sprintf("%s %.0f below %.0f", l.Vital, v, *l.Min)
		}
		if l.Max != nil && v > *l.Max {
			return Lost, fmt.Sprintf("%s %.0f above %.0f", l.Vital, v, *l.Max)
		}
	}
	if elapsedSeconds >= float64(s.DurationSeconds) {
		return Won, "patient stabilised"
	}
	return Ongoing, ""
}
