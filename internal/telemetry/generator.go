package telemetry

import (
	"time"

	"codeblue-sim/internal/lifecycle"
	"codeblue-sim/internal/patient"
)

// Generator builds rows for one session.
type Generator struct {
	SessionID string
	Scenario  string
	now       func() time.Time
}

// NewGenerator creates a new row generator for a session.
func NewGenerator(sessionID, scenario string) *Generator {
	return &Generator{SessionID: sessionID, Scenario: scenario, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the timestamp source.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Vitals flattens a vitals snapshot. Missing readings are reported as zero.
func (g *Generator) Vitals(tick int64, elapsed float64, phase string, score float64, v patient.Vitals, equipment []patient.Equipment) VitalsRow {
	num := func(n patient.Name) float64 {
		f, _ := v.Numeric(n)
		return f
	}
	consciousness := ""
	if c, ok := v[patient.Consciousness]; ok {
		consciousness = c.String()
	}
	broken := 0
	for _, eq := range equipment {
		if eq.Malfunctioning {
			broken++
		}
	}
	return VitalsRow{
		SessionID:        g.SessionID,
		Scenario:         g.Scenario,
		Phase:            phase,
		Tick:             tick,
		ElapsedSeconds:   elapsed,
		HeartRate:        num(patient.HeartRate),
		Systolic:         num(patient.BloodPressureSystolic),
		Diastolic:        num(patient.BloodPressureDiastolic),
		RespiratoryRate:  num(patient.RespiratoryRate),
		SpO2:             num(patient.SpO2),
		Temperature:      num(patient.Temperature),
		Consciousness:    consciousness,
		PerformanceScore: score,
		Malfunctioning:   broken,
		Timestamp:        g.now(),
	}
}

// Event converts a lifecycle transition.
func (g *Generator) Event(tr lifecycle.Transition) EventRow {
	ev := tr.Event
	return EventRow{
		SessionID:        g.SessionID,
		EventID:          ev.ID,
		Key:              ev.Key,
		Type:             string(ev.Type),
		Severity:         string(ev.Severity),
		Title:            ev.Title,
		Description:      ev.Description,
		FromState:        string(tr.From),
		State:            string(tr.To),
		EquipmentID:      ev.EquipmentID,
		RequiresAction:   ev.RequiresAction,
		RemainingSeconds: tr.Remaining,
		Timestamp:        g.now(),
	}
}

// Outcome builds the closing row of a session.
func (g *Generator) Outcome(outcome, reason string, won bool, elapsed, score float64, current, best int, tier string) OutcomeRow {
	return OutcomeRow{
		SessionID:        g.SessionID,
		Scenario:         g.Scenario,
		Outcome:          outcome,
		Reason:           reason,
		Won:              won,
		ElapsedSeconds:   elapsed,
		PerformanceScore: score,
		CurrentStreak:    current,
		BestStreak:       best,
		Tier:             tier,
		Timestamp:        g.now(),
	}
}
