package complication

import (
	"codeblue-sim/internal/catalog"
	"codeblue-sim/internal/patient"
)

// Type is the category an event was drawn from.
type Type string

const (
	EquipmentFailure     Type = "equipment_failure"
	PatientDeterioration Type = "patient_deterioration"
	TimeCritical         Type = "time_critical"
)

// DefaultEquipmentTimeLimit applies to equipment failures whose entry sets no limit.
const DefaultEquipmentTimeLimit = 60

// Event is one selected complication. Treat it as immutable.
type Event struct {
	ID               string           `json:"id"`
	Type             Type             `json:"type"`
	Key              string           `json:"key"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Severity         catalog.Severity `json:"severity"`
	Effects          []string         `json:"effects,omitempty"`
	VitalChanges     catalog.Changes  `json:"vital_changes,omitempty"`
	EquipmentID      string           `json:"equipment_id,omitempty"`
	RequiresAction   bool             `json:"requires_action"`
	TimeLimitSeconds int              `json:"time_limit_seconds,omitempty"`
	TimeoutChanges   catalog.Changes  `json:"timeout_changes,omitempty"`
}

// HasCountdown reports whether the event must be answered within a deadline.
func (e Event) HasCountdown() bool { return e.TimeLimitSeconds > 0 }

// Context is the per-tick view of the simulation the selector draws against.
type Context struct {
	PatientCondition string
	ActiveEquipment  []patient.Equipment
	ElapsedSeconds   float64
	Difficulty       int
	PerformanceScore float64
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
