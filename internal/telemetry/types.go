// Telemetry rows with greptime tags
package telemetry

import (
	"os"
	"time"
)

// VitalsRow is one per-tick vitals sample.
type VitalsRow struct {
	SessionID        string    `json:"session_id"`        // TAG
	Scenario         string    `json:"scenario"`          // TAG
	Phase            string    `json:"phase"`             // FIELD
	Tick             int64     `json:"tick"`              // FIELD
	ElapsedSeconds   float64   `json:"elapsed_s"`         // FIELD
	HeartRate        float64   `json:"heart_rate"`        // FIELD
	Systolic         float64   `json:"bp_systolic"`       // FIELD
	Diastolic        float64   `json:"bp_diastolic"`      // FIELD
	RespiratoryRate  float64   `json:"respiratory_rate"`  // FIELD
	SpO2             float64   `json:"spo2"`              // FIELD
	Temperature      float64   `json:"temperature"`       // FIELD
	Consciousness    string    `json:"consciousness"`     // FIELD
	PerformanceScore float64   `json:"performance_score"` // FIELD
	Malfunctioning   int       `json:"malfunctioning"`    // FIELD
	Timestamp        time.Time `json:"ts"`                // TIME INDEX
}

// EventRow records one lifecycle transition of a complication.
type EventRow struct {
	SessionID        string    `json:"session_id"` // TAG
	EventID          string    `json:"event_id"`   // TAG
	Key              string    `json:"key"`
	Type             string    `json:"type"`
	Severity         string    `json:"severity"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	FromState        string    `json:"from_state"`
	State            string    `json:"state"`
	EquipmentID      string    `json:"equipment_id,omitempty"`
	RequiresAction   bool      `json:"requires_action"`
	RemainingSeconds int       `json:"remaining_s"`
	Timestamp        time.Time `json:"ts"` // TIME INDEX
}

// OutcomeRow closes a session.
type OutcomeRow struct {
	SessionID        string    `json:"session_id"` // TAG
	Scenario         string    `json:"scenario"`   // TAG
	Outcome          string    `json:"outcome"`
	Reason           string    `json:"reason,omitempty"`
	Won              bool      `json:"won"`
	ElapsedSeconds   float64   `json:"elapsed_s"`
	PerformanceScore float64   `json:"performance_score"`
	CurrentStreak    int       `json:"current_streak"`
	BestStreak       int       `json:"best_streak"`
	Tier             string    `json:"tier,omitempty"`
	Timestamp        time.Time `json:"ts"` // TIME INDEX
}

func tableName(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

// Table names used when writing to GreptimeDB. They default to the values below
// and can be overridden via GREPTIMEDB_TABLE, GREPTIMEDB_EVENT_TABLE and
// GREPTIMEDB_OUTCOME_TABLE.
var (
	VitalsTableName  = tableName("GREPTIMEDB_TABLE", "patient_vitals")
	EventTableName   = tableName("GREPTIMEDB_EVENT_TABLE", "complication_events")
	OutcomeTableName = tableName("GREPTIMEDB_OUTCOME_TABLE", "session_outcomes")
)

func (VitalsRow) TableName() string  { return VitalsTableName }
func (EventRow) TableName() string   { return EventTableName }
func (OutcomeRow) TableName() string { return OutcomeTableName }
