package telemetry

import (
	"testing"
	"time"

	"codeblue-sim/internal/complication"
	"codeblue-sim/internal/lifecycle"
	"codeblue-sim/internal/patient"
)

var fixed = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestGenerateVitals(t *testing.T) {
	gen := NewGenerator("session-1", "post-op").WithClock(func() time.Time { return fixed })
	vitals := patient.Vitals{
		patient.HeartRate:     patient.Number(88),
		patient.SpO2:          patient.Number(97),
		patient.Consciousness: patient.Categorical(patient.LevelAlert),
	}
	equipment := []patient.Equipment{{ID: "a", Malfunctioning: true}, {ID: "b"}}

	row := gen.Vitals(12, 12, "assessment", 95, vitals, equipment)

	if row.SessionID != "session-1" || row.Scenario != "post-op" {
		t.Errorf("unexpected tags %+v", row)
	}
	if row.HeartRate != 88 || row.SpO2 != 97 {
		t.Errorf("unexpected readings %+v", row)
	}
	if row.Temperature != 0 {
		t.Errorf("missing temperature should be zero, got %v", row.Temperature)
	}
	if row.Consciousness != "alert" {
		t.Errorf("consciousness = %q", row.Consciousness)
	}
	if row.Malfunctioning != 1 {
		t.Errorf("malfunctioning = %d", row.Malfunctioning)
	}
	if !row.Timestamp.Equal(fixed) {
		t.Errorf("timestamp = %v", row.Timestamp)
	}
}

func TestGenerateEvent(t *testing.T) {
	gen := NewGenerator("session-1", "post-op").WithClock(func() time.Time { return fixed })
	tr := lifecycle.Transition{
		From:      lifecycle.Active,
		To:        lifecycle.Acknowledged,
		Remaining: 12,
		Event: complication.Event{
			ID:             "evt-1",
			Type:           complication.EquipmentFailure,
			Key:            "pump-occlusion",
			Severity:       "warning",
			EquipmentID:    "pump-1",
			RequiresAction: true,
		},
	}
	row := gen.Event(tr)
	if row.EventID != "evt-1" || row.Type != "equipment_failure" || row.State != "acknowledged" || row.FromState != "active" {
		t.Errorf("unexpected row %+v", row)
	}
	if row.RemainingSeconds != 12 || row.EquipmentID != "pump-1" || !row.RequiresAction {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestTableNamesFromEnv(t *testing.T) {
	if (VitalsRow{}).TableName() == "" || (EventRow{}).TableName() == "" || (OutcomeRow{}).TableName() == "" {
		t.Fatalf("table names must not be empty")
	}
	t.Setenv("CODEBLUE_TEST_TABLE", "custom")
	if got := tableName("CODEBLUE_TEST_TABLE", "fallback"); got != "custom" {
		t.Errorf("tableName = %s", got)
	}
	if got := tableName("CODEBLUE_UNSET_TABLE", "fallback"); got != "fallback" {
		t.Errorf("tableName = %s", got)
	}
}
