package sim

import (
	"context"
	"fmt"
	"log/slog"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"codeblue-sim/internal/telemetry"
)

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes session rows to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client       greptimeClient
	vitalsTable  string
	eventTable   string
	outcomeTable string
	log          *slog.Logger
}

// NewGreptimeDBWriter connects to GreptimeDB. Tables are created on first write.
func NewGreptimeDBWriter(host, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return &GreptimeDBWriter{
		client:       client,
		vitalsTable:  telemetry.VitalsTableName,
		eventTable:   telemetry.EventTableName,
		outcomeTable: telemetry.OutcomeTableName,
		log:          slog.Default(),
	}, nil
}

func (w *GreptimeDBWriter) logger() *slog.Logger {
	if w.log == nil {
		return slog.Default()
	}
	return w.log
}

func (w *GreptimeDBWriter) write(name string, tbl *table.Table, rows int) error {
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		w.logger().Error("greptime write failed", "table", name, "error", err)
		return err
	}
	w.logger().Debug("greptime write", "table", name, "rows", rows)
	return nil
}

func newTable(name string, tags, fields []string, kinds []types.ColumnType) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if err := tbl.AddTagColumn(t, types.STRING); err != nil {
			return nil, err
		}
	}
	for i, f := range fields {
		if err := tbl.AddFieldColumn(f, kinds[i]); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	return tbl, nil
}

// WriteVitals inserts a single vitals row.
func (w *GreptimeDBWriter) WriteVitals(r telemetry.VitalsRow) error {
	tbl, err := newTable(w.vitalsTable,
		[]string{"session_id", "scenario"},
		[]string{"phase", "tick", "elapsed_s", "heart_rate", "bp_systolic", "bp_diastolic", "respiratory_rate", "spo2", "temperature", "consciousness", "performance_score", "malfunctioning"},
		[]types.ColumnType{types.STRING, types.INT64, types.FLOAT64, types.FLOAT64, types.FLOAT64, types.FLOAT64, types.FLOAT64, types.FLOAT64, types.FLOAT64, types.STRING, types.FLOAT64, types.INT64},
	)
	if err != nil {
		return err
	}
	if err := tbl.AddRow(r.SessionID, r.Scenario, r.Phase, r.Tick, r.ElapsedSeconds, r.HeartRate, r.Systolic, r.Diastolic,
		r.RespiratoryRate, r.SpO2, r.Temperature, r.Consciousness, r.PerformanceScore, int64(r.Malfunctioning), r.Timestamp); err != nil {
		return err
	}
	return w.write(w.vitalsTable, tbl, 1)
}

// WriteEvent inserts a single event row.
func (w *GreptimeDBWriter) WriteEvent(r telemetry.EventRow) error {
	return w.WriteEvents([]telemetry.EventRow{r})
}

// WriteEvents inserts multiple event rows in one request.
func (w *GreptimeDBWriter) WriteEvents(rows []telemetry.EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.eventTable,
		[]string{"session_id", "event_id"},
		[]string{"key", "type", "severity", "title", "description", "from_state", "state", "equipment_id", "requires_action", "remaining_s"},
		[]types.ColumnType{types.STRING, types.STRING, types.STRING, types.STRING, types.STRING, types.STRING, types.STRING, types.STRING, types.BOOLEAN, types.INT64},
	)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, r.EventID, r.Key, r.Type, r.Severity, r.Title, r.Description,
			r.FromState, r.State, r.EquipmentID, r.RequiresAction, int64(r.RemainingSeconds), r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.eventTable, tbl, len(rows))
}

// WriteOutcome inserts the session outcome.
func (w *GreptimeDBWriter) WriteOutcome(r telemetry.OutcomeRow) error {
	tbl, err := newTable(w.outcomeTable,
		[]string{"session_id", "scenario"},
		[]string{"outcome", "reason", "won", "elapsed_s", "performance_score", "current_streak", "best_streak", "tier"},
		[]types.ColumnType{types.STRING, types.STRING, types.BOOLEAN, types.FLOAT64, types.FLOAT64, types.INT64, types.INT64, types.STRING},
	)
	if err != nil {
		return err
	}
	if err := tbl.AddRow(r.SessionID, r.Scenario, r.Outcome, r.Reason, r.Won, r.ElapsedSeconds, r.PerformanceScore,
		int64(r.CurrentStreak), int64(r.BestStreak), r.Tier, r.Timestamp); err != nil {
		return err
	}
	return w.write(w.outcomeTable, tbl, 1)
}
