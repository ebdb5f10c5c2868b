package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"codeblue-sim/internal/telemetry"
)

// JSONStdoutWriter prints vitals, events and outcomes as JSON lines.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteVitals outputs a vitals row in JSON format.
func (w *JSONStdoutWriter) WriteVitals(row telemetry.VitalsRow) error { return w.emit(row) }

// WriteEvent outputs an event row in JSON format.
func (w *JSONStdoutWriter) WriteEvent(row telemetry.EventRow) error { return w.emit(row) }

// WriteEvents outputs multiple event rows in JSON format.
func (w *JSONStdoutWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, r := range rows {
		if err := w.WriteEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteOutcome outputs the session outcome in JSON format.
func (w *JSONStdoutWriter) WriteOutcome(row telemetry.OutcomeRow) error { return w.emit(row) }
