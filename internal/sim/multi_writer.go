package sim

import (
	"errors"

	"codeblue-sim/internal/telemetry"
)

// MultiWriter fans out session rows to multiple writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Add appends another writer.
func (mw *MultiWriter) Add(w Writer) {
	mw.writers = append(mw.writers, w)
}

// WriteVitals sends a vitals row to all writers.
func (mw *MultiWriter) WriteVitals(row telemetry.VitalsRow) error {
	for _, w := range mw.writers {
		if err := w.WriteVitals(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent sends an event row to all writers.
func (mw *MultiWriter) WriteEvent(row telemetry.EventRow) error {
	for _, w := range mw.writers {
		if err := w.WriteEvent(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple event rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteEvent(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteOutcome sends the outcome to every writer that records outcomes.
func (mw *MultiWriter) WriteOutcome(row telemetry.OutcomeRow) error {
	for _, w := range mw.writers {
		if ow, ok := w.(OutcomeWriter); ok {
			if err := ow.WriteOutcome(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetResolver forwards the resolver to writers that accept input.
func (mw *MultiWriter) SetResolver(r Resolver) {
	for _, w := range mw.writers {
		if rw, ok := w.(ResolverWriter); ok {
			rw.SetResolver(r)
		}
	}
}

// SetAdminStatus forwards admin server status to interested writers.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	for _, w := range mw.writers {
		if aw, ok := w.(AdminStatusWriter); ok {
			aw.SetAdminStatus(listening)
		}
	}
}

// Close closes every writer that holds resources.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
