package sim

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"codeblue-sim/internal/telemetry"
)

// FileWriter writes events, vitals and outcomes to JSONL files.
type FileWriter struct {
	mu          sync.Mutex
	eventFile   *os.File
	vitalsFile  *os.File
	outcomeFile *os.File
	eventEnc    *json.Encoder
	vitalsEnc   *json.Encoder
	outcomeEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. vitalsPath or outcomePath may be empty to skip those logs.
func NewFileWriter(eventPath, vitalsPath, outcomePath string) (*FileWriter, error) {
	ef, err := os.Create(eventPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{eventFile: ef, eventEnc: json.NewEncoder(ef)}
	if vitalsPath != "" {
		vf, err := os.Create(vitalsPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.vitalsFile = vf
		fw.vitalsEnc = json.NewEncoder(vf)
	}
	if outcomePath != "" {
		of, err := os.Create(outcomePath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.outcomeFile = of
		fw.outcomeEnc = json.NewEncoder(of)
	}
	return fw, nil
}

// WriteEvent logs a single event row.
func (f *FileWriter) WriteEvent(row telemetry.EventRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eventEnc.Encode(row)
}

// WriteEvents logs multiple event rows.
func (f *FileWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, r := range rows {
		if err := f.WriteEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteVitals logs a vitals row, if enabled.
func (f *FileWriter) WriteVitals(row telemetry.VitalsRow) error {
	if f.vitalsEnc == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vitalsEnc.Encode(row)
}

// WriteOutcome logs the session outcome, if enabled.
func (f *FileWriter) WriteOutcome(row telemetry.OutcomeRow) error {
	if f.outcomeEnc == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcomeEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var errs []error
	for _, file := range []*os.File{f.eventFile, f.vitalsFile, f.outcomeFile} {
		if file != nil {
			errs = append(errs, file.Close())
		}
	}
	return errors.Join(errs...)
}
