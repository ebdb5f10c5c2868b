package sim

import (
	"sync"

	"codeblue-sim/internal/telemetry"
)

// recordWriter captures everything a session emits.
type recordWriter struct {
	mu       sync.Mutex
	vitals   []telemetry.VitalsRow
	events   []telemetry.EventRow
	outcomes []telemetry.OutcomeRow
	resolver Resolver
	admin    bool
	closed   bool
}

func (r *recordWriter) WriteVitals(row telemetry.VitalsRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vitals = append(r.vitals, row)
	return nil
}

func (r *recordWriter) WriteEvent(row telemetry.EventRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, row)
	return nil
}

func (r *recordWriter) WriteOutcome(row telemetry.OutcomeRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, row)
	return nil
}

func (r *recordWriter) SetResolver(fn Resolver)      { r.resolver = fn }
func (r *recordWriter) SetAdminStatus(listening bool) { r.admin = listening }
func (r *recordWriter) Close() error {
	r.closed = true
	return nil
}

func (r *recordWriter) states() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.State)
	}
	return out
}

// plainWriter implements only the required Writer methods.
type plainWriter struct {
	vitals int
	events int
}

func (p *plainWriter) WriteVitals(telemetry.VitalsRow) error { p.vitals++; return nil }
func (p *plainWriter) WriteEvent(telemetry.EventRow) error   { p.events++; return nil }
