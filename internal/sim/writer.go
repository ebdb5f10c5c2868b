package sim

import "codeblue-sim/internal/telemetry"

// VitalsWriter receives one vitals row per tick.
type VitalsWriter interface {
	WriteVitals(telemetry.VitalsRow) error
}

// EventWriter receives complication lifecycle rows.
type EventWriter interface {
	WriteEvent(telemetry.EventRow) error
}

// Writer is the output side of a session.
type Writer interface {
	VitalsWriter
	EventWriter
}

// OutcomeWriter is implemented by writers that record the end of a session.
type OutcomeWriter interface {
	WriteOutcome(telemetry.OutcomeRow) error
}

// Optional: event writers may support batch mode
type batchEventWriter interface {
	WriteEvents([]telemetry.EventRow) error
}

// AdminStatusWriter allows writers to receive admin UI status updates.
type AdminStatusWriter interface {
	SetAdminStatus(listening bool)
}

// Resolver acknowledges (dismiss=false) or dismisses the event with id.
type Resolver func(id string, dismiss bool) error

// ResolverWriter is implemented by writers that let the learner answer events.
type ResolverWriter interface {
	SetResolver(Resolver)
}
