// Package lifecycle tracks the one complication a learner is facing at a time.
package lifecycle

import (
	"errors"

	"codeblue-sim/internal/complication"
)

// State of the controller.
type State string

const (
	Dormant      State = "dormant"
	Active       State = "active"
	Acknowledged State = "acknowledged"
	Expired      State = "expired"
)

// Terminal reports whether s is a resolved state awaiting settlement.
func (s State) Terminal() bool { return s == Acknowledged || s == Expired }

var (
	// ErrBusy is returned by Offer while another event is active. The offered event is dropped.
	ErrBusy = errors.New("an event is already active")
	// ErrNoActiveEvent is returned when resolving with nothing active.
	ErrNoActiveEvent = errors.New("no active event")
	// ErrUnknownEvent is returned when the id does not match the active event.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrActionRequired is returned when dismissing an event that needs a response.
	ErrActionRequired = errors.New("event requires action")
)

// Transition describes one state change of the controller.
type Transition struct {
	From      State
	To        State
	Event     complication.Event
	Remaining int
}

// Status is a point-in-time view of the controller.
type Status struct {
	State     State               `json:"state"`
	Event     *complication.Event `json:"event,omitempty"`
	Remaining int                 `json:"remaining_s"`
}
