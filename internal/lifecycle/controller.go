package lifecycle

import (
	"fmt"
	"sync"

	"codeblue-sim/internal/complication"
)

// Options configures controller callbacks. Both run outside the controller lock.
type Options struct {
	// OnTimeout is called once when an event's countdown reaches zero.
	OnTimeout func(complication.Event)
	// OnTransition observes every state change.
	OnTransition func(Transition)
}

// Controller moves a single event through Dormant, Active and a terminal state.
type Controller struct {
	mu        sync.Mutex
	state     State
	event     complication.Event
	countdown *Countdown
	opts      Options
}

// NewController returns a dormant controller.
func NewController(opts Options) *Controller {
	return &Controller{state: Dormant, opts: opts}
}

// Offer activates ev unless another event is already active, in which case
// ev is dropped and ErrBusy is returned.
func (c *Controller) Offer(ev complication.Event) error {
	c.mu.Lock()
	if c.state == Active {
		active := c.event.ID
		c.mu.Unlock()
		return fmt.Errorf("offer %s: %w (%s)", ev.ID, ErrBusy, active)
	}
	pending := c.settleLocked(nil)
	c.event = ev
	c.state = Active
	c.countdown = nil
	if ev.HasCountdown() {
		c.countdown = NewCountdown(ev.TimeLimitSeconds)
	}
	pending = append(pending, Transition{From: Dormant, To: Active, Event: ev, Remaining: c.countdown.Remaining()})
	c.mu.Unlock()

	c.notify(pending)
	return nil
}

// Tick advances the active countdown by one second. Resolved events settle back to Dormant first.
func (c *Controller) Tick() {
	c.mu.Lock()
	pending := c.settleLocked(nil)
	var expired *complication.Event
	if c.state == Active && c.countdown.Tick() {
		ev := c.event
		expired = &ev
		c.countdown = nil
		c.state = Expired
		pending = append(pending, Transition{From: Active, To: Expired, Event: ev})
	}
	c.mu.Unlock()

	c.notify(pending)
	if expired != nil && c.opts.OnTimeout != nil {
		c.opts.OnTimeout(*expired)
	}
}

// Acknowledge resolves the active event.
func (c *Controller) Acknowledge(id string) error {
	return c.resolve(id, false)
}

// Dismiss resolves an active event that needs no response.
func (c *Controller) Dismiss(id string) error {
	return c.resolve(id, true)
}

func (c *Controller) resolve(id string, dismiss bool) error {
	c.mu.Lock()
	if c.state != Active {
		c.mu.Unlock()
		return ErrNoActiveEvent
	}
	if id != c.event.ID {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownEvent, id)
	}
	if dismiss && c.event.RequiresAction {
		c.mu.Unlock()
		return fmt.Errorf("dismiss %s: %w", id, ErrActionRequired)
	}
	remaining := c.countdown.Remaining()
	c.countdown.Cancel()
	c.countdown = nil
	c.state = Acknowledged
	tr := Transition{From: Active, To: Acknowledged, Event: c.event, Remaining: remaining}
	c.mu.Unlock()

	c.notify([]Transition{tr})
	return nil
}

// Reset cancels any countdown and returns the controller to Dormant.
func (c *Controller) Reset() {
	c.mu.Lock()
	var pending []Transition
	if c.state != Dormant {
		c.countdown.Cancel()
		pending = append(pending, Transition{From: c.state, To: Dormant, Event: c.event})
	}
	c.state = Dormant
	c.event = complication.Event{}
	c.countdown = nil
	c.mu.Unlock()

	c.notify(pending)
}

// Active returns the active event, if any.
func (c *Controller) Active() (complication.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Active {
		return complication.Event{}, false
	}
	return c.event, true
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{State: c.state, Remaining: c.countdown.Remaining()}
	if c.state != Dormant {
		ev := c.event
		st.Event = &ev
	}
	return st
}

func (c *Controller) settleLocked(pending []Transition) []Transition {
	if !c.state.Terminal() {
		return pending
	}
	pending = append(pending, Transition{From: c.state, To: Dormant, Event: c.event})
	c.state = Dormant
	c.event = complication.Event{}
	c.countdown = nil
	return pending
}

func (c *Controller) notify(ts []Transition) {
	if c.opts.OnTransition == nil {
		return
	}
	for _, t := range ts {
		c.opts.OnTransition(t)
	}
}
