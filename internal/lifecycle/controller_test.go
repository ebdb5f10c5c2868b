package lifecycle

import (
	"errors"
	"sync"
	"testing"

	"codeblue-sim/internal/complication"
)

type recorder struct {
	mu          sync.Mutex
	transitions []Transition
	timeouts    []complication.Event
}

func (r *recorder) options() Options {
	return Options{
		OnTimeout: func(ev complication.Event) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.timeouts = append(r.timeouts, ev)
		},
		OnTransition: func(t Transition) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.transitions = append(r.transitions, t)
		},
	}
}

func timed(id string, seconds int) complication.Event {
	return complication.Event{ID: id, RequiresAction: true, TimeLimitSeconds: seconds}
}

func TestTimeoutFiresExactlyAtLimit(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec.options())
	if err := c.Offer(timed("a", 30)); err != nil {
		t.Fatalf("offer: %v", err)
	}
	for i := 1; i < 30; i++ {
		c.Tick()
		if len(rec.timeouts) != 0 {
			t.Fatalf("timed out early at tick %d", i)
		}
	}
	if st := c.Status(); st.Remaining != 1 || st.State != Active {
		t.Fatalf("before final tick: %+v", st)
	}
	c.Tick()
	if len(rec.timeouts) != 1 || rec.timeouts[0].ID != "a" {
		t.Fatalf("timeouts after tick 30: %+v", rec.timeouts)
	}
	if st := c.Status(); st.State != Expired {
		t.Fatalf("state = %s, want expired", st.State)
	}
	for i := 0; i < 40; i++ {
		c.Tick()
	}
	if len(rec.timeouts) != 1 {
		t.Fatalf("timeout fired %d times", len(rec.timeouts))
	}
	if st := c.Status(); st.State != Dormant || st.Event != nil {
		t.Fatalf("expected dormant after settling, got %+v", st)
	}
}

func TestAcknowledgeCancelsCountdown(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec.options())
	_ = c.Offer(timed("a", 5))
	c.Tick()
	c.Tick()
	if err := c.Acknowledge("a"); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	for i := 0; i < 10; i++ {
		c.Tick()
	}
	if len(rec.timeouts) != 0 {
		t.Fatalf("acknowledged event timed out")
	}
	want := []struct{ from, to State }{
		{Dormant, Active},
		{Active, Acknowledged},
		{Acknowledged, Dormant},
	}
	if len(rec.transitions) != len(want) {
		t.Fatalf("transitions = %+v", rec.transitions)
	}
	for i, w := range want {
		if rec.transitions[i].From != w.from || rec.transitions[i].To != w.to {
			t.Fatalf("transition %d = %s->%s, want %s->%s", i, rec.transitions[i].From, rec.transitions[i].To, w.from, w.to)
		}
	}
	if rec.transitions[1].Remaining != 3 {
		t.Fatalf("remaining at acknowledgement = %d, want 3", rec.transitions[1].Remaining)
	}
}

func TestOfferWhileActiveIsDropped(t *testing.T) {
	c := NewController(Options{})
	_ = c.Offer(timed("a", 10))
	err := c.Offer(timed("b", 10))
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
	ev, ok := c.Active()
	if !ok || ev.ID != "a" {
		t.Fatalf("active = %+v", ev)
	}
}

func TestOfferAfterResolutionSettles(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec.options())
	_ = c.Offer(timed("a", 10))
	_ = c.Acknowledge("a")
	if err := c.Offer(timed("b", 10)); err != nil {
		t.Fatalf("offer after ack: %v", err)
	}
	ev, _ := c.Active()
	if ev.ID != "b" {
		t.Fatalf("active = %s, want b", ev.ID)
	}
	last := rec.transitions[len(rec.transitions)-2]
	if last.From != Acknowledged || last.To != Dormant {
		t.Fatalf("expected settle before activation, got %+v", last)
	}
}

func TestResolveErrors(t *testing.T) {
	c := NewController(Options{})
	if err := c.Acknowledge("x"); !errors.Is(err, ErrNoActiveEvent) {
		t.Fatalf("ack with nothing active: %v", err)
	}
	_ = c.Offer(timed("a", 10))
	if err := c.Acknowledge("x"); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("ack wrong id: %v", err)
	}
	if err := c.Dismiss("a"); !errors.Is(err, ErrActionRequired) {
		t.Fatalf("dismiss action-required event: %v", err)
	}
	if _, ok := c.Active(); !ok {
		t.Fatalf("failed resolution must leave the event active")
	}
}

func TestDismissInformationalEvent(t *testing.T) {
	c := NewController(Options{})
	_ = c.Offer(complication.Event{ID: "info", Type: complication.TimeCritical})
	for i := 0; i < 1000; i++ {
		c.Tick()
	}
	if _, ok := c.Active(); !ok {
		t.Fatalf("event without countdown should stay active")
	}
	if err := c.Dismiss("info"); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if st := c.Status(); st.State != Acknowledged {
		t.Fatalf("state = %s", st.State)
	}
}

func TestCallbacksMayReenter(t *testing.T) {
	var c *Controller
	var seen State
	c = NewController(Options{
		OnTimeout: func(complication.Event) { seen = c.Status().State },
	})
	_ = c.Offer(timed("a", 1))
	c.Tick()
	if seen != Expired {
		t.Fatalf("state seen from timeout callback = %s", seen)
	}
}

func TestResetCancels(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec.options())
	_ = c.Offer(timed("a", 2))
	c.Reset()
	c.Tick()
	c.Tick()
	if len(rec.timeouts) != 0 {
		t.Fatalf("reset event timed out")
	}
	if st := c.Status(); st.State != Dormant {
		t.Fatalf("state = %s", st.State)
	}
}
