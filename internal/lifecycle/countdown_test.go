package lifecycle

import "testing"

func TestCountdownFiresOnce(t *testing.T) {
	c := NewCountdown(3)
	fired := 0
	for i := 0; i < 10; i++ {
		if c.Tick() {
			fired++
			if i != 2 {
				t.Fatalf("fired on tick %d, want tick 3", i+1)
			}
		}
	}
	if fired != 1 {
		t.Fatalf("fired %d times", fired)
	}
}

func TestCountdownCancelIdempotent(t *testing.T) {
	c := NewCountdown(2)
	c.Cancel()
	c.Cancel()
	if !c.Cancelled() || c.Remaining() != 0 {
		t.Fatalf("cancelled countdown reports remaining %d", c.Remaining())
	}
	if c.Tick() || c.Tick() {
		t.Fatalf("cancelled countdown fired")
	}
}

func TestNilCountdown(t *testing.T) {
	var c *Countdown
	c.Cancel()
	if c.Tick() || c.Remaining() != 0 || c.Cancelled() {
		t.Fatalf("nil countdown should be inert")
	}
}
