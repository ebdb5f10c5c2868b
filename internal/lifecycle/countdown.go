package lifecycle

// Countdown counts whole simulated seconds down to zero. It is owned by a
// Controller and not safe for concurrent use on its own.
type Countdown struct {
	remaining int
	cancelled bool
}

// NewCountdown starts a countdown of seconds.
func NewCountdown(seconds int) *Countdown {
	if seconds < 0 {
		seconds = 0
	}
	return &Countdown{remaining: seconds}
}

// Tick advances one second and reports whether the countdown reached zero on this tick.
// A cancelled or finished countdown never fires again.
func (c *Countdown) Tick() bool {
	if c == nil || c.cancelled || c.remaining <= 0 {
		return false
	}
	c.remaining--
	return c.remaining == 0
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	if c == nil || c.cancelled {
		return 0
	}
	return c.remaining
}

// Cancel stops the countdown. Calling it more than once is fine.
func (c *Countdown) Cancel() {
	if c == nil {
		return
	}
	c.cancelled = true
}

// Cancelled reports whether Cancel was called.
func (c *Countdown) Cancelled() bool { return c != nil && c.cancelled }
