package core

import "time"

// Clock measures wall time between Start and the last Update using the
// monotonic reading of time.Now.
type Clock struct {
	now     func() time.Time
	start   time.Time
	running bool
	elapsed time.Duration
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Update refreshes the elapsed time. Has no effect on a stopped clock.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = c.now().Sub(c.start)
	}
}

// Start resets the elapsed time.
func (c *Clock) Start() {
	c.start = c.now()
	c.running = true
	c.elapsed = 0
}

// Stop keeps the last elapsed value.
func (c *Clock) Stop() {
	c.running = false
}

// Elapsed returns seconds.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}
