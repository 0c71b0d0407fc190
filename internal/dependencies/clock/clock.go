package clock

import "time"

// Timer is a cancellable one-shot deferred action
type Timer interface {
	// Stop cancels the timer. Returns false if it already fired.
	Stop() bool
}

// Ticker is a cancellable periodic trigger
type Ticker interface {
	// C returns the tick channel
	C() <-chan time.Time
	// Stop cancels the ticker
	Stop()
}

// Clock provides time and scheduling operations that can be mocked for
// testing. Every deferred phase advance, timeout restoration, and periodic
// spawn/cleanup trigger goes through this interface so reset operations can
// cancel them deterministically.
type Clock interface {
	Now() time.Time

	// AfterFunc schedules fn to run once after d elapses and returns a
	// handle that can cancel it before it fires.
	AfterFunc(d time.Duration, fn func()) Timer

	// NewTicker returns a ticker firing every d
	NewTicker(d time.Duration) Ticker
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn on a system timer
func (c *RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

// NewTicker returns a system ticker
func (c *RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() bool {
	return r.t.Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time {
	return r.t.C
}

func (r realTicker) Stop() {
	r.t.Stop()
}
