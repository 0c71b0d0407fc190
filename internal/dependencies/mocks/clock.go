package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/sockdemon/gutterbot/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Timers
// registered via AfterFunc fire synchronously when Advance moves the clock
// past their deadline, in deadline order.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	timers      []*mockTimer
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// AfterFunc registers fn to fire when the clock is advanced past d
func (c *MockClock) AfterFunc(d time.Duration, fn func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTimer{
		clock:    c,
		deadline: c.currentTime.Add(d),
		fn:       fn,
	}
	c.timers = append(c.timers, t)
	return t
}

// NewTicker returns a MockTicker. Ticks are delivered manually via Tick;
// advancing the clock does not fire tickers.
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTicker{ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

// Set sets the clock to the given time without firing timers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// Advance moves the clock forward by d, firing any timers whose deadline
// is reached, in deadline order. Timer callbacks run with the clock set to
// their deadline, matching real timer behavior closely enough for tests.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.currentTime.Add(d)
	c.mu.Unlock()

	for {
		t := c.popNextDue(target)
		if t == nil {
			break
		}
		c.mu.Lock()
		c.currentTime = t.deadline
		c.mu.Unlock()
		t.fn()
	}

	c.mu.Lock()
	c.currentTime = target
	c.mu.Unlock()
}

// PendingTimers returns the number of timers that have not fired or been stopped
func (c *MockClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *MockClock) popNextDue(target time.Time) *mockTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	var due []*mockTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.deadline.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	due[0].fired = true
	return due[0]
}

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

// Stop cancels the timer. Returns false if it already fired.
func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired {
		return false
	}
	t.stopped = true
	return true
}

// MockTicker is a manually driven ticker for tests
type MockTicker struct {
	ch      chan time.Time
	stopped bool
}

var _ clock.Ticker = (*MockTicker)(nil)

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop marks the ticker stopped
func (t *MockTicker) Stop() {
	t.stopped = true
}

// Tick delivers one tick with the given timestamp
func (t *MockTicker) Tick(at time.Time) {
	t.ch <- at
}
