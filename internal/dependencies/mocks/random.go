package mocks

import (
	"github.com/sockdemon/gutterbot/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int

	// RollResults is a queue of results to return from Roll
	RollResults []int
	rollIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// Roll returns the next queued result clamped to [min, max], or min if
// none remaining
func (r *MockRandom) Roll(min, max int) int {
	if r.rollIndex >= len(r.RollResults) {
		return min
	}
	result := r.RollResults[r.rollIndex]
	r.rollIndex++
	if result < min {
		return min
	}
	if result > max {
		return max
	}
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueRoll adds values to the Roll result queue
func (r *MockRandom) QueueRoll(values ...int) {
	r.RollResults = append(r.RollResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.IntnResults = nil
	r.intnIndex = 0
	r.RollResults = nil
	r.rollIndex = 0
}
