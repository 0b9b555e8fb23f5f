package core

import (
	"errors"
	"fmt"
)

// ErrModelCallLimit is returned once a run exceeds its model call budget.
var ErrModelCallLimit = errors.New("model call limit exceeded")

// ModelLimiter enforces a maximum number of model calls per run. A run is
// strictly sequential so the counter is not synchronized.
type ModelLimiter struct {
	max   int
	count int
}

// NewModelLimiter creates a new limiter with a max number of calls.
// If max == 0, unlimited calls are allowed.
func NewModelLimiter(max int) *ModelLimiter {
	return &ModelLimiter{max: max}
}

// Increment increases the call counter and returns an error if the limit is exceeded.
func (ml *ModelLimiter) Increment() error {
	ml.count++
	if ml.max > 0 && ml.count > ml.max {
		return fmt.Errorf("%w: %d", ErrModelCallLimit, ml.max)
	}
	return nil
}

// Count returns the current number of calls made.
func (ml *ModelLimiter) Count() int { return ml.count }

// Remaining returns how many calls are left before hitting the limit, or -1
// when unlimited.
func (ml *ModelLimiter) Remaining() int {
	if ml.max == 0 {
		return -1
	}
	return ml.max - ml.count
}
