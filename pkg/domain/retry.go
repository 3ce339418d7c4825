package domain

import "fmt"

// DefaultMaxRetries bounds global workflow-level retries.
const DefaultMaxRetries = 2

// RetryBudget is the bounded counter consulted when recovering from errors.
// Count never decreases and never passes Max.
type RetryBudget struct {
	Count int `json:"retry_count"`
	Max   int `json:"max_retries"`
}

// CanRetry reports whether another retry is allowed.
func (b RetryBudget) CanRetry() bool {
	return b.Count < b.Max
}

// Increment consumes one retry.
func (b *RetryBudget) Increment() error {
	if !b.CanRetry() {
		return fmt.Errorf("%w: %d of %d used", ErrRetryBudgetExhausted, b.Count, b.Max)
	}
	b.Count++
	return nil
}

// Remaining returns how many retries are left.
func (b RetryBudget) Remaining() int {
	if b.Count >= b.Max {
		return 0
	}
	return b.Max - b.Count
}
