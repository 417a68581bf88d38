package crawler

import "sync/atomic"

// Budget is the process-wide document counter bounded by a target. The count
// never decreases and never exceeds the target.
type Budget struct {
	target int64
	count  atomic.Int64
}

// NewBudget returns a Budget for target documents.
func NewBudget(target int) *Budget {
	return &Budget{target: int64(target)}
}

// Reserve claims one document slot and returns its 1-based ordinal. It
// returns false once the target is met.
func (b *Budget) Reserve() (int64, bool) {
	for {
		current := b.count.Load()
		if current >= b.target {
			return current, false
		}
		if b.count.CompareAndSwap(current, current+1) {
			return current + 1, true
		}
	}
}

// Reached reports whether the target has been met.
func (b *Budget) Reached() bool {
	return b.count.Load() >= b.target
}

// Count returns the number of reserved documents.
func (b *Budget) Count() int64 {
	return b.count.Load()
}

// Target returns the configured target.
func (b *Budget) Target() int64 {
	return b.target
}
