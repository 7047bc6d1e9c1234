package analyzer

import (
	"context"
	"sync/atomic"
)

// ProgressFunc is invoked once per visited module.
// current is the number of modules visited so far, total is the number
// discovered so far and path is the module just dequeued.
type ProgressFunc func(current, total int, path string)

// Tracker counts visited modules against a total that may grow while
// the dependency walk discovers new ones.
// It is safe for concurrent use from multiple goroutines.
type Tracker struct {
	total    atomic.Int64
	current  atomic.Int64
	callback ProgressFunc
}

// NewTracker creates a tracker that reports each Tick to callback.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// SetTotal replaces the total as the walk discovers modules.
func (t *Tracker) SetTotal(n int) {
	t.total.Store(int64(n))
}

// Tick records path as visited and invokes the callback if set.
func (t *Tracker) Tick(path string) {
	current := int(t.current.Add(1))
	total := int(t.total.Load())
	if total < current {
		total = current
	}
	if t.callback != nil {
		t.callback(current, total, path)
	}
}

// Current returns the number of visited modules.
func (t *Tracker) Current() int {
	return int(t.current.Load())
}

// Total returns the number of discovered modules.
func (t *Tracker) Total() int {
	return int(t.total.Load())
}

type trackerKey struct{}

// WithTracker returns a context that carries a progress tracker.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext extracts the progress tracker from the context.
// Returns nil if no tracker was set.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
