package analyzer

import (
	"context"
	"sync"
	"testing"
)

type tick struct {
	current, total int
	path           string
}

func TestTracker_Tick(t *testing.T) {
	var calls []tick
	tracker := NewTracker(func(current, total int, path string) {
		calls = append(calls, tick{current, total, path})
	})

	tracker.SetTotal(3)
	tracker.Tick("/src/index.js")
	tracker.Tick("/src/a.js")
	tracker.Tick("/src/b.js")

	if got := tracker.Total(); got != 3 {
		t.Errorf("Total() = %d, want 3", got)
	}
	if got := tracker.Current(); got != 3 {
		t.Errorf("Current() = %d, want 3", got)
	}
	if len(calls) != 3 {
		t.Fatalf("expected 3 callback calls, got %d", len(calls))
	}
	if calls[0] != (tick{1, 3, "/src/index.js"}) {
		t.Errorf("call 1: got %+v", calls[0])
	}
	if calls[2] != (tick{3, 3, "/src/b.js"}) {
		t.Errorf("call 3: got %+v", calls[2])
	}
}

func TestTracker_GrowingTotal(t *testing.T) {
	var calls []tick
	tracker := NewTracker(func(current, total int, path string) {
		calls = append(calls, tick{current, total, path})
	})

	// entry discovered, visited, then two imports discovered
	tracker.SetTotal(1)
	tracker.Tick("/src/index.js")
	tracker.SetTotal(3)
	tracker.Tick("/src/a.js")
	tracker.Tick("/src/b.js")

	want := []tick{
		{1, 1, "/src/index.js"},
		{2, 3, "/src/a.js"},
		{3, 3, "/src/b.js"},
	}
	if len(calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(calls), len(want))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d: got %+v, want %+v", i, calls[i], want[i])
		}
	}
}

func TestTracker_TotalNeverBelowCurrent(t *testing.T) {
	var last tick
	tracker := NewTracker(func(current, total int, path string) {
		last = tick{current, total, path}
	})

	tracker.Tick("/src/index.js")
	if last.total != 1 {
		t.Errorf("reported total = %d, want 1", last.total)
	}
}

func TestTracker_SetTotal(t *testing.T) {
	tracker := NewTracker(nil)
	if got := tracker.Total(); got != 0 {
		t.Errorf("Total() = %d, want 0", got)
	}

	tracker.SetTotal(10)
	if got := tracker.Total(); got != 10 {
		t.Errorf("after SetTotal(10): Total() = %d, want 10", got)
	}
}

func TestTracker_ConcurrentTicks(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.SetTotal(100)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Tick("file.js")
		}()
	}
	wg.Wait()

	if got := tracker.Current(); got != 100 {
		t.Errorf("Current() = %d, want 100", got)
	}
}

func TestTracker_NilCallback(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.SetTotal(1)
	tracker.Tick("file.js") // Should not panic
}

func TestWithTracker(t *testing.T) {
	tracker := NewTracker(nil)
	ctx := WithTracker(context.Background(), tracker)

	if got := TrackerFromContext(ctx); got != tracker {
		t.Error("TrackerFromContext should return the same tracker")
	}
}

func TestTrackerFromContext_Nil(t *testing.T) {
	if got := TrackerFromContext(context.Background()); got != nil {
		t.Error("TrackerFromContext should return nil for context without tracker")
	}
}
