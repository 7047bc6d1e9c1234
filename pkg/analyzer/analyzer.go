package analyzer

import "context"

// EntryAnalyzer is implemented by analyzers that start from a set of entry
// modules and follow their dependencies.
type EntryAnalyzer[T any] interface {
	// Analyze walks everything reachable from entries.
	// The context carries cancellation and an optional Tracker.
	Analyze(ctx context.Context, entries []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
