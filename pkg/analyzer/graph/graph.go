// Package graph walks module dependencies from a set of entry points and
// reports every reachable file.
package graph

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/panbanda/deadfiles/pkg/analyzer"
	"github.com/panbanda/deadfiles/pkg/analyzer/imports"
	"github.com/panbanda/deadfiles/pkg/models"
	"github.com/panbanda/deadfiles/pkg/resolver"
	"github.com/panbanda/deadfiles/pkg/source"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrNoEntryPoint is returned when the walk has no resolvable entry point.
var ErrNoEntryPoint = errors.New("no entry point")

// EntryError reports an entry point that could not be resolved.
// It matches ErrNoEntryPoint with errors.Is.
type EntryError struct {
	Entry string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: cannot resolve entry %q: %v", ErrNoEntryPoint, e.Entry, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNoEntryPoint.
func (e *EntryError) Is(target error) bool {
	return target == ErrNoEntryPoint
}

// Resolver maps specifiers to canonical file paths.
type Resolver interface {
	ResolveEntry(entry string) (string, error)
	Resolve(specifier, fromDir string) (string, error)
}

// Analyzer walks the module graph reachable from entry points.
// An Analyzer runs one walk at a time.
type Analyzer struct {
	resolver Resolver
	source   source.ContentSource
	refs     *imports.Analyzer
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithSource sets where module contents are read from.
func WithSource(src source.ContentSource) Option {
	return func(a *Analyzer) {
		a.source = src
	}
}

// New creates a new graph walker using res for module resolution.
func New(res Resolver, opts ...Option) *Analyzer {
	a := &Analyzer{
		resolver: res,
		source:   source.NewFilesystem(),
		refs:     imports.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compile-time check that Analyzer implements EntryAnalyzer.
var _ analyzer.EntryAnalyzer[*Result] = (*Analyzer)(nil)

// walkState holds the accumulators of a single walk.
type walkState struct {
	result *Result
	queue  []string
	head   int
	seen   map[string]bool
	edges  map[Edge]bool
}

func newWalkState() *walkState {
	return &walkState{
		result: NewResult(),
		seen:   make(map[string]bool),
		edges:  make(map[Edge]bool),
	}
}

// enqueue schedules path for a visit unless it was ever enqueued before.
func (w *walkState) enqueue(path string) {
	if w.seen[path] {
		return
	}
	w.seen[path] = true
	w.queue = append(w.queue, path)
}

func (w *walkState) addEdge(from, to string) {
	e := Edge{From: from, To: to}
	if w.edges[e] {
		return
	}
	w.edges[e] = true
	w.result.Edges = append(w.result.Edges, e)
}

// Analyze visits every module reachable from entries, breadth first.
// Per-module failures are recorded in the result. Only an unresolvable
// entry point or context cancellation fails the walk.
func (a *Analyzer) Analyze(ctx context.Context, entries []string) (*Result, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries given", ErrNoEntryPoint)
	}

	w := newWalkState()
	for _, entry := range entries {
		path, err := a.resolver.ResolveEntry(entry)
		if err != nil {
			return nil, &EntryError{Entry: entry, Err: err}
		}
		w.enqueue(path)
	}

	tracker := analyzer.TrackerFromContext(ctx)
	for w.head < len(w.queue) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := w.queue[w.head]
		w.head++
		w.result.Dependencies = append(w.result.Dependencies, path)

		if tracker != nil {
			tracker.SetTotal(len(w.queue))
			tracker.Tick(path)
		}

		a.visit(w, path)
	}

	return w.result, nil
}

// visit classifies the references of one module and enqueues its
// resolved dependencies.
func (a *Analyzer) visit(w *walkState, path string) {
	content, err := a.source.Read(path)
	if err != nil {
		w.result.UnparsedDependencies = append(w.result.UnparsedDependencies, path)
		return
	}

	refs, err := a.refs.AnalyzeContent(path, content)
	if err != nil {
		w.result.UnparsedDependencies = append(w.result.UnparsedDependencies, path)
		return
	}

	if refs.HasDynamic() {
		w.result.DynamicDependencies = append(w.result.DynamicDependencies, path)
		w.result.DynamicReferences = append(w.result.DynamicReferences, refs.Dynamic...)
	}

	dir := filepath.Dir(path)
	for _, spec := range refs.Specifiers {
		to, err := a.resolver.Resolve(spec, dir)
		if errors.Is(err, resolver.ErrBuiltin) {
			continue
		}
		if err != nil {
			w.result.UnresolvedDependencies = append(w.result.UnresolvedDependencies,
				models.UnresolvedDependency{Specifier: spec, From: path})
			continue
		}
		w.addEdge(path, to)
		w.enqueue(to)
	}
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {
	a.refs.Close()
}

// DetectCycles uses gonum's Tarjan SCC to find import cycles among the
// resolved edges. Each cycle is sorted and cycles are ordered by their
// first member. A module importing itself is a cycle of one.
func DetectCycles(result *Result) [][]string {
	if result == nil || len(result.Edges) == 0 {
		return nil
	}

	g := simple.NewDirectedGraph()
	ids := make(map[string]int64)
	paths := make(map[int64]string)
	nodeID := func(p string) int64 {
		if id, ok := ids[p]; ok {
			return id
		}
		n := g.NewNode()
		g.AddNode(n)
		ids[p] = n.ID()
		paths[n.ID()] = p
		return n.ID()
	}

	selfLoops := make(map[string]bool)
	for _, e := range result.Edges {
		from, to := nodeID(e.From), nodeID(e.To)
		if from == to {
			// simple graphs reject self edges
			selfLoops[e.From] = true
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(from), g.Node(to)))
	}

	var cycles [][]string
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) == 1 && !selfLoops[paths[scc[0].ID()]] {
			continue
		}
		cycle := make([]string, 0, len(scc))
		for _, n := range scc {
			cycle = append(cycle, paths[n.ID()])
		}
		slices.Sort(cycle)
		cycles = append(cycles, cycle)
	}

	slices.SortFunc(cycles, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return cycles
}
