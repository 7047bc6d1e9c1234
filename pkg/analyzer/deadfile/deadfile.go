// Package deadfile reports source files that no entry point reaches.
package deadfile

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/deadfiles/internal/scanner"
	"github.com/panbanda/deadfiles/pkg/analyzer"
	"github.com/panbanda/deadfiles/pkg/analyzer/graph"
	"github.com/panbanda/deadfiles/pkg/models"
	"github.com/panbanda/deadfiles/pkg/resolver"
	"github.com/panbanda/deadfiles/pkg/source"
	"github.com/sourcegraph/conc/pool"
)

// Options selects what a single detection run looks at.
type Options struct {
	// Entry lists the entry point modules. At least one is required.
	Entry []string
	// Include lists candidate file globs. Empty means scanner.DefaultInclude.
	Include []string
	// Ignore lists excluded globs. Nil means scanner.DefaultIgnore.
	Ignore []string
	// Cycles enables import cycle detection.
	Cycles bool
	// Edges copies the resolved dependency edges into the report.
	Edges bool
	// Progress is called once per visited module.
	Progress analyzer.ProgressFunc
}

// Analyzer compares the files reachable from entry points with the files
// matched by include and ignore patterns.
type Analyzer struct {
	resolver *resolver.Resolver
	scanner  *scanner.Scanner
	walker   *graph.Analyzer
}

type settings struct {
	extensions []string
	gitignore  bool
	source     source.ContentSource
}

// Option is a functional option for configuring Analyzer.
type Option func(*settings)

// WithExtensions adds file extensions tried during module resolution.
func WithExtensions(exts ...string) Option {
	return func(s *settings) {
		s.extensions = append(s.extensions, exts...)
	}
}

// WithGitignore drops candidate files matched by .gitignore.
func WithGitignore(enabled bool) Option {
	return func(s *settings) {
		s.gitignore = enabled
	}
}

// WithSource sets where module contents are read from.
func WithSource(src source.ContentSource) Option {
	return func(s *settings) {
		s.source = src
	}
}

// New creates a dead file analyzer for the project rooted at baseDir.
func New(baseDir string, opts ...Option) *Analyzer {
	s := &settings{source: source.NewFilesystem()}
	for _, opt := range opts {
		opt(s)
	}

	res := resolver.New(baseDir, resolver.WithExtensions(s.extensions...))
	return &Analyzer{
		resolver: res,
		scanner:  scanner.NewScanner(baseDir, scanner.WithGitignore(s.gitignore)),
		walker:   graph.New(res, graph.WithSource(s.source)),
	}
}

// Analyze runs the dependency walk and the file enumeration concurrently
// and reports every enumerated file the walk did not reach.
func (a *Analyzer) Analyze(ctx context.Context, opts Options) (*models.DeadFileReport, error) {
	if opts.Progress != nil && analyzer.TrackerFromContext(ctx) == nil {
		ctx = analyzer.WithTracker(ctx, analyzer.NewTracker(opts.Progress))
	}

	var (
		walk  *graph.Result
		files []string
	)
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		r, err := a.walker.Analyze(ctx, opts.Entry)
		walk = r
		return err
	})
	p.Go(func(ctx context.Context) error {
		f, err := a.scanner.Enumerate(ctx, opts.Include, opts.Ignore)
		files = f
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	report := models.NewDeadFileReport()
	report.DeadFiles = deadFiles(files, walk.Dependencies)
	report.Dependencies = walk.Dependencies
	report.DynamicDependencies = walk.DynamicDependencies
	report.DynamicReferences = walk.DynamicReferences
	report.UnparsedDependencies = walk.UnparsedDependencies
	report.UnresolvedDependencies = walk.UnresolvedDependencies

	ignore := opts.Ignore
	if ignore == nil {
		ignore = scanner.DefaultIgnore
	}
	for _, dep := range walk.Dependencies {
		if a.scanner.Matches(dep, ignore) {
			report.IgnoredDependencies = append(report.IgnoredDependencies, dep)
		}
	}

	if opts.Cycles {
		report.Cycles = graph.DetectCycles(walk)
		if report.Cycles == nil {
			report.Cycles = [][]string{}
		}
	}
	if opts.Edges {
		report.Edges = walk.Edges
	}

	report.CalculateSummary(len(files))
	return report, nil
}

// deadFiles returns the enumerated files absent from reachable, in
// enumeration order. IDs follow enumeration order so bitmap iteration
// preserves it.
func deadFiles(enumerated, reachable []string) []string {
	ids := make(map[string]uint32, len(enumerated))
	all := roaring.New()
	for i, f := range enumerated {
		ids[f] = uint32(i)
		all.Add(uint32(i))
	}

	seen := roaring.New()
	for _, f := range reachable {
		if id, ok := ids[f]; ok {
			seen.Add(id)
		}
	}

	dead := make([]string, 0)
	it := roaring.AndNot(all, seen).Iterator()
	for it.HasNext() {
		dead = append(dead, enumerated[it.Next()])
	}
	return dead
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {
	a.walker.Close()
}
