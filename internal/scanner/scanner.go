package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/deadfiles/pkg/parser"
	"github.com/sourcegraph/conc/pool"
)

// DefaultIgnore is applied when no ignore patterns are configured.
var DefaultIgnore = []string{"**/node_modules/**"}

// DefaultInclude matches every recognized JavaScript source extension.
func DefaultInclude() []string {
	patterns := make([]string, 0, len(parser.SourceExtensions))
	for _, ext := range parser.SourceExtensions {
		patterns = append(patterns, "**/*"+ext)
	}
	return patterns
}

// PatternError reports a malformed glob pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Scanner enumerates files matching glob patterns under a base directory.
type Scanner struct {
	baseDir   string
	gitignore bool
}

// Option is a functional option for configuring Scanner.
type Option func(*Scanner)

// WithGitignore additionally drops files matched by .gitignore files of the
// enclosing git repository.
func WithGitignore(enabled bool) Option {
	return func(s *Scanner) {
		s.gitignore = enabled
	}
}

// NewScanner creates a scanner rooted at baseDir.
func NewScanner(baseDir string, opts ...Option) *Scanner {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	if real, err := filepath.EvalSymlinks(baseDir); err == nil {
		baseDir = real
	}
	s := &Scanner{baseDir: baseDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseDir returns the canonical directory relative patterns are matched in.
func (s *Scanner) BaseDir() string {
	return s.baseDir
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitDir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// gitMatcher matches paths against the .gitignore files of a repository.
type gitMatcher struct {
	root    string
	matcher gitignore.Matcher
}

// loadGitignore reads every .gitignore file in the repository enclosing the
// base directory. Returns nil when disabled or outside a repository.
func (s *Scanner) loadGitignore() *gitMatcher {
	if !s.gitignore {
		return nil
	}
	gitRoot := findGitRoot(s.baseDir)
	if gitRoot == "" {
		return nil
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(patterns) == 0 {
		return nil
	}
	return &gitMatcher{root: gitRoot, matcher: gitignore.NewMatcher(patterns)}
}

func (g *gitMatcher) match(path string, isDir bool) bool {
	if g == nil {
		return false
	}
	rel, err := filepath.Rel(g.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return g.matcher.Match(strings.Split(rel, string(filepath.Separator)), isDir)
}

// Enumerate returns the canonical paths of files matching any include
// pattern and no ignore pattern. A nil include uses DefaultInclude and a
// nil ignore uses DefaultIgnore; an empty non-nil ignore disables ignoring.
// Results keep include pattern order, then lexical order within a pattern.
func (s *Scanner) Enumerate(ctx context.Context, include, ignore []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultInclude()
	}
	if ignore == nil {
		ignore = DefaultIgnore
	}
	for _, p := range append(append([]string{}, include...), ignore...) {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return nil, &PatternError{Pattern: p, Err: doublestar.ErrBadPattern}
		}
	}

	git := s.loadGitignore()
	results := make([][]string, len(include))

	p := pool.New().WithErrors().WithContext(ctx)
	for i, pattern := range include {
		p.Go(func(ctx context.Context) error {
			files, err := s.expand(ctx, pattern, ignore, git)
			if err != nil {
				return err
			}
			results[i] = files
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	files := make([]string, 0)
	for _, group := range results {
		for _, f := range group {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}

// expand walks the static prefix of one include pattern.
func (s *Scanner) expand(ctx context.Context, pattern string, ignore []string, git *gitMatcher) ([]string, error) {
	prefix, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	root := filepath.FromSlash(prefix)
	if !filepath.IsAbs(root) {
		root = filepath.Join(s.baseDir, root)
	}
	if _, err := os.Stat(root); err != nil {
		return nil, nil
	}

	dots := dotSegments(rest)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		hidden := path != root && !dotAllowed(dots, d.Name())

		if d.IsDir() {
			if path != root && (hidden || s.dirIgnored(path, ignore) || git.match(path, true)) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(rest, filepath.ToSlash(rel)); !ok {
			return nil
		}
		if s.Matches(path, ignore) || git.match(path, false) {
			return nil
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if info, err := os.Stat(real); err != nil || info.IsDir() {
			return nil
		}
		files = append(files, real)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// dotSegments returns the segments of pattern that name dot entries.
func dotSegments(pattern string) []string {
	var dots []string
	for _, seg := range strings.Split(pattern, "/") {
		if strings.HasPrefix(seg, ".") {
			dots = append(dots, seg)
		}
	}
	return dots
}

// dotAllowed reports whether name may be walked. Names starting with a dot
// are only matched by a pattern segment that itself starts with a dot.
func dotAllowed(dots []string, name string) bool {
	if !strings.HasPrefix(name, ".") {
		return true
	}
	for _, seg := range dots {
		if ok, _ := doublestar.Match(seg, name); ok {
			return true
		}
	}
	return false
}

// dirIgnored reports whether every file below dir is ignored, which holds
// for "<dir pattern>/**" patterns.
func (s *Scanner) dirIgnored(dir string, ignore []string) bool {
	for _, p := range ignore {
		p = filepath.ToSlash(p)
		if prefix, ok := strings.CutSuffix(p, "/**"); ok && s.match(prefix, dir) {
			return true
		}
	}
	return false
}

// Matches reports whether path matches any of patterns. Relative patterns
// are matched against the base-relative path, absolute ones against the
// absolute path.
func (s *Scanner) Matches(path string, patterns []string) bool {
	for _, p := range patterns {
		if s.match(filepath.ToSlash(p), path) {
			return true
		}
	}
	return false
}

func (s *Scanner) match(pattern, path string) bool {
	target := filepath.ToSlash(path)
	if !filepath.IsAbs(filepath.FromSlash(pattern)) {
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return false
		}
		target = filepath.ToSlash(rel)
	}
	ok, _ := doublestar.Match(pattern, target)
	return ok
}
