// Package resolver maps module specifiers to files using Node's CommonJS
// resolution rules.
package resolver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrNotFound is returned when a specifier does not map to any file.
	ErrNotFound = errors.New("module not found")

	// ErrBuiltin is returned for Node core modules, which have no file.
	ErrBuiltin = errors.New("builtin module")
)

// NotFoundError reports a specifier that could not be resolved from Base.
type NotFoundError struct {
	Specifier string
	Base      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot find module %q from %s", e.Specifier, e.Base)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// DefaultExtensions are tried, in order, after the exact file name.
var DefaultExtensions = []string{".js", ".json", ".node"}

// conditions are the package exports conditions active for require.
// Objects are matched in their own key order.
var conditions = []string{"require", "node", "default"}

// Resolver resolves module specifiers relative to a base directory.
type Resolver struct {
	baseDir    string
	extensions []string
}

// Option is a functional option for configuring Resolver.
type Option func(*Resolver)

// WithExtensions appends extra file extensions to DefaultExtensions.
func WithExtensions(exts ...string) Option {
	return func(r *Resolver) {
		for _, ext := range exts {
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if !slices.Contains(r.extensions, ext) {
				r.extensions = append(r.extensions, ext)
			}
		}
	}
}

// New creates a resolver rooted at baseDir.
func New(baseDir string, opts ...Option) *Resolver {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	r := &Resolver{
		baseDir:    baseDir,
		extensions: slices.Clone(DefaultExtensions),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseDir returns the absolute directory entries are resolved against.
func (r *Resolver) BaseDir() string {
	return r.baseDir
}

// ResolveEntry resolves an entry point. Entries are always file paths,
// relative to the base directory unless absolute.
func (r *Resolver) ResolveEntry(entry string) (string, error) {
	p := entry
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.baseDir, p)
	}
	if found, ok := r.loadPath(p); ok {
		return Canonical(found)
	}
	return "", &NotFoundError{Specifier: entry, Base: r.baseDir}
}

// Resolve maps specifier, as written in a module located in fromDir, to a
// canonical file path.
func (r *Resolver) Resolve(specifier, fromDir string) (string, error) {
	if specifier == "" {
		return "", &NotFoundError{Specifier: specifier, Base: fromDir}
	}
	if IsBuiltin(specifier) {
		return "", fmt.Errorf("%w: %s", ErrBuiltin, specifier)
	}

	if isPathSpecifier(specifier) {
		p := filepath.FromSlash(specifier)
		if !filepath.IsAbs(p) {
			p = filepath.Join(fromDir, p)
		}
		load := r.loadPath
		if isDirectorySpecifier(specifier) {
			load = r.loadAsDirectory
		}
		if found, ok := load(p); ok {
			return Canonical(found)
		}
		return "", &NotFoundError{Specifier: specifier, Base: fromDir}
	}

	if found, ok := r.loadNodeModules(specifier, fromDir); ok {
		return Canonical(found)
	}
	return "", &NotFoundError{Specifier: specifier, Base: fromDir}
}

func isPathSpecifier(s string) bool {
	return strings.HasPrefix(s, ".") || strings.HasPrefix(s, "/") || filepath.IsAbs(s)
}

// isDirectorySpecifier reports whether specifier can only name a directory:
// it ends in a slash or its last segment is "." or "..".
func isDirectorySpecifier(s string) bool {
	s = filepath.ToSlash(s)
	if strings.HasSuffix(s, "/") {
		return true
	}
	last := s[strings.LastIndex(s, "/")+1:]
	return last == "." || last == ".."
}

// loadPath tries p as a file, then as a directory.
func (r *Resolver) loadPath(p string) (string, bool) {
	if found, ok := r.loadAsFile(p); ok {
		return found, true
	}
	return r.loadAsDirectory(p)
}

func (r *Resolver) loadAsFile(p string) (string, bool) {
	if isFile(p) {
		return p, true
	}
	for _, ext := range r.extensions {
		if isFile(p + ext) {
			return p + ext, true
		}
	}
	return "", false
}

func (r *Resolver) loadIndex(dir string) (string, bool) {
	for _, ext := range r.extensions {
		p := filepath.Join(dir, "index"+ext)
		if isFile(p) {
			return p, true
		}
	}
	return "", false
}

func (r *Resolver) loadAsDirectory(dir string) (string, bool) {
	if !isDir(dir) {
		return "", false
	}
	if m, err := readManifest(dir); err == nil && m.Main != "" {
		main := filepath.Join(dir, filepath.FromSlash(m.Main))
		if found, ok := r.loadAsFile(main); ok {
			return found, true
		}
		if found, ok := r.loadIndex(main); ok {
			return found, true
		}
	}
	return r.loadIndex(dir)
}

// loadNodeModules searches each node_modules directory from fromDir up to
// the filesystem root.
func (r *Resolver) loadNodeModules(specifier, fromDir string) (string, bool) {
	name, subpath := splitPackage(specifier)
	for _, dir := range nodeModulesPaths(fromDir) {
		pkgDir := filepath.Join(dir, filepath.FromSlash(name))
		if m, err := readManifest(pkgDir); err == nil && len(m.Exports) > 0 && string(m.Exports) != "null" {
			// An exports field seals the package.
			return loadExports(pkgDir, subpath, m.Exports)
		}
		load := r.loadPath
		if isDirectorySpecifier(specifier) {
			load = r.loadAsDirectory
		}
		if found, ok := load(filepath.Join(dir, filepath.FromSlash(specifier))); ok {
			return found, true
		}
	}
	return "", false
}

// nodeModulesPaths lists candidate node_modules directories, nearest first.
func nodeModulesPaths(fromDir string) []string {
	var dirs []string
	dir := filepath.Clean(fromDir)
	for {
		if filepath.Base(dir) != "node_modules" {
			dirs = append(dirs, filepath.Join(dir, "node_modules"))
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dirs
		}
		dir = parent
	}
}

// splitPackage splits a bare specifier into its package name and an
// exports subpath ("." or "./rest").
func splitPackage(specifier string) (name, subpath string) {
	parts := strings.SplitN(specifier, "/", 3)
	n := 1
	if strings.HasPrefix(specifier, "@") && len(parts) > 1 {
		n = 2
	}
	if len(parts) <= n {
		return specifier, "."
	}
	name = strings.Join(parts[:n], "/")
	return name, "./" + strings.TrimPrefix(specifier, name+"/")
}

type manifest struct {
	Main    string          `json:"main"`
	Exports json.RawMessage `json:"exports"`
}

func readManifest(dir string) (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid package.json in %s: %w", dir, err)
	}
	return &m, nil
}

// loadExports resolves subpath through a package exports field. Targets must
// name an existing file exactly.
func loadExports(pkgDir, subpath string, exports json.RawMessage) (string, bool) {
	target, ok := matchExports(subpath, exports)
	if !ok {
		return "", false
	}
	p := filepath.Join(pkgDir, filepath.FromSlash(target))
	if !isFile(p) {
		return "", false
	}
	return p, true
}

func matchExports(subpath string, exports json.RawMessage) (string, bool) {
	members, isObject := decodeObject(exports)
	subpaths, valid := subpathKeys(members)
	if !valid {
		return "", false
	}
	if !isObject || !subpaths {
		// sugar for {".": exports}
		if subpath != "." {
			return "", false
		}
		return resolveTarget(exports, "")
	}

	if !strings.Contains(subpath, "*") {
		for _, m := range members {
			if m.key == subpath {
				return resolveTarget(m.value, "")
			}
		}
	}

	// Longest matching pattern key wins.
	var best *member
	bestMatch := ""
	for i := range members {
		m := &members[i]
		match, ok := matchPattern(m.key, subpath)
		if !ok {
			continue
		}
		if best == nil || len(m.key) > len(best.key) {
			best, bestMatch = m, match
		}
	}
	if best == nil {
		return "", false
	}
	if strings.HasSuffix(best.key, "/") && !strings.Contains(best.key, "*") {
		// legacy folder mapping
		target, ok := resolveTarget(best.value, "")
		if !ok || !strings.HasSuffix(target, "/") {
			return "", false
		}
		return path.Join(target, bestMatch), true
	}
	return resolveTarget(best.value, bestMatch)
}

// member is one key of a JSON object, kept in document order.
type member struct {
	key   string
	value json.RawMessage
}

// decodeObject returns the members of a JSON object in document order.
// Reports false when raw is not an object.
func decodeObject(raw json.RawMessage) ([]member, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}
	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		members = append(members, member{key: key, value: value})
	}
	return members, true
}

// subpathKeys reports whether every key is a subpath. An object mixing
// subpath and condition keys is invalid.
func subpathKeys(members []member) (subpaths, valid bool) {
	if len(members) == 0 {
		return false, true
	}
	subpaths = strings.HasPrefix(members[0].key, ".")
	for _, m := range members[1:] {
		if strings.HasPrefix(m.key, ".") != subpaths {
			return false, false
		}
	}
	return subpaths, true
}

// matchPattern reports whether subpath matches a "*" or trailing "/" key and
// returns the portion the wildcard captured.
func matchPattern(key, subpath string) (string, bool) {
	if before, after, ok := strings.Cut(key, "*"); ok {
		if len(subpath) < len(before)+len(after) ||
			!strings.HasPrefix(subpath, before) || !strings.HasSuffix(subpath, after) {
			return "", false
		}
		return subpath[len(before) : len(subpath)-len(after)], true
	}
	if strings.HasSuffix(key, "/") && strings.HasPrefix(subpath, key) {
		return strings.TrimPrefix(subpath, key), true
	}
	return "", false
}

// resolveTarget evaluates an exports target, substituting match for "*".
func resolveTarget(raw json.RawMessage, match string) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if !strings.HasPrefix(s, "./") {
			return "", false
		}
		return strings.ReplaceAll(s, "*", match), true
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if target, ok := resolveTarget(item, match); ok {
				return target, true
			}
		}
		return "", false
	}

	if members, ok := decodeObject(raw); ok {
		for _, m := range members {
			if !slices.Contains(conditions, m.key) {
				continue
			}
			if target, ok := resolveTarget(m.value, match); ok {
				return target, true
			}
		}
	}
	return "", false
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// Canonical returns the absolute, symlink-free form of p.
func Canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
