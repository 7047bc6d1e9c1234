package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrNoEntry is returned when neither the configuration nor package.json
// names an entry point.
var ErrNoEntry = errors.New("no entrypoint found")

// ManifestKey is the package.json key holding embedded configuration.
const ManifestKey = "deadcode"

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "markdown", "toon", "yaml", "mermaid"}

// Config holds all configuration options for deadfiles.
type Config struct {
	// Entry point modules, relative to the project root
	Entry []string `koanf:"entry" toml:"entry"`

	// Candidate file globs; empty means every JavaScript source
	Src []string `koanf:"src" toml:"src"`

	// Excluded globs; unset means node_modules
	Ignore []string `koanf:"ignore" toml:"ignore"`

	// Report import cycles
	Cycles bool `koanf:"cycles" toml:"cycles"`

	// Module resolution settings
	Resolve ResolveConfig `koanf:"resolve" toml:"resolve"`

	// Additional exclusions
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// ResolveConfig controls module resolution.
type ResolveConfig struct {
	Extensions []string `koanf:"extensions" toml:"extensions"` // tried after .js .json .node
}

// ExcludeConfig defines exclusions beyond ignore globs.
type ExcludeConfig struct {
	Gitignore bool `koanf:"gitignore" toml:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon, yaml, mermaid
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Resolve: ResolveConfig{
			Extensions: []string{},
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// ConfigNames are the config files searched for in the project root, in order.
var ConfigNames = []string{
	"deadfiles.toml",
	"deadfiles.yaml",
	"deadfiles.yml",
	"deadfiles.json",
	".deadfiles.toml",
	".deadfiles.yaml",
	".deadfiles.yml",
	".deadfiles.json",
}

// LoadError reports a configuration source that could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadResult is the effective configuration and where it came from.
type LoadResult struct {
	Config *Config
	// Source is the config file that was loaded, if any.
	Source string
	// Manifest is the package.json that contributed a deadcode key, if any.
	Manifest string
	// Main is the package.json main field.
	Main string
}

type loadOptions struct {
	path    string
	baseDir string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads the given config file instead of searching ConfigNames.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithBaseDir sets the project root searched for package.json and config files.
func WithBaseDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.baseDir = dir
	}
}

// LoadConfig merges, lowest to highest precedence, the defaults, the
// package.json deadcode key and a config file.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{baseDir: "."}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")
	result := &LoadResult{Config: DefaultConfig()}

	manifest := filepath.Join(o.baseDir, "package.json")
	if pk, err := loadManifest(manifest); err == nil {
		result.Main = pk.String("main")
		if pk.Exists(ManifestKey) {
			if err := k.Merge(pk.Cut(ManifestKey)); err != nil {
				return nil, &LoadError{Path: manifest, Err: err}
			}
			result.Manifest = manifest
		}
	}

	path := o.path
	if path == "" {
		path = findConfigFile(o.baseDir)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		result.Source = path
	}

	if err := validateSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := k.Unmarshal("", result.Config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := result.Config.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// loadManifest reads package.json. Malformed manifests are treated as absent.
func loadManifest(path string) (*koanf.Koanf, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	pk := koanf.New(".")
	if err := pk.Load(file.Provider(path), json.Parser()); err != nil {
		return nil, err
	}
	return pk, nil
}

func findConfigFile(dir string) string {
	for _, name := range ConfigNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// parserFor picks a parser by extension. Unknown extensions are read as JSON.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser()
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return json.Parser()
	}
}

// Validate checks values the schema cannot express.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(Formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}
	for _, group := range []struct {
		key      string
		patterns []string
	}{{"src", c.Src}, {"ignore", c.Ignore}} {
		for _, p := range group.patterns {
			if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
				errs = append(errs, fmt.Errorf("%s: invalid glob %q", group.key, p))
			}
		}
	}
	for _, ext := range c.Resolve.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("resolve.extensions: %q must start with a dot", ext))
		}
	}
	return errors.Join(errs...)
}

// ResolveEntries returns the configured entry points, falling back to the
// package.json main field.
func (r *LoadResult) ResolveEntries() ([]string, error) {
	if len(r.Config.Entry) > 0 {
		return r.Config.Entry, nil
	}
	if r.Main != "" {
		return []string{"./" + strings.TrimPrefix(r.Main, "./")}, nil
	}
	return nil, ErrNoEntry
}
