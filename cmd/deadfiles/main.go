package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/panbanda/deadfiles/internal/output"
	"github.com/panbanda/deadfiles/internal/progress"
	"github.com/panbanda/deadfiles/pkg/analyzer/deadfile"
	"github.com/panbanda/deadfiles/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "deadfiles",
		Usage:   "Find source files that no entry point reaches",
		Version: version,
		Description: `deadfiles follows require, import and export-from references from the
entry points, then reports every file matched by --src that was never reached.

Exits with status 1 when dead files are found.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"DEADFILES_CONFIG"},
			},
			&cli.StringSliceFlag{
				Name:    "entry",
				Aliases: []string{"e"},
				Usage:   "Entry point files, comma separated",
			},
			&cli.StringSliceFlag{
				Name:    "src",
				Aliases: []string{"s"},
				Usage:   "Files to check (glob patterns), comma separated",
			},
			&cli.StringSliceFlag{
				Name:    "ignore",
				Aliases: []string{"i"},
				Usage:   "Files to ignore (glob patterns), comma separated",
			},
			&cli.StringSliceFlag{
				Name:  "ext",
				Usage: "Extra extensions tried during resolution, comma separated",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon, yaml, mermaid",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "cycles",
				Usage: "Report import cycles among reachable files",
			},
			&cli.BoolFlag{
				Name:  "gitignore",
				Usage: "Skip candidate files matched by .gitignore",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress spinner",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Commands: []*cli.Command{
			configCmd(),
			mcpCmd(),
		},
		Action: runDetect,
	}
}

// loadSettings merges config sources and applies flag overrides.
func loadSettings(c *cli.Context, baseDir string) (*config.LoadResult, error) {
	opts := []config.LoadOption{config.WithBaseDir(baseDir)}
	if path := c.String("config"); path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		opts = append(opts, config.WithPath(path))
	}

	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}

	cfg := result.Config
	if c.IsSet("entry") {
		cfg.Entry = c.StringSlice("entry")
	}
	if c.IsSet("src") {
		cfg.Src = c.StringSlice("src")
	}
	if c.IsSet("ignore") {
		cfg.Ignore = c.StringSlice("ignore")
	}
	if c.IsSet("ext") {
		cfg.Resolve.Extensions = c.StringSlice("ext")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("cycles") {
		cfg.Cycles = c.Bool("cycles")
	}
	if c.IsSet("gitignore") {
		cfg.Exclude.Gitignore = c.Bool("gitignore")
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func runDetect(c *cli.Context) error {
	baseDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	result, err := loadSettings(c, baseDir)
	if err != nil {
		return err
	}
	entries, err := result.ResolveEntries()
	if err != nil {
		return err
	}

	cfg := result.Config
	if !cfg.Output.Color {
		color.NoColor = true
	}
	format := output.ParseFormat(cfg.Output.Format)

	dfAnalyzer := deadfile.New(baseDir,
		deadfile.WithExtensions(cfg.Resolve.Extensions...),
		deadfile.WithGitignore(cfg.Exclude.Gitignore),
	)
	defer dfAnalyzer.Close()

	opts := deadfile.Options{
		Entry:   entries,
		Include: cfg.Src,
		Ignore:  cfg.Ignore,
		Cycles:  cfg.Cycles,
		Edges:   format == output.FormatMermaid,
	}

	var tracker *progress.Tracker
	if !c.Bool("no-progress") {
		tracker = progress.NewSpinner("info")
		opts.Progress = tracker.Callback()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := dfAnalyzer.Analyze(ctx, opts)
	if tracker != nil {
		tracker.FinishSuccess()
	}
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(format, c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.NewDeadFiles(report, baseDir)); err != nil {
		return err
	}

	if report.HasDeadFiles() {
		return cli.Exit("", 1)
	}
	return nil
}
