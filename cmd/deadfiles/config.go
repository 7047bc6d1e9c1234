package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate the configuration",
				Description: `Validates package.json "deadcode" settings and the config file.

Examples:
  deadfiles config validate                     # Validates default config locations
  deadfiles -c deadfiles.toml config validate   # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults, package.json and config file.

Examples:
  deadfiles config show                    # Show effective config
  deadfiles -e src/index.js config show    # Include flag overrides`,
				Action: runConfigShow,
			},
		},
	}
}

func runConfigValidate(c *cli.Context) error {
	baseDir, err := os.Getwd()
	if err != nil {
		return err
	}

	result, err := loadSettings(c, baseDir)
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return cli.Exit("", 1)
	}

	switch {
	case result.Source != "":
		color.Green("Configuration valid: %s", result.Source)
	case result.Manifest != "":
		color.Green("Configuration valid: %s", result.Manifest)
	default:
		color.Yellow("No config file found. Default configuration is valid.")
	}
	if _, err := result.ResolveEntries(); err != nil {
		color.Yellow("Warning: %v", err)
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	baseDir, err := os.Getwd()
	if err != nil {
		return err
	}

	result, err := loadSettings(c, baseDir)
	if err != nil {
		return err
	}

	w := c.App.Writer
	switch {
	case result.Source != "":
		fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
	case result.Manifest != "":
		fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Manifest)
	default:
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(content)
	return err
}
