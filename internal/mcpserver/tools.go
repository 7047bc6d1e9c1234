package mcpserver

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/deadfiles/internal/output"
	"github.com/panbanda/deadfiles/pkg/analyzer/deadfile"
	"github.com/panbanda/deadfiles/pkg/config"
	"github.com/panbanda/deadfiles/pkg/models"
)

// AnalyzeInput selects the project and overrides its configuration.
type AnalyzeInput struct {
	Path   string   `json:"path,omitempty" jsonschema:"Project root. Defaults to the current directory."`
	Entry  []string `json:"entry,omitempty" jsonschema:"Entry point files relative to the project root. Defaults to the project configuration."`
	Src    []string `json:"src,omitempty" jsonschema:"Candidate file globs. Defaults to every JavaScript source."`
	Ignore []string `json:"ignore,omitempty" jsonschema:"Excluded globs. Defaults to node_modules."`
}

// FindDeadFilesInput adds report options.
type FindDeadFilesInput struct {
	AnalyzeInput
	Cycles bool   `json:"cycles,omitempty" jsonschema:"Also report import cycles."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// DependencyGraphInput is the input for the graph tool.
type DependencyGraphInput struct {
	AnalyzeInput
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: buf.String()},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// analyze loads the project configuration under input.Path, applies the
// input overrides and runs a detection.
func analyze(ctx context.Context, input AnalyzeInput, cycles, edges bool) (*models.DeadFileReport, string, error) {
	base := input.Path
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, "", err
	}

	result, err := config.LoadConfig(config.WithBaseDir(base))
	if err != nil {
		return nil, "", err
	}
	cfg := result.Config
	if len(input.Entry) > 0 {
		cfg.Entry = input.Entry
	}
	if len(input.Src) > 0 {
		cfg.Src = input.Src
	}
	if len(input.Ignore) > 0 {
		cfg.Ignore = input.Ignore
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	entries, err := result.ResolveEntries()
	if err != nil {
		return nil, "", err
	}

	a := deadfile.New(base,
		deadfile.WithExtensions(cfg.Resolve.Extensions...),
		deadfile.WithGitignore(cfg.Exclude.Gitignore),
	)
	defer a.Close()

	report, err := a.Analyze(ctx, deadfile.Options{
		Entry:   entries,
		Include: cfg.Src,
		Ignore:  cfg.Ignore,
		Cycles:  cycles || cfg.Cycles,
		Edges:   edges,
	})
	if err != nil {
		return nil, "", err
	}
	return report, base, nil
}

func handleFindDeadFiles(ctx context.Context, req *mcp.CallToolRequest, input FindDeadFilesInput) (*mcp.CallToolResult, any, error) {
	report, base, err := analyze(ctx, input.AnalyzeInput, input.Cycles, false)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(output.NewDeadFiles(report, base), getFormat(input.Format))
}

func handleDependencyGraph(ctx context.Context, req *mcp.CallToolRequest, input DependencyGraphInput) (*mcp.CallToolResult, any, error) {
	report, base, err := analyze(ctx, input.AnalyzeInput, false, true)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(output.NewDeadFiles(report, base), output.FormatMermaid)
}
