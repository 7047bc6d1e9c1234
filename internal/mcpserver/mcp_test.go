package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/deadfiles/internal/output"
	"github.com/panbanda/deadfiles/internal/testutil"
	"github.com/panbanda/deadfiles/pkg/models"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("handler returned nil result")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	return text.Text
}

var project = map[string]string{
	"package.json": `{"main": "index.js"}`,
	"index.js":     "require('./used');\n",
	"used.js":      "",
	"unused.js":    "",
}

// TestServerCreation verifies the MCP server can be created without panicking.
func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test")
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
	if NewServer("") == nil {
		t.Fatal(`NewServer("") returned nil`)
	}
}

func TestToolDescriptions(t *testing.T) {
	for name, fn := range map[string]func() string{
		"find_dead_files":  describeFindDeadFiles,
		"dependency_graph": describeDependencyGraph,
	} {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			if !strings.Contains(desc, "USE WHEN:") {
				t.Errorf("%s description missing USE WHEN section", name)
			}
			if !strings.Contains(desc, "INTERPRETING RESULTS:") {
				t.Errorf("%s description missing INTERPRETING RESULTS section", name)
			}
		})
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		format string
		want   output.Format
	}{
		{"", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"json", output.FormatJSON},
		{"md", output.FormatMarkdown},
		{"markdown", output.FormatMarkdown},
		{"other", output.FormatTOON},
	}
	for _, tt := range tests {
		if got := getFormat(tt.format); got != tt.want {
			t.Errorf("getFormat(%q) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	if err != nil {
		t.Fatalf("toolError returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("toolError result.IsError should be true")
	}
	if got := resultText(t, result); got != "Error: test error message" {
		t.Errorf("toolError text = %q", got)
	}
}

func TestHandleFindDeadFiles(t *testing.T) {
	root := testutil.Project(t, project)

	input := FindDeadFilesInput{
		AnalyzeInput: AnalyzeInput{Path: root},
		Format:       "json",
	}
	result, _, err := handleFindDeadFiles(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleFindDeadFiles returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleFindDeadFiles returned tool error: %s", text)
	}

	var report models.DeadFileReport
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	want := filepath.Join(root, "unused.js")
	if len(report.DeadFiles) != 1 || report.DeadFiles[0] != want {
		t.Errorf("DeadFiles = %v, want [%s]", report.DeadFiles, want)
	}
}

func TestHandleFindDeadFilesOverrides(t *testing.T) {
	root := testutil.Project(t, project)

	input := FindDeadFilesInput{
		AnalyzeInput: AnalyzeInput{Path: root, Entry: []string{"unused.js"}, Src: []string{"*.js"}},
	}
	result, _, err := handleFindDeadFiles(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleFindDeadFiles returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleFindDeadFiles returned tool error: %s", text)
	}
	for _, dead := range []string{"index.js", "used.js"} {
		if !strings.Contains(text, filepath.Join(root, dead)) {
			t.Errorf("TOON output should list %s as dead:\n%s", dead, text)
		}
	}
}

func TestHandleFindDeadFilesNoEntry(t *testing.T) {
	root := testutil.Project(t, map[string]string{"a.js": ""})

	result, _, err := handleFindDeadFiles(context.Background(), nil, FindDeadFilesInput{
		AnalyzeInput: AnalyzeInput{Path: root},
	})
	if err != nil {
		t.Fatalf("handleFindDeadFiles returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("missing entry point should be a tool error")
	}
	if text := resultText(t, result); !strings.Contains(text, "no entrypoint found") {
		t.Errorf("error text = %q", text)
	}
}

func TestHandleDependencyGraph(t *testing.T) {
	root := testutil.Project(t, project)

	result, _, err := handleDependencyGraph(context.Background(), nil, DependencyGraphInput{
		AnalyzeInput: AnalyzeInput{Path: root},
	})
	if err != nil {
		t.Fatalf("handleDependencyGraph returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleDependencyGraph returned tool error: %s", text)
	}
	if !strings.HasPrefix(text, "graph LR\n") {
		t.Errorf("graph output should be a Mermaid flowchart:\n%s", text)
	}
	if !strings.Contains(text, " --> ") {
		t.Errorf("graph output should contain edges:\n%s", text)
	}
	if !strings.Contains(text, `["unused.js"]:::dead`) {
		t.Errorf("graph output should mark unused.js as dead:\n%s", text)
	}
}
