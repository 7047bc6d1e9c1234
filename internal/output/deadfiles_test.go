package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/panbanda/deadfiles/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *models.DeadFileReport {
	r := models.NewDeadFileReport()
	r.Dependencies = []string{"/p/index.js", "/p/a.js", "/p/b.js"}
	r.DynamicDependencies = []string{"/p/a.js"}
	r.DynamicReferences = []models.Location{{File: "/p/a.js", Line: 3, Column: 9}}
	r.UnresolvedDependencies = []models.UnresolvedDependency{{Specifier: "./missing", From: "/p/b.js"}}
	r.DeadFiles = []string{"/p/old.js", "/p/lib/unused.js"}
	r.Edges = []models.DependencyEdge{{From: "/p/index.js", To: "/p/a.js"}, {From: "/p/index.js", To: "/p/b.js"}}
	r.CalculateSummary(5)
	return r
}

func TestDeadFilesRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDeadFiles(sampleReport(), "/p").RenderText(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "info 3 dependencies found\n")
	assert.Contains(t, out, "warning 1 dynamic dependencies found in:\n└─ a.js\n")
	assert.Contains(t, out, "warning 1 unresolved dependencies:\n└─ ./missing (from b.js)\n")
	assert.Contains(t, out, "warning 2 dead files found:\n├─ old.js\n└─ lib/unused.js\n")
	assert.Contains(t, out, "Summary")
	assert.NotContains(t, out, "ignored dependencies")
	assert.NotContains(t, out, "import cycles")
}

func TestDeadFilesRenderTextClean(t *testing.T) {
	r := models.NewDeadFileReport()
	r.Dependencies = []string{"/p/index.js"}
	r.Cycles = [][]string{}
	r.CalculateSummary(1)

	var buf bytes.Buffer
	require.NoError(t, NewDeadFiles(r, "/p").RenderText(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "success 0 dynamic dependencies found\n")
	assert.Contains(t, out, "success 0 import cycles found\n")
	assert.Contains(t, out, "success 0 dead files found\n")
}

func TestDeadFilesRenderTextCycles(t *testing.T) {
	r := models.NewDeadFileReport()
	r.Cycles = [][]string{{"/p/a.js", "/p/b.js"}}
	r.CalculateSummary(2)

	var buf bytes.Buffer
	require.NoError(t, NewDeadFiles(r, "/p").RenderText(&buf, false))
	assert.Contains(t, buf.String(), "warning 1 import cycles found:\n└─ a.js -> b.js\n")
}

func TestDeadFilesRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDeadFiles(sampleReport(), "/p").RenderMarkdown(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Dead Files\n\n"))
	assert.Contains(t, out, "## Dead Files (2)\n\n- `old.js`\n- `lib/unused.js`\n")
	assert.Contains(t, out, "- `a.js:3:9`")
	assert.Contains(t, out, "- `./missing (from b.js)`")
	assert.Contains(t, out, "| Metric | Count |")
	assert.NotContains(t, out, "Import Cycles")
}

func TestDeadFilesRenderMermaid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDeadFiles(sampleReport(), "/p").RenderMermaid(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.Contains(t, out, `n0["index.js"]`)
	assert.Contains(t, out, `n3["old.js"]:::dead`)
	assert.Contains(t, out, `n4["lib/unused.js"]:::dead`)
	assert.Contains(t, out, "n0 --> n1\n")
	assert.Contains(t, out, "n0 --> n2\n")
	assert.Contains(t, out, "classDef dead")
}

func TestDeadFilesFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatJSON, &buf, false)
	require.NoError(t, f.Output(NewDeadFiles(sampleReport(), "/p")))

	var got models.DeadFileReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"/p/old.js", "/p/lib/unused.js"}, got.DeadFiles)
	assert.Equal(t, 2, got.Summary.TotalDeadFiles)
	assert.NotContains(t, buf.String(), "\"cycles\"")
}

func TestDeadFilesFormatterMermaid(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatMermaid, &buf, false)
	require.NoError(t, f.Output(NewDeadFiles(sampleReport(), "/p")))
	assert.Contains(t, buf.String(), ":::dead")
}

func TestDeadFilesFormatterYAML(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatYAML, &buf, false)
	require.NoError(t, f.Output(NewDeadFiles(sampleReport(), "/p")))

	out := buf.String()
	assert.Contains(t, out, "dead_files:\n  - /p/old.js\n")
	assert.Contains(t, out, "total_dead_files: 2")
}
