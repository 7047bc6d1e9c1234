package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/deadfiles/pkg/analyzer/graph"
	"github.com/panbanda/deadfiles/pkg/models"
)

// DeadFiles renders a dead file report. Paths are shown relative to BaseDir
// in text and markdown output; structured formats keep absolute paths.
type DeadFiles struct {
	Report  *models.DeadFileReport
	BaseDir string
}

// NewDeadFiles wraps a report for rendering.
func NewDeadFiles(report *models.DeadFileReport, baseDir string) *DeadFiles {
	return &DeadFiles{Report: report, BaseDir: baseDir}
}

func (d *DeadFiles) RenderData() any {
	return d.Report
}

func (d *DeadFiles) rel(p string) string {
	if d.BaseDir == "" {
		return p
	}
	if r, err := filepath.Rel(d.BaseDir, p); err == nil {
		return filepath.ToSlash(r)
	}
	return p
}

func (d *DeadFiles) rels(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = d.rel(p)
	}
	return out
}

func (d *DeadFiles) unresolved() []string {
	out := make([]string, len(d.Report.UnresolvedDependencies))
	for i, u := range d.Report.UnresolvedDependencies {
		out[i] = fmt.Sprintf("%s (from %s)", u.Specifier, d.rel(u.From))
	}
	return out
}

func (d *DeadFiles) cycles() []string {
	out := make([]string, len(d.Report.Cycles))
	for i, c := range d.Report.Cycles {
		out[i] = strings.Join(d.rels(c), " -> ")
	}
	return out
}

func (d *DeadFiles) RenderText(w io.Writer, colored bool) error {
	r := d.Report
	info := func(msg string) { writeStatus(w, colored, color.FgBlue, "info", msg) }
	warn := func(msg string) { writeStatus(w, colored, color.FgYellow, "warning", msg) }
	success := func(msg string) { writeStatus(w, colored, color.FgGreen, "success", msg) }

	info(fmt.Sprintf("%d dependencies found", len(r.Dependencies)))

	if len(r.DynamicDependencies) > 0 {
		warn(fmt.Sprintf("%d dynamic dependencies found in:", len(r.DynamicDependencies)))
		writeTree(w, d.rels(r.DynamicDependencies))
	} else {
		success("0 dynamic dependencies found")
	}

	if len(r.IgnoredDependencies) > 0 {
		warn(fmt.Sprintf("%d ignored dependencies found:", len(r.IgnoredDependencies)))
		writeTree(w, d.rels(r.IgnoredDependencies))
	}

	if len(r.UnparsedDependencies) > 0 {
		warn(fmt.Sprintf("%d unparsed dependencies found:", len(r.UnparsedDependencies)))
		writeTree(w, d.rels(r.UnparsedDependencies))
	}

	if len(r.UnresolvedDependencies) > 0 {
		warn(fmt.Sprintf("%d unresolved dependencies:", len(r.UnresolvedDependencies)))
		writeTree(w, d.unresolved())
	}

	if r.Cycles != nil {
		if len(r.Cycles) > 0 {
			warn(fmt.Sprintf("%d import cycles found:", len(r.Cycles)))
			writeTree(w, d.cycles())
		} else {
			success("0 import cycles found")
		}
	}

	if len(r.DeadFiles) > 0 {
		warn(fmt.Sprintf("%d dead files found:", len(r.DeadFiles)))
		writeTree(w, d.rels(r.DeadFiles))
	} else {
		success("0 dead files found")
	}

	fmt.Fprintln(w)
	return d.summary().RenderText(w, colored)
}

func writeTree(w io.Writer, items []string) {
	for i, item := range items {
		branch := "├─"
		if i == len(items)-1 {
			branch = "└─"
		}
		fmt.Fprintln(w, branch, item)
	}
}

func (d *DeadFiles) summary() *Table {
	s := d.Report.Summary
	rows := [][]string{
		{"Candidate files", strconv.Itoa(s.TotalFiles)},
		{"Dependencies", strconv.Itoa(s.TotalDependencies)},
		{"Dynamic", strconv.Itoa(s.TotalDynamic)},
		{"Unparsed", strconv.Itoa(s.TotalUnparsed)},
		{"Unresolved", strconv.Itoa(s.TotalUnresolved)},
		{"Ignored", strconv.Itoa(s.TotalIgnored)},
	}
	if d.Report.Cycles != nil {
		rows = append(rows, []string{"Cycles", strconv.Itoa(s.TotalCycles)})
	}
	rows = append(rows, []string{"Dead files", strconv.Itoa(s.TotalDeadFiles)})
	footer := []string{"Dead", fmt.Sprintf("%.1f%%", s.DeadFilePercentage)}
	return NewTable("Summary", []string{"Metric", "Count"}, rows, footer, s)
}

func (d *DeadFiles) RenderMarkdown(w io.Writer) error {
	r := d.Report
	fmt.Fprintf(w, "# Dead Files\n\n")

	list := func(title string, items []string) {
		fmt.Fprintf(w, "## %s (%d)\n\n", title, len(items))
		for _, item := range items {
			fmt.Fprintf(w, "- `%s`\n", item)
		}
		if len(items) > 0 {
			fmt.Fprintln(w)
		}
	}

	list("Dead Files", d.rels(r.DeadFiles))
	if len(r.DynamicReferences) > 0 {
		refs := make([]string, len(r.DynamicReferences))
		for i, loc := range r.DynamicReferences {
			refs[i] = fmt.Sprintf("%s:%d:%d", d.rel(loc.File), loc.Line, loc.Column)
		}
		list("Dynamic References", refs)
	}
	if len(r.UnparsedDependencies) > 0 {
		list("Unparsed Dependencies", d.rels(r.UnparsedDependencies))
	}
	if len(r.UnresolvedDependencies) > 0 {
		list("Unresolved Dependencies", d.unresolved())
	}
	if len(r.IgnoredDependencies) > 0 {
		list("Ignored Dependencies", d.rels(r.IgnoredDependencies))
	}
	if len(r.Cycles) > 0 {
		list("Import Cycles", d.cycles())
	}

	return d.summary().RenderMarkdown(w)
}

// RenderMermaid draws the reachable graph with dead files as highlighted
// isolated nodes.
func (d *DeadFiles) RenderMermaid(w io.Writer) error {
	g := &graph.Result{
		Dependencies: d.Report.Dependencies,
		Edges:        d.Report.Edges,
	}
	opts := graph.DefaultMermaidOptions()
	opts.BaseDir = d.BaseDir
	opts.Dead = d.Report.DeadFiles
	_, err := io.WriteString(w, g.ToMermaid(opts))
	return err
}
