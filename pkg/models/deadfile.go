package models

import "fmt"

// Location identifies a position in a source file. Line and Column are 1-based.
type Location struct {
	File   string `json:"file" toon:"file" yaml:"file"`
	Line   int    `json:"line" toon:"line" yaml:"line"`
	Column int    `json:"column" toon:"column" yaml:"column"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// UnresolvedDependency is a specifier that could not be mapped to a file.
type UnresolvedDependency struct {
	Specifier string `json:"specifier" toon:"specifier" yaml:"specifier"`
	From      string `json:"from" toon:"from" yaml:"from"` // Referring file
}

func (u UnresolvedDependency) String() string {
	return fmt.Sprintf("%s (from %s)", u.Specifier, u.From)
}

// DependencyEdge is a resolved reference from one module to another.
type DependencyEdge struct {
	From string `json:"from" toon:"from" yaml:"from"`
	To   string `json:"to" toon:"to" yaml:"to"`
}

// DeadFileReport is the full result of a dead file detection run.
// Every list preserves first-discovery order.
type DeadFileReport struct {
	DeadFiles              []string               `json:"dead_files" toon:"dead_files" yaml:"dead_files"`
	Dependencies           []string               `json:"dependencies" toon:"dependencies" yaml:"dependencies"`
	DynamicDependencies    []string               `json:"dynamic_dependencies" toon:"dynamic_dependencies" yaml:"dynamic_dependencies"`
	DynamicReferences      []Location             `json:"dynamic_references" toon:"dynamic_references" yaml:"dynamic_references"`
	UnparsedDependencies   []string               `json:"unparsed_dependencies" toon:"unparsed_dependencies" yaml:"unparsed_dependencies"`
	UnresolvedDependencies []UnresolvedDependency `json:"unresolved_dependencies" toon:"unresolved_dependencies" yaml:"unresolved_dependencies"`
	IgnoredDependencies    []string               `json:"ignored_dependencies" toon:"ignored_dependencies" yaml:"ignored_dependencies"`
	Cycles                 [][]string             `json:"cycles,omitempty" toon:"cycles,omitempty" yaml:"cycles,omitempty"`
	Edges                  []DependencyEdge       `json:"edges,omitempty" toon:"edges,omitempty" yaml:"edges,omitempty"`
	Summary                DeadFileSummary        `json:"summary" toon:"summary" yaml:"summary"`
}

// DeadFileSummary provides aggregate statistics.
type DeadFileSummary struct {
	TotalFiles         int     `json:"total_files" toon:"total_files" yaml:"total_files"`
	TotalDeadFiles     int     `json:"total_dead_files" toon:"total_dead_files" yaml:"total_dead_files"`
	TotalDependencies  int     `json:"total_dependencies" toon:"total_dependencies" yaml:"total_dependencies"`
	TotalDynamic       int     `json:"total_dynamic" toon:"total_dynamic" yaml:"total_dynamic"`
	TotalUnparsed      int     `json:"total_unparsed" toon:"total_unparsed" yaml:"total_unparsed"`
	TotalUnresolved    int     `json:"total_unresolved" toon:"total_unresolved" yaml:"total_unresolved"`
	TotalIgnored       int     `json:"total_ignored" toon:"total_ignored" yaml:"total_ignored"`
	TotalCycles        int     `json:"total_cycles" toon:"total_cycles" yaml:"total_cycles"`
	DeadFilePercentage float64 `json:"dead_file_percentage" toon:"dead_file_percentage" yaml:"dead_file_percentage"`
}

// NewDeadFileReport creates a report with empty, non-nil lists so that
// serialized output always carries arrays.
func NewDeadFileReport() *DeadFileReport {
	return &DeadFileReport{
		DeadFiles:              []string{},
		Dependencies:           []string{},
		DynamicDependencies:    []string{},
		DynamicReferences:      []Location{},
		UnparsedDependencies:   []string{},
		UnresolvedDependencies: []UnresolvedDependency{},
		IgnoredDependencies:    []string{},
	}
}

// HasDeadFiles reports whether any candidate file is unreachable.
func (r *DeadFileReport) HasDeadFiles() bool {
	return len(r.DeadFiles) > 0
}

// CalculateSummary fills in the summary from the report lists.
// totalFiles is the size of the enumerated candidate set.
func (r *DeadFileReport) CalculateSummary(totalFiles int) {
	r.Summary = DeadFileSummary{
		TotalFiles:        totalFiles,
		TotalDeadFiles:    len(r.DeadFiles),
		TotalDependencies: len(r.Dependencies),
		TotalDynamic:      len(r.DynamicDependencies),
		TotalUnparsed:     len(r.UnparsedDependencies),
		TotalUnresolved:   len(r.UnresolvedDependencies),
		TotalIgnored:      len(r.IgnoredDependencies),
		TotalCycles:       len(r.Cycles),
	}
	if totalFiles > 0 {
		r.Summary.DeadFilePercentage = float64(len(r.DeadFiles)) / float64(totalFiles) * 100
	}
}
