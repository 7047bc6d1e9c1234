package graph

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/panbanda/deadfiles/pkg/models"
)

// Edge is a resolved dependency from one module to another.
type Edge = models.DependencyEdge

// Result is the reachability report produced by a walk.
// Every list is in first-discovery order.
type Result struct {
	// Dependencies lists every visited module, parsed or not.
	Dependencies []string `json:"dependencies" toon:"dependencies"`
	// DynamicDependencies lists modules with a non-literal reference.
	DynamicDependencies []string `json:"dynamic_dependencies" toon:"dynamic_dependencies"`
	// DynamicReferences locates every non-literal reference.
	DynamicReferences []models.Location `json:"dynamic_references" toon:"dynamic_references"`
	// UnparsedDependencies lists modules that could not be read or parsed.
	UnparsedDependencies []string `json:"unparsed_dependencies" toon:"unparsed_dependencies"`
	// UnresolvedDependencies records each specifier that mapped to no file.
	UnresolvedDependencies []models.UnresolvedDependency `json:"unresolved_dependencies" toon:"unresolved_dependencies"`
	// Edges holds one entry per distinct resolved (from, to) pair.
	Edges []Edge `json:"edges" toon:"edges"`
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{
		Dependencies:           make([]string, 0),
		DynamicDependencies:    make([]string, 0),
		DynamicReferences:      make([]models.Location, 0),
		UnparsedDependencies:   make([]string, 0),
		UnresolvedDependencies: make([]models.UnresolvedDependency, 0),
		Edges:                  make([]Edge, 0),
	}
}

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes  int              `json:"max_nodes" toon:"max_nodes"`
	MaxEdges  int              `json:"max_edges" toon:"max_edges"`
	Direction MermaidDirection `json:"direction" toon:"direction"`
	// BaseDir, when set, shortens node labels to base-relative paths.
	BaseDir string `json:"base_dir,omitempty" toon:"base_dir,omitempty"`
	// Dead modules are drawn as isolated, highlighted nodes.
	Dead []string `json:"dead,omitempty" toon:"dead,omitempty"`
}

// MermaidDirection specifies the graph direction.
type MermaidDirection string

const (
	DirectionTD MermaidDirection = "TD" // Top-down
	DirectionLR MermaidDirection = "LR" // Left-right
	DirectionBT MermaidDirection = "BT" // Bottom-top
	DirectionRL MermaidDirection = "RL" // Right-left
)

// DefaultMermaidOptions returns sensible defaults.
func DefaultMermaidOptions() MermaidOptions {
	return MermaidOptions{
		MaxNodes:  100,
		MaxEdges:  300,
		Direction: DirectionLR,
	}
}

// ToMermaid renders the module graph as a Mermaid flowchart.
func (r *Result) ToMermaid(opts MermaidOptions) string {
	direction := opts.Direction
	if direction == "" {
		direction = DirectionLR
	}

	var sb strings.Builder
	sb.WriteString("graph " + string(direction) + "\n")

	nodes := r.Dependencies
	edges := r.Edges
	if opts.MaxNodes > 0 && len(nodes) > opts.MaxNodes {
		nodes = nodes[:opts.MaxNodes]
		nodeSet := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			nodeSet[n] = true
		}
		var filtered []Edge
		for _, e := range edges {
			if nodeSet[e.From] && nodeSet[e.To] {
				filtered = append(filtered, e)
			}
		}
		edges = filtered
	}
	if opts.MaxEdges > 0 && len(edges) > opts.MaxEdges {
		edges = edges[:opts.MaxEdges]
	}

	label := func(p string) string {
		if opts.BaseDir != "" {
			if rel, err := filepath.Rel(opts.BaseDir, p); err == nil {
				p = filepath.ToSlash(rel)
			}
		}
		return EscapeMermaidLabel(p)
	}

	// IDs are positional; paths are labels only.
	ids := make(map[string]string, len(nodes)+len(opts.Dead))
	node := func(p, class string) {
		if _, ok := ids[p]; ok {
			return
		}
		id := "n" + strconv.Itoa(len(ids))
		ids[p] = id
		sb.WriteString("    " + id + "[\"" + label(p) + "\"]" + class + "\n")
	}
	for _, n := range nodes {
		node(n, "")
	}
	for _, n := range opts.Dead {
		node(n, ":::dead")
	}
	for _, e := range edges {
		from, ok1 := ids[e.From]
		to, ok2 := ids[e.To]
		if !ok1 || !ok2 {
			continue
		}
		sb.WriteString("    " + from + " --> " + to + "\n")
	}
	if len(opts.Dead) > 0 {
		sb.WriteString("    classDef dead fill:#FF6347,stroke:#8B0000\n")
	}

	return sb.String()
}

// EscapeMermaidLabel escapes special characters in labels for Mermaid.
func EscapeMermaidLabel(s string) string {
	r := strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
