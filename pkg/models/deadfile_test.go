package models

import "testing"

func TestNewDeadFileReport(t *testing.T) {
	r := NewDeadFileReport()

	if r.DeadFiles == nil || r.Dependencies == nil || r.DynamicDependencies == nil ||
		r.DynamicReferences == nil || r.UnparsedDependencies == nil ||
		r.UnresolvedDependencies == nil || r.IgnoredDependencies == nil {
		t.Error("all report lists should be initialized")
	}
	if r.Cycles != nil {
		t.Error("Cycles should stay nil unless cycle detection ran")
	}
	if r.HasDeadFiles() {
		t.Error("empty report should not have dead files")
	}
}

func TestDeadFileReport_CalculateSummary(t *testing.T) {
	tests := []struct {
		name        string
		dead        []string
		deps        []string
		total       int
		wantPercent float64
	}{
		{"no files", nil, nil, 0, 0},
		{"all reachable", nil, []string{"/a.js", "/b.js"}, 2, 0},
		{"half dead", []string{"/c.js", "/d.js"}, []string{"/a.js", "/b.js"}, 4, 50},
		{"all dead", []string{"/c.js"}, []string{"/a.js"}, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDeadFileReport()
			r.DeadFiles = append(r.DeadFiles, tt.dead...)
			r.Dependencies = append(r.Dependencies, tt.deps...)
			r.CalculateSummary(tt.total)

			if r.Summary.TotalFiles != tt.total {
				t.Errorf("TotalFiles = %d, want %d", r.Summary.TotalFiles, tt.total)
			}
			if r.Summary.TotalDeadFiles != len(tt.dead) {
				t.Errorf("TotalDeadFiles = %d, want %d", r.Summary.TotalDeadFiles, len(tt.dead))
			}
			if r.Summary.TotalDependencies != len(tt.deps) {
				t.Errorf("TotalDependencies = %d, want %d", r.Summary.TotalDependencies, len(tt.deps))
			}
			if r.Summary.DeadFilePercentage != tt.wantPercent {
				t.Errorf("DeadFilePercentage = %v, want %v", r.Summary.DeadFilePercentage, tt.wantPercent)
			}
			if r.HasDeadFiles() != (len(tt.dead) > 0) {
				t.Errorf("HasDeadFiles() = %v, want %v", r.HasDeadFiles(), len(tt.dead) > 0)
			}
		})
	}
}

func TestDeadFileReport_SummaryCounts(t *testing.T) {
	r := NewDeadFileReport()
	r.DynamicDependencies = []string{"/a.js"}
	r.UnparsedDependencies = []string{"/b.js", "/c.js"}
	r.UnresolvedDependencies = []UnresolvedDependency{{Specifier: "./x", From: "/a.js"}}
	r.IgnoredDependencies = []string{"/node_modules/y/index.js"}
	r.Cycles = [][]string{{"/a.js", "/b.js"}}
	r.CalculateSummary(3)

	s := r.Summary
	if s.TotalDynamic != 1 || s.TotalUnparsed != 2 || s.TotalUnresolved != 1 || s.TotalIgnored != 1 || s.TotalCycles != 1 {
		t.Errorf("unexpected summary counts: %+v", s)
	}
}

func TestLocation_String(t *testing.T) {
	loc := Location{File: "/src/index.js", Line: 3, Column: 17}
	if got := loc.String(); got != "/src/index.js:3:17" {
		t.Errorf("String() = %q, want /src/index.js:3:17", got)
	}
}

func TestUnresolvedDependency_String(t *testing.T) {
	u := UnresolvedDependency{Specifier: "./missing", From: "/src/index.js"}
	if got := u.String(); got != "./missing (from /src/index.js)" {
		t.Errorf("String() = %q", got)
	}
}
