package parser

import (
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.parser == nil {
		t.Error("parser field is nil")
	}
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		// JavaScript
		{"index.js", LangJavaScript},
		{"src/lib/util.js", LangJavaScript},
		{"module.mjs", LangJavaScript},
		{"common.cjs", LangJavaScript},
		{"component.jsx", LangJavaScript},
		{"legacy.es6", LangJavaScript},
		{"legacy.es", LangJavaScript},

		// TypeScript
		{"app.ts", LangTypeScript},
		{"app.mts", LangTypeScript},
		{"app.cts", LangTypeScript},
		{"types.d.ts", LangTypeScript},
		{"component.tsx", LangTSX},

		// JSON modules
		{"package.json", LangJSON},
		{"data/fixtures.json", LangJSON},

		// Unknown
		{"addon.node", LangUnknown},
		{"README.md", LangUnknown},
		{"main.go", LangUnknown},
		{"Makefile", LangUnknown},

		// Case insensitivity
		{"INDEX.JS", LangJavaScript},
		{"App.TSX", LangTSX},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := DetectLanguage(tt.path)
			if got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestGetTreeSitterLanguage(t *testing.T) {
	for _, lang := range []Language{LangJavaScript, LangTypeScript, LangTSX} {
		t.Run(string(lang), func(t *testing.T) {
			tsLang, err := GetTreeSitterLanguage(lang)
			if err != nil {
				t.Errorf("GetTreeSitterLanguage(%v) returned error: %v", lang, err)
			}
			if tsLang == nil {
				t.Errorf("GetTreeSitterLanguage(%v) returned nil", lang)
			}
		})
	}

	for _, lang := range []Language{LangJSON, LangUnknown} {
		t.Run(string(lang), func(t *testing.T) {
			_, err := GetTreeSitterLanguage(lang)
			if !errors.Is(err, ErrUnsupportedLanguage) {
				t.Errorf("GetTreeSitterLanguage(%v) error = %v, want ErrUnsupportedLanguage", lang, err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		source string
		lang   Language
	}{
		{
			name:   "commonjs module",
			source: "const a = require('./a');\nmodule.exports = a;\n",
			lang:   LangJavaScript,
		},
		{
			name:   "es module with jsx",
			source: "import React from 'react';\nexport const App = () => <div>hi</div>;\n",
			lang:   LangJavaScript,
		},
		{
			name:   "typescript",
			source: "import type { A } from './a';\nexport function f(x: number): A | null { return null; }\n",
			lang:   LangTypeScript,
		},
		{
			name:   "tsx",
			source: "export const C = (p: { n: string }) => <span>{p.n}</span>;\n",
			lang:   LangTSX,
		},
	}

	p := New()
	defer p.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse([]byte(tt.source), tt.lang, "test.file")
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}

			if result.Tree == nil {
				t.Fatal("result.Tree is nil")
			}
			if result.Language != tt.lang {
				t.Errorf("result.Language = %v, want %v", result.Language, tt.lang)
			}
			if string(result.Source) != tt.source {
				t.Error("result.Source doesn't match input")
			}
			if result.Path != "test.file" {
				t.Errorf("result.Path = %v, want test.file", result.Path)
			}
			if result.Tree.RootNode().ChildCount() == 0 {
				t.Error("root node has no children")
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	p := New()
	defer p.Close()

	source := "const a = require('./a');\nfunction (\n"
	_, err := p.Parse([]byte(source), LangJavaScript, "broken.js")
	if err == nil {
		t.Fatal("Parse() should fail for malformed source")
	}
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("error = %v, want ErrSyntax", err)
	}

	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("error %T is not *SyntaxError", err)
	}
	if serr.Path != "broken.js" {
		t.Errorf("SyntaxError.Path = %q, want broken.js", serr.Path)
	}
	if serr.Line < 2 {
		t.Errorf("SyntaxError.Line = %d, want >= 2", serr.Line)
	}
}

func TestParseJSON(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte(`{"name": "pkg", "version": "1.0.0"}`), LangJSON, "data.json")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if result.Tree != nil {
		t.Error("JSON modules should not carry a syntax tree")
	}

	_, err = p.Parse([]byte(`{"name": `), LangJSON, "bad.json")
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("invalid JSON error = %v, want ErrSyntax", err)
	}
}

func TestWalk(t *testing.T) {
	p := New()
	defer p.Close()

	source := "import a from './a';\nconst b = require('./b');\n"
	result, err := p.Parse([]byte(source), LangJavaScript, "test.js")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	count := 0
	Walk(result.Tree.RootNode(), result.Source, func(node *sitter.Node, source []byte) bool {
		count++
		return true
	})
	if count == 0 {
		t.Error("Walk() visited no nodes")
	}

	found := make(map[string]bool)
	WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		found[nodeType] = true
		return true
	})
	for _, expected := range []string{"program", "import_statement", "call_expression", "string"} {
		if !found[expected] {
			t.Errorf("Expected node type %q not found", expected)
		}
	}

	var calls []*sitter.Node
	WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, _ []byte) bool {
		if nodeType == "call_expression" {
			calls = append(calls, node)
		}
		return true
	})
	if len(calls) != 1 {
		t.Fatalf("found %d call_expression nodes, want 1", len(calls))
	}
	if got := GetNodeText(calls[0], result.Source); got != "require('./b')" {
		t.Errorf("GetNodeText() = %q, want require('./b')", got)
	}
}

func TestWalkNil(t *testing.T) {
	Walk(nil, nil, func(node *sitter.Node, source []byte) bool {
		t.Error("Visitor should not be called for nil node")
		return true
	})
	WalkTyped(nil, nil, func(node *sitter.Node, nodeType string, source []byte) bool {
		t.Error("Visitor should not be called for nil node")
		return true
	})
}

func TestGetNodeTextNil(t *testing.T) {
	if got := GetNodeText(nil, []byte("source")); got != "" {
		t.Errorf("GetNodeText(nil) = %q, want empty", got)
	}
}
