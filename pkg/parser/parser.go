package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported module language.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJSON       Language = "json"
	LangUnknown    Language = "unknown"
)

// ErrUnsupportedLanguage is returned when parsing a file with an unsupported language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ErrSyntax is returned when the source contains malformed syntax.
var ErrSyntax = errors.New("syntax error")

// SourceExtensions are the extensions treated as JavaScript sources by default.
var SourceExtensions = []string{".js", ".jsx", ".es6", ".es", ".mjs", ".cjs"}

// Parser wraps tree-sitter for JavaScript-family parsing.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
// Tree is nil for JSON modules.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// SyntaxError reports the first malformed node in a source file.
type SyntaxError struct {
	Path   string
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Line, e.Column)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Parse parses source code with a specified language.
// Malformed source yields a *SyntaxError.
func (p *Parser) Parse(source []byte, lang Language, path string) (*ParseResult, error) {
	if lang == LangJSON {
		if !json.Valid(source) {
			return nil, &SyntaxError{Path: path, Line: 1, Column: 1}
		}
		return &ParseResult{Language: lang, Source: source, Path: path}, nil
	}

	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		serr := &SyntaxError{Path: path, Line: 1, Column: 1}
		if bad := FirstErrorNode(root); bad != nil {
			pt := bad.StartPoint()
			serr.Line = int(pt.Row) + 1
			serr.Column = int(pt.Column) + 1
		}
		return nil, serr
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// GetTreeSitterLanguage returns the tree-sitter language for a Language enum.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs", ".es6", ".es":
		// tree-sitter-javascript parses JSX natively
		return LangJavaScript
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".json":
		return LangJSON
	default:
		return LangUnknown
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// FirstErrorNode returns the first ERROR or MISSING node in document order.
func FirstErrorNode(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	Walk(root, nil, func(node *sitter.Node, _ []byte) bool {
		if found != nil {
			return false
		}
		if node.Type() == "ERROR" || node.IsMissing() {
			found = node
			return false
		}
		return node.HasError()
	})
	return found
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// TypedNodeVisitor visits AST nodes with pre-cached node type to avoid CGO overhead.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// Walk traverses the AST calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// WalkTyped traverses the AST with cached node types to reduce CGO overhead.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
