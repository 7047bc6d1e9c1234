// Package imports extracts module dependency references from JavaScript sources.
package imports

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/panbanda/deadfiles/pkg/models"
	"github.com/panbanda/deadfiles/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// ErrParse is returned when a module cannot be parsed.
var ErrParse = errors.New("parse failure")

// References holds the dependency references declared by a single module.
type References struct {
	// Specifiers are literal module specifiers in source order.
	Specifiers []string
	// Dynamic marks references whose specifier is not a string literal.
	Dynamic []models.Location
}

// HasDynamic reports whether any reference could not be determined statically.
func (r *References) HasDynamic() bool {
	return len(r.Dynamic) > 0
}

// Analyzer parses module sources and extracts their references.
// An Analyzer is not safe for concurrent use.
type Analyzer struct {
	parser *parser.Parser
}

// New creates a new references analyzer.
func New() *Analyzer {
	return &Analyzer{parser: parser.New()}
}

// AnalyzeContent parses content as the module at path.
// The language is chosen from the path extension. Malformed or unsupported
// sources return an error wrapping ErrParse.
func (a *Analyzer) AnalyzeContent(path string, content []byte) (*References, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, parser.ErrUnsupportedLanguage)
	}

	result, err := a.parser.Parse(content, lang, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if result.Tree != nil {
		defer result.Tree.Close()
	}

	return Extract(result), nil
}

// Close releases parser resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}

// Extract collects references from a parse result.
// Recognized shapes are require calls with a single argument, import
// statements and re-exports carrying a from clause.
func Extract(result *parser.ParseResult) *References {
	refs := &References{
		Specifiers: []string{},
		Dynamic:    []models.Location{},
	}
	if result == nil || result.Tree == nil {
		return refs
	}

	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		switch nodeType {
		case "call_expression":
			if arg := requireArgument(node, source); arg != nil {
				refs.add(arg, result.Path, source)
			}
		case "import_statement", "export_statement", "import_require_clause":
			if src := node.ChildByFieldName("source"); src != nil {
				refs.add(src, result.Path, source)
			}
		}
		return true
	})

	return refs
}

func (r *References) add(node *sitter.Node, path string, source []byte) {
	if node.Type() == "string" {
		r.Specifiers = append(r.Specifiers, stringValue(node, source))
		return
	}
	pt := node.StartPoint()
	r.Dynamic = append(r.Dynamic, models.Location{
		File:   path,
		Line:   int(pt.Row) + 1,
		Column: int(pt.Column) + 1,
	})
}

// requireArgument returns the sole argument of a require(...) call, or nil
// when node is any other call.
func requireArgument(node *sitter.Node, source []byte) *sitter.Node {
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" || parser.GetNodeText(fn, source) != "require" {
		return nil
	}
	args := node.ChildByFieldName("arguments")
	if args == nil || args.Type() != "arguments" {
		return nil
	}

	var arg *sitter.Node
	count := 0
	for i := range int(args.NamedChildCount()) {
		child := args.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		arg = child
		count++
	}
	if count != 1 {
		return nil
	}
	return arg
}

// stringValue returns the decoded value of a string literal node.
func stringValue(node *sitter.Node, source []byte) string {
	text := parser.GetNodeText(node, source)
	if len(text) < 2 {
		return ""
	}
	return unescape(text[1 : len(text)-1])
}

// unescape decodes JavaScript string escape sequences.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			if r, ok := parseHex(s, i+1, 2); ok {
				b.WriteRune(r)
				i += 2
			} else {
				b.WriteByte('x')
			}
		case 'u':
			r, n := parseUnicode(s, i+1)
			if n == 0 {
				b.WriteByte('u')
				continue
			}
			b.WriteRune(r)
			i += n
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// parseUnicode decodes the digits of a \u escape starting at i and returns
// the rune and the number of bytes consumed.
func parseUnicode(s string, i int) (rune, int) {
	if i < len(s) && s[i] == '{' {
		end := strings.IndexByte(s[i:], '}')
		if end < 2 {
			return 0, 0
		}
		v, err := strconv.ParseUint(s[i+1:i+end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0
		}
		return rune(v), end + 1
	}
	r, ok := parseHex(s, i, 4)
	if !ok {
		return 0, 0
	}
	return r, 4
}

func parseHex(s string, i, n int) (rune, bool) {
	if i+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i:i+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
