package graph

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// extractor walks a parsed tree and emits entities and edges.
type extractor interface {
	Extract(root *tree_sitter.Node, source []byte, unit Entity) ([]Entity, []Edge)
}

// TreeSitterParser implements Parser using the C and C++ tree-sitter
// grammars. A new tree-sitter parser is created per Parse call, so the type
// is safe for concurrent Parse calls from multiple workers.
type TreeSitterParser struct {
	languages  map[Language]*tree_sitter.Language
	extractors map[Language]extractor
}

// Compile-time assertion: *TreeSitterParser satisfies Parser.
var _ Parser = (*TreeSitterParser)(nil)

// NewTreeSitterParser creates a TreeSitterParser with the C and C++
// grammars registered.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{
		languages: map[Language]*tree_sitter.Language{
			LangC:   tree_sitter.NewLanguage(tree_sitter_c.Language()),
			LangCPP: tree_sitter.NewLanguage(tree_sitter_cpp.Language()),
		},
		extractors: map[Language]extractor{
			LangC:   &cExtractor{},
			LangCPP: &cppExtractor{},
		},
	}
}

// Parse parses one translation unit and extracts its entities, edges,
// include list, and diagnostics.
func (p *TreeSitterParser) Parse(_ context.Context, path string, source []byte, lang Language) (*ExtractResult, error) {
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	ext := p.extractors[lang]

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnparseableUnit)
	}
	defer tree.Close()

	root := tree.RootNode()
	unit := NewEntity(EntityKindFile, path, path)
	entities, edges := ext.Extract(root, source, unit)

	return &ExtractResult{
		Unit:        unit,
		Entities:    entities,
		Edges:       edges,
		Includes:    ScanIncludes(source),
		Diagnostics: collectDiagnostics(root, source),
	}, nil
}

// SupportedLanguages returns the languages this parser can handle.
func (p *TreeSitterParser) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(p.languages))
	for l := range p.languages {
		langs = append(langs, l)
	}
	return langs
}

// Close is a no-op because parsers are created per Parse call.
func (p *TreeSitterParser) Close() error {
	return nil
}

var includeRegex = regexp.MustCompile(`^\s*#\s*include\s*([<"])([^>"]+)[>"]`)

// ScanIncludes returns the unit's direct include directives via a textual
// line scan, independent of AST traversal.
func ScanIncludes(source []byte) []Include {
	var includes []Include
	scanner := bufio.NewScanner(bytes.NewReader(source))
	line := 0
	for scanner.Scan() {
		line++
		m := includeRegex.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		includes = append(includes, Include{
			Path:   m[2],
			System: m[1] == "<",
			Line:   line,
		})
	}
	return includes
}

// maxDiagnostics caps the number of syntax diagnostics collected per unit.
const maxDiagnostics = 50

// collectDiagnostics walks the tree for ERROR and MISSING nodes. These are
// recorded but non-fatal: extraction proceeds on the rest of the tree.
func collectDiagnostics(root *tree_sitter.Node, source []byte) []Diagnostic {
	var diags []Diagnostic
	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		if len(diags) >= maxDiagnostics || !n.HasError() {
			return
		}
		pos := n.StartPosition()
		switch {
		case n.IsError():
			diags = append(diags, Diagnostic{
				Severity: "error",
				Message:  "syntax error near " + snippet(n.Utf8Text(source)),
				Line:     int(pos.Row) + 1,
				Column:   int(pos.Column) + 1,
			})
			return
		case n.IsMissing():
			diags = append(diags, Diagnostic{
				Severity: "warning",
				Message:  "missing " + n.Kind(),
				Line:     int(pos.Row) + 1,
				Column:   int(pos.Column) + 1,
			})
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil {
				visit(child)
			}
		}
	}
	visit(root)
	return diags
}

// snippet shortens node text for diagnostic messages.
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return "'" + text + "'"
}
