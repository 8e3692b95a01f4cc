package graph

import (
	"context"
	"errors"
	"strings"
)

// ErrUnparseableUnit is returned when the front end produced no tree at all
// for a translation unit. It is fatal for that file only; the pipeline
// continues with the remaining files.
var ErrUnparseableUnit = errors.New("unparseable translation unit")

// Diagnostic is a non-fatal problem reported by the front end while
// parsing a translation unit.
type Diagnostic struct {
	Severity string `json:"severity"` // "error" or "warning"
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Include is one textual include directive of a translation unit, collected
// independently of AST traversal.
type Include struct {
	Path   string `json:"path"`   // as written between the delimiters
	System bool   `json:"system"` // angle-bracket form
	Line   int    `json:"line"`
}

// ExtractResult holds everything extracted from a single translation unit.
type ExtractResult struct {
	Unit        Entity       `json:"unit"` // file entity for the unit itself
	Entities    []Entity     `json:"entities"`
	Edges       []Edge       `json:"edges"`
	Includes    []Include    `json:"includes"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Parser extracts entities and relationships from translation units.
// Implementations: TreeSitterParser (production), stub parsers in tests.
type Parser interface {
	// Parse parses one translation unit and walks its tree. path is the
	// unit's project-relative path, source its content.
	Parse(ctx context.Context, path string, source []byte, lang Language) (*ExtractResult, error)

	// SupportedLanguages returns the languages this parser can handle.
	SupportedLanguages() []Language

	// Close releases parser resources.
	Close() error
}

// cppExtensions are source extensions compiled as C++.
var cppExtensions = map[string]bool{
	".cc": true, ".cpp": true, ".cxx": true, ".c++": true,
	".hh": true, ".hpp": true, ".hxx": true,
}

// DetectLanguage picks the grammar for a parse job from the file extension
// and the recorded compile arguments. Flags win over the extension so that
// a .c file compiled with `-x c++` parses with the C++ grammar, matching
// the original build.
func DetectLanguage(file string, args []string) Language {
	lang := LangC
	if dot := strings.LastIndex(file, "."); dot != -1 {
		if cppExtensions[strings.ToLower(file[dot:])] {
			lang = LangCPP
		}
	}
	for i, a := range args {
		switch {
		case a == "-x" && i+1 < len(args):
			switch args[i+1] {
			case "c++":
				lang = LangCPP
			case "c":
				lang = LangC
			}
		case strings.HasPrefix(a, "-std=c++"), strings.HasPrefix(a, "-std=gnu++"):
			lang = LangCPP
		}
	}
	return lang
}
