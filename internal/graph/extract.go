package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// emitter accumulates the entities and edges produced while walking one
// tree. Dedup happens later in the Graph; the emitter only guarantees that
// every edge endpoint it references is also emitted as an entity.
type emitter struct {
	entities []Entity
	edges    []Edge
}

// entity records e and returns its ID for edge wiring.
func (em *emitter) entity(e Entity) string {
	em.entities = append(em.entities, e)
	return e.ID
}

func (em *emitter) edge(source, target string, kind EdgeKind) {
	em.edges = append(em.edges, Edge{Source: source, Target: target, Kind: kind})
}

// skipName filters reserved and system identifiers (leading underscore),
// plus empty spellings from anonymous constructs.
func skipName(name string) bool {
	return name == "" || strings.HasPrefix(name, "_")
}

// isFunctionScope reports whether a scope ID names a function entity.
func isFunctionScope(scope string) bool {
	return strings.HasPrefix(scope, "function:")
}

// scopeTypeName returns the type name when scope is a struct/class scope.
func scopeTypeName(scope string) (string, bool) {
	name, ok := strings.CutPrefix(scope, "type:")
	return name, ok
}

// declaratorName unwraps a declarator chain down to the declared name.
// Returns "" for declarators that do not bottom out in a plain name
// (e.g. abstract declarators).
func declaratorName(n *tree_sitter.Node, source []byte) string {
	for n != nil {
		switch n.Kind() {
		case "identifier", "field_identifier", "qualified_identifier",
			"destructor_name", "operator_name":
			return n.Utf8Text(source)
		case "function_declarator", "pointer_declarator", "init_declarator",
			"array_declarator", "parenthesized_declarator", "reference_declarator":
			next := n.ChildByFieldName("declarator")
			if next == nil {
				next = n.NamedChild(0)
			}
			n = next
		default:
			return ""
		}
	}
	return ""
}

// hasFunctionDeclarator reports whether the declarator chain contains a
// function declarator, i.e. declares a function rather than an object.
func hasFunctionDeclarator(n *tree_sitter.Node) bool {
	for n != nil {
		switch n.Kind() {
		case "function_declarator":
			return true
		case "pointer_declarator", "init_declarator", "parenthesized_declarator",
			"reference_declarator":
			next := n.ChildByFieldName("declarator")
			if next == nil {
				next = n.NamedChild(0)
			}
			n = next
		default:
			return false
		}
	}
	return false
}

// emitCall emits a calls edge from the enclosing function to the callee.
// Callees that are plain (possibly qualified) identifiers resolve by name;
// anything else (function pointers, member calls through objects) becomes a
// stub function named after the expression text, so the edge is recorded
// rather than dropped.
func emitCall(n *tree_sitter.Node, source []byte, em *emitter, scope string) {
	if !isFunctionScope(scope) {
		return
	}
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	var callee string
	switch fn.Kind() {
	case "identifier", "qualified_identifier", "field_identifier":
		callee = fn.Utf8Text(source)
	default:
		callee = collapseText(fn.Utf8Text(source))
	}
	if skipName(callee) {
		return
	}
	target := em.entity(NewEntity(EntityKindFunction, callee, ""))
	em.edge(scope, target, EdgeKindCalls)
}

// emitTypeRef emits a type-reference entity (Type for plain type names,
// Struct for bodiless struct/class sightings, so references and the real
// definition share a kind) and a uses edge from the innermost enclosing
// function or struct scope. At file scope only the entity is recorded.
func emitTypeRef(kind EntityKind, name string, em *emitter, scope string) {
	if skipName(name) {
		return
	}
	id := em.entity(NewEntity(kind, name, ""))
	if scope != "" {
		em.edge(scope, id, EdgeKindUses)
	}
}

// collapseText normalizes an expression's text into a single-line name.
func collapseText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 80 {
		text = text[:80]
	}
	return text
}
