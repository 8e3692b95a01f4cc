package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// cExtractor extracts entities and edges from C translation units.
type cExtractor struct{}

func (e *cExtractor) Extract(root *tree_sitter.Node, source []byte, unit Entity) ([]Entity, []Edge) {
	em := &emitter{}
	e.walk(root, source, unit.Location, em, "")
	return em.entities, em.edges
}

// walk visits nodes depth-first in source order. scope is the entity ID of
// the innermost enclosing function or struct, or "" at file scope.
func (e *cExtractor) walk(n *tree_sitter.Node, source []byte, path string, em *emitter, scope string) {
	switch n.Kind() {
	case "function_definition":
		name := declaratorName(n.ChildByFieldName("declarator"), source)
		if !skipName(name) {
			fnID := em.entity(NewEntity(EntityKindFunction, name, path))
			// Parameter and return types inside the signature attach to
			// the function via uses edges.
			e.walkChildren(n, source, path, em, fnID)
			return
		}

	case "declaration":
		if decl := n.ChildByFieldName("declarator"); decl != nil && hasFunctionDeclarator(decl) {
			name := declaratorName(decl, source)
			if !skipName(name) {
				fnID := em.entity(NewEntity(EntityKindFunction, name, path))
				e.walkChildren(n, source, path, em, fnID)
				return
			}
		}

	case "struct_specifier", "union_specifier":
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			name := nameNode.Utf8Text(source)
			if skipName(name) {
				return
			}
			if body := n.ChildByFieldName("body"); body != nil {
				structID := em.entity(NewEntity(EntityKindStruct, name, path))
				e.walk(body, source, path, em, structID)
			} else {
				// Bodiless "struct Foo" is a reference to the record type.
				emitTypeRef(EntityKindStruct, name, em, scope)
			}
			return
		}

	case "enum_specifier":
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			name := nameNode.Utf8Text(source)
			if !skipName(name) {
				if n.ChildByFieldName("body") != nil {
					em.entity(NewEntity(EntityKindType, name, path))
				} else {
					emitTypeRef(EntityKindType, name, em, scope)
				}
			}
			return
		}

	case "type_identifier":
		emitTypeRef(EntityKindType, n.Utf8Text(source), em, scope)
		return

	case "call_expression":
		emitCall(n, source, em, scope)
		// Keep walking: arguments may contain nested calls.

	case "preproc_include":
		// Include directives come from the textual scan.
		return
	}

	e.walkChildren(n, source, path, em, scope)
}

func (e *cExtractor) walkChildren(n *tree_sitter.Node, source []byte, path string, em *emitter, scope string) {
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			e.walk(child, source, path, em, scope)
		}
	}
}
