package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// cppExtractor extracts entities and edges from C++ translation units.
// On top of the C dispatch it handles classes, base-class clauses, and
// member functions (in-class and out-of-class definitions).
type cppExtractor struct{}

func (e *cppExtractor) Extract(root *tree_sitter.Node, source []byte, unit Entity) ([]Entity, []Edge) {
	em := &emitter{}
	e.walk(root, source, unit.Location, em, "")
	return em.entities, em.edges
}

func (e *cppExtractor) walk(n *tree_sitter.Node, source []byte, path string, em *emitter, scope string) {
	switch n.Kind() {
	case "function_definition":
		if e.emitFunction(n, n.ChildByFieldName("declarator"), source, path, em, scope) {
			return
		}

	case "declaration", "field_declaration":
		if decl := n.ChildByFieldName("declarator"); decl != nil && hasFunctionDeclarator(decl) {
			if e.emitFunction(n, decl, source, path, em, scope) {
				return
			}
		}

	case "class_specifier", "struct_specifier", "union_specifier":
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			name := nameNode.Utf8Text(source)
			if skipName(name) {
				return
			}
			body := n.ChildByFieldName("body")
			if body == nil {
				emitTypeRef(EntityKindStruct, name, em, scope)
				return
			}
			classID := em.entity(NewEntity(EntityKindStruct, name, path))
			e.emitBases(n, source, em, classID)
			e.walk(body, source, path, em, classID)
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

	case "preproc_include":
		return
	}

	e.walkChildren(n, source, path, em, scope)
}

// emitFunction handles function and method declarations and definitions.
// Methods are qualified as Class::name; a contains edge links the owning
// struct/class (materialized as a stub for out-of-class definitions whose
// class lives in an unparsed header). Returns false when no name could be
// extracted, in which case the caller falls back to the default walk.
func (e *cppExtractor) emitFunction(n, decl *tree_sitter.Node, source []byte, path string, em *emitter, scope string) bool {
	name := declaratorName(decl, source)
	if skipName(name) {
		return false
	}

	owner := ""
	qualified := name
	if idx := strings.LastIndex(name, "::"); idx != -1 {
		owner = name[:idx]
	} else if className, ok := scopeTypeName(scope); ok {
		owner = className
		qualified = className + "::" + name
	}

	fnID := em.entity(NewEntity(EntityKindFunction, qualified, path))
	if owner != "" && !skipName(owner) {
		ownerID := em.entity(NewEntity(EntityKindStruct, owner, ""))
		em.edge(ownerID, fnID, EdgeKindContains)
	}
	e.walkChildren(n, source, path, em, fnID)
	return true
}

// emitBases walks a class node's base_class_clause and emits inherits
// edges. Unknown bases (declared in unparsed headers) are materialized as
// stub structs so the edges are not dropped.
func (e *cppExtractor) emitBases(class *tree_sitter.Node, source []byte, em *emitter, classID string) {
	for i := uint(0); i < class.ChildCount(); i++ {
		child := class.Child(i)
		if child == nil || child.Kind() != "base_class_clause" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			base := child.NamedChild(j)
			if base == nil {
				continue
			}
			var name string
			switch base.Kind() {
			case "type_identifier", "qualified_identifier":
				name = base.Utf8Text(source)
			case "template_type":
				if nameNode := base.ChildByFieldName("name"); nameNode != nil {
					name = nameNode.Utf8Text(source)
				}
			default:
				continue // access specifiers, virtual
			}
			if skipName(name) {
				continue
			}
			baseID := em.entity(NewEntity(EntityKindStruct, name, ""))
			em.edge(classID, baseID, EdgeKindInherits)
		}
	}
}

func (e *cppExtractor) walkChildren(n *tree_sitter.Node, source []byte, path string, em *emitter, scope string) {
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			e.walk(child, source, path, em, scope)
		}
	}
}
