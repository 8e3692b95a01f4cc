package graph

// --- Enums ---

// EntityKind classifies nodes in the code graph.
type EntityKind string

const (
	EntityKindFunction EntityKind = "function"
	EntityKindStruct   EntityKind = "struct"
	EntityKindType     EntityKind = "type"
	EntityKindFile     EntityKind = "file"
)

// EdgeKind classifies relationships between entities.
type EdgeKind string

const (
	EdgeKindCalls    EdgeKind = "calls"
	EdgeKindContains EdgeKind = "contains"
	EdgeKindInherits EdgeKind = "inherits"
	EdgeKindUses     EdgeKind = "uses"
	EdgeKindIncludes EdgeKind = "includes"
)

// Language identifies a source language for parsing.
type Language string

const (
	LangC   Language = "c"
	LangCPP Language = "cpp"
)

// --- Models ---

// Entity is a named code construct: a function, struct/class, referenced
// type, or file. Entities are immutable once inserted into a Graph; later
// sightings only add relationships.
type Entity struct {
	ID       string     `json:"id"`
	Kind     EntityKind `json:"kind"`
	Name     string     `json:"name"`
	Location string     `json:"location,omitempty"`
}

// Edge is a directed, typed relationship between two entity IDs.
// Self-loops are allowed; duplicate (source, target, kind) triples collapse.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
}

// Stats summarizes a built graph.
type Stats struct {
	FunctionCount int `json:"functionCount"`
	StructCount   int `json:"structCount"`
	TypeCount     int `json:"typeCount"`
	FileCount     int `json:"fileCount"`
	EdgeCount     int `json:"edgeCount"`
}

// EntityID derives the stable identifier for an entity. Struct and Type
// entities share the "type" namespace so that a base-class stub, a uses
// target, and the real definition of the same name collapse to one node.
// Functions and files each have their own namespace, matching C's separate
// tag and ordinary identifier namespaces.
func EntityID(kind EntityKind, name string) string {
	switch kind {
	case EntityKindStruct, EntityKindType:
		return "type:" + name
	case EntityKindFile:
		return "file:" + name
	default:
		return "function:" + name
	}
}

// NewEntity builds an Entity with its derived ID.
func NewEntity(kind EntityKind, name, location string) Entity {
	return Entity{
		ID:       EntityID(kind, name),
		Kind:     kind,
		Name:     name,
		Location: location,
	}
}
