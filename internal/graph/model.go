package graph

import (
	"errors"
	"fmt"
	"sync"
)

// ErrFrozen is returned by write operations after Freeze.
var ErrFrozen = errors.New("graph is frozen")

// KindConflict records a sighting of an existing entity ID under a
// different kind. First writer wins; the conflict is a warning, not an
// error.
type KindConflict struct {
	ID       string
	Kept     EntityKind
	Rejected EntityKind
}

func (c KindConflict) String() string {
	return fmt.Sprintf("entity kind conflict on %s: kept %s, rejected %s", c.ID, c.Kept, c.Rejected)
}

// Graph is the in-memory code graph: entity ID -> Entity plus a
// deduplicated edge set. Thread-safe via sync.RWMutex, though the pipeline
// merges sequentially; the lock also covers concurrent reads from the MCP
// tool handlers.
type Graph struct {
	mu        sync.RWMutex
	entities  map[string]Entity
	edges     map[Edge]struct{}
	conflicts []KindConflict
	frozen    bool
}

// New returns an empty, writable Graph.
func New() *Graph {
	return &Graph{
		entities: make(map[string]Entity),
		edges:    make(map[Edge]struct{}),
	}
}

// UpsertEntity inserts the entity if its ID is unseen and is a no-op
// otherwise. A re-sighting under a different kind keeps the first entity
// and records a KindConflict. Returns true if the entity was inserted.
func (g *Graph) UpsertEntity(e Entity) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen {
		return false, fmt.Errorf("upsert %s: %w", e.ID, ErrFrozen)
	}
	if existing, ok := g.entities[e.ID]; ok {
		if existing.Kind != e.Kind {
			g.conflicts = append(g.conflicts, KindConflict{
				ID:       e.ID,
				Kept:     existing.Kind,
				Rejected: e.Kind,
			})
		}
		return false, nil
	}
	g.entities[e.ID] = e
	return true, nil
}

// AddEdge inserts the (source, target, kind) edge unless an identical edge
// already exists. Both endpoints must have been upserted first.
func (g *Graph) AddEdge(source, target string, kind EdgeKind) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen {
		return fmt.Errorf("add edge %s->%s: %w", source, target, ErrFrozen)
	}
	if _, ok := g.entities[source]; !ok {
		return fmt.Errorf("add edge: unknown source entity %s", source)
	}
	if _, ok := g.entities[target]; !ok {
		return fmt.Errorf("add edge: unknown target entity %s", target)
	}
	g.edges[Edge{Source: source, Target: target, Kind: kind}] = struct{}{}
	return nil
}

// Freeze closes the graph for writes. Idempotent.
func (g *Graph) Freeze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frozen = true
}

// Frozen reports whether the graph has been closed for writes.
func (g *Graph) Frozen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frozen
}

// Entity returns the entity for the given ID, or nil if not present.
func (g *Graph) Entity(id string) *Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entities[id]
	if !ok {
		return nil
	}
	return &e
}

// Entities returns a copy of all entities, in map order.
func (g *Graph) Entities() []Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Entity, 0, len(g.entities))
	for _, e := range g.entities {
		out = append(out, e)
	}
	return out
}

// Edges returns a copy of all edges, in map order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		out = append(out, e)
	}
	return out
}

// EdgesFrom returns all edges whose source is id, optionally filtered by
// kind (empty kind matches all).
func (g *Graph) EdgesFrom(id string, kind EdgeKind) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Edge
	for e := range g.edges {
		if e.Source != id {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Conflicts returns the kind conflicts observed so far.
func (g *Graph) Conflicts() []KindConflict {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]KindConflict, len(g.conflicts))
	copy(out, g.conflicts)
	return out
}

// Stats returns entity counts by kind and the edge count.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var s Stats
	for _, e := range g.entities {
		switch e.Kind {
		case EntityKindFunction:
			s.FunctionCount++
		case EntityKindStruct:
			s.StructCount++
		case EntityKindType:
			s.TypeCount++
		case EntityKindFile:
			s.FileCount++
		}
	}
	s.EdgeCount = len(g.edges)
	return s
}
