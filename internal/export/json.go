// Package export renders a frozen graph to its portable output formats:
// the versioned JSON artifact consumed by the downstream indexing engine,
// and an optional KuzuDB database.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hyz0906/graphrag-demo/internal/graph"
)

// SchemaVersion is the artifact schema version. Bump on breaking changes
// to the node/edge shape.
const SchemaVersion = 1

// ErrNotFrozen is returned when serialization is attempted on a graph that
// is still open for writes. Programming-contract violation, fatal.
var ErrNotFrozen = errors.New("cannot serialize a non-frozen graph")

// Document is the top-level JSON artifact.
type Document struct {
	SchemaVersion int            `json:"schemaVersion"`
	Nodes         []graph.Entity `json:"nodes"`
	Edges         []graph.Edge   `json:"edges"`
}

// MarshalGraph renders a frozen graph as a JSON document. Output is stable
// across runs for identical input: nodes sort by id, edges by
// (source, target, kind).
func MarshalGraph(g *graph.Graph) ([]byte, error) {
	if !g.Frozen() {
		return nil, ErrNotFrozen
	}

	nodes := g.Entities()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := g.Edges()
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Kind < b.Kind
	})

	doc := Document{
		SchemaVersion: SchemaVersion,
		Nodes:         nodes,
		Edges:         edges,
	}
	if doc.Nodes == nil {
		doc.Nodes = []graph.Entity{}
	}
	if doc.Edges == nil {
		doc.Edges = []graph.Edge{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON serializes the graph and writes the artifact to path, creating
// parent directories as needed.
func WriteJSON(g *graph.Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
