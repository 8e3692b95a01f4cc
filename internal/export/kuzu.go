//go:build cgo

package export

import (
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/hyz0906/graphrag-demo/internal/graph"
)

// WriteKuzu exports a frozen graph into a file-based KuzuDB at dbPath,
// replacing any previous database there. This persists the same node/edge
// data as the JSON artifact for consumers that want Cypher access; the
// JSON artifact remains the primary output.
func WriteKuzu(g *graph.Graph, dbPath string) error {
	if !g.Frozen() {
		return ErrNotFrozen
	}

	// Remove old database to avoid stale data.
	os.RemoveAll(dbPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("kuzu: create parent directory: %w", err)
	}

	db, err := kuzu.OpenDatabase(dbPath, kuzu.DefaultSystemConfig())
	if err != nil {
		return fmt.Errorf("kuzu: open database: %w", err)
	}
	defer db.Close()

	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		return fmt.Errorf("kuzu: open connection: %w", err)
	}
	defer conn.Close()

	for _, stmt := range ddlStatements {
		res, err := conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}

	for _, node := range g.Entities() {
		err := exec(conn,
			"CREATE (e:Entity {id: $id, kind: $kind, name: $name, location: $loc})",
			map[string]any{
				"id":   node.ID,
				"kind": string(node.Kind),
				"name": node.Name,
				"loc":  node.Location,
			})
		if err != nil {
			return fmt.Errorf("kuzu: add entity %s: %w", node.ID, err)
		}
	}

	for _, edge := range g.Edges() {
		err := exec(conn,
			`MATCH (a:Entity {id: $src}), (b:Entity {id: $dst})
			 CREATE (a)-[:REL {kind: $kind}]->(b)`,
			map[string]any{
				"src":  edge.Source,
				"dst":  edge.Target,
				"kind": string(edge.Kind),
			})
		if err != nil {
			return fmt.Errorf("kuzu: add edge %s->%s: %w", edge.Source, edge.Target, err)
		}
	}

	return nil
}

// ddlStatements defines the Cypher DDL for the exported graph. The node
// table precedes the relationship table.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Entity(
		id STRING,
		kind STRING,
		name STRING,
		location STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS REL(FROM Entity TO Entity, kind STRING)`,
}

func exec(conn *kuzu.Connection, cypher string, params map[string]any) error {
	stmt, err := conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	res, err := conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	res.Close()
	return nil
}
