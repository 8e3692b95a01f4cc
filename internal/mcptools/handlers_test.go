package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyz0906/graphrag-demo/internal/graph"
)

// setupProject writes a small C project plus compilation database.
func setupProject(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	src := `
struct Person { char* name; };
void greet(struct Person* p) {}
int main() { greet(0); return 0; }
`
	main := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(main, []byte(src), 0o644))

	db := fmt.Sprintf(`[{"directory": %q, "command": "gcc -c main.c", "file": %q}]`, dir, main)
	dbPath := filepath.Join(dir, "compile_commands.json")
	require.NoError(t, os.WriteFile(dbPath, []byte(db), 0o644))
	return dir, dbPath
}

func newService(t *testing.T) *GraphService {
	t.Helper()
	parser := graph.NewTreeSitterParser()
	t.Cleanup(func() { parser.Close() })
	return NewGraphService(parser)
}

func extract(t *testing.T, svc *GraphService, dir, dbPath string) ExtractGraphOutput {
	t.Helper()
	_, out, err := svc.ExtractGraph(context.Background(), nil, ExtractGraphInput{
		Database:    dbPath,
		ProjectRoot: dir,
	})
	require.NoError(t, err)
	return out
}

func TestExtractGraph(t *testing.T) {
	dir, dbPath := setupProject(t)
	svc := newService(t)

	out := extract(t, svc, dir, dbPath)
	assert.Equal(t, 1, out.Parsed)
	assert.Zero(t, out.Failed)
	assert.Equal(t, 2, out.Stats.FunctionCount)
	assert.Equal(t, 1, out.Stats.StructCount)
}

func TestExtractGraph_RequiresDatabase(t *testing.T) {
	svc := newService(t)
	_, _, err := svc.ExtractGraph(context.Background(), nil, ExtractGraphInput{})
	assert.Error(t, err)
}

func TestExtractGraph_WritesArtifact(t *testing.T) {
	dir, dbPath := setupProject(t)
	svc := newService(t)

	outPath := filepath.Join(dir, "out", "graph.json")
	_, _, err := svc.ExtractGraph(context.Background(), nil, ExtractGraphInput{
		Database:    dbPath,
		ProjectRoot: dir,
		OutputPath:  outPath,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var doc struct {
		SchemaVersion int `json:"schemaVersion"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.SchemaVersion)
}

func TestQueryEntities(t *testing.T) {
	dir, dbPath := setupProject(t)
	svc := newService(t)
	extract(t, svc, dir, dbPath)

	_, out, err := svc.QueryEntities(context.Background(), nil, QueryEntitiesInput{Query: "gre"})
	require.NoError(t, err)
	require.Len(t, out.Entities, 1)
	assert.Equal(t, "greet", out.Entities[0].Name)

	// Kind filter.
	_, out, err = svc.QueryEntities(context.Background(), nil, QueryEntitiesInput{Query: "", Kind: "struct"})
	require.NoError(t, err)
	require.Len(t, out.Entities, 1)
	assert.Equal(t, "Person", out.Entities[0].Name)
}

func TestQueryEntities_BeforeExtract(t *testing.T) {
	svc := newService(t)
	_, _, err := svc.QueryEntities(context.Background(), nil, QueryEntitiesInput{Query: "x"})
	assert.Error(t, err)
}

func TestGetRelations(t *testing.T) {
	dir, dbPath := setupProject(t)
	svc := newService(t)
	extract(t, svc, dir, dbPath)

	_, out, err := svc.GetRelations(context.Background(), nil, GetRelationsInput{
		EntityID: "function:main",
		Kind:     "calls",
	})
	require.NoError(t, err)
	require.Len(t, out.Edges, 1)
	assert.Equal(t, "function:greet", out.Edges[0].Target)

	_, _, err = svc.GetRelations(context.Background(), nil, GetRelationsInput{EntityID: "function:ghost"})
	assert.Error(t, err)
}

func TestGraphStats(t *testing.T) {
	dir, dbPath := setupProject(t)
	svc := newService(t)
	extract(t, svc, dir, dbPath)

	_, out, err := svc.GraphStats(context.Background(), nil, GraphStatsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Stats.FunctionCount)
	assert.Equal(t, 1, out.Stats.FileCount)
}
