package mcptools

import "github.com/hyz0906/graphrag-demo/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ExtractGraphInput is the input for the extract_graph MCP tool.
type ExtractGraphInput struct {
	Database    string `json:"database" jsonschema:"path to the compilation database (compile_commands.json)"`
	ProjectRoot string `json:"projectRoot,omitempty" jsonschema:"skip database entries outside this directory"`
	OutputPath  string `json:"outputPath,omitempty" jsonschema:"also write the JSON artifact to this path"`
}

// ExtractGraphOutput is the result of the extract_graph MCP tool.
type ExtractGraphOutput struct {
	Stats    graph.Stats `json:"stats"`
	Parsed   int         `json:"parsed"`
	Failed   int         `json:"failed"`
	Warnings []string    `json:"warnings,omitempty"`
}

// QueryEntitiesInput is the input for the query_entities MCP tool.
type QueryEntitiesInput struct {
	Query string `json:"query" jsonschema:"search query for entity names (substring match)"`
	Kind  string `json:"kind,omitempty" jsonschema:"filter by entity kind: function, struct, type, file"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QueryEntitiesOutput is the result of the query_entities MCP tool.
type QueryEntitiesOutput struct {
	Entities []graph.Entity `json:"entities"`
	Total    int            `json:"total"`
}

// GetRelationsInput is the input for the get_relations MCP tool.
type GetRelationsInput struct {
	EntityID string `json:"entityId" jsonschema:"entity id, e.g. function:main or type:Person"`
	Kind     string `json:"kind,omitempty" jsonschema:"filter by edge kind: calls, contains, inherits, uses, includes"`
}

// GetRelationsOutput is the result of the get_relations MCP tool.
type GetRelationsOutput struct {
	Edges []graph.Edge `json:"edges"`
}

// GraphStatsInput is the input for the graph_stats MCP tool.
type GraphStatsInput struct{}

// GraphStatsOutput is the result of the graph_stats MCP tool.
type GraphStatsOutput struct {
	Stats graph.Stats `json:"stats"`
}
