package mcptools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hyz0906/graphrag-demo/internal/export"
	"github.com/hyz0906/graphrag-demo/internal/graph"
	"github.com/hyz0906/graphrag-demo/internal/pipeline"
)

// GraphService holds the parser and the last extracted graph used by the
// MCP tool handlers.
type GraphService struct {
	parser graph.Parser

	mu    sync.RWMutex
	graph *graph.Graph
}

// NewGraphService creates a GraphService with the given parser.
func NewGraphService(parser graph.Parser) *GraphService {
	return &GraphService{parser: parser}
}

// current returns the last built graph, or an error if none exists yet.
func (s *GraphService) current() (*graph.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.graph == nil {
		return nil, fmt.Errorf("no graph extracted yet; call extract_graph first")
	}
	return s.graph, nil
}

// ExtractGraph runs the extraction pipeline over a compilation database and
// keeps the frozen graph for follow-up queries.
func (s *GraphService) ExtractGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractGraphInput,
) (*mcp.CallToolResult, ExtractGraphOutput, error) {
	if input.Database == "" {
		return nil, ExtractGraphOutput{}, fmt.Errorf("database is required")
	}

	runner := pipeline.NewRunner(s.parser, pipeline.Options{ProjectRoot: input.ProjectRoot})
	g, summary, err := runner.Run(ctx, input.Database)
	if err != nil {
		return nil, ExtractGraphOutput{}, fmt.Errorf("extract graph: %w", err)
	}

	if input.OutputPath != "" {
		if err := export.WriteJSON(g, input.OutputPath); err != nil {
			return nil, ExtractGraphOutput{}, err
		}
	}

	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()

	return nil, ExtractGraphOutput{
		Stats:    g.Stats(),
		Parsed:   summary.Parsed,
		Failed:   len(summary.Failures),
		Warnings: summary.Warnings,
	}, nil
}

// QueryEntities searches entities by name substring match.
func (s *GraphService) QueryEntities(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input QueryEntitiesInput,
) (*mcp.CallToolResult, QueryEntitiesOutput, error) {
	g, err := s.current()
	if err != nil {
		return nil, QueryEntitiesOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	kind := graph.EntityKind(strings.ToLower(input.Kind))
	query := strings.ToLower(input.Query)

	var results []graph.Entity
	for _, e := range g.Entities() {
		if input.Kind != "" && e.Kind != kind {
			continue
		}
		if !strings.Contains(strings.ToLower(e.Name), query) {
			continue
		}
		results = append(results, e)
		if len(results) >= limit {
			break
		}
	}

	return nil, QueryEntitiesOutput{
		Entities: results,
		Total:    len(results),
	}, nil
}

// GetRelations returns the outgoing edges of an entity.
func (s *GraphService) GetRelations(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetRelationsInput,
) (*mcp.CallToolResult, GetRelationsOutput, error) {
	if input.EntityID == "" {
		return nil, GetRelationsOutput{}, fmt.Errorf("entityId is required")
	}
	g, err := s.current()
	if err != nil {
		return nil, GetRelationsOutput{}, err
	}
	if g.Entity(input.EntityID) == nil {
		return nil, GetRelationsOutput{}, fmt.Errorf("unknown entity: %s", input.EntityID)
	}

	kind := graph.EdgeKind(strings.ToLower(input.Kind))
	return nil, GetRelationsOutput{Edges: g.EdgesFrom(input.EntityID, kind)}, nil
}

// GraphStats returns entity and edge counts for the current graph.
func (s *GraphService) GraphStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GraphStatsInput,
) (*mcp.CallToolResult, GraphStatsOutput, error) {
	g, err := s.current()
	if err != nil {
		return nil, GraphStatsOutput{}, err
	}
	return nil, GraphStatsOutput{Stats: g.Stats()}, nil
}
