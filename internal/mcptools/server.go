package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewGraphMCPServer creates an MCP server with the code graph tools
// registered.
func NewGraphMCPServer(svc *GraphService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codegraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_graph",
		Description: "Parse every translation unit in a compilation database and build the code relationship graph (functions, structs, types, calls, inheritance, includes).",
	}, svc.ExtractGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_entities",
		Description: "Search graph entities (functions, structs, types, files) by name substring match. Optionally filter by kind and limit results.",
	}, svc.QueryEntities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_relations",
		Description: "Return the outgoing relationships of an entity, optionally filtered by kind (calls, contains, inherits, uses, includes).",
	}, svc.GetRelations)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Return entity and edge counts for the current graph.",
	}, svc.GraphStats)

	return server
}

// RunMCPServer starts an HTTP server exposing the code graph MCP tools.
func RunMCPServer(ctx context.Context, svc *GraphService, addr string) error {
	server := NewGraphMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
