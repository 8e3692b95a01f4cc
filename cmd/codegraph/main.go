// codegraph builds a structured relationship graph over a C/C++ codebase
// from its compilation database and serializes it as a JSON artifact for a
// downstream graph-indexing engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/hyz0906/graphrag-demo/internal/config"
	"github.com/hyz0906/graphrag-demo/internal/export"
	"github.com/hyz0906/graphrag-demo/internal/graph"
	"github.com/hyz0906/graphrag-demo/internal/mcptools"
	"github.com/hyz0906/graphrag-demo/internal/pipeline"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Database    string
	Output      string
	ProjectRoot string
	Workers     int
	KuzuPath    string
	ServeMCP    bool
	MCPAddr     string
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("codegraph", flag.ContinueOnError)
	fs.StringVar(&flags.Database, "compdb", "", "path to compile_commands.json")
	fs.StringVar(&flags.Output, "output", "", "path for the JSON graph artifact")
	fs.StringVar(&flags.ProjectRoot, "project-root", "", "skip database entries outside this directory")
	fs.IntVar(&flags.Workers, "workers", 0, "parallel parse workers (default: NumCPU)")
	fs.StringVar(&flags.KuzuPath, "kuzu-db", "", "also export the graph to a KuzuDB at this path")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server instead of a one-shot extraction")
	fs.StringVar(&flags.MCPAddr, "mcp-addr", "localhost:8921", "listen address for the MCP server")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}
	cfg.ApplyDefaults()
	applyFlags(cfg, flags)
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = cwd
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	parser := graph.NewTreeSitterParser()
	defer parser.Close()

	if flags.ServeMCP {
		svc := mcptools.NewGraphService(parser)
		fmt.Fprintf(os.Stderr, "codegraph MCP server listening on %s\n", flags.MCPAddr)
		return mcptools.RunMCPServer(ctx, svc, flags.MCPAddr)
	}

	runner := pipeline.NewRunner(parser, pipeline.Options{
		ProjectRoot: cfg.ProjectRoot,
		Workers:     cfg.Workers,
	})

	g, summary, err := runner.Run(ctx, cfg.Database)
	if err != nil {
		return err
	}
	summary.Print(os.Stderr)

	if err := export.WriteJSON(g, cfg.OutputPath); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "graph written to %s\n", cfg.OutputPath)

	if cfg.KuzuPath != "" {
		if err := export.WriteKuzu(g, cfg.KuzuPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "graph exported to KuzuDB at %s\n", cfg.KuzuPath)
	}
	return nil
}

// applyFlags overlays non-empty CLI flags onto the loaded config.
func applyFlags(cfg *config.ProjectConfig, flags cliFlags) {
	if flags.Database != "" {
		cfg.Database = flags.Database
	}
	if flags.Output != "" {
		cfg.OutputPath = flags.Output
	}
	if flags.ProjectRoot != "" {
		cfg.ProjectRoot = flags.ProjectRoot
	}
	if flags.Workers > 0 {
		cfg.Workers = flags.Workers
	}
	if flags.KuzuPath != "" {
		cfg.KuzuPath = flags.KuzuPath
	}
}
