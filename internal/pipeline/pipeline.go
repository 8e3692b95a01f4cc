// Package pipeline drives the extraction run: load the compilation
// database, parse translation units in parallel, merge each unit's
// emissions sequentially into the shared graph, and collect a run summary.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hyz0906/graphrag-demo/internal/compiledb"
	"github.com/hyz0906/graphrag-demo/internal/graph"
)

// Options configures a pipeline run.
type Options struct {
	// ProjectRoot filters database entries: files outside it are skipped.
	// Empty disables the filter.
	ProjectRoot string

	// Workers bounds parallel translation-unit parsing. <=0 means NumCPU.
	Workers int
}

// FileFailure is one per-file error collected into the run summary.
type FileFailure struct {
	File string
	Err  error
}

// Summary reports what happened across the whole run. Per-file failures
// never interrupt sibling files; the run always attempts every entry and
// serializes whatever graph was built.
type Summary struct {
	Parsed      int
	Skipped     int // outside the project root
	Failures    []FileFailure
	Warnings    []string // entity kind conflicts
	Diagnostics map[string][]graph.Diagnostic
}

// Failed reports whether any file failed.
func (s *Summary) Failed() bool { return len(s.Failures) > 0 }

// Print writes a human-readable run report.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "parsed %d translation unit(s), %d skipped, %d failed\n",
		s.Parsed, s.Skipped, len(s.Failures))
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  failed: %s: %v\n", f.File, f.Err)
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	for file, diags := range s.Diagnostics {
		fmt.Fprintf(w, "  %s: %d diagnostic(s)\n", file, len(diags))
	}
}

// Runner owns one pipeline run over a compilation database.
type Runner struct {
	parser graph.Parser
	opts   Options
}

// NewRunner creates a Runner using the given parser.
func NewRunner(parser graph.Parser, opts Options) *Runner {
	return &Runner{parser: parser, opts: opts}
}

// unitOutcome is one worker's emission: either a parse result or a failure.
// Workers never mutate the graph; one consumer merges outcomes in job order.
type unitOutcome struct {
	job    compiledb.ParseJob
	result *graph.ExtractResult
	err    error
}

// Run executes the whole pipeline and returns the frozen graph and the run
// summary. Only a malformed database (or context cancellation) is fatal.
func (r *Runner) Run(ctx context.Context, databasePath string) (*graph.Graph, *Summary, error) {
	summary := &Summary{Diagnostics: make(map[string][]graph.Diagnostic)}

	jobs, entryErrs, err := compiledb.Load(databasePath)
	if err != nil {
		return nil, nil, err
	}
	for _, ee := range entryErrs {
		summary.Failures = append(summary.Failures, FileFailure{File: ee.File, Err: ee.Err})
	}

	jobs = r.filterJobs(jobs, summary)

	outcomes := make([]unitOutcome, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			// Per-file failures are recorded, not returned: a bad unit
			// must not cancel its siblings.
			outcomes[i] = r.parseUnit(gctx, job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Sequential merge in job order keeps first-writer-wins deterministic.
	built := graph.New()
	for _, out := range outcomes {
		if out.err != nil {
			summary.Failures = append(summary.Failures, FileFailure{File: out.job.File, Err: out.err})
			continue
		}
		if err := r.merge(built, out.job, out.result, summary); err != nil {
			return nil, nil, err
		}
		summary.Parsed++
	}

	for _, c := range built.Conflicts() {
		summary.Warnings = append(summary.Warnings, c.String())
	}

	built.Freeze()
	return built, summary, nil
}

// filterJobs drops entries outside the project root, counting them as
// skipped rather than failed.
func (r *Runner) filterJobs(jobs []compiledb.ParseJob, summary *Summary) []compiledb.ParseJob {
	if r.opts.ProjectRoot == "" {
		return jobs
	}
	root := r.opts.ProjectRoot
	kept := jobs[:0]
	for _, job := range jobs {
		if rel, err := filepath.Rel(root, job.File); err == nil && !strings.HasPrefix(rel, "..") {
			kept = append(kept, job)
		} else {
			summary.Skipped++
		}
	}
	return kept
}

// parseUnit reads and parses one translation unit with its exact recorded
// compile arguments deciding the grammar.
func (r *Runner) parseUnit(ctx context.Context, job compiledb.ParseJob) unitOutcome {
	source, err := os.ReadFile(job.File)
	if err != nil {
		return unitOutcome{job: job, err: fmt.Errorf("%w: %s", compiledb.ErrMissingFile, job.File)}
	}
	lang := graph.DetectLanguage(job.File, job.Args)
	result, err := r.parser.Parse(ctx, r.relPath(job.File), source, lang)
	if err != nil {
		return unitOutcome{job: job, err: err}
	}
	return unitOutcome{job: job, result: result}
}

// relPath makes unit paths project-relative so the artifact is portable.
func (r *Runner) relPath(file string) string {
	if r.opts.ProjectRoot == "" {
		return file
	}
	rel, err := filepath.Rel(r.opts.ProjectRoot, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return file
	}
	return rel
}

// merge applies one unit's emissions to the graph: the unit's file entity,
// every extracted entity and edge, and one includes edge per non-system
// include directive.
func (r *Runner) merge(g *graph.Graph, job compiledb.ParseJob, res *graph.ExtractResult, summary *Summary) error {
	if _, err := g.UpsertEntity(res.Unit); err != nil {
		return err
	}
	for _, e := range res.Entities {
		if _, err := g.UpsertEntity(e); err != nil {
			return err
		}
	}
	for _, e := range res.Edges {
		if err := g.AddEdge(e.Source, e.Target, e.Kind); err != nil {
			return err
		}
	}

	includeDirs := job.IncludeDirs()
	for _, inc := range res.Includes {
		if inc.System {
			continue // system headers stay out of the graph
		}
		header := graph.NewEntity(graph.EntityKindFile, inc.Path, r.resolveHeader(inc.Path, includeDirs))
		if _, err := g.UpsertEntity(header); err != nil {
			return err
		}
		if err := g.AddEdge(res.Unit.ID, header.ID, graph.EdgeKindIncludes); err != nil {
			return err
		}
	}

	if len(res.Diagnostics) > 0 {
		summary.Diagnostics[res.Unit.Name] = res.Diagnostics
	}
	return nil
}

// resolveHeader locates an included header on disk via the entry directory
// and -I paths, for provenance only. Unresolved headers keep an empty
// location.
func (r *Runner) resolveHeader(include string, dirs []string) string {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, include)
		if _, err := os.Stat(candidate); err == nil {
			return r.relPath(candidate)
		}
	}
	return ""
}
