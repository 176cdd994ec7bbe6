// Package engine executes queries end to end: it ingests the configured
// roots, builds the federated model, and renders the requested output. Every
// query re-ingests from scratch; nothing is cached or shared between calls
// beyond the read-only root list.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/morphohq/morpho/internal/discover"
	"github.com/morphohq/morpho/internal/graph"
	"github.com/morphohq/morpho/internal/lang"
	"github.com/morphohq/morpho/internal/model"
	"github.com/morphohq/morpho/internal/parse"
	"github.com/morphohq/morpho/internal/project"
	"github.com/morphohq/morpho/internal/render"
)

// Options carries the per-query filter settings.
type Options struct {
	PublicOnly bool
	Blacklist  []string
	Scope      string
}

// Engine answers queries over a fixed set of source roots, primary first.
// The root list is read-only after construction, so concurrent queries need
// no locking.
type Engine struct {
	roots []model.SourceRoot
	log   *slog.Logger
}

// New returns an engine over the given roots. A nil logger falls back to
// slog.Default.
func New(roots []model.SourceRoot, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{roots: roots, log: log}
}

// Roots returns the configured roots, primary first.
func (e *Engine) Roots() []model.SourceRoot { return e.roots }

// RootInfo identifies one configured root.
type RootInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Info describes the configured roots for the info endpoint.
type Info struct {
	Primary      RootInfo   `json:"primary_project"`
	Dependencies []RootInfo `json:"dependencies"`
}

// Info reports the primary root and its dependencies.
func (e *Engine) Info() Info {
	info := Info{Dependencies: make([]RootInfo, 0)}
	for i, r := range e.roots {
		ri := RootInfo{Name: r.Name, Path: r.Path}
		if i == 0 {
			info.Primary = ri
		} else {
			info.Dependencies = append(info.Dependencies, ri)
		}
	}
	return info
}

// ListAll renders the declaration listing over every root the options admit.
func (e *Engine) ListAll(ctx context.Context, opts Options) (string, error) {
	filt := e.filter(opts)
	fed, err := e.federate(ctx, filt)
	if err != nil {
		return "", err
	}
	return render.Listing(fed, filt), nil
}

// CallGraph resolves rootFunction and renders its call tree.
func (e *Engine) CallGraph(ctx context.Context, rootFunction string, opts Options) (string, error) {
	filt := e.filter(opts)
	fed, err := e.federate(ctx, filt)
	if err != nil {
		return "", err
	}
	fn, err := fed.ResolveQuery(rootFunction, filt)
	if err != nil {
		return "", err
	}
	tree, reached := graph.Trace(fn, fed, filt)
	return render.CallTree(fn, tree, reached, fed, filt), nil
}

// Source pretty-prints the named item, resolving functions before types.
func (e *Engine) Source(ctx context.Context, name string, opts Options) (string, error) {
	filt := e.filter(opts)
	fed, err := e.federate(ctx, filt)
	if err != nil {
		return "", err
	}

	fn, fnErr := fed.ResolveQuery(name, filt)
	if fnErr == nil {
		return render.FunctionSource(fn), nil
	}
	if errors.Is(fnErr, project.ErrAmbiguous) {
		return "", fnErr
	}

	ti, tiErr := fed.ResolveQueryType(name, filt)
	if tiErr == nil {
		return render.TypeSource(ti), nil
	}
	if errors.Is(tiErr, project.ErrAmbiguous) {
		return "", tiErr
	}
	return "", fmt.Errorf("function or type %q: %w", name, project.ErrNotFound)
}

func (e *Engine) filter(opts Options) *project.Filter {
	return project.NewFilter(e.roots, opts.PublicOnly, opts.Blacklist, opts.Scope)
}

// federate ingests every in-scope root concurrently and pairs the built
// projects with the rank-ordered root list.
func (e *Engine) federate(ctx context.Context, filt *project.Filter) (*project.Federation, error) {
	fed := &project.Federation{Projects: make(map[string]*model.Project)}
	for _, r := range e.roots {
		if filt.RootInScope(r.Name) {
			fed.Roots = append(fed.Roots, r)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for _, r := range fed.Roots {
		g.Go(func() error {
			p, err := e.ingestRoot(ctx, r, filt)
			if err != nil {
				return err
			}
			mu.Lock()
			fed.Projects[r.Name] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fed, nil
}

// ingestRoot walks one root, drops blacklisted paths, and parses the rest
// into a fresh per-root model. File-level read and parse failures are logged
// and skipped, never fatal.
func (e *Engine) ingestRoot(ctx context.Context, root model.SourceRoot, filt *project.Filter) (*model.Project, error) {
	paths, err := discover.Files(root.Path)
	if err != nil {
		return nil, fmt.Errorf("discovering files in %s: %w", root.Path, err)
	}
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		rel := "./" + filepath.ToSlash(p)
		if filt.Blacklisted(rel) {
			continue
		}
		kept = append(kept, rel)
	}
	return project.Build(e.parseFiles(ctx, root, kept), root.Name), nil
}

type parseResult struct {
	index int
	file  *parse.File
}

// parseFiles reads and parses the given root-relative paths concurrently,
// returning the parsed files in input order.
func (e *Engine) parseFiles(ctx context.Context, root model.SourceRoot, paths []string) []*parse.File {
	if len(paths) == 0 {
		return nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}

	work := make(chan int, len(paths))
	results := make(chan parseResult, len(paths))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parser
			parser := lang.Rust().NewParser()

			for idx := range work {
				rel := paths[idx]
				absPath := filepath.Join(root.Path, filepath.FromSlash(strings.TrimPrefix(rel, "./")))
				source, err := os.ReadFile(absPath)
				if err != nil {
					e.log.Warn("read failed", "path", absPath, "err", err)
					continue
				}
				f, err := parse.ParseFile(ctx, parser, rel, source)
				if err != nil {
					e.log.Warn("parse skipped", "path", absPath, "err", err)
					continue
				}
				results <- parseResult{index: idx, file: f}
			}
		}()
	}

	for i := range paths {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([]*parse.File, len(paths))
	for r := range results {
		indexed[r.index] = r.file
	}

	var files []*parse.File
	for _, f := range indexed {
		if f != nil {
			files = append(files, f)
		}
	}
	return files
}
