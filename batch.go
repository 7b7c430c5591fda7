package apexmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/apexmark/apexmark/internal/trace"
)

// Worker sizing constants.
const (
	// MinWorkers ensures at least one conversion runs.
	MinWorkers = 1

	// MaxWorkers caps concurrent conversions; beyond this the allocation
	// churn of parallel parses outweighs the speedup.
	MaxWorkers = 8
)

// ResolveWorkers determines the worker count for a batch. An explicit value
// wins; otherwise GOMAXPROCS (adjusted by automaxprocs in the CLI) is
// clamped to the pool bounds.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}
	n := runtime.GOMAXPROCS(0)
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// FileResult is the outcome of one file in a batch conversion.
type FileResult struct {
	Path string
	HTML string
	Err  error
}

// ConvertFiles converts several files concurrently, fanning out over a
// worker pool. Results come back in input order; a failed file records its
// error without aborting the rest. When opts has no BaseDir, each file's
// own directory is used, so relative bibliography and metadata paths
// resolve next to the document.
func ConvertFiles(ctx context.Context, paths []string, opts *Options, workers int) []FileResult {
	defer trace.Section("batch")()

	results := make([]FileResult, len(paths))
	sem := make(chan struct{}, ResolveWorkers(workers))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = convertFile(ctx, path, opts)
		}(i, path)
	}
	wg.Wait()
	return results
}

func convertFile(ctx context.Context, path string, opts *Options) FileResult {
	if err := ctx.Err(); err != nil {
		return FileResult{Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("reading %q: %w", path, err)}
	}

	var o Options
	if opts == nil {
		o = DefaultOptions()
	} else {
		o = *opts
	}
	if o.BaseDir == "" {
		o.BaseDir = filepath.Dir(path)
	}

	html, err := Convert(data, &o)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("converting %q: %w", path, err)}
	}
	return FileResult{Path: path, HTML: html}
}
