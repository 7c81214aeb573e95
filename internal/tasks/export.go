package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/catalogctl/internal/formatter"
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
	"github.com/desertthunder/catalogctl/internal/store"
	"golang.org/x/time/rate"
)

// ExportOpts contains configuration for a catalog export.
type ExportOpts struct {
	Format     formatter.Format    // Export format: csv, markdown, json
	OutputDir  string              // Output directory (default: catalog_export_{epoch})
	Types      []models.EntityType // Collections to export (default: all)
	NumWorkers int                 // Concurrent workers (default: 3)
	RateLimit  float64             // Collection fetches per second (default: 5)
	BaseURL    string              // Recorded in the manifest
}

// CollectionResult is the outcome of exporting one collection.
type CollectionResult struct {
	Type  models.EntityType
	Count int
	File  string
	Error error
}

// ExportResult summarizes an export run.
type ExportResult struct {
	OutputDirectory string
	ManifestPath    string
	Successful      int
	Failed          int
	Results         []CollectionResult
}

// Export loads each collection into st and writes it to its own file.
//
// Collections are fetched by a small worker pool under a rate limit. A failed collection is recorded in the manifest
// and does not stop the others.
func Export(ctx context.Context, progress chan<- ProgressUpdate, st *store.Store, opts ExportOpts) (*ExportResult, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("catalog_export_%d", time.Now().Unix())
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if len(opts.Types) == 0 {
		opts.Types = models.AllEntityTypes
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > len(opts.Types) {
		opts.NumWorkers = len(opts.Types)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(opts.Types)
	result := &ExportResult{
		OutputDirectory: opts.OutputDir,
		Results:         make([]CollectionResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan models.EntityType, total)
	results := make(chan CollectionResult, total)

	send := func(u ProgressUpdate) {
		if progress == nil {
			return
		}
		select {
		case progress <- u:
		default:
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(ctx, &wg, st, limiter, jobs, results, opts)
	}

	for i, t := range opts.Types {
		send(fetchingCollectionUpdate(i+1, total, t))
		jobs <- t
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Error == nil {
			result.Successful++
			send(exportCompletedUpdate(completed, total, res.Type, res.Count))
		} else {
			result.Failed++
			send(exportFailedUpdate(completed, total, res.Type, res.Error))
		}
	}

	order := make(map[models.EntityType]int, total)
	for i, t := range opts.Types {
		order[t] = i
	}
	sort.Slice(result.Results, func(i, j int) bool {
		return order[result.Results[i].Type] < order[result.Results[j].Type]
	})

	manifest := formatter.Manifest{
		ExportedAt: time.Now(),
		BaseURL:    opts.BaseURL,
		Format:     opts.Format,
		Entries:    make([]formatter.ManifestEntry, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		entry := formatter.ManifestEntry{Type: res.Type, Count: res.Count}
		if res.File != "" {
			entry.File = filepath.Base(res.File)
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		manifest.Entries = append(manifest.Entries, entry)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker fetches and writes collections from the jobs channel.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	st *store.Store,
	limiter *rate.Limiter,
	jobs <-chan models.EntityType,
	results chan<- CollectionResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for t := range jobs {
		res := CollectionResult{Type: t}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = err
			results <- res
			continue
		}

		items, err := st.Load(ctx, t)
		if err != nil {
			res.Error = err
			results <- res
			continue
		}

		path, err := formatter.WriteExport(t, items, opts.Format, opts.OutputDir)
		if err != nil {
			res.Error = err
			results <- res
			continue
		}
		res.Count = len(items)
		res.File = path
		results <- res
	}
}
