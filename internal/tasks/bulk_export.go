package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/mrx/internal/formatter"
	"github.com/desertthunder/mrx/internal/models"
	"golang.org/x/time/rate"
)

// ExportOpts contains configuration for bulk list exports.
type ExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: lists_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5, max: 10)
	RateLimit  float64 // List fetches per second (default: 5)
}

// ListExportJob is one fetched list waiting to be written.
type ListExportJob struct {
	ListID string
	List   *models.ListDetails
}

// ListExportResult is the outcome of exporting one list.
type ListExportResult struct {
	ListID   string
	ListName string
	Success  bool
	Files    []string
	Error    error
}

// ExportResult summarizes a bulk export.
type ExportResult struct {
	TotalLists        int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []ListExportResult
}

// ExportLists exports lists concurrently with rate-limited fetches and progress reporting.
//
// Fetching happens on one producer goroutine; a pool of workers writes files.
// Failures are recorded per list and the run continues. A manifest summarizing
// every list is written to the output directory.
func (e *Engine) ExportLists(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts ExportOpts) (*ExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("lists_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	opts.NumWorkers = min(opts.NumWorkers, 10)
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		TotalLists:      len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ListExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan ListExportJob, len(ids))
	results := make(chan ListExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		e.sendProgress(prog, fetchingListsUpdate(len(ids)))
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			list, err := e.api.Lists.Get(ctx, id)
			if err != nil {
				results <- ListExportResult{
					ListID:   id,
					ListName: fmt.Sprintf("Unknown (%s)", id),
					Error:    fmt.Errorf("failed to fetch list: %w", err),
				}
				continue
			}

			jobs <- ListExportJob{ListID: id, List: list}
			e.sendProgress(prog, exportingListUpdate(i+1, len(ids), list.Name))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.ListName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.ListName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export cancelled: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(buildManifest(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestWrittenUpdate(manifestPath))
	return result, nil
}

// exportWorker writes lists from the jobs channel until it closes.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan ListExportJob,
	results chan<- ListExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}

		res := ListExportResult{ListID: job.ListID, ListName: job.List.Name}
		files, err := formatter.Write(job.List, opts.Format, opts.OutputDir)
		if err != nil {
			res.Error = err
		} else {
			res.Success = true
			res.Files = files
		}
		results <- res
	}
}

func buildManifest(r *ExportResult, format string) formatter.Manifest {
	m := formatter.Manifest{
		Format:            format,
		ExportedAt:        time.Now().UTC(),
		TotalLists:        r.TotalLists,
		SuccessfulExports: r.SuccessfulExports,
		FailedExports:     r.FailedExports,
		Lists:             make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := formatter.ManifestEntry{ListID: res.ListID, ListName: res.ListName, Status: "success", Files: res.Files}
		if !res.Success {
			entry.Status = "failed"
			if res.Error != nil {
				entry.Error = res.Error.Error()
			}
		}
		m.Lists = append(m.Lists, entry)
	}
	return m
}
