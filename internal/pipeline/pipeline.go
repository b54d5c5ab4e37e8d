// Package pipeline imports batches of dataset files with a bounded worker pool.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Job names one file to import. Ref is whatever the Loader understands: a
// local path, an object key or a Drive file id.
type Job struct {
	Name string
	Ref  string
}

// Loader reads and parses one job.
type Loader func(ctx context.Context, job Job) (*domain.Dataset, error)

// Saver persists a parsed dataset.
type Saver func(ctx context.Context, ds *domain.Dataset) error

type Config struct {
	WorkerCount int
}

// Result reports the outcome of one job.
type Result struct {
	Job     Job
	Rows    int
	Skipped int
	Err     error
	Took    time.Duration
}

// Run loads and saves every job using up to cfg.WorkerCount workers. A failed
// job is reported in its Result and does not stop the others. Results keep
// the order of jobs.
func Run(ctx context.Context, cfg Config, jobs []Job, load Loader, save Saver) []Result {
	workers := cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(jobs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res := process(gctx, job, load, save)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func process(ctx context.Context, job Job, load Loader, save Saver) Result {
	start := time.Now()
	res := Result{Job: job}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	ds, err := load(ctx, job)
	if err != nil {
		res.Err = err
		log.Error().Err(err).Str("job", job.Name).Msg("pipeline: load failed")
		return res
	}
	if job.Name != "" {
		ds.Name = job.Name
	}
	res.Rows, res.Skipped = ds.Len(), ds.SkippedRows

	if err := save(ctx, ds); err != nil {
		res.Err = err
		log.Error().Err(err).Str("job", job.Name).Msg("pipeline: save failed")
		return res
	}

	res.Took = time.Since(start)
	log.Info().Str("job", job.Name).Int("rows", res.Rows).Dur("took", res.Took).Msg("pipeline: job completed")
	return res
}

// Failed counts results with an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
