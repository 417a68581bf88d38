// Package dispatcher fans encyclopedia work out to a pool of workers sharing
// one frontier.
package dispatcher

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
	"github.com/JakeFAU/corpus-crawler/internal/metrics"
	"github.com/JakeFAU/corpus-crawler/internal/worker"
)

// Dispatcher runs workers over a shared frontier until the document target
// is met or the frontier is exhausted.
type Dispatcher struct {
	adapter  string
	frontier *crawler.Frontier
	pipeline *worker.Pipeline
	workers  []*worker.Worker
	done     atomic.Bool
}

// New creates a Dispatcher.
func New(adapter string, frontier *crawler.Frontier, pipeline *worker.Pipeline, workers []*worker.Worker) *Dispatcher {
	return &Dispatcher{
		adapter:  adapter,
		frontier: frontier,
		pipeline: pipeline,
		workers:  workers,
	}
}

// Seed enqueues depth-0 tasks.
func (d *Dispatcher) Seed(urls []string) {
	d.frontier.Seed(urls)
	metrics.SetFrontierSize(d.adapter, d.frontier.Len())
}

// Run starts all workers and blocks until every worker has returned. The
// first sink failure cancels the remaining workers and is returned.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.done.Store(true)
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range d.workers {
		g.Go(func() error {
			return w.Run(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}
	return nil
}

// Stats returns a snapshot of the run.
func (d *Dispatcher) Stats() crawler.Stats {
	budget := d.pipeline.Budget()
	return crawler.Stats{
		Adapter:      d.adapter,
		Documents:    budget.Count(),
		Target:       budget.Target(),
		FrontierSize: d.frontier.Len(),
		InFlight:     d.frontier.InFlight(),
		VisitedURLs:  d.pipeline.Dedup().URLCount(),
		Done:         d.done.Load(),
	}
}
