// Package worker implements the crawl pipeline and the encyclopedia worker
// loop that drains the shared frontier.
package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
	"github.com/JakeFAU/corpus-crawler/internal/metrics"
)

// Config controls Worker behavior.
type Config struct {
	MaxDepth int
	// MaxLinksPerPage caps links enqueued from one page; 0 means no cap.
	MaxLinksPerPage int
	// IdleTimeout is the wait on an empty frontier before rechecking it.
	IdleTimeout time.Duration
}

// Worker pops tasks from the frontier and runs them through the pipeline
// until the budget is met or the frontier is exhausted.
type Worker struct {
	id       int
	cfg      Config
	frontier *crawler.Frontier
	pipeline *Pipeline
	links    crawler.LinkRules
	pauser   crawler.PauseController
	adapter  string
	logger   *zap.Logger
}

// New constructs a Worker.
func New(
	id int,
	cfg Config,
	frontier *crawler.Frontier,
	pipeline *Pipeline,
	links crawler.LinkRules,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 500 * time.Millisecond
	}
	return &Worker{
		id:       id,
		cfg:      cfg,
		frontier: frontier,
		pipeline: pipeline,
		links:    links,
		pauser:   pipeline.pauser,
		adapter:  pipeline.cfg.Adapter,
		logger:   logger.With(zap.Int("worker", id)),
	}
}

// Run blocks until the target is met, the frontier is exhausted or ctx is
// done. It returns a non-nil error only for a sink failure.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil || w.pipeline.budget.Reached() {
			return nil
		}
		task, ok := w.frontier.Pop()
		if !ok {
			w.pauser.Pause(ctx, w.cfg.IdleTimeout)
			if w.frontier.Exhausted() {
				w.logger.Debug("frontier exhausted")
				return nil
			}
			continue
		}
		err := w.process(ctx, task)
		w.frontier.Done()
		metrics.SetFrontierSize(w.adapter, w.frontier.Len())
		if err != nil {
			return err
		}
	}
}

func (w *Worker) process(ctx context.Context, task crawler.Task) error {
	normalized, err := crawler.NormalizeURL(task.URL)
	if err != nil {
		w.logger.Debug("skip malformed url", zap.String("url", task.URL), zap.Error(err))
		return nil
	}
	if !w.pipeline.dedup.TryClaimURL(normalized) {
		return nil
	}

	resp, err := w.pipeline.Fetch(ctx, task.URL)
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, crawler.ErrBudgetReached) {
			w.logger.Debug("fetch failed", zap.String("url", task.URL), zap.Error(err))
		}
		return nil
	}
	if w.pipeline.budget.Reached() {
		return nil
	}

	ext, ok := w.pipeline.Extract(task.URL, resp)
	if !ok {
		return nil
	}
	if _, err := w.pipeline.Accept(ext.Document); err != nil {
		return err
	}
	if task.Depth < w.cfg.MaxDepth {
		w.enqueue(ext.Links, task.Depth+1)
	}
	return nil
}

func (w *Worker) enqueue(links []string, depth int) {
	pushed := 0
	for _, link := range links {
		if w.cfg.MaxLinksPerPage > 0 && pushed >= w.cfg.MaxLinksPerPage {
			return
		}
		if !w.links.Valid(link) {
			continue
		}
		normalized, err := crawler.NormalizeURL(link)
		if err != nil || w.pipeline.dedup.SeenURL(normalized) {
			continue
		}
		w.frontier.Push(crawler.Task{URL: link, Depth: depth})
		pushed++
	}
}
