package worker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
	"github.com/JakeFAU/corpus-crawler/internal/metrics"
	"github.com/JakeFAU/corpus-crawler/internal/quality"
)

const defaultProgressEvery = 100

// PipelineConfig controls fetch admission and document acceptance.
type PipelineConfig struct {
	// Adapter labels logs and metrics ("wiki", "catalog").
	Adapter      string
	RequestDelay time.Duration
	Timeout      time.Duration
	Headers      http.Header
	// DedupTitles rejects documents whose title was already written.
	DedupTitles   bool
	ProgressEvery int64
	// LogDocuments logs every written document at info level.
	LogDocuments bool
}

// Pipeline is the fetch → extract → filter → write path shared by every
// worker of one adapter run. It is safe for concurrent use.
type Pipeline struct {
	cfg       PipelineConfig
	gate      *semaphore.Weighted
	fetcher   crawler.Fetcher
	limiter   crawler.RateLimiter
	pauser    crawler.PauseController
	extractor crawler.Extractor
	filter    crawler.QualityFilter
	sink      crawler.Sink
	dedup     *crawler.DedupStore
	budget    *crawler.Budget
	logger    *zap.Logger
}

// PipelineDeps bundles the collaborators of a Pipeline. Limiter and Pauser
// are optional.
type PipelineDeps struct {
	Gate      *semaphore.Weighted
	Fetcher   crawler.Fetcher
	Limiter   crawler.RateLimiter
	Pauser    crawler.PauseController
	Extractor crawler.Extractor
	Filter    crawler.QualityFilter
	Sink      crawler.Sink
	Dedup     *crawler.DedupStore
	Budget    *crawler.Budget
}

// NewPipeline wires a Pipeline.
func NewPipeline(cfg PipelineConfig, deps PipelineDeps, logger *zap.Logger) *Pipeline {
	metrics.Init()
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = defaultProgressEvery
	}
	if deps.Pauser == nil {
		deps.Pauser = crawler.TimerPauseController{}
	}
	if deps.Gate == nil {
		deps.Gate = semaphore.NewWeighted(1)
	}
	return &Pipeline{
		cfg:       cfg,
		gate:      deps.Gate,
		fetcher:   deps.Fetcher,
		limiter:   deps.Limiter,
		pauser:    deps.Pauser,
		extractor: deps.Extractor,
		filter:    deps.Filter,
		sink:      deps.Sink,
		dedup:     deps.Dedup,
		budget:    deps.Budget,
		logger:    logger,
	}
}

// Budget exposes the shared document counter.
func (p *Pipeline) Budget() *crawler.Budget {
	return p.budget
}

// Dedup exposes the shared dedup store.
func (p *Pipeline) Dedup() *crawler.DedupStore {
	return p.dedup
}

// Fetch takes an admission slot, waits the polite delay and fetches url.
// The slot is released before returning.
func (p *Pipeline) Fetch(ctx context.Context, url string) (crawler.FetchResponse, error) {
	return p.FetchAfter(ctx, url, p.cfg.RequestDelay)
}

// FetchAfter is Fetch with an explicit pre-fetch delay. The budget is
// rechecked after every wait; once the target is met no request is sent and
// crawler.ErrBudgetReached is returned.
func (p *Pipeline) FetchAfter(ctx context.Context, url string, delay time.Duration) (crawler.FetchResponse, error) {
	if p.targetReached() {
		return crawler.FetchResponse{}, crawler.ErrBudgetReached
	}
	if err := p.gate.Acquire(ctx, 1); err != nil {
		return crawler.FetchResponse{}, fmt.Errorf("acquire fetch slot: %w", err)
	}
	defer p.gate.Release(1)
	metrics.IncActiveWorkers(p.cfg.Adapter)
	defer metrics.DecActiveWorkers(p.cfg.Adapter)

	p.pauser.Pause(ctx, delay)
	if err := ctx.Err(); err != nil {
		return crawler.FetchResponse{}, fmt.Errorf("polite delay: %w", err)
	}
	if p.targetReached() {
		return crawler.FetchResponse{}, crawler.ErrBudgetReached
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, url); err != nil {
			return crawler.FetchResponse{}, err
		}
		if p.targetReached() {
			return crawler.FetchResponse{}, crawler.ErrBudgetReached
		}
	}

	resp, err := p.fetcher.Fetch(ctx, crawler.FetchRequest{
		URL:     url,
		Headers: p.cfg.Headers,
		Timeout: p.cfg.Timeout,
	})
	if err != nil {
		metrics.ObserveFetch(p.cfg.Adapter, "error", 0)
		return crawler.FetchResponse{}, err
	}
	metrics.ObserveFetch(p.cfg.Adapter, "ok", len(resp.Body))
	return resp, nil
}

func (p *Pipeline) targetReached() bool {
	return p.budget != nil && p.budget.Reached()
}

// Extract runs the adapter's extractor and records misses.
func (p *Pipeline) Extract(taskURL string, resp crawler.FetchResponse) (crawler.Extraction, bool) {
	ext, err := p.extractor.Extract(taskURL, resp)
	if err != nil {
		metrics.ObserveRejection(p.cfg.Adapter, "extraction_miss")
		p.logger.Debug("extraction miss", zap.String("url", taskURL), zap.Error(err))
		return crawler.Extraction{}, false
	}
	return ext, true
}

// Accept filters doc, claims its title when enabled, reserves a budget slot
// and writes it. It reports whether the document was written. The returned
// error is a sink failure and is fatal to the run.
func (p *Pipeline) Accept(doc crawler.Document) (bool, error) {
	if err := p.filter.Reject(doc); err != nil {
		metrics.ObserveRejection(p.cfg.Adapter, quality.Reason(err))
		p.logger.Debug("document rejected", zap.String("url", doc.URL), zap.Error(err))
		return false, nil
	}
	if p.cfg.DedupTitles && !p.dedup.TryClaimTitle(doc.Title) {
		metrics.ObserveRejection(p.cfg.Adapter, "duplicate_title")
		p.logger.Debug("duplicate title", zap.String("url", doc.URL), zap.String("title", doc.Title))
		return false, nil
	}
	n, ok := p.budget.Reserve()
	if !ok {
		return false, nil
	}
	if err := p.sink.Write(doc); err != nil {
		return false, fmt.Errorf("write document %s: %w", doc.URL, err)
	}
	metrics.ObserveDocument(p.cfg.Adapter)
	level := zap.DebugLevel
	if p.cfg.LogDocuments {
		level = zap.InfoLevel
	}
	p.logger.Log(level, "document written",
		zap.Int64("n", n),
		zap.String("title", shortTitle(doc.Title)),
		zap.Int("words", doc.WordCount),
	)
	if n%p.cfg.ProgressEvery == 0 {
		p.logger.Info("progress",
			zap.Int64("documents", n),
			zap.Int64("target", p.budget.Target()),
		)
	}
	return true, nil
}

const shortTitleRunes = 60

func shortTitle(title string) string {
	r := []rune(title)
	if len(r) <= shortTitleRunes {
		return title
	}
	return string(r[:shortTitleRunes]) + "..."
}
