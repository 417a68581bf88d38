// Package catalog walks the paginated category listings of the article
// catalog and feeds the listed articles through the crawl pipeline.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
	"github.com/JakeFAU/corpus-crawler/internal/metrics"
	"github.com/JakeFAU/corpus-crawler/internal/worker"
)

// Config controls the listing walk.
type Config struct {
	Adapter      string
	CategoryURLs []string
	MaxPages     int
	// Concurrency bounds the articles of one listing page processed at once.
	Concurrency int
	Retry       crawler.LinearRetryPolicy
	PagePause   time.Duration
}

// Walker implements the catalog adapter.
type Walker struct {
	cfg      Config
	pipeline *worker.Pipeline
	listing  crawler.ListingExtractor
	pauser   crawler.PauseController
	logger   *zap.Logger

	pending  atomic.Int64
	inFlight atomic.Int64
	done     atomic.Bool
}

// New constructs a Walker.
func New(
	cfg Config,
	pipeline *worker.Pipeline,
	listing crawler.ListingExtractor,
	pauser crawler.PauseController,
	logger *zap.Logger,
) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pauser == nil {
		pauser = crawler.TimerPauseController{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Walker{
		cfg:      cfg,
		pipeline: pipeline,
		listing:  listing,
		pauser:   pauser,
		logger:   logger,
	}
}

// PageURL returns the listing URL for a 1-based page number.
func PageURL(base string, page int) string {
	if page <= 1 {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strconv.Itoa(page)
}

// Run walks every category in order until the target is met. It returns a
// non-nil error only for a sink failure.
func (w *Walker) Run(ctx context.Context) error {
	defer w.done.Store(true)
	budget := w.pipeline.Budget()
	for _, base := range w.cfg.CategoryURLs {
		if ctx.Err() != nil || budget.Reached() {
			break
		}
		if err := w.walkCategory(ctx, base); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkCategory(ctx context.Context, base string) error {
	budget := w.pipeline.Budget()
	logger := w.logger.With(zap.String("category", base))
	for page := 1; page <= w.cfg.MaxPages; page++ {
		if ctx.Err() != nil || budget.Reached() {
			return nil
		}
		pageURL := PageURL(base, page)
		logger.Info("loading listing page", zap.Int("page", page), zap.String("url", pageURL))

		resp, err := w.fetchListing(ctx, pageURL)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, crawler.ErrBudgetReached) {
				logger.Warn("listing page failed after retries, stopping category",
					zap.Int("page", page), zap.Error(err))
			}
			return nil
		}
		links, err := w.listing.ArticleLinks(resp)
		if err != nil {
			logger.Warn("listing page unreadable, stopping category", zap.Int("page", page), zap.Error(err))
			return nil
		}
		if len(links) == 0 {
			logger.Info("no more articles, stopping category", zap.Int("page", page))
			return nil
		}

		if err := w.processArticles(ctx, links); err != nil {
			return err
		}
		if n := budget.Count(); n%100 == 0 || page%10 == 0 {
			logger.Info("progress",
				zap.Int64("documents", n),
				zap.Int64("target", budget.Target()),
				zap.Int("page", page),
			)
		}
		w.pauser.Pause(ctx, w.cfg.PagePause)
	}
	return nil
}

// fetchListing fetches one listing page with linear backoff.
func (w *Walker) fetchListing(ctx context.Context, pageURL string) (crawler.FetchResponse, error) {
	for attempt := 1; ; attempt++ {
		resp, err := w.pipeline.FetchAfter(ctx, pageURL, w.cfg.Retry.Backoff(attempt))
		if err == nil {
			metrics.ObserveListingAttempt("ok")
			return resp, nil
		}
		if errors.Is(err, crawler.ErrBudgetReached) {
			return crawler.FetchResponse{}, err
		}
		if !w.cfg.Retry.ShouldRetry(err, attempt) {
			metrics.ObserveListingAttempt("exhausted")
			return crawler.FetchResponse{}, fmt.Errorf("listing %s after %d attempts: %w", pageURL, attempt, err)
		}
		metrics.ObserveListingAttempt("retry")
		w.logger.Warn("retrying listing page",
			zap.String("url", pageURL),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", w.cfg.Retry.MaxAttempts),
			zap.Error(err),
		)
		w.pauser.Pause(ctx, w.cfg.Retry.Pause)
	}
}

// processArticles runs the articles of one listing page through the pool.
func (w *Walker) processArticles(ctx context.Context, links []string) error {
	budget := w.pipeline.Budget()
	dedup := w.pipeline.Dedup()
	w.pending.Store(int64(len(links)))
	defer w.pending.Store(0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)
	for _, link := range links {
		if gctx.Err() != nil || budget.Reached() {
			break
		}
		w.pending.Add(-1)
		normalized, err := crawler.NormalizeURL(link)
		if err != nil || !dedup.TryClaimURL(normalized) {
			continue
		}
		g.Go(func() error {
			w.inFlight.Add(1)
			defer w.inFlight.Add(-1)
			return w.processArticle(gctx, link)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("catalog articles: %w", err)
	}
	return nil
}

func (w *Walker) processArticle(ctx context.Context, link string) error {
	if w.pipeline.Budget().Reached() {
		return nil
	}
	resp, err := w.pipeline.Fetch(ctx, link)
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, crawler.ErrBudgetReached) {
			w.logger.Debug("article fetch failed", zap.String("url", link), zap.Error(err))
		}
		return nil
	}
	ext, ok := w.pipeline.Extract(link, resp)
	if !ok {
		return nil
	}
	_, err = w.pipeline.Accept(ext.Document)
	return err
}

// Stats returns a snapshot of the run.
func (w *Walker) Stats() crawler.Stats {
	budget := w.pipeline.Budget()
	return crawler.Stats{
		Adapter:      w.cfg.Adapter,
		Documents:    budget.Count(),
		Target:       budget.Target(),
		FrontierSize: int(w.pending.Load()),
		InFlight:     int(w.inFlight.Load()),
		VisitedURLs:  w.pipeline.Dedup().URLCount(),
		Done:         w.done.Load(),
	}
}
