// Package app builds a configured adapter run from Config, acting as the
// dependency container for one crawl.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/JakeFAU/corpus-crawler/internal/catalog"
	"github.com/JakeFAU/corpus-crawler/internal/clock/system"
	"github.com/JakeFAU/corpus-crawler/internal/config"
	"github.com/JakeFAU/corpus-crawler/internal/crawler"
	"github.com/JakeFAU/corpus-crawler/internal/dispatcher"
	"github.com/JakeFAU/corpus-crawler/internal/extract"
	collyfetcher "github.com/JakeFAU/corpus-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/corpus-crawler/internal/policy/ratelimit"
	"github.com/JakeFAU/corpus-crawler/internal/quality"
	"github.com/JakeFAU/corpus-crawler/internal/sink"
	"github.com/JakeFAU/corpus-crawler/internal/worker"
)

// Runner is a site adapter ready to run.
type Runner interface {
	Run(ctx context.Context) error
	Stats() crawler.Stats
}

// Closer releases the adapter's output.
type Closer interface {
	Close() error
}

// Adapter couples a Runner with its output sink.
type Adapter struct {
	name   string
	runner Runner
	out    Closer
	clock  crawler.Clock
	logger *zap.Logger
}

// NewAdapter wraps runner and out. It is exported for tests and alternative
// wiring; Build is the usual entry point.
func NewAdapter(name string, runner Runner, out Closer, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{name: name, runner: runner, out: out, clock: system.New(), logger: logger}
}

// Name returns the adapter label.
func (a *Adapter) Name() string {
	return a.name
}

// Stats proxies to the runner.
func (a *Adapter) Stats() crawler.Stats {
	return a.runner.Stats()
}

// Run executes the adapter, then closes its output. Cancellation is not an
// error: documents written so far stay in the output.
func (a *Adapter) Run(ctx context.Context) error {
	start := a.clock.Now()
	a.logger.Info("adapter started",
		zap.Int64("target", a.runner.Stats().Target),
		zap.Time("started_at", start),
	)

	runErr := a.runner.Run(ctx)
	closeErr := a.out.Close()

	stats := a.runner.Stats()
	a.logger.Info("adapter finished",
		zap.Int64("documents", stats.Documents),
		zap.Int64("visited_urls", stats.VisitedURLs),
		zap.Duration("elapsed", a.clock.Now().Sub(start)),
		zap.Bool("canceled", ctx.Err() != nil),
	)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run %s: %w", a.name, runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s output: %w", a.name, closeErr)
	}
	return nil
}

// Build wires the adapter named by site.
func Build(cfg config.Config, site string, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch site {
	case config.SiteWiki:
		return buildWiki(cfg, logger)
	case config.SiteCatalog:
		return buildCatalog(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unknown site %q (want %s or %s)",
			config.ErrInvalidConfig, site, config.SiteWiki, config.SiteCatalog)
	}
}

func buildWiki(cfg config.Config, logger *zap.Logger) (*Adapter, error) {
	wc := cfg.Wiki
	if err := wc.Validate(); err != nil {
		return nil, err
	}
	out, err := sink.Open(cfg.Output.Wiki, sink.WithMarkup, logger)
	if err != nil {
		return nil, fmt.Errorf("open wiki output: %w", err)
	}
	logger.Info("wiki settings",
		zap.Int("max_documents", wc.MaxDocuments),
		zap.Int("max_depth", wc.MaxDepth),
		zap.Int("min_paragraphs", wc.MinParagraphs),
		zap.Int("min_word_count", wc.MinWordCount),
		zap.Bool("dedup_titles", wc.DedupTitles),
		zap.String("output", out.Path()),
	)

	pipeline := worker.NewPipeline(worker.PipelineConfig{
		Adapter:      config.SiteWiki,
		RequestDelay: wc.RequestDelay(),
		Timeout:      wc.Timeout(),
		DedupTitles:  wc.DedupTitles,
	}, worker.PipelineDeps{
		Gate:    semaphore.NewWeighted(int64(wc.ConcurrentRequests)),
		Fetcher: collyfetcher.New(collyfetcher.Config{UserAgent: wc.UserAgent, Timeout: wc.Timeout()}),
		Limiter: ratelimit.New(ratelimit.Config{DefaultRPS: wc.RequestsPerSecond}),
		Extractor: extract.New(extract.NewEncyclopedia(extract.EncyclopediaConfig{
			ArticlePathPrefix: wc.ArticlePathPrefix,
			TitleSuffix:       wc.TitleSuffix,
		}), true),
		Filter: quality.Encyclopedia(wc.MinParagraphs, wc.MinWordCount, wc.MinTextLength),
		Sink:   out,
		Dedup:  crawler.NewDedupStore(),
		Budget: crawler.NewBudget(wc.MaxDocuments),
	}, logger)

	frontier := crawler.NewFrontier()
	rules := crawler.NewLinkRules(wc.ArticlePathPrefix, wc.ExcludedPatterns, wc.AllowedDomains)
	workers := make([]*worker.Worker, 0, wc.ConcurrentRequests)
	for i := 0; i < wc.ConcurrentRequests; i++ {
		workers = append(workers, worker.New(i, worker.Config{
			MaxDepth:        wc.MaxDepth,
			MaxLinksPerPage: wc.MaxLinksPerPage,
			IdleTimeout:     wc.IdleTimeout(),
		}, frontier, pipeline, rules, logger))
	}
	d := dispatcher.New(config.SiteWiki, frontier, pipeline, workers)
	d.Seed(wc.StartURLs)
	return NewAdapter(config.SiteWiki, d, out, logger), nil
}

func buildCatalog(cfg config.Config, logger *zap.Logger) (*Adapter, error) {
	cc := cfg.Catalog
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	profile, err := extract.NewCatalog(extract.CatalogConfig{
		TitleSuffixPattern: cc.TitleSuffixPattern,
		TextHeadingMarker:  cc.TextHeadingMarker,
		StopHeadingMarkers: cc.StopHeadingMarkers,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	out, err := sink.Open(cfg.Output.Catalog, sink.TextOnly, logger)
	if err != nil {
		return nil, fmt.Errorf("open catalog output: %w", err)
	}
	logger.Info("catalog settings",
		zap.Int("max_documents", cc.MaxDocuments),
		zap.Int("categories", len(cc.CategoryURLs)),
		zap.Int("max_pages", cc.MaxPages),
		zap.Int("min_word_count", cc.MinWordCount),
		zap.String("output", out.Path()),
	)

	headers := http.Header{}
	if cc.Accept != "" {
		headers.Set("Accept", cc.Accept)
	}
	if cc.AcceptLanguage != "" {
		headers.Set("Accept-Language", cc.AcceptLanguage)
	}
	if cc.Referer != "" {
		headers.Set("Referer", cc.Referer)
	}

	pipeline := worker.NewPipeline(worker.PipelineConfig{
		Adapter:      config.SiteCatalog,
		RequestDelay: cc.RequestDelay(),
		Timeout:      cc.Timeout(),
		Headers:      headers,
		LogDocuments: true,
	}, worker.PipelineDeps{
		Gate:      semaphore.NewWeighted(int64(cc.ConcurrentRequests)),
		Fetcher:   collyfetcher.New(collyfetcher.Config{UserAgent: cc.UserAgent, Timeout: cc.Timeout()}),
		Limiter:   ratelimit.New(ratelimit.Config{DefaultRPS: cc.RequestsPerSecond}),
		Extractor: extract.New(profile, false),
		Filter:    quality.Catalog(cc.MinWordCount),
		Sink:      out,
		Dedup:     crawler.NewDedupStore(),
		Budget:    crawler.NewBudget(cc.MaxDocuments),
	}, logger)

	w := catalog.New(catalog.Config{
		Adapter:      config.SiteCatalog,
		CategoryURLs: cc.CategoryURLs,
		MaxPages:     cc.MaxPages,
		Concurrency:  cc.ConcurrentRequests,
		Retry:        crawler.NewLinearRetryPolicy(cc.MaxAttempts, cc.RequestDelay(), cc.RetryPause()),
		PagePause:    cc.PagePause(),
	}, pipeline, extract.NewListing(cc.ArticlePathPrefix), nil, logger)
	return NewAdapter(config.SiteCatalog, w, out, logger), nil
}
