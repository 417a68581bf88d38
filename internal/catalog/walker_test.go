package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
	"github.com/JakeFAU/corpus-crawler/internal/extract"
	collyfetcher "github.com/JakeFAU/corpus-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/corpus-crawler/internal/quality"
	"github.com/JakeFAU/corpus-crawler/internal/worker"
)

// catalogSite is an httptest stand-in for the article catalog.
type catalogSite struct {
	mu       sync.Mutex
	listings map[string][]string
	failing  map[string]bool
	hits     map[string]int
}

func newCatalogSite() *catalogSite {
	return &catalogSite{
		listings: make(map[string][]string),
		failing:  make(map[string]bool),
		hits:     make(map[string]int),
	}
}

func (s *catalogSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	links, isListing := s.listings[r.URL.Path]
	failing := s.failing[r.URL.Path]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	switch {
	case failing:
		w.WriteHeader(http.StatusInternalServerError)
	case isListing:
		var b strings.Builder
		b.WriteString("<html><body><ul>")
		for _, l := range links {
			fmt.Fprintf(&b, `<li><a href="%s">article</a></li>`, l)
		}
		b.WriteString(`</ul><a href="/article/c/other">category</a></body></html>`)
		_, _ = w.Write([]byte(b.String()))
	case strings.HasPrefix(r.URL.Path, "/article/n/"):
		name := strings.TrimPrefix(r.URL.Path, "/article/n/")
		words := 40
		if strings.HasPrefix(name, "short") {
			words = 3
		}
		_, _ = fmt.Fprintf(w, `<html><body>
<h1>%s Текст научной статьи по специальности «Физика»</h1>
<h2>Текст научной работы на тему «%s»</h2>
<p>%s</p>
<h2>Список литературы</h2><p>%s</p>
</body></html>`, name, name, strings.TrimSpace(strings.Repeat("слово ", words)), strings.Repeat("ссылка ", 20))
	default:
		http.NotFound(w, r)
	}
}

func (s *catalogSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

type recordingSink struct {
	mu   sync.Mutex
	docs []crawler.Document
}

func (r *recordingSink) Write(doc crawler.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	return nil
}

func (r *recordingSink) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d.Title)
	}
	return out
}

func newWalker(t *testing.T, serverURL string, categories []string, target int) (*Walker, *recordingSink) {
	t.Helper()
	profile, err := extract.NewCatalog(extract.CatalogConfig{
		TitleSuffixPattern: `\s*Текст научной статьи по специальности.*$`,
		TextHeadingMarker:  "Текст научной работы",
		StopHeadingMarkers: []string{"Список литературы", "Похожие тем"},
	})
	require.NoError(t, err)

	sink := &recordingSink{}
	pipeline := worker.NewPipeline(worker.PipelineConfig{
		Adapter: "catalog-test",
		Timeout: 2 * time.Second,
		Headers: http.Header{"Referer": []string{serverURL + "/"}},
	}, worker.PipelineDeps{
		Gate:      semaphore.NewWeighted(2),
		Fetcher:   collyfetcher.New(collyfetcher.Config{UserAgent: "test-agent", Timeout: 2 * time.Second}),
		Extractor: extract.New(profile, false),
		Filter:    quality.Catalog(20),
		Sink:      sink,
		Dedup:     crawler.NewDedupStore(),
		Budget:    crawler.NewBudget(target),
	}, zap.NewNop())

	urls := make([]string, 0, len(categories))
	for _, c := range categories {
		urls = append(urls, serverURL+c)
	}
	w := New(Config{
		Adapter:      "catalog-test",
		CategoryURLs: urls,
		MaxPages:     10,
		Concurrency:  2,
		Retry:        crawler.NewLinearRetryPolicy(3, time.Millisecond, time.Millisecond),
	}, pipeline, extract.NewListing("/article/n/"), nil, zap.NewNop())
	return w, sink
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://c.example/article/c/physics", PageURL("https://c.example/article/c/physics", 1))
	require.Equal(t, "https://c.example/article/c/physics/2", PageURL("https://c.example/article/c/physics", 2))
	require.Equal(t, "https://c.example/article/c/physics/3", PageURL("https://c.example/article/c/physics/", 3))
}

func TestWalkerStopsCategoryOnEmptyListing(t *testing.T) {
	t.Parallel()

	site := newCatalogSite()
	site.listings["/article/c/physics"] = []string{"/article/n/alpha", "/article/n/beta", "/article/n/short-one"}
	site.listings["/article/c/physics/2"] = []string{"/article/n/gamma", "/article/n/alpha"}
	site.listings["/article/c/physics/3"] = nil
	srv := httptest.NewServer(site)
	defer srv.Close()

	w, sink := newWalker(t, srv.URL, []string{"/article/c/physics"}, 100)
	require.NoError(t, w.Run(context.Background()))

	require.ElementsMatch(t, []string{"alpha", "beta", "gamma"}, sink.titles())
	require.Equal(t, 1, site.hitCount("/article/n/alpha"))
	require.Equal(t, 1, site.hitCount("/article/c/physics/3"))
	require.Zero(t, site.hitCount("/article/c/physics/4"))

	stats := w.Stats()
	require.True(t, stats.Done)
	require.EqualValues(t, 3, stats.Documents)
	require.EqualValues(t, 4, stats.VisitedURLs)
}

func TestWalkerFailingListingStopsOnlyThatCategory(t *testing.T) {
	t.Parallel()

	site := newCatalogSite()
	site.failing["/article/c/broken"] = true
	site.listings["/article/c/history"] = []string{"/article/n/delta"}
	srv := httptest.NewServer(site)
	defer srv.Close()

	w, sink := newWalker(t, srv.URL, []string{"/article/c/broken", "/article/c/history"}, 100)
	require.NoError(t, w.Run(context.Background()))

	require.Equal(t, 3, site.hitCount("/article/c/broken"))
	require.Zero(t, site.hitCount("/article/c/broken/2"))
	require.Equal(t, []string{"delta"}, sink.titles())
}

func TestWalkerStopsAtTarget(t *testing.T) {
	t.Parallel()

	site := newCatalogSite()
	site.listings["/article/c/a"] = []string{"/article/n/one", "/article/n/two", "/article/n/three", "/article/n/four"}
	site.listings["/article/c/b"] = []string{"/article/n/five"}
	srv := httptest.NewServer(site)
	defer srv.Close()

	w, sink := newWalker(t, srv.URL, []string{"/article/c/a", "/article/c/b"}, 2)
	require.NoError(t, w.Run(context.Background()))

	require.Len(t, sink.titles(), 2)
	require.Zero(t, site.hitCount("/article/c/b"))
	require.Zero(t, site.hitCount("/article/c/a/2"))
}

func TestFetchListingStopsOnceTargetReached(t *testing.T) {
	t.Parallel()

	site := newCatalogSite()
	site.listings["/article/c/a"] = []string{"/article/n/one"}
	srv := httptest.NewServer(site)
	defer srv.Close()

	w, _ := newWalker(t, srv.URL, []string{"/article/c/a"}, 1)
	_, ok := w.pipeline.Budget().Reserve()
	require.True(t, ok)

	_, err := w.fetchListing(context.Background(), srv.URL+"/article/c/a")
	require.ErrorIs(t, err, crawler.ErrBudgetReached)
	require.Zero(t, site.hitCount("/article/c/a"), "no request once the target is met")

	require.NoError(t, w.processArticle(context.Background(), srv.URL+"/article/n/one"))
	require.Zero(t, site.hitCount("/article/n/one"))
}
