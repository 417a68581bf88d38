package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
)

func TestFetchReturnsHTMLBody(t *testing.T) {
	t.Parallel()

	headers := make(chan http.Header, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><p>hello</p></body></html>`))
	}))
	defer server.Close()

	f := New(Config{
		UserAgent: "corpus-test/1.0",
		Timeout:   time.Second,
		Headers:   http.Header{"Referer": {"https://cyberleninka.ru/"}},
	})
	resp, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: server.URL + "/wiki/Go"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(resp.Body), "<p>hello</p>")
	require.Contains(t, resp.ContentType, "text/html")
	got := <-headers
	require.Equal(t, "corpus-test/1.0", got.Get("User-Agent"))
	require.Equal(t, "https://cyberleninka.ru/", got.Get("Referer"))
}

func TestFetchNon200IsFetchError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := New(Config{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: server.URL})
	require.Error(t, err)

	var fetchErr *crawler.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
}

func TestFetchNonHTMLIsFetchError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	f := New(Config{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: server.URL})
	require.Error(t, err)
	require.ErrorIs(t, err, errNotHTML)
	require.True(t, crawler.IsFetchError(err))
}

func TestFetchTimeoutIsFetchError(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := New(Config{Timeout: 5 * time.Second})
	start := time.Now()
	_, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: server.URL, Timeout: 100 * time.Millisecond})
	require.Error(t, err)
	require.True(t, crawler.IsFetchError(err))
	require.Less(t, time.Since(start), 3*time.Second)
}

func TestFetchSameURLTwice(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	f := New(Config{Timeout: time.Second})
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), crawler.FetchRequest{URL: server.URL + "/list"})
		require.NoError(t, err)
	}
	require.EqualValues(t, 2, hits.Load(), "retries must reach the server again")
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	f := New(Config{Headers: http.Header{"Accept-Language": {"ru-RU,ru;q=0.9"}}})
	req := crawler.FetchRequest{
		URL:     "https://example.com",
		Headers: http.Header{"X-Trace": {"yes"}},
	}
	start := time.Unix(0, 0)
	var result crawler.FetchResponse
	var fetchErr error
	var status int

	hooks := &stubHooks{}
	f.configureCollectorHooks(hooks, req, start, &result, &fetchErr, &status)
	require.NotNil(t, hooks.onRequest)
	require.NotNil(t, hooks.onResponse)
	require.NotNil(t, hooks.onError)

	collyReq := &colly.Request{Headers: &http.Header{}}
	hooks.onRequest(collyReq)
	require.Equal(t, "yes", collyReq.Headers.Get("X-Trace"))
	require.Equal(t, "ru-RU,ru;q=0.9", collyReq.Headers.Get("Accept-Language"))

	hooks.onResponse(&colly.Response{
		StatusCode: http.StatusOK,
		Body:       []byte("body"),
		Headers:    &http.Header{"Content-Type": {"text/html"}},
		Request:    &colly.Request{URL: mustParseURL(t, "https://example.com")},
	})
	require.Equal(t, "body", string(result.Body))
	require.Equal(t, "text/html", result.ContentType)

	hooks.onError(&colly.Response{StatusCode: http.StatusBadGateway}, errors.New("boom"))
	require.EqualError(t, fetchErr, "boom")
	require.Equal(t, http.StatusBadGateway, status)
}

func TestCopyHeadersHandlesNil(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	collyReq := &colly.Request{Headers: &http.Header{}}
	f.copyHeaders(nil, collyReq)
	require.Empty(t, *collyReq.Headers)
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse url %q: %v", raw, err)
	}
	return u
}

type stubHooks struct {
	onRequest  colly.RequestCallback
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnRequest(cb colly.RequestCallback) {
	s.onRequest = cb
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
