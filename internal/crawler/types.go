package crawler

import (
	"net/http"
	"time"
)

// Task is a pending (url, depth) work item owned by the Frontier.
type Task struct {
	URL   string
	Depth int
}

// Document is the immutable result of extracting one fetched page.
type Document struct {
	URL            string
	Title          string
	Text           string
	RawMarkup      string
	WordCount      int
	ParagraphCount int
}

// Extraction bundles a Document with the outbound links discovered on the
// same page. Links is always empty for profiles that do not follow links.
type Extraction struct {
	Document Document
	Links    []string
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
	Timeout time.Duration
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
}

// Stats is a point-in-time snapshot of a running adapter.
type Stats struct {
	Adapter      string `json:"adapter"`
	Documents    int64  `json:"documents"`
	Target       int64  `json:"target"`
	FrontierSize int    `json:"frontier_size"`
	InFlight     int    `json:"in_flight"`
	VisitedURLs  int64  `json:"visited_urls"`
	Done         bool   `json:"done"`
}
