package crawler

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata. Implementations
// return a *FetchError for non-200 responses, non-HTML content and transport
// failures.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Extractor turns a fetched page into a Document (and links, when the site
// profile follows links). taskURL becomes the Document URL; links resolve
// against the final page URL. It returns ErrExtractionMiss when the page
// lacks the elements the profile needs.
type Extractor interface {
	Extract(taskURL string, page FetchResponse) (Extraction, error)
}

// ListingExtractor returns the article links found on a catalog listing page.
type ListingExtractor interface {
	ArticleLinks(page FetchResponse) ([]string, error)
}

// QualityFilter decides whether an extracted Document is kept. Reject returns
// nil for accepted documents and an error wrapping ErrQualityRejected
// otherwise.
type QualityFilter interface {
	Reject(doc Document) error
}

// Sink persists accepted documents.
type Sink interface {
	Write(doc Document) error
}

// RateLimiter enforces a request-rate ceiling for a URL's host.
type RateLimiter interface {
	Wait(ctx context.Context, url string) error
}

// Clock reports wall time for run timing.
type Clock interface {
	Now() time.Time
}
