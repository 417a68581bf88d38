package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrExtractionMiss marks a page missing the elements a site profile needs.
	ErrExtractionMiss = errors.New("extraction miss")
	// ErrQualityRejected marks a document that failed the quality thresholds.
	ErrQualityRejected = errors.New("quality rejected")
	// ErrBudgetReached marks a fetch abandoned because the document target
	// was met while it waited for its turn.
	ErrBudgetReached = errors.New("document target reached")
)

// FetchError is a transient, non-fatal fetch failure: transport error,
// timeout, non-200 status or non-HTML content.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
