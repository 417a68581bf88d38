// Package quality decides whether an extracted document is worth keeping.
package quality

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
)

// Thresholds configures the filter. Zero values disable a check.
type Thresholds struct {
	MinParagraphs int
	MinWordCount  int
	// MinTextLength is a floor on the body length in characters.
	MinTextLength int
	RequireTitle  bool
}

// Filter implements crawler.QualityFilter.
type Filter struct {
	t Thresholds
}

// New returns a filter for t.
func New(t Thresholds) *Filter {
	return &Filter{t: t}
}

// Encyclopedia returns the filter used for encyclopedia articles.
func Encyclopedia(minParagraphs, minWords, minTextLength int) *Filter {
	return New(Thresholds{
		MinParagraphs: minParagraphs,
		MinWordCount:  minWords,
		MinTextLength: minTextLength,
		RequireTitle:  true,
	})
}

// Catalog returns the filter used for catalog articles.
func Catalog(minWords int) *Filter {
	return New(Thresholds{MinWordCount: minWords})
}

// Rejection labels.
const (
	ReasonTitle      = "title"
	ReasonParagraphs = "paragraphs"
	ReasonWords      = "words"
	ReasonLength     = "length"
	ReasonOther      = "other"
)

// Rejection is the error Reject returns. It wraps crawler.ErrQualityRejected
// and carries a stable Reason label independent of the message text.
type Rejection struct {
	Reason string
	Detail string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", crawler.ErrQualityRejected, r.Detail)
}

func (r *Rejection) Unwrap() error {
	return crawler.ErrQualityRejected
}

func reject(reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Reject returns nil when doc passes, or a *Rejection naming the failed
// check.
func (f *Filter) Reject(doc crawler.Document) error {
	switch {
	case f.t.RequireTitle && strings.TrimSpace(doc.Title) == "":
		return reject(ReasonTitle, "empty title")
	case doc.ParagraphCount < f.t.MinParagraphs:
		return reject(ReasonParagraphs, "%d paragraphs, need %d", doc.ParagraphCount, f.t.MinParagraphs)
	case doc.WordCount < f.t.MinWordCount:
		return reject(ReasonWords, "%d words, need %d", doc.WordCount, f.t.MinWordCount)
	case f.t.MinTextLength > 0 && utf8.RuneCountInString(doc.Text) < f.t.MinTextLength:
		return reject(ReasonLength, "text shorter than %d characters", f.t.MinTextLength)
	}
	return nil
}

// Reason returns the metric label carried by a *Rejection in err's chain,
// or ReasonOther.
func Reason(err error) string {
	var r *Rejection
	if errors.As(err, &r) && r.Reason != "" {
		return r.Reason
	}
	return ReasonOther
}
