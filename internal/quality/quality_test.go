package quality

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
)

func TestEncyclopediaBoundaries(t *testing.T) {
	f := Encyclopedia(3, 1000, 0)
	ok := crawler.Document{Title: "T", ParagraphCount: 3, WordCount: 1000}
	require.NoError(t, f.Reject(ok))

	tests := []struct {
		name   string
		doc    crawler.Document
		reason string
	}{
		{"one paragraph short", crawler.Document{Title: "T", ParagraphCount: 2, WordCount: 5000}, ReasonParagraphs},
		{"one word short", crawler.Document{Title: "T", ParagraphCount: 10, WordCount: 999}, ReasonWords},
		{"empty title", crawler.Document{Title: "  ", ParagraphCount: 10, WordCount: 5000}, ReasonTitle},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := f.Reject(tc.doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, crawler.ErrQualityRejected))
			assert.Equal(t, tc.reason, Reason(err))
		})
	}
}

func TestMinTextLength(t *testing.T) {
	f := Encyclopedia(1, 1, 20)
	short := crawler.Document{Title: "T", ParagraphCount: 1, WordCount: 3, Text: "коротко и ясно"}
	err := f.Reject(short)
	require.ErrorIs(t, err, crawler.ErrQualityRejected)
	assert.Equal(t, ReasonLength, Reason(err))

	long := short
	long.Text = strings.Repeat("я", 20)
	require.NoError(t, f.Reject(long))
}

func TestCatalogIgnoresTitleAndParagraphs(t *testing.T) {
	f := Catalog(500)
	require.NoError(t, f.Reject(crawler.Document{WordCount: 500}))
	require.ErrorIs(t, f.Reject(crawler.Document{Title: "T", ParagraphCount: 40, WordCount: 499}), crawler.ErrQualityRejected)
}

func TestReasonSurvivesWrapping(t *testing.T) {
	err := Encyclopedia(3, 10, 0).Reject(crawler.Document{Title: "T", ParagraphCount: 3, WordCount: 2})
	wrapped := fmt.Errorf("page https://ru.example.org/wiki/X: %w", err)

	var rej *Rejection
	require.ErrorAs(t, wrapped, &rej)
	assert.Equal(t, ReasonWords, rej.Reason)
	assert.Equal(t, ReasonWords, Reason(wrapped))
	assert.ErrorIs(t, wrapped, crawler.ErrQualityRejected)
}

func TestReasonIgnoresMessageText(t *testing.T) {
	// Message mentions a label word but carries no Rejection.
	err := fmt.Errorf("%w: title words paragraphs", crawler.ErrQualityRejected)
	assert.Equal(t, ReasonOther, Reason(err))
	assert.Equal(t, ReasonTitle, Reason(&Rejection{Reason: ReasonTitle, Detail: "renamed message"}))
}
