package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
)

const (
	defaultParagraphMinChars = 50
	defaultFragmentMinChars  = 30
)

// Profile holds the extraction rules of one site.
type Profile interface {
	// Title returns the canonical title. Profiles that require a title return
	// crawler.ErrExtractionMiss when it is absent.
	Title(doc *goquery.Document) (string, error)
	// Body returns the cleaned text and the paragraph count. It may strip
	// boilerplate from doc, so it runs after Title and Links.
	Body(doc *goquery.Document) (string, int, error)
}

// LinkProfile is a Profile that also follows outbound links.
type LinkProfile interface {
	Profile
	Links(doc *goquery.Document, base string) []string
}

// Extractor implements crawler.Extractor on top of a Profile.
type Extractor struct {
	profile    Profile
	keepMarkup bool
}

// New returns an Extractor for profile. keepMarkup retains the raw page
// markup on the Document.
func New(profile Profile, keepMarkup bool) *Extractor {
	return &Extractor{profile: profile, keepMarkup: keepMarkup}
}

// Extract parses page once and applies the profile.
func (e *Extractor) Extract(taskURL string, page crawler.FetchResponse) (crawler.Extraction, error) {
	doc, err := parseDocument(page.Body, page.ContentType)
	if err != nil {
		return crawler.Extraction{}, fmt.Errorf("%w: %v", crawler.ErrExtractionMiss, err)
	}

	title, err := e.profile.Title(doc)
	if err != nil {
		return crawler.Extraction{}, err
	}

	var links []string
	if lp, ok := e.profile.(LinkProfile); ok {
		base := page.URL
		if base == "" {
			base = taskURL
		}
		links = lp.Links(doc, base)
	}

	text, paragraphs, err := e.profile.Body(doc)
	if err != nil {
		return crawler.Extraction{}, err
	}

	document := crawler.Document{
		URL:            taskURL,
		Title:          title,
		Text:           text,
		WordCount:      WordCount(text),
		ParagraphCount: paragraphs,
	}
	if e.keepMarkup {
		document.RawMarkup = string(page.Body)
	}
	return crawler.Extraction{Document: document, Links: links}, nil
}
