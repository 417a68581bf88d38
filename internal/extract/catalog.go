package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/corpus-crawler/internal/crawler"
)

// CatalogConfig tunes the article-catalog profile.
type CatalogConfig struct {
	// TitleSuffixPattern is a regexp removed from the h1 text.
	TitleSuffixPattern string
	// TextHeadingMarker identifies the h2/h3 that introduces the full text.
	TextHeadingMarker string
	// StopHeadingMarkers end the body (references, related topics).
	StopHeadingMarkers []string
	ParagraphMinChars  int
	FragmentMinChars   int
}

// Catalog extracts academic-article pages.
type Catalog struct {
	cfg         CatalogConfig
	titleSuffix *regexp.Regexp
}

// NewCatalog compiles the catalog profile.
func NewCatalog(cfg CatalogConfig) (*Catalog, error) {
	if cfg.ParagraphMinChars <= 0 {
		cfg.ParagraphMinChars = defaultParagraphMinChars
	}
	if cfg.FragmentMinChars <= 0 {
		cfg.FragmentMinChars = defaultFragmentMinChars
	}
	c := &Catalog{cfg: cfg}
	if cfg.TitleSuffixPattern != "" {
		re, err := regexp.Compile(cfg.TitleSuffixPattern)
		if err != nil {
			return nil, fmt.Errorf("compile title suffix pattern: %w", err)
		}
		c.titleSuffix = re
	}
	return c, nil
}

// Title reads the first h1 and strips the classification suffix.
func (c *Catalog) Title(doc *goquery.Document) (string, error) {
	h := doc.Find("h1").First()
	if h.Length() == 0 {
		return "", fmt.Errorf("%w: no h1", crawler.ErrExtractionMiss)
	}
	title := nodeText(h, "")
	if c.titleSuffix != nil {
		title = c.titleSuffix.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title), nil
}

// Body collects the siblings after the full-text heading until a references
// or related-topics heading. Other headings are skipped.
func (c *Catalog) Body(doc *goquery.Document) (string, int, error) {
	var header *goquery.Selection
	doc.Find("h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.Contains(h.Text(), c.cfg.TextHeadingMarker) {
			header = h
			return false
		}
		return true
	})
	if header == nil {
		return "", 0, fmt.Errorf("%w: no full-text heading", crawler.ErrExtractionMiss)
	}

	var parts []string
	header.NextAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		switch goquery.NodeName(s) {
		case "h1", "h2", "h3":
			return !c.isStopHeading(nodeText(s, ""))
		}
		if text := cleanText(nodeText(s, " ")); runeLen(text) > c.cfg.FragmentMinChars {
			parts = append(parts, text)
		}
		return true
	})

	paragraphs := 0
	for _, p := range parts {
		if runeLen(p) > c.cfg.ParagraphMinChars {
			paragraphs++
		}
	}
	return strings.Join(parts, "\n"), paragraphs, nil
}

func (c *Catalog) isStopHeading(text string) bool {
	if text == "" {
		return false
	}
	for _, marker := range c.cfg.StopHeadingMarkers {
		if marker != "" && strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Listing extracts article links from catalog listing pages.
type Listing struct {
	articlePathPrefix string
}

// NewListing returns a listing extractor for article paths under prefix.
func NewListing(articlePathPrefix string) *Listing {
	return &Listing{articlePathPrefix: articlePathPrefix}
}

// ArticleLinks returns every same-host anchor whose path starts with the
// article prefix, resolved against the listing page URL.
func (l *Listing) ArticleLinks(page crawler.FetchResponse) ([]string, error) {
	base, err := url.Parse(page.URL)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}
	doc, err := parseDocument(page.Body, page.ContentType)
	if err != nil {
		return nil, err
	}
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		ref, err := url.Parse(a.AttrOr("href", ""))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if !strings.EqualFold(abs.Host, base.Host) {
			return
		}
		if !strings.HasPrefix(abs.Path, l.articlePathPrefix) {
			return
		}
		abs.Fragment = ""
		links = append(links, abs.String())
	})
	return links, nil
}
