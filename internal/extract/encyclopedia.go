package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	encyclopediaStripTags    = "script, style, nav, footer, header"
	encyclopediaClassMarkers = []string{
		"navbox", "infobox", "sidebar", "mw-editsection",
		"reference", "reflist", "toc", "catlinks", "mw-jump-link",
	}
	encyclopediaIDPattern = regexp.MustCompile(`toc|catlinks|mw-navigation`)
)

// EncyclopediaConfig tunes the encyclopedia profile.
type EncyclopediaConfig struct {
	// ArticlePathPrefix restricts followed links, e.g. "/wiki/".
	ArticlePathPrefix string
	// TitleSuffix is trimmed from <title> when the primary heading is missing.
	TitleSuffix       string
	ParagraphMinChars int
	FragmentMinChars  int
}

// Encyclopedia extracts MediaWiki-style article pages.
type Encyclopedia struct {
	cfg EncyclopediaConfig
}

// NewEncyclopedia returns the encyclopedia profile.
func NewEncyclopedia(cfg EncyclopediaConfig) *Encyclopedia {
	if cfg.ArticlePathPrefix == "" {
		cfg.ArticlePathPrefix = "/wiki/"
	}
	if cfg.ParagraphMinChars <= 0 {
		cfg.ParagraphMinChars = defaultParagraphMinChars
	}
	if cfg.FragmentMinChars <= 0 {
		cfg.FragmentMinChars = defaultFragmentMinChars
	}
	return &Encyclopedia{cfg: cfg}
}

// Title reads h1#firstHeading, falling back to <title> minus the site suffix.
// A missing title is not a miss here; the quality filter rejects it.
func (e *Encyclopedia) Title(doc *goquery.Document) (string, error) {
	if h := doc.Find("h1#firstHeading").First(); h.Length() > 0 {
		return nodeText(h, ""), nil
	}
	if t := doc.Find("title").First(); t.Length() > 0 {
		title := strings.TrimSpace(t.Text())
		if e.cfg.TitleSuffix != "" {
			title = strings.ReplaceAll(title, e.cfg.TitleSuffix, "")
		}
		return strings.TrimSpace(title), nil
	}
	return "", nil
}

// Links returns content-region anchors under the article path, resolved
// against base.
func (e *Encyclopedia) Links(doc *goquery.Document, base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}
	content := doc.Find("div#mw-content-text").First()
	if content.Length() == 0 {
		content = doc.Selection
	}
	var links []string
	content.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, e.cfg.ArticlePathPrefix) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, baseURL.ResolveReference(ref).String())
	})
	return links
}

// Body strips structural and boilerplate elements, then walks the content
// paragraphs.
func (e *Encyclopedia) Body(doc *goquery.Document) (string, int, error) {
	stripBoilerplate(doc)

	content := doc.Find("div#mw-content-text").First()
	if content.Length() == 0 {
		content = doc.Find("div.mw-parser-output").First()
	}
	if content.Length() == 0 {
		content = doc.Selection
	}

	paragraphs := 0
	var parts []string
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		if runeLen(nodeText(p, "")) > e.cfg.ParagraphMinChars {
			paragraphs++
		}
		if text := cleanText(nodeText(p, " ")); runeLen(text) > e.cfg.FragmentMinChars {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n"), paragraphs, nil
}

func stripBoilerplate(doc *goquery.Document) {
	doc.Find(encyclopediaStripTags).Remove()
	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		for _, class := range strings.Fields(s.AttrOr("class", "")) {
			for _, marker := range encyclopediaClassMarkers {
				if strings.Contains(class, marker) {
					s.Remove()
					return
				}
			}
		}
	})
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if encyclopediaIDPattern.MatchString(s.AttrOr("id", "")) {
			s.Remove()
		}
	})
}
