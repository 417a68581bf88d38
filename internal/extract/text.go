package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	citationRe   = regexp.MustCompile(`\[\d+\]`)
)

// parseDocument decodes body to UTF-8 when needed and parses it.
func parseDocument(body []byte, contentType string) (*goquery.Document, error) {
	data := body
	if !utf8.Valid(data) {
		enc, _, _ := charset.DetermineEncoding(data, contentType)
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		data = decoded
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// cleanText removes citation markers like "[12]" and collapses whitespace.
func cleanText(s string) string {
	s = citationRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// nodeText joins the trimmed text nodes below sel with sep, skipping empty
// nodes and script/style content.
func nodeText(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// WordCount returns the number of whitespace-delimited tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
