// Package content turns feed item HTML into plain-text descriptions.
package content

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// blockSelectors are elements whose text should not run into the next element's.
const blockSelectors = "p, div, li, br, tr, td, th, blockquote, pre, h1, h2, h3, h4, h5, h6, article, section"

// Snippet returns the plain text of an item description or content body.
// Complete HTML documents are reduced with readability first; fragments are
// stripped of markup with goquery. Whitespace is collapsed to single spaces.
func Snippet(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	if !strings.Contains(raw, "<") {
		return collapseSpace(html.UnescapeString(raw))
	}

	if isFullDocument(raw) {
		if text, err := ExtractText(raw); err == nil && text != "" {
			return collapseSpace(text)
		}
	}

	text, err := StripTags(raw)
	if err != nil {
		return collapseSpace(raw)
	}
	return collapseSpace(text)
}

// ExtractText extracts the main article text from a complete HTML document
func ExtractText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(article.TextContent), nil
}

// StripTags returns the text content of an HTML fragment, dropping scripts and styles
func StripTags(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find(blockSelectors).AppendHtml(" ")

	return doc.Text(), nil
}

func isFullDocument(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
