package epub

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "p, div, br, li, tr, td, blockquote, h1, h2, h3, h4, h5, h6"

// PlainText reduces a chapter body fragment to whitespace-normalized text.
// It is meant for previews and word counts, not for rendering.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()
	// Keep adjacent blocks from running their words together.
	doc.Find(blockSelector).AfterHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// WordCount returns the number of whitespace-separated words in the
// plain text of a chapter.
func (c Chapter) WordCount() int {
	return len(strings.Fields(PlainText(c.Content)))
}
