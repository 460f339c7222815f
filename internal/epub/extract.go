package epub

import (
	"regexp"
	"strings"
)

// The extractors slice named elements out of chapter markup with regular
// expressions instead of building a tree. Nested elements of the same name,
// or foreign markup carrying its own <title> (inline SVG), can produce a
// wrong slice. Tag names are matched case-sensitively and attributes are
// ignored. Self-closing tags never open a span.
var (
	bodyRe    = regexp.MustCompile(`(?s)` + openTag("body") + `(.*)</body>`)
	titleRe   = regexp.MustCompile(`(?s)` + openTag("title") + `(.*?)</title>`)
	headingRe = regexp.MustCompile(`(?s)` + openTag("h1") + `(.*?)</h1>|` + openTag("h2") + `(.*?)</h2>`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
)

func openTag(name string) string {
	return `<` + name + `(?:\s+[^>]*[^/>])?\s*>`
}

// ExtractBody returns the trimmed inner markup of the body element, spanning
// from the first <body> to the last </body>. Markup without a body is
// returned unchanged.
func ExtractBody(markup string) string {
	m := bodyRe.FindStringSubmatch(markup)
	if m == nil {
		return markup
	}
	return strings.TrimSpace(m[1])
}

// ExtractTitle returns the text of the first <title>, or failing that the
// tag-stripped text of the first <h1> or <h2>.
func ExtractTitle(markup string) (string, bool) {
	if m := titleRe.FindStringSubmatch(markup); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			return t, true
		}
	}

	m := headingRe.FindStringSubmatch(markup)
	if m == nil {
		return "", false
	}
	inner := m[1]
	if inner == "" {
		inner = m[2]
	}
	if t := strings.TrimSpace(tagRe.ReplaceAllString(inner, "")); t != "" {
		return t, true
	}
	return "", false
}
