package normalizer

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Elements whose content is never analysable text.
var droppedElements = "script, style, noscript, template, svg, iframe, canvas, object"

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "dd": true,
	"details": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "summary": true, "table": true, "tr": true,
	"td": true, "th": true, "title": true, "ul": true, "br": true,
	// feeds
	"channel": true, "feed": true, "item": true, "entry": true, "description": true,
	"content": true,
}

var (
	cdataPattern = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	markupLike   = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
)

// Normalize extracts readable text from a fetched document. Markup is removed,
// entities are decoded and script-like elements are dropped. Block elements end a
// line, whitespace inside a line collapses and blank lines are removed.
//
// CDATA sections are unwrapped before parsing. In RSS and Atom documents,
// entity-escaped markup inside feed text is parsed once more.
func Normalize(raw []byte) string {
	raw = cdataPattern.ReplaceAll(raw, []byte("$1"))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return collapseLines(string(raw))
	}

	doc.Find(droppedElements).Remove()
	feed := doc.Find("rss, feed").Length() > 0

	var b strings.Builder
	for _, n := range doc.Selection.Nodes {
		writeText(&b, n, feed)
	}
	return collapseLines(b.String())
}

func writeText(b *strings.Builder, n *html.Node, reparse bool) {
	switch n.Type {
	case html.TextNode:
		if reparse && markupLike.MatchString(n.Data) {
			writeEscapedMarkup(b, n.Data)
			return
		}
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c, reparse)
	}
	if block {
		b.WriteByte('\n')
	}
}

// writeEscapedMarkup renders text that decoded to markup, e.g. an Atom
// type="html" body. Only one level is unescaped.
func writeEscapedMarkup(b *strings.Builder, markup string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		b.WriteString(markup)
		return
	}
	doc.Find(droppedElements).Remove()

	b.WriteByte('\n')
	for _, n := range doc.Selection.Nodes {
		writeText(b, n, false)
	}
	b.WriteByte('\n')
}

func collapseLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if collapsed := strings.Join(strings.Fields(line), " "); collapsed != "" {
			out = append(out, collapsed)
		}
	}
	return strings.Join(out, "\n")
}

// Truncate shortens text to at most max runes. A max of zero or less disables truncation.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	i := 0
	for pos := range text {
		if i == max {
			return text[:pos]
		}
		i++
	}
	return text
}
