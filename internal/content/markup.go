package content

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"pagedoc/internal/domain"
)

// Carriage returns are written as references since the HTML tokenizer folds
// raw CR and CRLF into LF.
var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#13;")

// ToMarkup renders content as inline markup: bold runs are wrapped in <b>,
// then underline runs in <u>. Reserved characters are escaped.
func ToMarkup(segs []domain.TextSegment) string {
	var b strings.Builder
	for _, s := range segs {
		res := markupEscaper.Replace(s.Text)
		if s.Bold {
			res = "<b>" + res + "</b>"
		}
		if s.Underline {
			res = "<u>" + res + "</u>"
		}
		b.WriteString(res)
	}
	return b.String()
}

// FromMarkup parses inline markup back into normalized content. Style flags
// accumulate down the element tree; every text node becomes a segment.
// Unknown elements are transparent. Text without any markup yields one
// unstyled segment.
func FromMarkup(markup string) []domain.TextSegment {
	nodes, err := parseFragment(markup)
	if err != nil {
		return Normalize(Plain(markup))
	}
	var segs []domain.TextSegment
	for _, n := range nodes {
		segs = collectSegments(n, false, false, segs)
	}
	return Normalize(segs)
}

// SegmentsOf extracts the styled text under an already parsed node.
func SegmentsOf(n *html.Node) []domain.TextSegment {
	var segs []domain.TextSegment
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		segs = collectSegments(c, false, false, segs)
	}
	return Normalize(segs)
}

func parseFragment(markup string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(markup), ctx)
}

func collectSegments(n *html.Node, bold, underline bool, out []domain.TextSegment) []domain.TextSegment {
	switch n.Type {
	case html.TextNode:
		if n.Data != "" {
			out = append(out, domain.TextSegment{Text: n.Data, Bold: bold, Underline: underline})
		}
	case html.ElementNode:
		style := attr(n, "style")
		bold = bold || n.DataAtom == atom.B || n.DataAtom == atom.Strong || hasBoldStyle(style)
		underline = underline || n.DataAtom == atom.U || hasUnderlineStyle(style)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out = collectSegments(c, bold, underline, out)
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasBoldStyle(style string) bool {
	return strings.Contains(style, "font-weight: bold") || strings.Contains(style, "font-weight:bold") ||
		strings.Contains(style, "font-weight: 700") || strings.Contains(style, "font-weight:700")
}

func hasUnderlineStyle(style string) bool {
	return strings.Contains(style, "text-decoration: underline") || strings.Contains(style, "text-decoration:underline")
}
