// Package clipboard maps clipboard payloads onto blocks and back.
//
// Paste tries the formats richest first: the structured block array, then
// rich markup, then multi-line plain text. A format that fails to parse or
// yields nothing falls through to the next one.
package clipboard

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
	"pagedoc/internal/selection"
)

const (
	MIMEText = "text/plain"
	MIMEHTML = "text/html"
	MIMEJSON = "application/json"
)

// Payload carries the clipboard data in every format the editor understands.
type Payload struct {
	Text string `json:"text,omitempty"`
	HTML string `json:"html,omitempty"`
	JSON string `json:"json,omitempty"`
}

// Get returns the data stored under a MIME type.
func (p Payload) Get(mime string) string {
	switch mime {
	case MIMEText:
		return p.Text
	case MIMEHTML:
		return p.HTML
	case MIMEJSON:
		return p.JSON
	}
	return ""
}

// Source names the format a paste was resolved from.
type Source string

const (
	SourceNone Source = ""
	SourceJSON Source = "json"
	SourceHTML Source = "html"
	SourceText Source = "text"
)

// Resolve turns a payload into fresh blocks. Every returned block has a newly
// generated id. A nil result means the paste should be left to the surface
// as inline text.
func Resolve(p Payload) ([]domain.Block, Source) {
	if blocks := fromJSON(p.JSON); len(blocks) > 0 {
		return blocks, SourceJSON
	}
	if blocks := fromHTML(p.HTML); len(blocks) > 0 {
		return blocks, SourceHTML
	}
	if blocks := fromText(p.Text); len(blocks) > 0 {
		return blocks, SourceText
	}
	return nil, SourceNone
}

func fromJSON(data string) []domain.Block {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	blocks, err := content.ParseBlocks([]byte(data))
	if err != nil || len(blocks) == 0 || blocks[0].ID == "" || blocks[0].Type == "" {
		return nil
	}
	for i := range blocks {
		blocks[i].ID = ""
	}
	// Sanitize assigns the missing ids.
	return content.Sanitize(blocks, true)
}

func fromHTML(markup string) []domain.Block {
	if strings.TrimSpace(markup) == "" {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil
	}
	body := findBody(doc)
	if body == nil {
		return nil
	}
	var out []domain.Block
	walk(body, func(n *html.Node) {
		typ, ok := containerType(n, body)
		if !ok {
			return
		}
		segs := trimSegments(content.SegmentsOf(n))
		if content.IsEmpty(segs) {
			return
		}
		out = append(out, domain.Block{ID: domain.NewBlockID(), Type: typ, Content: segs})
	})
	return out
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// walk visits every element below root in document order.
func walk(root *html.Node, fn func(*html.Node)) {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			fn(c)
		}
		walk(c, fn)
	}
}

// containerType maps a container element to a block type. Divs only count
// when they sit directly in the body.
func containerType(n, body *html.Node) (domain.BlockType, bool) {
	switch n.DataAtom {
	case atom.H1:
		return domain.BlockTypeH1, true
	case atom.H2:
		return domain.BlockTypeH2, true
	case atom.H3:
		return domain.BlockTypeH3, true
	case atom.P:
		return domain.BlockTypeText, true
	case atom.Li:
		if n.Parent != nil && n.Parent.DataAtom == atom.Ol {
			return domain.BlockTypeNumber, true
		}
		return domain.BlockTypeBullet, true
	case atom.Div:
		return domain.BlockTypeText, n.Parent == body
	}
	return "", false
}

func trimSegments(segs []domain.TextSegment) []domain.TextSegment {
	segs = append([]domain.TextSegment(nil), segs...)
	if len(segs) == 0 {
		return content.Empty()
	}
	segs[0].Text = strings.TrimLeft(segs[0].Text, " \t\r\n")
	last := len(segs) - 1
	segs[last].Text = strings.TrimRight(segs[last].Text, " \t\r\n")
	return content.Normalize(segs)
}

func fromText(text string) []domain.Block {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return nil
	}
	out := make([]domain.Block, len(lines))
	for i, l := range lines {
		out[i] = domain.Block{ID: domain.NewBlockID(), Type: domain.BlockTypeText, Content: content.Plain(l)}
	}
	return out
}

// Copy serializes blocks in all three formats at once.
func Copy(blocks []domain.Block) Payload {
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = content.PlainText(b.Content)
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		data = []byte("[]")
	}
	return Payload{
		Text: strings.Join(texts, "\n"),
		HTML: toHTML(blocks),
		JSON: string(data),
	}
}

func toHTML(blocks []domain.Block) string {
	var b strings.Builder
	list := domain.BlockType("")
	closeList := func() {
		switch list {
		case domain.BlockTypeBullet:
			b.WriteString("</ul>")
		case domain.BlockTypeNumber:
			b.WriteString("</ol>")
		}
		list = ""
	}
	for _, blk := range blocks {
		inner := content.ToMarkup(blk.Content)
		if blk.Type != list {
			closeList()
		}
		switch blk.Type {
		case domain.BlockTypeH1, domain.BlockTypeH2, domain.BlockTypeH3:
			b.WriteString("<" + string(blk.Type) + ">" + inner + "</" + string(blk.Type) + ">")
		case domain.BlockTypeBullet, domain.BlockTypeNumber:
			if list == "" {
				if blk.Type == domain.BlockTypeBullet {
					b.WriteString("<ul>")
				} else {
					b.WriteString("<ol>")
				}
				list = blk.Type
			}
			b.WriteString("<li>" + inner + "</li>")
		default:
			b.WriteString("<p>" + inner + "</p>")
		}
	}
	closeList()
	return b.String()
}

// Outcome is the result of applying a paste to a block list.
type Outcome struct {
	Blocks  []domain.Block
	FocusID string
	// Handled is false when the surface should perform its native inline paste.
	Handled bool
}

// Apply merges pasted blocks into blocks at the block currentID.
//
// Several pasted blocks replace the selected range when currentID is part of
// the selection, keeping the id of the first selected block. Otherwise an
// empty current block takes the first pasted block's type and content and the
// rest are inserted after it; a current block with content is kept and every
// pasted block goes after it. A single pasted block only applies when the
// current block is empty and of a different type, which retypes it in place.
func Apply(blocks []domain.Block, currentID string, sel selection.Set, pasted []domain.Block) Outcome {
	index := domain.IndexOf(blocks, currentID)
	if index < 0 || len(pasted) == 0 {
		return Outcome{Blocks: blocks}
	}

	if len(pasted) == 1 {
		cur := blocks[index]
		if cur.Type == pasted[0].Type || !content.IsEmpty(cur.Content) {
			return Outcome{Blocks: blocks}
		}
		out := domain.CloneBlocks(blocks)
		out[index].Type = pasted[0].Type
		out[index].Content = content.Normalize(pasted[0].Content)
		return Outcome{Blocks: out, FocusID: currentID, Handled: true}
	}

	first := pasted[0]
	rest := make([]domain.Block, len(pasted)-1)
	for i, b := range pasted[1:] {
		b = b.Clone()
		b.ID = domain.NewBlockID()
		rest[i] = b
	}

	out := make([]domain.Block, 0, len(blocks)+len(rest))
	if sel.Has(currentID) {
		lo, hi := sel.Bounds(blocks)
		head := first.Clone()
		head.ID = blocks[lo].ID
		out = append(out, domain.CloneBlocks(blocks[:lo])...)
		out = append(out, head)
		out = append(out, rest...)
		out = append(out, domain.CloneBlocks(blocks[hi+1:])...)
		return Outcome{Blocks: out, FocusID: head.ID, Handled: true}
	}

	cur := blocks[index].Clone()
	focusID := cur.ID
	if content.IsEmpty(cur.Content) {
		cur.Type = first.Type
		cur.Content = content.Normalize(first.Content)
	} else {
		head := first.Clone()
		head.ID = domain.NewBlockID()
		rest = append([]domain.Block{head}, rest...)
		focusID = rest[len(rest)-1].ID
	}
	out = append(out, domain.CloneBlocks(blocks[:index])...)
	out = append(out, cur)
	out = append(out, rest...)
	out = append(out, domain.CloneBlocks(blocks[index+1:])...)
	return Outcome{Blocks: out, FocusID: focusID, Handled: true}
}
