package domain

import (
	"strings"

	"github.com/google/uuid"
)

type BlockType string

const (
	BlockTypeText   BlockType = "text"
	BlockTypeH1     BlockType = "h1"
	BlockTypeH2     BlockType = "h2"
	BlockTypeH3     BlockType = "h3"
	BlockTypeBullet BlockType = "bullet"
	BlockTypeNumber BlockType = "number"
)

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case BlockTypeText, BlockTypeH1, BlockTypeH2, BlockTypeH3, BlockTypeBullet, BlockTypeNumber:
		return true
	}
	return false
}

// IsList reports whether t is a bulleted or numbered list item.
func (t BlockType) IsList() bool {
	return t == BlockTypeBullet || t == BlockTypeNumber
}

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

func (a Align) Valid() bool {
	return a == AlignLeft || a == AlignCenter || a == AlignRight
}

// MaxIndent is the deepest indent level a block can have.
const MaxIndent = 4

// TextSegment is a run of text sharing the same inline style.
type TextSegment struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// SameStyle reports whether s and o carry identical style flags.
func (s TextSegment) SameStyle(o TextSegment) bool {
	return s.Bold == o.Bold && s.Underline == o.Underline
}

type Block struct {
	ID        string        `json:"id"`
	Type      BlockType     `json:"type"`
	Content   []TextSegment `json:"content"`
	Completed bool          `json:"completed,omitempty"`
	Align     Align         `json:"align,omitempty"`
	Indent    int           `json:"indent,omitempty"`
}

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	c := b
	c.Content = append([]TextSegment(nil), b.Content...)
	return c
}

// CloneBlocks deep-copies a block list. The result is never nil.
func CloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// IndexOf returns the position of the block with the given id, or -1.
func IndexOf(blocks []Block, id string) int {
	for i := range blocks {
		if blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// BlockIDs returns the ids of blocks in order.
func BlockIDs(blocks []Block) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return ids
}

// NewBlockID returns a short random id, unique within a document session.
func NewBlockID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// NewEmptyBlock returns an empty text block with a fresh id.
func NewEmptyBlock() Block {
	return Block{ID: NewBlockID(), Type: BlockTypeText, Content: []TextSegment{{Text: ""}}}
}
