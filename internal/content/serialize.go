package content

import (
	"encoding/json"
	"log"
	"strings"

	"pagedoc/internal/domain"
)

// LegacyBlockID is the id given to a document loaded from a plain string.
const LegacyBlockID = "legacy"

// DefaultBlocks is the content of a fresh document: one empty text block.
func DefaultBlocks() []domain.Block {
	return []domain.Block{{ID: "1", Type: domain.BlockTypeText, Content: Empty()}}
}

// wireBlock accepts both the current segment form of content and the older
// plain string form.
type wireBlock struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content"`
	Completed bool            `json:"completed"`
	Align     string          `json:"align"`
	Indent    int             `json:"indent"`
}

func (w wireBlock) block() domain.Block {
	b := domain.Block{
		ID:        w.ID,
		Type:      domain.BlockType(w.Type),
		Completed: w.Completed,
		Align:     domain.Align(w.Align),
		Indent:    w.Indent,
	}
	var text string
	if err := json.Unmarshal(w.Content, &text); err == nil {
		b.Content = Plain(text)
		return b
	}
	var segs []domain.TextSegment
	if err := json.Unmarshal(w.Content, &segs); err == nil {
		b.Content = segs
	}
	return b
}

// Decode turns the host's serialized value into a block list. It never
// fails: unparseable input degrades to the default document.
func Decode(value string, allowEmpty bool) []domain.Block {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if allowEmpty {
			return []domain.Block{}
		}
		return DefaultBlocks()
	}
	// Only text that cannot start JSON is legacy plain text. A legacy string
	// such as "[draft] notes" fails to parse and gets the default document.
	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
		return []domain.Block{{ID: LegacyBlockID, Type: domain.BlockTypeText, Content: Plain(value)}}
	}
	blocks, err := ParseBlocks([]byte(trimmed))
	if err != nil {
		log.Printf("[CONTENT] decode: falling back to default document: %v", err)
		return DefaultBlocks()
	}
	return Sanitize(blocks, allowEmpty)
}

// ParseBlocks unmarshals a JSON block array without sanitizing it.
func ParseBlocks(data []byte) ([]domain.Block, error) {
	var wire []wireBlock
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	blocks := make([]domain.Block, len(wire))
	for i, w := range wire {
		blocks[i] = w.block()
	}
	return blocks, nil
}

// Sanitize enforces the block invariants on an externally supplied list:
// normalized content, known types, indent within range, unique non-empty
// ids, and at least one block unless allowEmpty.
func Sanitize(blocks []domain.Block, allowEmpty bool) []domain.Block {
	if len(blocks) == 0 {
		if allowEmpty {
			return []domain.Block{}
		}
		return DefaultBlocks()
	}
	seen := make(map[string]bool, len(blocks))
	out := make([]domain.Block, len(blocks))
	for i, b := range blocks {
		b = b.Clone()
		if b.ID == "" || seen[b.ID] {
			b.ID = domain.NewBlockID()
		}
		seen[b.ID] = true
		if !b.Type.Valid() {
			b.Type = domain.BlockTypeText
		}
		if b.Align != "" && !b.Align.Valid() {
			b.Align = ""
		}
		b.Indent = min(max(b.Indent, 0), domain.MaxIndent)
		b.Content = Normalize(b.Content)
		out[i] = b
	}
	return out
}

// Encode serializes blocks for the host's onChange callback.
func Encode(blocks []domain.Block) string {
	if blocks == nil {
		blocks = []domain.Block{}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// NumberLabel returns the ordinal shown before the numbered list item at
// index i: its position within the contiguous run of number blocks ending at i.
func NumberLabel(blocks []domain.Block, i int) int {
	n := 0
	for j := i; j >= 0 && j < len(blocks); j-- {
		if blocks[j].Type != domain.BlockTypeNumber {
			break
		}
		n++
	}
	return n
}
