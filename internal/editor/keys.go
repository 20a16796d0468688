package editor

import "strings"

// Key names follow the DOM KeyboardEvent.key values.
const (
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
	KeyTab       = "Tab"
	KeyArrowUp   = "ArrowUp"
	KeyArrowDown = "ArrowDown"
	KeyEscape    = "Escape"
)

// KeyEvent is a key press delivered to a block.
type KeyEvent struct {
	Key   string `json:"key"`
	Shift bool   `json:"shift,omitempty"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
}

// Mod reports whether the platform command modifier is held.
func (k KeyEvent) Mod() bool { return k.Ctrl || k.Meta }

func (k KeyEvent) is(key string) bool {
	return strings.EqualFold(k.Key, key)
}

// Caret is the live text selection inside a block, in grapheme offsets.
// Start == End is a collapsed caret.
type Caret struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// At returns a collapsed caret.
func At(offset int) Caret { return Caret{Start: offset, End: offset} }

func (c Caret) Collapsed() bool { return c.Start == c.End }

func (c Caret) normalized(length int) Caret {
	if c.Start > c.End {
		c.Start, c.End = c.End, c.Start
	}
	c.Start = min(max(c.Start, 0), length)
	c.End = min(max(c.End, 0), length)
	return c
}

// Shortcut is a document-level command recognized by HandleShortcut.
type Shortcut int

const (
	ShortcutNone Shortcut = iota
	ShortcutUndo
	ShortcutRedo
	ShortcutSave
)
