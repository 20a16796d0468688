package editor

import (
	"strings"

	"pagedoc/internal/clipboard"
	"pagedoc/internal/content"
	"pagedoc/internal/domain"
	"pagedoc/internal/menu"
)

// Surface edits the blocks of one page. It holds no blocks of its own: every
// handler reads the page's current slice from the Editor and reports the new
// slice back through the page change path.
type Surface struct {
	e      *Editor
	pageID string
}

func (s *Surface) PageID() string { return s.pageID }

// Blocks returns a copy of the page's blocks.
func (s *Surface) Blocks() []domain.Block {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	pi := s.e.pageIndexLocked(s.pageID)
	if pi < 0 {
		return nil
	}
	return domain.CloneBlocks(s.e.pages[pi].Blocks)
}

// pageCtx is the state a handler works on while holding the editor lock.
type pageCtx struct {
	e     *Editor
	pi    int
	local []domain.Block
	i     int
}

func (c *pageCtx) block() *domain.Block { return &c.local[c.i] }

func (c *pageCtx) isFirstPage() bool { return c.pi == 0 }

func (c *pageCtx) isLastPage() bool { return c.pi == len(c.e.pages)-1 }

// commit reports the edited slice to the editor.
func (c *pageCtx) commit() outcome {
	for i := range c.local {
		c.local[i].Content = content.Normalize(c.local[i].Content)
	}
	return c.e.pageChangedLocked(c.pi, c.local)
}

// with locks the editor, resolves blockID on this page and runs fn. The
// outcome is finished after the lock is released.
func (s *Surface) with(blockID string, fn func(c *pageCtx) (outcome, bool)) bool {
	e := s.e
	e.mu.Lock()
	pi := e.pageIndexLocked(s.pageID)
	if pi < 0 {
		e.mu.Unlock()
		return false
	}
	local := domain.CloneBlocks(e.pages[pi].Blocks)
	i := domain.IndexOf(local, blockID)
	if i < 0 {
		e.mu.Unlock()
		return false
	}
	o, handled := fn(&pageCtx{e: e, pi: pi, local: local, i: i})
	e.mu.Unlock()
	e.finish(o)
	return handled
}

// ─────────────────────────────────────────────────────────────
// Keyboard
// ─────────────────────────────────────────────────────────────

// KeyDown handles a key pressed in blockID with the given caret. It reports
// whether the key was consumed; unconsumed keys get their default behavior
// in the host, which then reports the new content through Input.
func (s *Surface) KeyDown(blockID string, ev KeyEvent, caret Caret) bool {
	return s.with(blockID, func(c *pageCtx) (outcome, bool) {
		e := c.e
		b := c.block()
		length := content.Length(b.Content)
		caret = caret.normalized(length)
		e.focused, e.caret = blockID, caret

		if ev.Mod() && ev.is("a") {
			if length == 0 || (caret.Start == 0 && caret.End == length) {
				return e.selectAllLocked(), true
			}
			return outcome{}, false
		}

		if e.menus.OpenOn(blockID) {
			if o, ok := c.menuKey(ev); ok {
				return o, true
			}
		} else if e.menus.IsOpen() {
			e.menus.Close()
		}

		if ev.is(KeyEscape) && !e.selected.Empty() {
			e.selected = nil
			return outcome{selection: true}, true
		}

		if (ev.is(KeyBackspace) || ev.is(KeyDelete)) && !e.selected.Empty() {
			return e.bulkDeleteLocked(), true
		}

		switch {
		case ev.is(KeyArrowUp):
			return c.arrowUp(caret)
		case ev.is(KeyArrowDown):
			return c.arrowDown(caret, length)
		case ev.is(KeyEnter) && !ev.Shift:
			return c.enter(caret, length)
		case ev.is(KeyTab):
			return c.tab(ev.Shift)
		case ev.is(KeyBackspace):
			return c.backspace(caret)
		case ev.is(KeyDelete):
			return c.forwardDelete(caret, length)
		case ev.Key == menu.SlashTrigger:
			e.menus.Open(menu.Slash, blockID)
		case ev.Key == menu.MentionTrigger:
			e.menus.Open(menu.Mention, blockID)
		}
		return outcome{}, false
	})
}

func (c *pageCtx) menuKey(ev KeyEvent) (outcome, bool) {
	e := c.e
	switch {
	case ev.is(KeyArrowDown):
		e.menus.Next()
	case ev.is(KeyArrowUp):
		e.menus.Prev()
	case ev.is(KeyEscape):
		e.menus.Close()
	case ev.is(KeyEnter):
		ch, ok := e.menus.Choose()
		if !ok {
			return outcome{}, true
		}
		return c.applyChoice(ch), true
	default:
		return outcome{}, false
	}
	return outcome{}, true
}

func (c *pageCtx) applyChoice(ch menu.Choice) outcome {
	i := domain.IndexOf(c.local, ch.BlockID)
	if i < 0 {
		return outcome{}
	}
	c.local[i] = ch.Apply(c.local[i])
	o := c.commit()
	o.resync = append(o.resync, ch.BlockID)
	c.e.focus.Request(domain.FocusEnd(ch.BlockID))
	return o
}

func (c *pageCtx) arrowUp(caret Caret) (outcome, bool) {
	if caret.Start != 0 {
		return outcome{}, false
	}
	if c.i > 0 {
		c.e.focus.Request(domain.FocusEnd(c.local[c.i-1].ID))
		return outcome{}, true
	}
	// First block of the page: continue on the previous page.
	if g := domain.IndexOf(c.e.blocks, c.block().ID); g > 0 {
		c.e.focus.Request(domain.FocusEnd(c.e.blocks[g-1].ID))
		return outcome{}, true
	}
	return outcome{}, false
}

func (c *pageCtx) arrowDown(caret Caret, length int) (outcome, bool) {
	if caret.End != length {
		return outcome{}, false
	}
	if c.i < len(c.local)-1 {
		c.e.focus.Request(domain.FocusAt(c.local[c.i+1].ID, 0))
		return outcome{}, true
	}
	if g := domain.IndexOf(c.e.blocks, c.block().ID); g >= 0 && g < len(c.e.blocks)-1 {
		c.e.focus.Request(domain.FocusAt(c.e.blocks[g+1].ID, 0))
		return outcome{}, true
	}
	return outcome{}, false
}

func (c *pageCtx) enter(caret Caret, length int) (outcome, bool) {
	b := c.block()
	if b.Type.IsList() && strings.TrimSpace(content.PlainText(b.Content)) == "" {
		b.Type = domain.BlockTypeText
		return c.commit(), true
	}

	before := content.Slice(b.Content, 0, caret.Start)
	after := content.Slice(b.Content, caret.End, length)
	newType := domain.BlockTypeText
	if b.Type.IsList() {
		newType = b.Type
	}
	nb := domain.Block{ID: domain.NewBlockID(), Type: newType, Content: after}
	b.Content = before

	c.local = append(c.local[:c.i+1], append([]domain.Block{nb}, c.local[c.i+1:]...)...)
	o := c.commit()
	o.resync = append(o.resync, c.local[c.i].ID)
	c.e.focus.Request(domain.FocusAt(nb.ID, 0))
	return o, true
}

func (c *pageCtx) tab(outdent bool) (outcome, bool) {
	b := c.block()
	switch {
	case outdent && b.Indent > 0:
		b.Indent--
	case !outdent && b.Indent < domain.MaxIndent:
		b.Indent++
	default:
		return outcome{}, true
	}
	return c.commit(), true
}

func (c *pageCtx) backspace(caret Caret) (outcome, bool) {
	if !caret.Collapsed() || caret.Start != 0 {
		return outcome{}, false
	}
	b := c.block()
	switch {
	case b.Indent > 0:
		b.Indent--
		return c.commit(), true
	case b.Type.IsList():
		b.Type = domain.BlockTypeText
		return c.commit(), true
	case c.i > 0:
		prev := &c.local[c.i-1]
		offset := content.Length(prev.Content)
		prev.Content = content.Concat(prev.Content, b.Content)
		prevID := prev.ID
		c.local = append(c.local[:c.i], c.local[c.i+1:]...)
		o := c.commit()
		o.resync = append(o.resync, prevID)
		c.e.focus.Request(domain.FocusAt(prevID, offset))
		return o, true
	case !c.isFirstPage():
		return c.e.mergeToPreviousLocked(b.ID)
	}
	return outcome{}, false
}

func (c *pageCtx) forwardDelete(caret Caret, length int) (outcome, bool) {
	if !caret.Collapsed() || caret.End != length {
		return outcome{}, false
	}
	b := c.block()
	switch {
	case c.i < len(c.local)-1:
		next := c.local[c.i+1]
		b.Content = content.Concat(b.Content, next.Content)
		id := b.ID
		c.local = append(c.local[:c.i+1], c.local[c.i+2:]...)
		o := c.commit()
		o.resync = append(o.resync, id)
		c.e.focus.Request(domain.FocusAt(id, length))
		return o, true
	case !c.isLastPage():
		return c.e.mergeFromNextLocked(b.ID)
	}
	return outcome{}, false
}

// ─────────────────────────────────────────────────────────────
// Input
// ─────────────────────────────────────────────────────────────

var markdownPrefixes = map[string]domain.BlockType{
	"# ":   domain.BlockTypeH1,
	"## ":  domain.BlockTypeH2,
	"### ": domain.BlockTypeH3,
	"- ":   domain.BlockTypeBullet,
	"* ":   domain.BlockTypeBullet,
	"1. ":  domain.BlockTypeNumber,
}

// Editable surfaces may report non-breaking or zero-width spaces.
var spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u200b", " ")

// Input reports the live content of blockID after the host applied a
// keystroke. It tracks an open menu's query and converts markdown prefixes
// typed into an otherwise empty text block.
func (s *Surface) Input(blockID string, segs []domain.TextSegment) bool {
	return s.with(blockID, func(c *pageCtx) (outcome, bool) {
		e := c.e
		b := c.block()
		segs = content.Normalize(segs)
		text := content.PlainText(segs)
		e.menus.Input(blockID, text)

		var o outcome
		if b.Type == domain.BlockTypeText && !e.menus.OpenOn(blockID) {
			if t, ok := markdownPrefixes[spaceReplacer.Replace(text)]; ok {
				b.Type = t
				b.Content = content.Empty()
				o = c.commit()
				o.resync = append(o.resync, blockID)
				e.focus.Request(domain.FocusAt(blockID, 0))
				return o, true
			}
		}
		if content.Equal(b.Content, segs) {
			return outcome{}, false
		}
		b.Content = segs
		return c.commit(), true
	})
}

// InputMarkup is Input for hosts that report inline markup.
func (s *Surface) InputMarkup(blockID, markup string) bool {
	return s.Input(blockID, content.FromMarkup(markup))
}

// ─────────────────────────────────────────────────────────────
// Clipboard
// ─────────────────────────────────────────────────────────────

// Paste resolves a clipboard payload into blockID. It reports false when the
// host should perform its own inline paste.
func (s *Surface) Paste(blockID string, p clipboard.Payload) bool {
	pasted, _ := clipboard.Resolve(p)
	if len(pasted) == 0 {
		return false
	}
	return s.with(blockID, func(c *pageCtx) (outcome, bool) {
		e := c.e
		if e.selected.Has(blockID) {
			// A selection may span pages; replace it across the whole document.
			res := clipboard.Apply(e.blocks, blockID, e.selected, pasted)
			if !res.Handled {
				return outcome{}, false
			}
			o := e.setBlocksLocked(res.Blocks)
			o.resyncAll = true
			e.selected = nil
			o.selection = true
			e.focus.Request(domain.FocusEnd(res.FocusID))
			return o, true
		}
		res := clipboard.Apply(c.local, blockID, e.selected, pasted)
		if !res.Handled {
			return outcome{}, false
		}
		c.local = res.Blocks
		o := c.commit()
		o.resyncAll = true
		if len(pasted) > 1 {
			e.selected = nil
			o.selection = true
		}
		e.focus.Request(domain.FocusEnd(res.FocusID))
		return o, true
	})
}

// Copy serializes the selected blocks of the whole document.
func (s *Surface) Copy() (clipboard.Payload, bool) {
	return s.e.Copy()
}

// ─────────────────────────────────────────────────────────────
// Block actions
// ─────────────────────────────────────────────────────────────

// InsertAfter adds an empty text block after blockID and opens the slash
// menu on it once it renders. It returns the new block id.
func (s *Surface) InsertAfter(blockID string) (string, bool) {
	var id string
	ok := s.with(blockID, func(c *pageCtx) (outcome, bool) {
		nb := domain.NewEmptyBlock()
		id = nb.ID
		c.local = append(c.local[:c.i+1], append([]domain.Block{nb}, c.local[c.i+1:]...)...)
		o := c.commit()
		c.e.focus.Request(domain.FocusEnd(nb.ID))
		c.e.pendingSlash = nb.ID
		return o, true
	})
	return id, ok
}
