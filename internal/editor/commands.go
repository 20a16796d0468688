package editor

import (
	"pagedoc/internal/clipboard"
	"pagedoc/internal/content"
	"pagedoc/internal/domain"
	"pagedoc/internal/selection"
)

// ─────────────────────────────────────────────────────────────
// History
// ─────────────────────────────────────────────────────────────

// Undo restores the previous snapshot. A change still waiting for its
// debounced commit is committed first so it can be undone as one step.
func (e *Editor) Undo() bool {
	e.history.Flush()
	blocks, err := e.history.Undo()
	if err != nil {
		return false
	}
	e.restore(blocks)
	return true
}

// Redo reapplies the most recently undone snapshot.
func (e *Editor) Redo() bool {
	blocks, err := e.history.Redo()
	if err != nil {
		return false
	}
	e.restore(blocks)
	return true
}

func (e *Editor) restore(blocks []domain.Block) {
	e.mu.Lock()
	o := e.setBlocksLocked(blocks)
	o.record = false
	o.resyncAll = true
	if !e.selected.Empty() {
		e.selected = nil
		o.selection = true
	}
	e.mu.Unlock()
	e.finish(o)
}

// HandleShortcut runs a document-level shortcut: Mod+Z undoes,
// Mod+Shift+Z and Mod+Y redo, Mod+S saves. It returns which one ran.
func (e *Editor) HandleShortcut(ev KeyEvent) Shortcut {
	if !ev.Mod() {
		return ShortcutNone
	}
	switch {
	case ev.is("z") && ev.Shift:
		e.Redo()
		return ShortcutRedo
	case ev.is("z"):
		e.Undo()
		return ShortcutUndo
	case ev.is("y"):
		e.Redo()
		return ShortcutRedo
	case ev.is("s"):
		e.Save()
		return ShortcutSave
	}
	return ShortcutNone
}

// Save commits pending history and hands the document to the save callback.
func (e *Editor) Save() {
	e.history.Flush()
	value := e.Value()
	if e.onSave != nil {
		e.onSave(value)
	}
	e.emit(EventSave, value)
}

// ─────────────────────────────────────────────────────────────
// Formatting
// ─────────────────────────────────────────────────────────────

// Formatting kinds accepted by ApplyFormatting.
const (
	FormatBold      = "bold"
	FormatItalic    = "italic"
	FormatUnderline = "underline"
	FormatAlign     = "align"
)

// ApplyFormatting is the imperative formatting command. Bold and underline
// toggle the style over the focused block's live selection. Italic has no
// segment flag and is accepted without effect. Align sets the alignment of
// every selected block, or of the focused block when nothing is selected.
// It reports whether the document changed.
func (e *Editor) ApplyFormatting(kind, value string) bool {
	e.mu.Lock()
	var o outcome
	switch kind {
	case FormatBold, FormatUnderline:
		style := content.StyleBold
		if kind == FormatUnderline {
			style = content.StyleUnderline
		}
		id, caret := e.focused, e.caret
		if id == "" || caret.Collapsed() {
			break
		}
		o = e.updateBlocksLocked(func(b *domain.Block) bool {
			if b.ID != id {
				return false
			}
			c := caret.normalized(content.Length(b.Content))
			before := b.Content
			b.Content = content.ToggleStyle(b.Content, c.Start, c.End, style)
			return !content.Equal(before, b.Content)
		})
	case FormatAlign:
		align := domain.Align(value)
		if !align.Valid() {
			break
		}
		targets := e.selected
		if targets.Empty() {
			if e.focused == "" {
				break
			}
			targets = selection.Of(e.focused)
		}
		o = e.updateBlocksLocked(func(b *domain.Block) bool {
			if !targets.Has(b.ID) || b.Align == align {
				return false
			}
			b.Align = align
			return true
		})
	}
	e.mu.Unlock()
	e.finish(o)
	return o.changed
}

// ─────────────────────────────────────────────────────────────
// Selection
// ─────────────────────────────────────────────────────────────

// Select replaces the block selection.
func (e *Editor) Select(ids ...string) {
	e.mu.Lock()
	e.selected = selection.Of(ids...)
	e.mu.Unlock()
	e.finish(outcome{selection: true})
}

// SelectAll selects every block of the document.
func (e *Editor) SelectAll() {
	e.mu.Lock()
	o := e.selectAllLocked()
	e.mu.Unlock()
	e.finish(o)
}

func (e *Editor) selectAllLocked() outcome {
	e.selected = selection.All(e.blocks)
	return outcome{selection: true}
}

// ClearSelection returns to caret mode.
func (e *Editor) ClearSelection() {
	e.Select()
}

// Selected returns the selected ids in document order.
func (e *Editor) Selected() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected.InOrder(e.blocks)
}

// PointerDown handles a press inside a block's editable text: without
// additive it leaves block selection for caret mode.
func (e *Editor) PointerDown(blockID string, additive bool) {
	if !e.menus.OpenOn(blockID) {
		e.menus.Close()
	}
	if additive {
		return
	}
	e.mu.Lock()
	had := !e.selected.Empty()
	e.selected = nil
	e.focused = blockID
	e.mu.Unlock()
	if had {
		e.finish(outcome{selection: true})
	}
}

// BeginMarquee starts a rectangular selection drag.
func (e *Editor) BeginMarquee(p selection.Point, additive bool) {
	e.mu.Lock()
	e.selected = e.marquee.Begin(p, e.selected, additive)
	e.mu.Unlock()
	e.finish(outcome{selection: true})
}

// UpdateMarquee moves the drag corner and selects the blocks it touches.
func (e *Editor) UpdateMarquee(p selection.Point, width float64, extents []selection.Extent) selection.Rect {
	e.mu.Lock()
	sel, r := e.marquee.Update(p, width, extents)
	if !e.marquee.Active() {
		e.mu.Unlock()
		return r
	}
	e.selected = sel
	e.mu.Unlock()
	e.finish(outcome{selection: true})
	return r
}

func (e *Editor) EndMarquee() {
	e.mu.Lock()
	e.marquee.End()
	e.mu.Unlock()
}

// Copy serializes the selected blocks. It reports false in caret mode.
func (e *Editor) Copy() (clipboard.Payload, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected.Empty() {
		return clipboard.Payload{}, false
	}
	return clipboard.Copy(e.selected.Blocks(e.blocks)), true
}

// ─────────────────────────────────────────────────────────────
// Structural edits
// ─────────────────────────────────────────────────────────────

// DeleteSelected removes every selected block.
func (e *Editor) DeleteSelected() bool {
	e.mu.Lock()
	if e.selected.Empty() {
		e.mu.Unlock()
		return false
	}
	o := e.bulkDeleteLocked()
	e.mu.Unlock()
	e.finish(o)
	return true
}

// bulkDeleteLocked removes the selected blocks, keeps the document non-empty
// and focuses the block before the first removed one.
func (e *Editor) bulkDeleteLocked() outcome {
	first, _ := e.selected.Bounds(e.blocks)
	var kept []domain.Block
	for _, b := range e.blocks {
		if !e.selected.Has(b.ID) {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		kept = []domain.Block{domain.NewEmptyBlock()}
	}
	e.selected = nil
	o := e.setBlocksLocked(kept)
	o.selection = true

	at := min(max(0, first-1), len(e.blocks)-1)
	e.focus.Request(domain.FocusEnd(e.blocks[at].ID))
	return o
}

// DragStart selects the dragged block unless it is already selected.
func (e *Editor) DragStart(blockID string) {
	e.mu.Lock()
	i := domain.IndexOf(e.blocks, blockID)
	e.selected = selection.DragStart(e.blocks, i, e.selected)
	e.mu.Unlock()
	e.finish(outcome{selection: true})
}

// MoveBlocks drops the selection, or draggedID when nothing is selected, on
// the given side of targetID. The selection is cleared afterwards.
func (e *Editor) MoveBlocks(draggedID, targetID string, side selection.Side) bool {
	e.mu.Lock()
	moved, ok := selection.Move(e.blocks, e.selected,
		domain.IndexOf(e.blocks, draggedID), domain.IndexOf(e.blocks, targetID), side)
	if !ok {
		e.mu.Unlock()
		return false
	}
	o := e.setBlocksLocked(moved)
	e.selected = nil
	o.selection = true
	e.mu.Unlock()
	e.finish(o)
	return true
}

// RetypeBlocks is the block menu "turn into" action: it applies to the
// selection when blockID is part of it, otherwise to blockID alone.
func (e *Editor) RetypeBlocks(blockID string, t domain.BlockType) bool {
	if !t.Valid() {
		return false
	}
	e.mu.Lock()
	targets := selection.Of(blockID)
	if e.selected.Has(blockID) {
		targets = e.selected
	}
	o := e.updateBlocksLocked(func(b *domain.Block) bool {
		if !targets.Has(b.ID) || b.Type == t {
			return false
		}
		b.Type = t
		return true
	})
	e.mu.Unlock()
	e.finish(o)
	return o.changed
}

// DeleteBlock is the block menu delete action: it removes the selection when
// blockID is part of it, otherwise blockID alone.
func (e *Editor) DeleteBlock(blockID string) bool {
	e.mu.Lock()
	if e.selected.Has(blockID) {
		o := e.bulkDeleteLocked()
		e.mu.Unlock()
		e.finish(o)
		return true
	}
	i := domain.IndexOf(e.blocks, blockID)
	if i < 0 {
		e.mu.Unlock()
		return false
	}
	blocks := domain.CloneBlocks(e.blocks)
	blocks = append(blocks[:i], blocks[i+1:]...)
	o := e.setBlocksLocked(blocks)
	e.mu.Unlock()
	e.finish(o)
	return true
}

// InsertBlock adds a block after afterID, or at the start when afterID is
// empty, and focuses its end. It returns the new id.
func (e *Editor) InsertBlock(afterID string, t domain.BlockType, segs []domain.TextSegment) (string, bool) {
	if !t.Valid() {
		return "", false
	}
	e.mu.Lock()
	at := 0
	if afterID != "" {
		i := domain.IndexOf(e.blocks, afterID)
		if i < 0 {
			e.mu.Unlock()
			return "", false
		}
		at = i + 1
	}
	nb := domain.Block{ID: domain.NewBlockID(), Type: t, Content: content.Normalize(segs)}
	blocks := domain.CloneBlocks(e.blocks)
	blocks = append(blocks[:at], append([]domain.Block{nb}, blocks[at:]...)...)
	o := e.setBlocksLocked(blocks)
	e.focus.Request(domain.FocusEnd(nb.ID))
	e.mu.Unlock()
	e.finish(o)
	return nb.ID, true
}

// SetBlockContent replaces a block's content from outside a surface.
func (e *Editor) SetBlockContent(blockID string, segs []domain.TextSegment) bool {
	e.mu.Lock()
	o := e.updateBlocksLocked(func(b *domain.Block) bool {
		if b.ID != blockID || content.Equal(b.Content, segs) {
			return false
		}
		b.Content = segs
		return true
	})
	e.mu.Unlock()
	e.finish(o)
	return o.changed
}
