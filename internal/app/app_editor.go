package app

import (
	"fmt"

	"pagedoc/internal/clipboard"
	"pagedoc/internal/domain"
	"pagedoc/internal/editor"
)

// ============================================================
// Editing surfaces
// ============================================================

// surface returns the surface rendering blockID in an open document.
func (a *App) surface(docID, blockID string) (*editor.Editor, *editor.Surface, error) {
	ed, err := a.editor(docID)
	if err != nil {
		return nil, nil, err
	}
	s := ed.SurfaceOf(blockID)
	if s == nil {
		return nil, nil, fmt.Errorf("block %s not found in document %s", blockID, docID)
	}
	return ed, s, nil
}

// KeyDown routes a key press. Document-level shortcuts win over the block's
// own handling. It reports whether the key was consumed.
func (a *App) KeyDown(docID, blockID string, ev editor.KeyEvent, caret editor.Caret) (bool, error) {
	ed, s, err := a.surface(docID, blockID)
	if err != nil {
		return false, err
	}
	if ed.HandleShortcut(ev) != editor.ShortcutNone {
		return true, nil
	}
	return s.KeyDown(blockID, ev, caret), nil
}

// Input reports a block's content, as inline markup, after the host applied
// a keystroke.
func (a *App) Input(docID, blockID, markup string) (bool, error) {
	_, s, err := a.surface(docID, blockID)
	if err != nil {
		return false, err
	}
	return s.InputMarkup(blockID, markup), nil
}

// FocusBlock records where the caret is.
func (a *App) FocusBlock(docID, blockID string, caret editor.Caret) error {
	ed, err := a.editor(docID)
	if err != nil {
		return err
	}
	ed.Focus(blockID, caret)
	return nil
}

// Paste reports false when the host should perform its own inline paste.
func (a *App) Paste(docID, blockID string, p clipboard.Payload) (bool, error) {
	_, s, err := a.surface(docID, blockID)
	if err != nil {
		return false, err
	}
	return s.Paste(blockID, p), nil
}

// Copy returns the selected blocks in every clipboard format, or nil when
// nothing is selected.
func (a *App) Copy(docID string) (*clipboard.Payload, error) {
	ed, err := a.editor(docID)
	if err != nil {
		return nil, err
	}
	p, ok := ed.Copy()
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (a *App) ApplyFormatting(docID, kind, value string) (bool, error) {
	ed, err := a.editor(docID)
	if err != nil {
		return false, err
	}
	return ed.ApplyFormatting(kind, value), nil
}

// PageChanged merges a page's edited slice back into the document.
func (a *App) PageChanged(docID, pageID string, blocks []domain.Block) (bool, error) {
	ed, err := a.editor(docID)
	if err != nil {
		return false, err
	}
	return ed.PageChanged(pageID, blocks), nil
}

// SetPageCapacity changes the page content height, e.g. after a zoom.
func (a *App) SetPageCapacity(docID string, capacity float64) error {
	ed, err := a.editor(docID)
	if err != nil {
		return err
	}
	ed.SetCapacity(capacity)
	return nil
}

func (a *App) Undo(docID string) (bool, error) {
	ed, err := a.editor(docID)
	if err != nil {
		return false, err
	}
	return ed.Undo(), nil
}

func (a *App) Redo(docID string) (bool, error) {
	ed, err := a.editor(docID)
	if err != nil {
		return false, err
	}
	return ed.Redo(), nil
}
