package selection

import (
	"math"

	"pagedoc/internal/domain"
)

// Point is a position in the editor content box, scroll offset included.
type Point struct {
	X, Y float64
}

// Rect is a normalized rectangle with non-negative width and height.
type Rect struct {
	X, Y, W, H float64
}

// RectFrom normalizes the rectangle spanned by two corners.
func RectFrom(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

// Extent is the vertical span a block occupies in the content box.
type Extent struct {
	ID     string
	Top    float64
	Bottom float64
}

// HitTest returns, in extent order, the ids of blocks intersecting r. Blocks
// span the full content width, so the horizontal test is against [0, width].
func HitTest(r Rect, width float64, extents []Extent) []string {
	out := []string{}
	if r.X > width || r.X+r.W < 0 {
		return out
	}
	for _, e := range extents {
		if r.Y > e.Bottom || r.Y+r.H < e.Top {
			continue
		}
		out = append(out, e.ID)
	}
	return out
}

// Marquee is an in-progress rectangular drag selection.
type Marquee struct {
	start  Point
	active bool
}

// Begin starts a rectangular selection at p. When additive is false the
// current selection is dropped.
func (m *Marquee) Begin(p Point, current Set, additive bool) Set {
	m.start = p
	m.active = true
	if additive {
		return current
	}
	return Set{}
}

// Update moves the free corner to p and returns the new selection.
func (m *Marquee) Update(p Point, width float64, extents []Extent) (Set, Rect) {
	r := RectFrom(m.start, p)
	if !m.active {
		return nil, r
	}
	return Of(HitTest(r, width, extents)...), r
}

// End finishes the drag.
func (m *Marquee) End() {
	m.active = false
}

func (m *Marquee) Active() bool { return m.active }

// Side is where a drop lands relative to its target block.
type Side int

const (
	Top Side = iota
	Bottom
)

// SideOf picks the drop side from the pointer position over a block.
func SideOf(pointerY, top, height float64) Side {
	if pointerY < top+height/2 {
		return Top
	}
	return Bottom
}

// DragStart returns the selection to use when dragging blocks[index]: the
// current one if it contains the block, otherwise just that block.
func DragStart(blocks []domain.Block, index int, current Set) Set {
	if index < 0 || index >= len(blocks) {
		return current
	}
	if current.Has(blocks[index].ID) {
		return current
	}
	return Of(blocks[index].ID)
}

// Move relocates the selected blocks, or the dragged block when nothing is
// selected, next to blocks[target] on the given side. The moving blocks keep
// their relative order and land as one contiguous run. When the target is
// itself moving, the run is inserted at the target's original index.
// It reports false when there is nothing to move.
func Move(blocks []domain.Block, sel Set, dragged, target int, side Side) ([]domain.Block, bool) {
	moving := sel
	if moving.Empty() {
		if dragged < 0 || dragged >= len(blocks) {
			return blocks, false
		}
		moving = Of(blocks[dragged].ID)
	}
	if target < 0 || target >= len(blocks) {
		return blocks, false
	}
	targetID := blocks[target].ID

	var run, rest []domain.Block
	for _, b := range blocks {
		if moving.Has(b.ID) {
			run = append(run, b)
		} else {
			rest = append(rest, b)
		}
	}
	if len(run) == 0 {
		return blocks, false
	}

	at := domain.IndexOf(rest, targetID)
	if at < 0 {
		at = min(target, len(rest))
	} else if side == Bottom {
		at++
	}

	out := make([]domain.Block, 0, len(blocks))
	out = append(out, rest[:at]...)
	out = append(out, run...)
	out = append(out, rest[at:]...)
	return out, true
}
