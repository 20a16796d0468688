package selection

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
)

func ids(names ...string) []domain.Block {
	out := make([]domain.Block, len(names))
	for i, n := range names {
		out[i] = domain.Block{ID: n, Type: domain.BlockTypeText, Content: content.Plain(n)}
	}
	return out
}

// ───────────────────────────────────────────────────────────────
// Set
// ───────────────────────────────────────────────────────────────

func TestSet_InOrderFollowsDocument(t *testing.T) {
	blocks := ids("1", "2", "3", "4", "5")
	s := Of("5", "2", "3", "gone")
	if diff := cmp.Diff([]string{"2", "3", "5"}, s.InOrder(blocks)); diff != "" {
		t.Errorf("InOrder (-want +got):\n%s", diff)
	}
	first, last := s.Bounds(blocks)
	if first != 1 || last != 4 {
		t.Errorf("Bounds = %d,%d", first, last)
	}
}

func TestSet_EmptyMeansCaretMode(t *testing.T) {
	var s Set
	if !s.Empty() || s.Has("1") {
		t.Error("nil set should be empty")
	}
	first, last := s.Bounds(ids("1"))
	if first != -1 || last != -1 {
		t.Errorf("Bounds on empty = %d,%d", first, last)
	}
}

// ───────────────────────────────────────────────────────────────
// Hit testing
// ───────────────────────────────────────────────────────────────

func TestHitTest(t *testing.T) {
	extents := []Extent{
		{ID: "a", Top: 0, Bottom: 40},
		{ID: "b", Top: 48, Bottom: 88},
		{ID: "c", Top: 96, Bottom: 136},
	}
	tests := []struct {
		name string
		a, b Point
		want []string
	}{
		{"inside one", Point{10, 50}, Point{20, 60}, []string{"b"}},
		{"reversed corners", Point{300, 130}, Point{10, 30}, []string{"a", "b", "c"}},
		{"in the gap", Point{10, 42}, Point{20, 46}, []string{}},
		{"right of content", Point{900, 0}, Point{950, 200}, []string{}},
		{"touching edge", Point{10, 88}, Point{20, 90}, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HitTest(RectFrom(tt.a, tt.b), 600, extents)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarquee(t *testing.T) {
	var m Marquee
	sel := m.Begin(Point{0, 0}, Of("x"), false)
	if !sel.Empty() {
		t.Fatal("non-additive begin should clear selection")
	}
	got, _ := m.Update(Point{100, 50}, 600, []Extent{{ID: "a", Top: 0, Bottom: 40}, {ID: "b", Top: 60, Bottom: 90}})
	if !got.Has("a") || got.Has("b") {
		t.Errorf("unexpected selection %v", got)
	}
	m.End()
	if m.Active() {
		t.Error("marquee still active")
	}
	if kept := m.Begin(Point{0, 0}, Of("x"), true); !kept.Has("x") {
		t.Error("additive begin should keep selection")
	}
}

// ───────────────────────────────────────────────────────────────
// Move
// ───────────────────────────────────────────────────────────────

func TestMove(t *testing.T) {
	tests := []struct {
		name    string
		sel     Set
		dragged int
		target  int
		side    Side
		want    []string
	}{
		{"single dragged down", nil, 0, 2, Bottom, []string{"2", "3", "1", "4", "5"}},
		{"single dragged up", nil, 3, 0, Top, []string{"4", "1", "2", "3", "5"}},
		{"run keeps order", Of("4", "2"), 1, 0, Top, []string{"2", "4", "1", "3", "5"}},
		{"to end", Of("1", "2"), 0, 4, Bottom, []string{"3", "4", "5", "1", "2"}},
		{"target inside run", Of("2", "3"), 1, 2, Top, []string{"1", "4", "2", "3", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Move(ids("1", "2", "3", "4", "5"), tt.sel, tt.dragged, tt.target, tt.side)
			if !ok {
				t.Fatal("expected a move")
			}
			if diff := cmp.Diff(tt.want, domain.BlockIDs(got)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestMove_NothingToMove(t *testing.T) {
	blocks := ids("1", "2")
	if _, ok := Move(blocks, nil, -1, 0, Top); ok {
		t.Error("expected no move without selection or dragged block")
	}
	if _, ok := Move(blocks, nil, 0, 7, Top); ok {
		t.Error("expected no move for an out of range target")
	}
}

func TestDragStart(t *testing.T) {
	blocks := ids("1", "2", "3")
	if s := DragStart(blocks, 2, Of("1", "2")); !s.Has("3") || s.Has("1") {
		t.Errorf("dragging an unselected block should select only it, got %v", s)
	}
	if s := DragStart(blocks, 1, Of("1", "2")); !s.Has("1") || !s.Has("2") {
		t.Errorf("dragging a selected block keeps the selection, got %v", s)
	}
}
