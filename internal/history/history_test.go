package history

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
)

func doc(texts ...string) []domain.Block {
	blocks := make([]domain.Block, len(texts))
	for i, s := range texts {
		blocks[i] = domain.Block{ID: string(rune('a' + i)), Type: domain.BlockTypeText, Content: content.Plain(s)}
	}
	return blocks
}

func TestCommit_BaselineAndDedup(t *testing.T) {
	h := New(Options{})
	if !h.Commit(doc("one")) {
		t.Fatal("expected baseline commit")
	}
	if h.Commit(doc("one")) {
		t.Fatal("identical snapshot should not commit")
	}
	if h.CanUndo() {
		t.Fatal("baseline alone must not be undoable")
	}
	h.Commit(doc("two"))
	if !h.CanUndo() {
		t.Fatal("expected undo after second commit")
	}
}

func TestUndoRedo_StackDiscipline(t *testing.T) {
	h := New(Options{})
	h.Commit(doc("v1"))
	h.Commit(doc("v2"))
	h.Commit(doc("v3"))

	first, err := h.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Redo(); err != nil {
		t.Fatal(err)
	}
	second, err := h.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("undo/redo/undo diverged:\n%s", diff)
	}
	if diff := cmp.Diff(doc("v2"), second); diff != "" {
		t.Errorf("unexpected snapshot:\n%s", diff)
	}
}

func TestNewEditAfterUndo_ClearsRedo(t *testing.T) {
	h := New(Options{})
	h.Commit(doc("v1"))
	h.Commit(doc("v2"))
	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	if !h.CanRedo() {
		t.Fatal("expected redo to be available")
	}
	h.Commit(doc("v3"))
	if h.CanRedo() {
		t.Fatal("new edit must clear redo")
	}
	if _, err := h.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestUndo_RestoredStateDoesNotCommit(t *testing.T) {
	h := New(Options{})
	h.Commit(doc("v1"))
	h.Commit(doc("v2"))
	prev, _ := h.Undo()
	if h.Commit(prev) {
		t.Error("recording the restored state must not create an entry")
	}
	if !h.CanRedo() {
		t.Error("redo must survive the restore")
	}
}

func TestNothingToUndo(t *testing.T) {
	h := New(Options{})
	if _, err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestDepth_DropsOldest(t *testing.T) {
	h := New(Options{Depth: 3})
	for _, s := range []string{"1", "2", "3", "4", "5"} {
		h.Commit(doc(s))
	}
	if h.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", h.Len())
	}
	h.Undo()
	got, err := h.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(doc("3"), got); diff != "" {
		t.Errorf("oldest retained entry mismatch:\n%s", diff)
	}
	if _, err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Error("entries beyond depth should have been dropped")
	}
}

func TestRecord_DebouncesBurst(t *testing.T) {
	var mu sync.Mutex
	commits := 0
	h := New(Options{Debounce: 30 * time.Millisecond, OnCommit: func() {
		mu.Lock()
		commits++
		mu.Unlock()
	}})
	h.Commit(doc(""))
	mu.Lock()
	commits = 0
	mu.Unlock()

	for _, s := range []string{"H", "He", "Hel", "Hell", "Hello"} {
		h.Record(doc(s))
	}
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if commits != 1 {
		t.Fatalf("expected a single debounced commit, got %d", commits)
	}
	if h.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", h.Len())
	}
}

type recordingSink struct{ got [][]domain.Block }

func (s *recordingSink) Committed(b []domain.Block) { s.got = append(s.got, b) }

func TestCancel_DropsPending(t *testing.T) {
	sink := &recordingSink{}
	h := New(Options{Debounce: time.Hour, Sink: sink})
	h.Record(doc("x"))
	h.Cancel()
	h.Flush()
	if len(sink.got) != 0 {
		t.Errorf("expected no commits, got %d", len(sink.got))
	}
}
