package history

import (
	"errors"
	"sync"
	"time"

	"github.com/bep/debounce"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

const (
	DefaultDepth    = 50
	DefaultDebounce = time.Second
)

// Sink receives every committed snapshot, e.g. to persist it.
type Sink interface {
	Committed(blocks []domain.Block)
}

// Options configures a History.
type Options struct {
	// Depth caps the number of snapshots kept; the oldest are dropped.
	Depth int
	// Debounce is the quiet period before a recorded change is committed.
	// Zero commits synchronously.
	Debounce time.Duration
	Sink     Sink
	// OnCommit is called outside the lock after each commit.
	OnCommit func()
}

type entry struct {
	blocks []domain.Block
	key    string
}

// History manages undo/redo snapshots for one document.
type History struct {
	mu sync.Mutex

	undoStack []entry
	redoStack []entry
	lastKey   string
	pending   []domain.Block

	depth    int
	debounce func(func())
	sink     Sink
	onCommit func()
}

// New creates a history manager.
func New(opts Options) *History {
	if opts.Depth <= 0 {
		opts.Depth = DefaultDepth
	}
	h := &History{depth: opts.Depth, sink: opts.Sink, onCommit: opts.OnCommit}
	if opts.Debounce > 0 {
		h.debounce = debounce.New(opts.Debounce)
	}
	return h
}

// Record notes that the document now looks like blocks. The snapshot is
// committed once the debounce window elapses without further changes.
func (h *History) Record(blocks []domain.Block) {
	if len(blocks) == 0 {
		return
	}
	h.mu.Lock()
	h.pending = domain.CloneBlocks(blocks)
	h.mu.Unlock()

	if h.debounce == nil {
		h.Flush()
		return
	}
	h.debounce(h.Flush)
}

// Flush commits a pending recorded change immediately.
func (h *History) Flush() {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()
	if pending != nil {
		h.Commit(pending)
	}
}

// Cancel drops a pending recorded change.
func (h *History) Cancel() {
	h.mu.Lock()
	h.pending = nil
	h.mu.Unlock()
}

// Commit pushes blocks as a new snapshot unless it equals the last committed
// one. The first snapshot of an empty history is the baseline and leaves the
// redo stack alone; any later commit clears it.
func (h *History) Commit(blocks []domain.Block) bool {
	key := content.Encode(blocks)

	h.mu.Lock()
	if key == h.lastKey {
		h.mu.Unlock()
		return false
	}
	e := entry{blocks: domain.CloneBlocks(blocks), key: key}
	baseline := len(h.undoStack) == 0 && h.lastKey == ""
	h.undoStack = append(h.undoStack, e)
	if !baseline {
		h.redoStack = nil
	}
	if excess := len(h.undoStack) - h.depth; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
	h.lastKey = key
	sink, onCommit := h.sink, h.onCommit
	h.mu.Unlock()

	if sink != nil {
		sink.Committed(e.blocks)
	}
	if onCommit != nil {
		onCommit()
	}
	return true
}

// Undo moves the current snapshot onto the redo stack and returns the one
// before it.
func (h *History) Undo() ([]domain.Block, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) <= 1 {
		return nil, ErrNothingToUndo
	}
	cur := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append([]entry{cur}, h.redoStack...)

	prev := h.undoStack[len(h.undoStack)-1]
	h.lastKey = prev.key
	h.pending = nil
	return domain.CloneBlocks(prev.blocks), nil
}

// Redo reapplies the most recently undone snapshot.
func (h *History) Redo() ([]domain.Block, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}
	next := h.redoStack[0]
	h.redoStack = h.redoStack[1:]
	h.undoStack = append(h.undoStack, next)
	h.lastKey = next.key
	h.pending = nil
	return domain.CloneBlocks(next.blocks), nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 1
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// Len returns the number of committed snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// Reset discards all history and, when blocks is non-empty, commits it as
// the new baseline.
func (h *History) Reset(blocks []domain.Block) {
	h.mu.Lock()
	h.undoStack = nil
	h.redoStack = nil
	h.lastKey = ""
	h.pending = nil
	h.mu.Unlock()
	if len(blocks) > 0 {
		h.Commit(blocks)
	}
}
