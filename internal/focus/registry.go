package focus

import (
	"sync"

	"pagedoc/internal/domain"
)

// Handle is a mounted rendering surface for one block.
type Handle interface {
	// Focus claims keyboard focus and places the caret at offset.
	Focus(offset int)
	// Render overwrites the rendered content from the model.
	Render(segs []domain.TextSegment)
	// Focused reports whether the surface currently holds keyboard focus.
	Focused() bool
	// Height is the last measured rendered height, if known.
	Height() (float64, bool)
}

// Registry maps block ids to the surfaces currently rendering them. Entries
// only live while mounted and are not stable across a relayout.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]Handle
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Mount registers h as the surface rendering blockID, replacing any
// previous one.
func (r *Registry) Mount(blockID string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[blockID] = h
}

// Unmount removes h. A newer surface mounted for the same block is kept.
func (r *Registry) Unmount(blockID string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.handles[blockID]; ok && cur == h {
		delete(r.handles, blockID)
	}
}

func (r *Registry) Get(blockID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[blockID]
	return h, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Height reports the measured height of a mounted block, so the registry
// can drive pagination directly.
func (r *Registry) Height(blockID string) (float64, bool) {
	h, ok := r.Get(blockID)
	if !ok {
		return 0, false
	}
	return h.Height()
}

// Reconcile pushes model content into the mounted surfaces. A surface that
// holds focus owns its content and is skipped unless force is set, which is
// used after undo, redo and paste.
func (r *Registry) Reconcile(blocks []domain.Block, force bool) int {
	n := 0
	for _, b := range blocks {
		h, ok := r.Get(b.ID)
		if !ok {
			continue
		}
		if h.Focused() && !force {
			continue
		}
		h.Render(b.Content)
		n++
	}
	return n
}
