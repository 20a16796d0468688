package service

import (
	"context"
	"sync"
)

// ExportedSaveGuard is an exported alias so _test packages can test the guard.
type ExportedSaveGuard = saveGuard

// ─────────────────────────────────────────────────────────────
// saveGuard: one save per document at a time
// ─────────────────────────────────────────────────────────────

// saveGuard tracks in-flight saves by document id. A second save of the same
// document while one is running is skipped rather than queued: the running
// save already writes the latest blocks it can see.
type saveGuard struct {
	mu      sync.Mutex
	running map[string]chan struct{}
}

// TryLock marks id as saving. It returns false when a save is in flight.
func (g *saveGuard) TryLock(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]chan struct{})
	}
	if _, ok := g.running[id]; ok {
		return false
	}
	g.running[id] = make(chan struct{})
	return true
}

// Unlock ends the save of id. Must follow a successful TryLock.
func (g *saveGuard) Unlock(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if done, ok := g.running[id]; ok {
		close(done)
		delete(g.running, id)
	}
}

// Wait blocks until the in-flight save of id, if any, finishes or ctx ends.
func (g *saveGuard) Wait(ctx context.Context, id string) {
	g.mu.Lock()
	done, ok := g.running[id]
	g.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// WaitAll blocks until every save running at call time finishes or ctx ends.
func (g *saveGuard) WaitAll(ctx context.Context) {
	g.mu.Lock()
	pending := make([]chan struct{}, 0, len(g.running))
	for _, done := range g.running {
		pending = append(pending, done)
	}
	g.mu.Unlock()
	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
	}
}
