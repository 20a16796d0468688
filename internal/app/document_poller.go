package app

import (
	"context"
	"log"
	"sync"
	"time"

	"pagedoc/internal/content"
)

const pollInterval = 2 * time.Second

// documentPoller polls the database for changes to open documents made by
// another process (e.g. the standalone MCP server) and reloads editors that
// have no unsaved changes.
type documentPoller struct {
	ctx context.Context
	app *App
	mu  sync.Mutex
	// updated_at fingerprint per open document
	lastSeen map[string]time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func newDocumentPoller(ctx context.Context, app *App) *documentPoller {
	return &documentPoller{ctx: ctx, app: app, lastSeen: map[string]time.Time{}}
}

// Start begins the polling loop. Should be called once on app startup.
func (p *documentPoller) Start() {
	p.stopCh = make(chan struct{})
	p.wg.Add(1)
	go p.pollLoop()
}

// Stop terminates the polling loop.
func (p *documentPoller) Stop() {
	if p.stopCh != nil {
		close(p.stopCh)
		p.wg.Wait()
		p.stopCh = nil
	}
}

func (p *documentPoller) pollLoop() {
	defer p.wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.check()
		case <-p.stopCh:
			return
		case <-p.ctx.Done():
			return
		}
	}
}

// check reloads every open, clean editor whose stored content changed.
func (p *documentPoller) check() int {
	reloaded := 0
	open := p.app.docs.OpenIDs()

	p.mu.Lock()
	for id := range p.lastSeen {
		if !contains(open, id) {
			delete(p.lastSeen, id)
		}
	}
	p.mu.Unlock()

	for _, id := range open {
		d, err := p.app.store.GetDocument(id)
		if err != nil {
			continue
		}

		p.mu.Lock()
		last, seen := p.lastSeen[id]
		p.lastSeen[id] = d.UpdatedAt
		p.mu.Unlock()
		if !seen || !d.UpdatedAt.After(last) {
			continue
		}

		ed, ok := p.app.docs.Editor(id)
		if !ok || ed.Dirty() {
			continue
		}
		value := content.Encode(d.Content)
		if value == ed.Value() {
			continue
		}
		ed.Load(value)
		log.Printf("[POLL] reloaded %s after an external change", id)
		p.app.emitter.Emit(p.ctx, "document:content-updated", map[string]string{"documentId": id})
		reloaded++
	}
	return reloaded
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
