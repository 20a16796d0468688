// Package focus lands the caret on a block after the block list changes.
//
// A pending focus token names a block and a caret offset. Because pages are
// recomputed continuously the block may not be rendered yet when focus is
// requested, so the coordinator retries on later render passes and drops the
// token once the retry budget is spent.
package focus

import (
	"log"
	"sync"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
)

// DefaultRetries is the number of render passes a token survives unclaimed.
const DefaultRetries = 5

type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	retries  int
	token    *domain.PendingFocus
	attempts int
}

func NewCoordinator(r *Registry, retries int) *Coordinator {
	if retries <= 0 {
		retries = DefaultRetries
	}
	return &Coordinator{registry: r, retries: retries}
}

func (c *Coordinator) Registry() *Registry { return c.registry }

// Request sets the pending token, replacing any unclaimed one.
func (c *Coordinator) Request(tok *domain.PendingFocus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok == nil {
		c.token = nil
		return
	}
	cp := *tok
	if tok.Offset != nil {
		off := *tok.Offset
		cp.Offset = &off
	}
	c.token = &cp
	c.attempts = 0
}

// Pending returns a copy of the unclaimed token, or nil.
func (c *Coordinator) Pending() *domain.PendingFocus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return nil
	}
	cp := *c.token
	return &cp
}

// RenderPass tries to satisfy the pending token against the mounted surfaces.
// blocks is the current document, used to clamp the offset and to resolve
// "end of content". It returns the block that took focus and the caret
// offset it was given.
func (c *Coordinator) RenderPass(blocks []domain.Block) (string, int, bool) {
	c.mu.Lock()
	tok := c.token
	if tok == nil {
		c.mu.Unlock()
		return "", 0, false
	}

	i := domain.IndexOf(blocks, tok.BlockID)
	h, mounted := c.registry.Get(tok.BlockID)
	if i < 0 || !mounted {
		c.attempts++
		if c.attempts >= c.retries {
			log.Printf("[FOCUS] dropping focus request for block %s after %d render passes", tok.BlockID, c.attempts)
			c.token = nil
			c.attempts = 0
		}
		c.mu.Unlock()
		return "", 0, false
	}

	length := content.Length(blocks[i].Content)
	offset := length
	if tok.Offset != nil {
		offset = min(max(*tok.Offset, 0), length)
	}
	c.token = nil
	c.attempts = 0
	c.mu.Unlock()

	h.Focus(offset)
	return tok.BlockID, offset, true
}
