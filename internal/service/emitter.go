package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from the host transport
// ─────────────────────────────────────────────────────────────

// EventEmitter emits events to the host. Editors opened by the service share
// it, so editor and document events arrive on the same channel.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Events emitted by DocumentService.
const (
	EventDocumentOpened = "document:opened" // document id
	EventDocumentSaved  = "document:saved"  // document id
	EventDocumentClosed = "document:closed" // document id
	EventAutosave       = "document:autosave"
)

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Events {
		if e.Event == event {
			n++
		}
	}
	return n
}
