package editor

import "context"

// Emitter publishes editor events to the host. It matches the event emitter
// used by the service layer, so either can be passed.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Events emitted by the editor.
const (
	EventChanged   = "editor:changed"   // serialized blocks
	EventPages     = "editor:pages"     // []domain.Page
	EventSelection = "editor:selection" // []string, document order
	EventHistory   = "editor:history"   // HistoryState
	EventSave      = "editor:save"      // serialized blocks
)

type HistoryState struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

func (e *Editor) emit(event string, data any) {
	if e.emitter == nil {
		return
	}
	e.emitter.Emit(context.Background(), event, data)
}

func (e *Editor) emitHistory() {
	e.emit(EventHistory, HistoryState{CanUndo: e.history.CanUndo(), CanRedo: e.history.CanRedo()})
}
