package app

import (
	"fmt"
	"time"

	"pagedoc/internal/domain"
	"pagedoc/internal/editor"
)

// ============================================================
// Documents
// ============================================================

// DocumentInfo is the host-facing view of a stored document, without content.
type DocumentInfo struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	HasWatermark bool   `json:"hasWatermark"`
	UpdatedAt    string `json:"updatedAt"`
}

func documentInfo(d domain.Document) DocumentInfo {
	return DocumentInfo{
		ID:           d.ID,
		Code:         d.Code,
		Title:        d.Title,
		Status:       string(d.Status),
		HasWatermark: d.HasWatermark,
		UpdatedAt:    d.UpdatedAt.Format(time.RFC3339),
	}
}

func (a *App) CreateDocument(title, code string) (*DocumentInfo, error) {
	d, err := a.docs.Create(title, code)
	if err != nil {
		return nil, err
	}
	info := documentInfo(*d)
	return &info, nil
}

func (a *App) ListDocuments() ([]DocumentInfo, error) {
	docs, err := a.docs.List()
	if err != nil {
		return nil, err
	}
	out := make([]DocumentInfo, len(docs))
	for i, d := range docs {
		out[i] = documentInfo(d)
	}
	return out, nil
}

// OpenDocument loads a document into its editor and returns what the host
// needs for the first render.
func (a *App) OpenDocument(id string) (*domain.PageState, error) {
	ed, err := a.docs.Open(a.context(), id)
	if err != nil {
		return nil, err
	}
	st := ed.State()
	return &st, nil
}

// DocumentState returns the current pages, selection and focus request.
func (a *App) DocumentState(id string) (*domain.PageState, error) {
	ed, err := a.editor(id)
	if err != nil {
		return nil, err
	}
	st := ed.State()
	return &st, nil
}

// SaveDocument reports false when a save of the document is already running.
func (a *App) SaveDocument(id string) (bool, error) {
	return a.docs.Save(a.context(), id)
}

func (a *App) FinalizeDocument(id string) error {
	return a.docs.Finalize(a.context(), id)
}

func (a *App) CloseDocument(id string, save bool) error {
	return a.docs.Close(a.context(), id, save)
}

// editor returns the editor of an open document.
func (a *App) editor(id string) (*editor.Editor, error) {
	ed, ok := a.docs.Editor(id)
	if !ok {
		return nil, fmt.Errorf("document %s is not open", id)
	}
	return ed, nil
}
