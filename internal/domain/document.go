package domain

import "time"

type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusFinalized DocumentStatus = "finalized"
)

// Document is the persisted unit: metadata plus its full block list.
type Document struct {
	ID           string         `json:"id"`
	Code         string         `json:"code"`
	Title        string         `json:"title"`
	Content      []Block        `json:"content"`
	HasWatermark bool           `json:"hasWatermark"`
	Status       DocumentStatus `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type DocumentStore interface {
	CreateDocument(d *Document) error
	GetDocument(id string) (*Document, error)
	ListDocuments() ([]Document, error)
	UpdateDocument(d *Document) error
	DeleteDocument(id string) error
}

// Snapshot is one committed history entry for a document.
type Snapshot struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Blocks     []Block   `json:"blocks"`
	CreatedAt  time.Time `json:"createdAt"`
}

type SnapshotStore interface {
	AppendSnapshot(documentID string, blocks []Block) (*Snapshot, error)
	ListSnapshots(documentID string) ([]Snapshot, error)
	ClearSnapshots(documentID string) error
}
