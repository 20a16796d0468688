package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
)

// DocumentStore implements domain.DocumentStore using SQLite.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `id, code, title, content_json, has_watermark, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (*domain.Document, error) {
	d := &domain.Document{}
	var contentJSON string
	var watermark int
	if err := r.Scan(&d.ID, &d.Code, &d.Title, &contentJSON, &watermark, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.HasWatermark = watermark != 0
	d.Content = content.Decode(contentJSON, false)
	return d, nil
}

func (s *DocumentStore) CreateDocument(d *domain.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Status == "" {
		d.Status = domain.DocumentStatusDraft
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Code, d.Title, content.Encode(d.Content), boolInt(d.HasWatermark), d.Status, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *DocumentStore) GetDocument(id string) (*domain.Document, error) {
	d, err := scanDocument(s.db.conn.QueryRow(
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *DocumentStore) ListDocuments() ([]domain.Document, error) {
	rows, err := s.db.conn.Query(`SELECT ` + documentColumns + ` FROM documents ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (s *DocumentStore) UpdateDocument(d *domain.Document) error {
	d.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(
		`UPDATE documents SET code = ?, title = ?, content_json = ?, has_watermark = ?, status = ?, updated_at = ? WHERE id = ?`,
		d.Code, d.Title, content.Encode(d.Content), boolInt(d.HasWatermark), d.Status, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update document %s: %w", d.ID, ErrNotFound)
	}
	return nil
}

// DeleteDocument removes a document and its history.
func (s *DocumentStore) DeleteDocument(id string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM history_snapshots WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	_, err := s.db.conn.Exec(`DELETE FROM documents WHERE id = ?`, id)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
