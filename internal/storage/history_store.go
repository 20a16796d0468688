package storage

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
)

// DefaultHistoryDepth matches the in-memory history depth.
const DefaultHistoryDepth = 50

// HistoryStore persists committed history snapshots per document.
type HistoryStore struct {
	db    *DB
	depth int
}

// NewHistoryStore keeps at most depth snapshots per document.
func NewHistoryStore(db *DB, depth int) *HistoryStore {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &HistoryStore{db: db, depth: depth}
}

// AppendSnapshot stores blocks as the newest snapshot of a document.
func (s *HistoryStore) AppendSnapshot(documentID string, blocks []domain.Block) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Blocks:     domain.CloneBlocks(blocks),
		CreatedAt:  time.Now(),
	}

	var seq int
	if err := s.db.Conn().QueryRow(
		`SELECT COALESCE(MAX(seq), 0) FROM history_snapshots WHERE document_id = ?`, documentID,
	).Scan(&seq); err != nil {
		return nil, fmt.Errorf("next snapshot seq: %w", err)
	}

	_, err := s.db.Conn().Exec(
		`INSERT INTO history_snapshots (id, document_id, seq, blocks_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.ID, documentID, seq+1, content.Encode(blocks), snap.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := s.prune(documentID); err != nil {
		return nil, fmt.Errorf("prune snapshots: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns a document's snapshots, oldest first.
func (s *HistoryStore) ListSnapshots(documentID string) ([]domain.Snapshot, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, document_id, blocks_json, created_at
		 FROM history_snapshots WHERE document_id = ? ORDER BY seq ASC`, documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.Snapshot
	for rows.Next() {
		var snap domain.Snapshot
		var raw string
		if err := rows.Scan(&snap.ID, &snap.DocumentID, &raw, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Blocks = content.Decode(raw, false)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// ClearSnapshots removes all history of a document.
func (s *HistoryStore) ClearSnapshots(documentID string) error {
	_, err := s.db.Conn().Exec(`DELETE FROM history_snapshots WHERE document_id = ?`, documentID)
	return err
}

// prune removes the oldest snapshots beyond the configured depth.
func (s *HistoryStore) prune(documentID string) error {
	_, err := s.db.Conn().Exec(
		`DELETE FROM history_snapshots WHERE document_id = ? AND seq <= (
			SELECT seq FROM history_snapshots WHERE document_id = ?
			ORDER BY seq DESC LIMIT 1 OFFSET ?
		)`, documentID, documentID, s.depth,
	)
	return err
}

// Sink returns a history sink that appends every commit for documentID.
func (s *HistoryStore) Sink(documentID string) *DocumentHistory {
	return &DocumentHistory{store: s, documentID: documentID}
}

// DocumentHistory adapts HistoryStore to a single document's commits.
type DocumentHistory struct {
	store      *HistoryStore
	documentID string
}

func (h *DocumentHistory) Committed(blocks []domain.Block) {
	if _, err := h.store.AppendSnapshot(h.documentID, blocks); err != nil {
		log.Printf("[STORE] persist snapshot for %s: %v", h.documentID, err)
	}
}
