package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
	"pagedoc/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "sub", "pagedoc.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func blocks(texts ...string) []domain.Block {
	out := make([]domain.Block, len(texts))
	for i, s := range texts {
		out[i] = domain.Block{ID: string(rune('a' + i)), Type: domain.BlockTypeText, Content: content.Plain(s)}
	}
	return out
}

// ─────────────────────────────────────────────────────────────
// DB
// ─────────────────────────────────────────────────────────────

func TestNew_ReopenRunsMigrationsAgain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagedoc.db")
	db, err := storage.New(path)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = storage.New(path)
	if err != nil {
		t.Fatalf("second open should tolerate applied migrations: %v", err)
	}
	db.Close()
}

// ─────────────────────────────────────────────────────────────
// DocumentStore
// ─────────────────────────────────────────────────────────────

func TestDocumentStore_CRUD(t *testing.T) {
	s := storage.NewDocumentStore(openDB(t))

	d := &domain.Document{Code: "DOC-1", Title: "Proposal", Content: blocks("Hello", "World"), HasWatermark: true}
	if err := s.CreateDocument(d); err != nil {
		t.Fatal(err)
	}
	if d.ID == "" || d.Status != domain.DocumentStatusDraft {
		t.Fatalf("expected id and draft status, got %+v", d)
	}

	got, err := s.GetDocument(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	opts := cmpopts.IgnoreFields(domain.Document{}, "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(d, got, opts); diff != "" {
		t.Fatalf("round trip mismatch:\n%s", diff)
	}

	got.Title = "Proposal v2"
	got.Status = domain.DocumentStatusFinalized
	got.Content = blocks("Only")
	if err := s.UpdateDocument(got); err != nil {
		t.Fatal(err)
	}
	list, err := s.ListDocuments()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "Proposal v2" || len(list[0].Content) != 1 {
		t.Fatalf("unexpected list %+v", list)
	}

	if err := s.DeleteDocument(d.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetDocument(d.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentStore_UpdateMissing(t *testing.T) {
	s := storage.NewDocumentStore(openDB(t))
	err := s.UpdateDocument(&domain.Document{ID: "nope"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────
// HistoryStore
// ─────────────────────────────────────────────────────────────

func TestHistoryStore_PrunesToDepth(t *testing.T) {
	s := storage.NewHistoryStore(openDB(t), 3)
	for _, text := range []string{"v1", "v2", "v3", "v4", "v5"} {
		if _, err := s.AppendSnapshot("doc", blocks(text)); err != nil {
			t.Fatal(err)
		}
	}
	snaps, err := s.ListSnapshots("doc")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, snap := range snaps {
		got = append(got, content.PlainText(snap.Blocks[0].Content))
	}
	if diff := cmp.Diff([]string{"v3", "v4", "v5"}, got); diff != "" {
		t.Fatalf("unexpected snapshots:\n%s", diff)
	}
}

func TestHistoryStore_SinkAndClear(t *testing.T) {
	s := storage.NewHistoryStore(openDB(t), 0)
	sink := s.Sink("doc")
	sink.Committed(blocks("a"))
	sink.Committed(blocks("b"))
	s.Sink("other").Committed(blocks("x"))

	snaps, err := s.ListSnapshots("doc")
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}

	if err := s.ClearSnapshots("doc"); err != nil {
		t.Fatal(err)
	}
	snaps, _ = s.ListSnapshots("doc")
	others, _ := s.ListSnapshots("other")
	if len(snaps) != 0 || len(others) != 1 {
		t.Fatalf("clear touched the wrong document: %d %d", len(snaps), len(others))
	}
}
