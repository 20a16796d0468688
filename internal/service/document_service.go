package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"pagedoc/internal/content"
	"pagedoc/internal/dbclient"
	"pagedoc/internal/domain"
	"pagedoc/internal/editor"
	"pagedoc/internal/storage"
)

// ErrFinalized is returned when saving a document that no longer accepts edits.
var ErrFinalized = errors.New("document is finalized")

// ─────────────────────────────────────────────────────────────
// Document Service: opens documents into editors and saves them
// ─────────────────────────────────────────────────────────────

// DocumentService owns the open editors. Each open document has exactly one
// editor; saves of the same document never overlap.
type DocumentService struct {
	store   *storage.DocumentStore
	history *storage.HistoryStore
	remote  dbclient.Connector
	emitter EventEmitter
	base    editor.Options

	mu     sync.Mutex
	open   map[string]*editor.Editor
	saving saveGuard
}

// DocumentServiceConfig wires the optional collaborators. History and Remote
// may be nil.
type DocumentServiceConfig struct {
	Store   *storage.DocumentStore
	History *storage.HistoryStore
	Remote  dbclient.Connector
	Emitter EventEmitter
	// Editor is the template for every opened editor. Value, OnSave and the
	// history sink are set per document.
	Editor editor.Options
}

func NewDocumentService(cfg DocumentServiceConfig) *DocumentService {
	if cfg.Emitter == nil {
		cfg.Emitter = NopEmitter{}
	}
	return &DocumentService{
		store:   cfg.Store,
		history: cfg.History,
		remote:  cfg.Remote,
		emitter: cfg.Emitter,
		base:    cfg.Editor,
		open:    make(map[string]*editor.Editor),
	}
}

// Create stores a new draft document holding one empty text block.
func (s *DocumentService) Create(title, code string) (*domain.Document, error) {
	d := &domain.Document{
		Title:   title,
		Code:    code,
		Content: []domain.Block{domain.NewEmptyBlock()},
		Status:  domain.DocumentStatusDraft,
	}
	if err := s.store.CreateDocument(d); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

// List returns the stored documents, most recently updated first.
func (s *DocumentService) List() ([]domain.Document, error) {
	return s.store.ListDocuments()
}

// Open returns the editor of a document, loading it on first use. With a
// remote backend configured the remote copy wins over the local one.
func (s *DocumentService) Open(ctx context.Context, id string) (*editor.Editor, error) {
	s.mu.Lock()
	if ed, ok := s.open[id]; ok {
		s.mu.Unlock()
		return ed, nil
	}
	s.mu.Unlock()

	value, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	opts := s.base
	opts.Value = value
	if opts.Emitter == nil {
		opts.Emitter = s.emitter
	}
	opts.OnSave = func(string) {
		if _, err := s.Save(context.Background(), id); err != nil {
			log.Printf("[SERVICE] save shortcut for %s failed: %v", id, err)
		}
	}
	if s.history != nil {
		opts.History.Sink = s.history.Sink(id)
	}
	ed := editor.New(opts)

	s.mu.Lock()
	if existing, ok := s.open[id]; ok {
		// Lost a race with a concurrent Open.
		s.mu.Unlock()
		ed.Close()
		return existing, nil
	}
	s.open[id] = ed
	s.mu.Unlock()

	s.emitter.Emit(ctx, EventDocumentOpened, id)
	return ed, nil
}

func (s *DocumentService) load(ctx context.Context, id string) (string, error) {
	if s.remote != nil {
		value, err := s.remote.Load(ctx, id)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, dbclient.ErrNotFound) {
			return "", fmt.Errorf("open %s: %w", id, err)
		}
	}
	d, err := s.store.GetDocument(id)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", id, err)
	}
	return content.Encode(d.Content), nil
}

// Editor returns the editor of an open document.
func (s *DocumentService) Editor(id string) (*editor.Editor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ed, ok := s.open[id]
	return ed, ok
}

// OpenIDs returns the ids of the open documents, sorted.
func (s *DocumentService) OpenIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Save writes an open document's blocks to the store and the remote backend.
// It reports false without error when a save of the document is already in
// flight.
func (s *DocumentService) Save(ctx context.Context, id string) (bool, error) {
	ed, ok := s.Editor(id)
	if !ok {
		return false, fmt.Errorf("save %s: %w", id, storage.ErrNotFound)
	}
	if !s.saving.TryLock(id) {
		return false, nil
	}
	defer s.saving.Unlock(id)

	d, err := s.store.GetDocument(id)
	if err != nil {
		return false, fmt.Errorf("save %s: %w", id, err)
	}
	if d.Status == domain.DocumentStatusFinalized {
		return false, fmt.Errorf("save %s: %w", id, ErrFinalized)
	}

	d.Content = ed.Blocks()
	if err := s.store.UpdateDocument(d); err != nil {
		return false, fmt.Errorf("save %s: %w", id, err)
	}
	if s.remote != nil {
		if err := s.remote.Save(ctx, id, content.Encode(d.Content)); err != nil {
			return false, fmt.Errorf("save %s remotely: %w", id, err)
		}
	}
	ed.MarkSaved()
	s.emitter.Emit(ctx, EventDocumentSaved, id)
	return true, nil
}

// SaveDirty saves every open document with unsaved changes and returns how
// many were written. Failures are logged.
func (s *DocumentService) SaveDirty(ctx context.Context) int {
	saved := 0
	for _, id := range s.OpenIDs() {
		ed, ok := s.Editor(id)
		if !ok || !ed.Dirty() {
			continue
		}
		ok, err := s.Save(ctx, id)
		if err != nil {
			log.Printf("[AUTOSAVE] %s: %v", id, err)
			continue
		}
		if ok {
			saved++
		}
	}
	return saved
}

// Finalize saves a document one last time and marks it read-only.
func (s *DocumentService) Finalize(ctx context.Context, id string) error {
	if _, ok := s.Editor(id); ok {
		s.saving.Wait(ctx, id)
		if _, err := s.Save(ctx, id); err != nil {
			return err
		}
	}
	d, err := s.store.GetDocument(id)
	if err != nil {
		return fmt.Errorf("finalize %s: %w", id, err)
	}
	d.Status = domain.DocumentStatusFinalized
	return s.store.UpdateDocument(d)
}

// Close commits the editor's pending history and forgets it. Unsaved changes
// are kept only if saveFirst is set.
func (s *DocumentService) Close(ctx context.Context, id string, saveFirst bool) error {
	ed, ok := s.Editor(id)
	if !ok {
		return nil
	}
	var err error
	if saveFirst && ed.Dirty() {
		s.saving.Wait(ctx, id)
		_, err = s.Save(ctx, id)
	}
	ed.Close()

	s.mu.Lock()
	delete(s.open, id)
	s.mu.Unlock()
	s.emitter.Emit(ctx, EventDocumentClosed, id)
	return err
}

// Shutdown waits for running saves, then saves and closes every document.
func (s *DocumentService) Shutdown(ctx context.Context) {
	s.saving.WaitAll(ctx)
	for _, id := range s.OpenIDs() {
		if err := s.Close(ctx, id, true); err != nil {
			log.Printf("[SERVICE] close %s: %v", id, err)
		}
	}
}
