package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pagedoc/internal/config"
	"pagedoc/internal/content"
	"pagedoc/internal/dbclient"
	"pagedoc/internal/domain"
	"pagedoc/internal/editor"
	"pagedoc/internal/pagination"
	"pagedoc/internal/secret"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Config{
		Storage:    config.StorageConfig{Path: filepath.Join(t.TempDir(), "data", "pagedoc.db")},
		Pagination: config.PaginationConfig{Params: pagination.Params{}},
		History:    config.HistoryConfig{Depth: 10, Persist: true},
	}
	a := New(cfg, nil)
	if err := a.Startup(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Shutdown(context.Background()) })
	return a
}

func texts(blocks []domain.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = content.PlainText(b.Content)
	}
	return out
}

func TestApp_EditAndSave(t *testing.T) {
	a := newTestApp(t)
	info, err := a.CreateDocument("Letter", "L-1")
	if err != nil {
		t.Fatal(err)
	}
	st, err := a.OpenDocument(info.ID)
	if err != nil {
		t.Fatal(err)
	}
	blockID := st.Pages[0].Blocks[0].ID

	if ok, err := a.Input(info.ID, blockID, "Hello"); err != nil || !ok {
		t.Fatalf("input: %v %v", ok, err)
	}
	if ok, err := a.KeyDown(info.ID, blockID, editor.KeyEvent{Key: editor.KeyEnter}, editor.At(3)); err != nil || !ok {
		t.Fatalf("enter: %v %v", ok, err)
	}
	st, _ = a.DocumentState(info.ID)
	if diff := cmp.Diff([]string{"Hel", "lo"}, texts(pagination.Flatten(st.Pages))); diff != "" {
		t.Fatalf("after enter (-want +got):\n%s", diff)
	}

	if ok, err := a.KeyDown(info.ID, blockID, editor.KeyEvent{Key: "s", Ctrl: true}, editor.At(0)); err != nil || !ok {
		t.Fatalf("save shortcut: %v %v", ok, err)
	}
	d, err := a.store.GetDocument(info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Hel", "lo"}, texts(d.Content)); diff != "" {
		t.Fatalf("stored content (-want +got):\n%s", diff)
	}

	docs, err := a.ListDocuments()
	if err != nil || len(docs) != 1 || docs[0].Code != "L-1" {
		t.Fatalf("unexpected documents: %+v %v", docs, err)
	}
}

func TestApp_UnknownDocument(t *testing.T) {
	a := newTestApp(t)
	if _, err := a.KeyDown("missing", "x", editor.KeyEvent{Key: editor.KeyEnter}, editor.At(0)); err == nil {
		t.Fatal("expected error for a document that is not open")
	}
	if _, err := a.OpenDocument("missing"); err == nil {
		t.Fatal("expected error for a missing document")
	}
}

func TestApp_FormattingAndUndo(t *testing.T) {
	a := newTestApp(t)
	info, _ := a.CreateDocument("Doc", "")
	st, err := a.OpenDocument(info.ID)
	if err != nil {
		t.Fatal(err)
	}
	blockID := st.Pages[0].Blocks[0].ID
	a.Input(info.ID, blockID, "word")

	if err := a.FocusBlock(info.ID, blockID, editor.Caret{Start: 0, End: 4}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := a.ApplyFormatting(info.ID, editor.FormatBold, ""); !ok {
		t.Fatal("expected bold to apply")
	}
	ed, _ := a.editor(info.ID)
	if got := content.ToMarkup(ed.Blocks()[0].Content); got != "<b>word</b>" {
		t.Fatalf("markup = %q", got)
	}

	if ok, _ := a.Undo(info.ID); !ok {
		t.Fatal("expected undo")
	}
	if got := content.ToMarkup(ed.Blocks()[0].Content); got != "word" {
		t.Fatalf("after undo = %q", got)
	}
	if ok, _ := a.Redo(info.ID); !ok {
		t.Fatal("expected redo")
	}
}

func TestDocumentPoller_ReloadsExternalChange(t *testing.T) {
	a := newTestApp(t)
	info, _ := a.CreateDocument("Shared", "")
	if _, err := a.OpenDocument(info.ID); err != nil {
		t.Fatal(err)
	}
	if n := a.poller.check(); n != 0 {
		t.Fatalf("first check should only record, reloaded %d", n)
	}

	time.Sleep(10 * time.Millisecond)
	d, _ := a.store.GetDocument(info.ID)
	d.Content = []domain.Block{{ID: "ext", Type: domain.BlockTypeH1, Content: content.Plain("From MCP")}}
	if err := a.store.UpdateDocument(d); err != nil {
		t.Fatal(err)
	}

	if n := a.poller.check(); n != 1 {
		t.Fatalf("expected one reload, got %d", n)
	}
	ed, _ := a.editor(info.ID)
	if diff := cmp.Diff([]string{"From MCP"}, texts(ed.Blocks())); diff != "" {
		t.Fatalf("reloaded content (-want +got):\n%s", diff)
	}
	if n := a.poller.check(); n != 0 {
		t.Fatalf("unchanged document reloaded again")
	}
}

func TestDocumentPoller_KeepsDirtyEditors(t *testing.T) {
	a := newTestApp(t)
	info, _ := a.CreateDocument("Shared", "")
	st, _ := a.OpenDocument(info.ID)
	a.poller.check()
	a.Input(info.ID, st.Pages[0].Blocks[0].ID, "local edit")

	time.Sleep(10 * time.Millisecond)
	d, _ := a.store.GetDocument(info.ID)
	d.Content = []domain.Block{{ID: "ext", Type: domain.BlockTypeText, Content: content.Plain("remote")}}
	a.store.UpdateDocument(d)

	if n := a.poller.check(); n != 0 {
		t.Fatalf("dirty editor must not be reloaded")
	}
}

func TestApp_WatchFile(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "doc.json")
	write := func(text string) {
		blocks := []domain.Block{{ID: "w", Type: domain.BlockTypeText, Content: content.Plain(text)}}
		if err := os.WriteFile(path, []byte(content.Encode(blocks)), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("v1")

	loads := make(chan string, 4)
	ed, err := a.WatchFile(path, func(ed *editor.Editor) {
		loads <- texts(ed.Blocks())[0]
	})
	if err != nil {
		t.Fatal(err)
	}
	defer ed.Close()
	if got := <-loads; got != "v1" {
		t.Fatalf("initial load = %q", got)
	}

	write("v2")
	select {
	case got := <-loads:
		if got != "v2" {
			t.Fatalf("reload = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestApp_RemotePasswordFromSecretStore(t *testing.T) {
	t.Setenv(secret.EnvVar("backend"), "s3cret")
	a := New(config.Config{Storage: config.StorageConfig{
		Config:      dbclient.Config{Driver: dbclient.DriverPostgres, Host: "db"},
		PasswordKey: "backend",
		SecretStore: secret.KindEnv,
	}}, nil)

	cfg, err := a.remoteConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Password != "s3cret" || cfg.Host != "db" {
		t.Fatalf("unexpected remote config: %+v", cfg)
	}

	a.cfg.Storage.PasswordKey = "missing"
	if _, err := a.remoteConfig(); err == nil {
		t.Fatal("expected error for a missing secret")
	}
}
