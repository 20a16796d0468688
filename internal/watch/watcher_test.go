package watch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
	"pagedoc/internal/editor"
	"pagedoc/internal/watch"
)

func writeDoc(t *testing.T, path string, texts ...string) {
	t.Helper()
	blocks := make([]domain.Block, len(texts))
	for i, s := range texts {
		blocks[i] = domain.Block{ID: string(rune('a' + i)), Type: domain.BlockTypeText, Content: content.Plain(s)}
	}
	if err := os.WriteFile(path, []byte(content.Encode(blocks)), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeDoc(t, path, "first")

	reloaded := make(chan string, 4)
	w, err := watch.New(func(p string) { reloaded <- p })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ed := editor.New(editor.Options{})
	if err := w.Watch(path, ed); err != nil {
		t.Fatal(err)
	}
	if got := content.PlainText(ed.Blocks()[0].Content); got != "first" {
		t.Fatalf("initial load = %q", got)
	}

	writeDoc(t, path, "second", "third")
	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}
	if n := len(ed.Blocks()); n != 2 {
		t.Fatalf("expected 2 blocks after reload, got %d", n)
	}
	if ed.CanUndo() {
		t.Fatal("a reload starts a fresh history")
	}
}

func TestWatcher_MissingFile(t *testing.T) {
	w, err := watch.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch(filepath.Join(t.TempDir(), "nope.json"), editor.New(editor.Options{})); err == nil {
		t.Fatal("expected read error")
	}
}

func TestWatcher_UnwatchStopsReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeDoc(t, path, "first")

	reloaded := make(chan string, 4)
	w, err := watch.New(func(p string) { reloaded <- p })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ed := editor.New(editor.Options{})
	if err := w.Watch(path, ed); err != nil {
		t.Fatal(err)
	}
	w.Unwatch(path)
	writeDoc(t, path, "ignored")

	select {
	case <-reloaded:
		t.Fatal("unwatched file reloaded")
	case <-time.After(200 * time.Millisecond):
	}
	if got := content.PlainText(ed.Blocks()[0].Content); got != "first" {
		t.Fatalf("got %q", got)
	}
}
