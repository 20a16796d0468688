// Package watch reloads editors from serialized document files whenever the
// files are written on disk.
package watch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Target receives the reloaded document. *editor.Editor satisfies it.
type Target interface {
	Load(value string)
	Value() string
}

// ReloadHandler is called after a target was reloaded from path.
type ReloadHandler func(path string)

// Watcher maps document files to the editors showing them.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onReload ReloadHandler

	mu       sync.RWMutex
	watching map[string]Target // abs path -> target
	dirs     map[string]int    // watched dir -> files in it
	done     chan struct{}
}

// New creates a watcher. onReload may be nil.
func New(onReload ReloadHandler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		watcher:  fw,
		onReload: onReload,
		watching: make(map[string]Target),
		dirs:     make(map[string]int),
		done:     make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Watch loads path into t now and again after every write.
func (w *Watcher) Watch(path string, t Target) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("read %s: %w", abs, err)
	}
	t.Load(string(data))

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watching[abs]; !ok {
		dir := filepath.Dir(abs)
		// Watch the directory: editors often replace files by rename.
		if w.dirs[dir] == 0 {
			if err := w.watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}
		w.dirs[dir]++
	}
	w.watching[abs] = t
	return nil
}

// Unwatch stops reloading path.
func (w *Watcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watching[abs]; !ok {
		return
	}
	delete(w.watching, abs)
	dir := filepath.Dir(abs)
	if w.dirs[dir]--; w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		w.watcher.Remove(dir)
	}
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WATCH] watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload(name string) {
	abs, _ := filepath.Abs(name)
	w.mu.RLock()
	t, watched := w.watching[abs]
	w.mu.RUnlock()
	if !watched {
		return
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		log.Printf("[WATCH] read file %s: %v", abs, err)
		return
	}
	// A truncate-then-write shows up as an empty write first.
	if len(data) == 0 {
		return
	}
	value := string(data)
	if value == t.Value() {
		return
	}
	t.Load(value)
	if w.onReload != nil {
		w.onReload(abs)
	}
}
