package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"pagedoc/internal/config"
	"pagedoc/internal/dbclient"
	"pagedoc/internal/editor"
	"pagedoc/internal/secret"
	"pagedoc/internal/service"
	"pagedoc/internal/storage"
	"pagedoc/internal/watch"
)

// App wires storage, services and watchers for one pagedoc process. Its
// exported methods are the host bindings.
type App struct {
	ctx     context.Context
	cfg     config.Config
	emitter service.EventEmitter

	secrets  secret.SecretStore
	db       *storage.DB
	store    *storage.DocumentStore
	remote   dbclient.Connector
	docs     *service.DocumentService
	autosave *service.Autosaver
	watcher  *watch.Watcher
	poller   *documentPoller
}

// New creates a new App. emitter may be nil.
func New(cfg config.Config, emitter service.EventEmitter) *App {
	if emitter == nil {
		emitter = service.NopEmitter{}
	}
	return &App{cfg: cfg, emitter: emitter}
}

// Startup opens the database and the remote backend, then starts the
// autosave schedule and the document poller.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	if err := os.MkdirAll(filepath.Dir(a.cfg.Storage.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := storage.New(a.cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.store = storage.NewDocumentStore(db)

	if a.cfg.Storage.Driver != "" {
		remoteCfg, err := a.remoteConfig()
		if err != nil {
			a.Shutdown(ctx)
			return err
		}
		remote, err := dbclient.NewConnector(ctx, remoteCfg)
		if err != nil {
			a.Shutdown(ctx)
			return fmt.Errorf("connect remote backend: %w", err)
		}
		a.remote = remote
		log.Printf("[APP] remote backend: %s", a.cfg.Storage.Driver)
	}

	docsCfg := service.DocumentServiceConfig{
		Store:   a.store,
		Remote:  a.remote,
		Emitter: a.emitter,
		Editor:  a.cfg.EditorOptions(),
	}
	if a.cfg.History.Persist {
		docsCfg.History = storage.NewHistoryStore(db, a.cfg.History.Depth)
	}
	a.docs = service.NewDocumentService(docsCfg)

	if a.cfg.Autosave.Schedule != "" {
		a.autosave = service.NewAutosaver(a.docs, a.cfg.Autosave.Schedule, a.emitter)
		if err := a.autosave.Start(ctx); err != nil {
			a.Shutdown(ctx)
			return err
		}
	}

	a.poller = newDocumentPoller(ctx, a)
	a.poller.Start()
	return nil
}

// remoteConfig fills the backend password from the secret store when the
// config names a key for it.
func (a *App) remoteConfig() (dbclient.Config, error) {
	cfg := a.cfg.Storage.Config
	if a.cfg.Storage.PasswordKey == "" {
		return cfg, nil
	}
	if a.secrets == nil {
		a.secrets = secret.Open(a.cfg.Storage.SecretStore)
	}
	pw, err := a.secrets.Get(a.cfg.Storage.PasswordKey)
	if err != nil {
		return cfg, fmt.Errorf("read backend password: %w", err)
	}
	if pw == nil {
		return cfg, fmt.Errorf("backend password %q not found", a.cfg.Storage.PasswordKey)
	}
	cfg.Password = string(pw)
	return cfg, nil
}

// Shutdown saves open documents and releases everything Startup acquired.
func (a *App) Shutdown(ctx context.Context) {
	if a.poller != nil {
		a.poller.Stop()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.autosave != nil {
		a.autosave.Stop()
	}
	if a.docs != nil {
		a.docs.Shutdown(ctx)
	}
	if a.remote != nil {
		if err := a.remote.Close(); err != nil {
			log.Printf("[APP] close remote backend: %v", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Documents returns the document service. Nil before Startup.
func (a *App) Documents() *service.DocumentService {
	return a.docs
}

// WatchFile loads a serialized document file into a standalone editor and
// reloads it whenever the file is written. onReload may be nil.
func (a *App) WatchFile(path string, onReload func(*editor.Editor)) (*editor.Editor, error) {
	if path == "" {
		return nil, errors.New("watch: empty path")
	}
	opts := a.cfg.EditorOptions()
	opts.Emitter = a.emitter
	ed := editor.New(opts)

	if a.watcher == nil {
		w, err := watch.New(func(p string) {
			log.Printf("[WATCH] reloaded %s", p)
			a.emitter.Emit(a.context(), "watch:reloaded", p)
		})
		if err != nil {
			ed.Close()
			return nil, err
		}
		a.watcher = w
	}

	target := watch.Target(ed)
	if onReload != nil {
		target = notifyingTarget{Editor: ed, onReload: onReload}
	}
	if err := a.watcher.Watch(path, target); err != nil {
		ed.Close()
		return nil, err
	}
	return ed, nil
}

// notifyingTarget calls onReload after every load of the watched file.
type notifyingTarget struct {
	*editor.Editor
	onReload func(*editor.Editor)
}

func (t notifyingTarget) Load(value string) {
	t.Editor.Load(value)
	t.onReload(t.Editor)
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}
