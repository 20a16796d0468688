package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pagedoc/internal/dbclient"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PAGEDOC_CONFIG", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Pagination.Capacity != 1122 || c.Pagination.SafetyMargin != 100 || c.Pagination.FillRatio != 0.7 {
		t.Errorf("unexpected pagination defaults: %+v", c.Pagination.Params)
	}
	if c.Pagination.Debounce != 20*time.Millisecond {
		t.Errorf("pagination debounce = %v", c.Pagination.Debounce)
	}
	if c.History.Depth != 50 || c.History.Debounce != time.Second {
		t.Errorf("unexpected history defaults: %+v", c.History)
	}
	if c.Focus.Retries != 5 {
		t.Errorf("focus retries = %d", c.Focus.Retries)
	}
	if c.Autosave.Schedule != "@every 30s" {
		t.Errorf("autosave schedule = %q", c.Autosave.Schedule)
	}
	if filepath.Base(c.Storage.Path) != "pagedoc.db" {
		t.Errorf("storage path = %q", c.Storage.Path)
	}
	if c.Storage.Driver != "" {
		t.Errorf("remote backend should be off by default, got %q", c.Storage.Driver)
	}
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "pagedoc.toml")
	data := `
[storage]
driver = "postgres"
host = "db.internal"
port = 5433

[pagination]
capacity = 800
debounce = "50ms"

[history]
persist = true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Storage.Driver != dbclient.DriverPostgres || c.Storage.Host != "db.internal" || c.Storage.Port != 5433 {
		t.Errorf("unexpected storage config: %+v", c.Storage)
	}
	if c.Pagination.Capacity != 800 || c.Pagination.Debounce != 50*time.Millisecond {
		t.Errorf("unexpected pagination config: %+v", c.Pagination)
	}
	if c.Pagination.Gap != 8 {
		t.Errorf("unset keys should keep defaults, gap = %v", c.Pagination.Gap)
	}
	if !c.History.Persist {
		t.Error("expected history.persist from file")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PAGEDOC_PAGINATION_CAPACITY", "900")
	t.Setenv("PAGEDOC_STORAGE_DRIVER", "sqlite")

	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Pagination.Capacity != 900 {
		t.Errorf("capacity = %v", c.Pagination.Capacity)
	}
	if c.Storage.Driver != dbclient.DriverSQLite {
		t.Errorf("driver = %q", c.Storage.Driver)
	}
}

func TestEditorOptions(t *testing.T) {
	isolate(t)
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	opts := c.EditorOptions()
	if opts.Params == nil || opts.Params.Capacity != c.Pagination.Capacity {
		t.Fatalf("params not carried over: %+v", opts.Params)
	}
	if opts.PaginateDelay != c.Pagination.Debounce || opts.History.Debounce != c.History.Debounce {
		t.Errorf("debounces not carried over: %+v", opts)
	}
	if opts.FocusRetries != 5 || opts.History.Depth != 50 {
		t.Errorf("unexpected options: %+v", opts)
	}
}
