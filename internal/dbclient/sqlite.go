package dbclient

import (
	"context"

	_ "modernc.org/sqlite"
)

// newSQLiteConnector opens an external SQLite file in WAL mode with a busy
// timeout for concurrent access.
func newSQLiteConnector(ctx context.Context, cfg Config) (*sqlConnector, error) {
	path := cfg.DSN
	if path == "" {
		path = cfg.Host
	}
	return newSQLConnector(ctx, "sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000", cfg.table())
}
