// Package dbclient stores serialized documents in an external database so a
// document can be opened from, and saved back to, a backend other than the
// local SQLite file.
package dbclient

import (
	"context"
	"errors"
	"fmt"
)

// Common errors for document backends.
var (
	ErrUnsupportedDriver = errors.New("unsupported driver")
	ErrNotFound          = errors.New("document not found")
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverMongoDB  Driver = "mongodb"
)

// Config describes a backend. DSN, when set, is used as is; otherwise it is
// built from the individual fields.
type Config struct {
	Driver   Driver `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	// Table is the table or collection holding documents.
	Table string `mapstructure:"table"`
}

const defaultTable = "pagedoc_documents"

func (c Config) table() string {
	if c.Table == "" {
		return defaultTable
	}
	return c.Table
}

// Connector loads and saves serialized documents by id.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// Load returns the serialized blocks of a document.
	Load(ctx context.Context, id string) (string, error)

	// Save creates or replaces a document.
	Save(ctx context.Context, id, value string) error

	// Close closes the connection.
	Close() error
}

// NewConnector creates a Connector for the configured driver.
func NewConnector(ctx context.Context, cfg Config) (Connector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return newSQLiteConnector(ctx, cfg)
	case DriverMySQL:
		return newSQLConnector(ctx, "mysql", buildMySQLDSN(cfg), cfg.table())
	case DriverPostgres:
		return newSQLConnector(ctx, "postgres", buildPostgresDSN(cfg), cfg.table())
	case DriverMongoDB:
		return newMongoConnector(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}
