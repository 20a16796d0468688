package dbclient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// sqlConnector is the shared implementation for MySQL, Postgres, and SQLite.
type sqlConnector struct {
	driverName string
	db         *sql.DB
	table      string
}

func newSQLConnector(ctx context.Context, driverName, dsn, table string) (*sqlConnector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	c := &sqlConnector{driverName: driverName, db: db, table: table}
	if err := c.ensureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *sqlConnector) ensureTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	idType, contentType := "TEXT", "TEXT"
	if c.driverName == "mysql" {
		idType, contentType = "VARCHAR(64)", "LONGTEXT"
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id %s PRIMARY KEY,
		content %s NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`, c.table, idType, contentType)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", c.table, err)
	}
	return nil
}

func (c *sqlConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

// rebind rewrites ? placeholders to the driver's syntax.
func (c *sqlConnector) rebind(query string) string {
	if c.driverName != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *sqlConnector) upsertQuery() string {
	if c.driverName == "mysql" {
		return fmt.Sprintf(`INSERT INTO %s (id, content, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE content = VALUES(content), updated_at = VALUES(updated_at)`, c.table)
	}
	return c.rebind(fmt.Sprintf(`INSERT INTO %s (id, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`, c.table))
}

func (c *sqlConnector) Load(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var value string
	err := c.db.QueryRowContext(ctx,
		c.rebind(fmt.Sprintf(`SELECT content FROM %s WHERE id = ?`, c.table)), id,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", id, err)
	}
	return value, nil
}

func (c *sqlConnector) Save(ctx context.Context, id, value string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, c.upsertQuery(), id, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

func (c *sqlConnector) Close() error {
	return c.db.Close()
}
