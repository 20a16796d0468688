package dbclient

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestNewConnector_UnsupportedDriver(t *testing.T) {
	_, err := NewConnector(context.Background(), Config{Driver: "oracle"})
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestSQLiteConnector_SaveLoad(t *testing.T) {
	ctx := context.Background()
	c, err := NewConnector(ctx, Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "docs.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.TestConnection(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load(ctx, "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := c.Save(ctx, "doc-1", `[{"id":"a"}]`); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(ctx, "doc-1", `[{"id":"b"}]`); err != nil {
		t.Fatalf("second save should replace: %v", err)
	}
	got, err := c.Load(ctx, "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if got != `[{"id":"b"}]` {
		t.Fatalf("got %s", got)
	}
}

func TestRebind(t *testing.T) {
	pg := &sqlConnector{driverName: "postgres"}
	if got := pg.rebind("SELECT ? , ?"); got != "SELECT $1 , $2" {
		t.Fatalf("got %q", got)
	}
	my := &sqlConnector{driverName: "mysql"}
	if got := my.rebind("SELECT ?"); got != "SELECT ?" {
		t.Fatalf("got %q", got)
	}
}

func TestDSNBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"mysql dsn wins", buildMySQLDSN(Config{DSN: "raw"}), "raw"},
		{"postgres defaults", buildPostgresDSN(Config{Host: "db", Username: "u", Password: "p", Database: "docs"}),
			"postgres://u:p@db:5432/docs?sslmode=disable"},
		{"postgres escapes password", buildPostgresDSN(Config{Host: "db", Port: 6543, Username: "u", Password: "a/b", Database: "docs", SSLMode: "require"}),
			"postgres://u:a%2Fb@db:6543/docs?sslmode=require"},
		{"mongo host", mongoURI(Config{Host: "db"}), "mongodb://db:27017"},
		{"mongo atlas", mongoURI(Config{Host: "mongodb+srv://u:<password>@c.net/app", Password: "s"}),
			"mongodb+srv://u:s@c.net/app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn := buildMySQLDSN(Config{Host: "db", Username: "u", Password: "p@ss", Database: "docs", SSLMode: "require"})
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("parse %q: %v", dsn, err)
	}
	if mc.User != "u" || mc.Passwd != "p@ss" || mc.Addr != "db:3306" || mc.DBName != "docs" {
		t.Errorf("unexpected config from %q: %+v", dsn, mc)
	}
	if !mc.ParseTime || mc.TLSConfig != "true" {
		t.Errorf("expected parseTime and tls in %q", dsn)
	}
}

func TestMongoDatabase(t *testing.T) {
	if got := mongoDatabase(Config{}, "mongodb+srv://u:p@c.net/app?retryWrites=true"); got != "app" {
		t.Fatalf("got %q", got)
	}
	if got := mongoDatabase(Config{}, "mongodb://db:27017"); got != "pagedoc" {
		t.Fatalf("got %q", got)
	}
	if got := mongoDatabase(Config{Database: "x"}, "mongodb://db/app"); got != "x" {
		t.Fatalf("got %q", got)
	}
}
