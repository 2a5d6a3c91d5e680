package database_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/JaimeStill/binsort/pkg/database"
	"github.com/JaimeStill/binsort/pkg/lifecycle"
)

var source = fstest.MapFS{
	"000001_items.up.sql":   {Data: []byte(`CREATE TABLE items (id TEXT PRIMARY KEY);`)},
	"000001_items.down.sql": {Data: []byte(`DROP TABLE items;`)},
}

func sqliteConfig(t *testing.T) *database.Config {
	t.Helper()
	cfg := &database.Config{Path: filepath.Join(t.TempDir(), "nested", "journal.db")}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func TestStartMigratesAndCloses(t *testing.T) {
	cfg := sqliteConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.New(cfg, source, logger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if db.Driver() != database.DriverSQLite {
		t.Errorf("driver: got %s", db.Driver())
	}

	lc := lifecycle.New()
	if err := db.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := db.Connection().Exec(`INSERT INTO items (id) VALUES ('x')`); err != nil {
		t.Fatalf("migrated table missing: %v", err)
	}

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := db.Connection().Ping(); err == nil {
		t.Error("connection should be closed after shutdown")
	}
}

func TestStartWithoutMigrations(t *testing.T) {
	cfg := sqliteConfig(t)
	off := false
	cfg.AutoMigrate = &off

	db, err := database.New(cfg, source, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	lc := lifecycle.New()
	if err := db.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { lc.Shutdown(time.Second) })

	if _, err := db.Connection().Exec(`INSERT INTO items (id) VALUES ('x')`); err == nil {
		t.Error("table should not exist when auto migrate is off")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	cfg := sqliteConfig(t)

	for range 2 {
		version, err := database.Migrate(cfg, source)
		if err != nil {
			t.Fatalf("migrate: %v", err)
		}
		if version != 1 {
			t.Errorf("version: got %d, want 1", version)
		}
	}
}
