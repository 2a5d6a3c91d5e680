package database_test

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/binsort/pkg/database"
)

func TestConfigDefaults(t *testing.T) {
	var cfg database.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.Driver != database.DriverSQLite {
		t.Errorf("driver: got %s", cfg.Driver)
	}
	if cfg.Path != "data/binsort.db" {
		t.Errorf("path: got %s", cfg.Path)
	}
	if cfg.SQLDriver() != "sqlite3" {
		t.Errorf("sql driver: got %s", cfg.SQLDriver())
	}
	if !cfg.Migrates() {
		t.Error("auto migrate should default to true")
	}
	if cfg.ConnMaxLifetimeDuration() != 15*time.Minute {
		t.Errorf("conn max lifetime: got %s", cfg.ConnMaxLifetimeDuration())
	}
	if cfg.ConnTimeoutDuration() != 5*time.Second {
		t.Errorf("conn timeout: got %s", cfg.ConnTimeoutDuration())
	}
}

func TestConfigConnectionStrings(t *testing.T) {
	tests := []struct {
		name       string
		cfg        database.Config
		sqlDriver  string
		dsn        string
		migrateURL string
	}{
		{
			name:       "sqlite",
			cfg:        database.Config{Driver: "sqlite3", Path: "/var/lib/binsort/journal.db"},
			sqlDriver:  "sqlite3",
			dsn:        "file:/var/lib/binsort/journal.db?_busy_timeout=5000&_journal_mode=WAL",
			migrateURL: "sqlite3:///var/lib/binsort/journal.db",
		},
		{
			name: "postgres",
			cfg: database.Config{
				Driver: "postgres", Host: "db", Port: 5433, Name: "binsort",
				User: "sorter", Password: "p@ss", SSLMode: "require",
			},
			sqlDriver:  "pgx",
			dsn:        "host=db port=5433 dbname=binsort user=sorter password=p@ss sslmode=require",
			migrateURL: "postgres://sorter:p%40ss@db:5433/binsort?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.SQLDriver(); got != tt.sqlDriver {
				t.Errorf("sql driver: got %s, want %s", got, tt.sqlDriver)
			}
			if got := tt.cfg.Dsn(); got != tt.dsn {
				t.Errorf("dsn:\n got %s\nwant %s", got, tt.dsn)
			}
			if got := tt.cfg.MigrateURL(); got != tt.migrateURL {
				t.Errorf("migrate url:\n got %s\nwant %s", got, tt.migrateURL)
			}
		})
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "postgres")
	t.Setenv("TEST_DB_USER", "sorter")
	t.Setenv("TEST_DB_PORT", "6543")
	t.Setenv("TEST_DB_AUTO_MIGRATE", "false")

	var cfg database.Config
	err := cfg.Finalize(&database.Env{
		Driver:      "TEST_DB_DRIVER",
		User:        "TEST_DB_USER",
		Port:        "TEST_DB_PORT",
		AutoMigrate: "TEST_DB_AUTO_MIGRATE",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.Driver != "postgres" || cfg.User != "sorter" || cfg.Port != 6543 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Migrates() {
		t.Error("auto migrate should be disabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"unknown driver", database.Config{Driver: "mysql"}, "unsupported driver"},
		{"postgres without user", database.Config{Driver: "postgres"}, "user required"},
		{"bad lifetime", database.Config{ConnMaxLifetime: "forever"}, "conn_max_lifetime"},
		{"bad timeout", database.Config{ConnTimeout: "soon"}, "conn_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	off := false
	base := database.Config{Driver: "sqlite3", Path: "a.db", Port: 5432}
	base.Merge(&database.Config{Path: "b.db", AutoMigrate: &off})

	if base.Driver != "sqlite3" {
		t.Errorf("driver should be kept: got %s", base.Driver)
	}
	if base.Path != "b.db" {
		t.Errorf("path: got %s", base.Path)
	}
	if base.Migrates() {
		t.Error("auto migrate overlay not applied")
	}
}
