// Package database manages the journal's SQL connection (SQLite or PostgreSQL)
// and its schema migrations under lifecycle coordination.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/JaimeStill/binsort/pkg/lifecycle"
)

// System manages database connections and lifecycle coordination.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Driver returns the configured driver name (sqlite3 or postgres).
	Driver() string
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	cfg         *Config
	source      fs.FS
	logger      *slog.Logger
	connTimeout time.Duration
}

// New opens the configured driver and applies pool settings. The connection is
// verified, and pending migrations from source applied, when Start runs.
// A nil source disables migrations.
func New(cfg *Config, source fs.FS, logger *slog.Logger) (System, error) {
	if err := ensureDir(cfg); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.SQLDriver(), cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		cfg:         cfg,
		source:      source,
		logger:      logger.With("system", "database", "driver", cfg.Driver),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Driver() string {
	return d.cfg.Driver
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")

	pingCtx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
	defer cancel()

	if err := d.conn.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}

	if d.source != nil && d.cfg.Migrates() {
		version, err := Migrate(d.cfg, d.source)
		if err != nil {
			return err
		}
		d.logger.Info("database schema current", "version", version)
	}

	d.logger.Info("database connection established")

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.logger.Info("closing database connection")

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}

		d.logger.Info("database connection closed")
	})

	return nil
}

// Migrator opens a golang-migrate instance over the embedded migration files.
// The caller owns the returned instance and must Close it.
func Migrator(cfg *Config, source fs.FS) (*migrate.Migrate, error) {
	if err := ensureDir(cfg); err != nil {
		return nil, err
	}

	src, err := iofs.New(source, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Migrate applies every pending up migration and returns the resulting version.
func Migrate(cfg *Config, source fs.FS) (uint, error) {
	m, err := Migrator(cfg, source)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	return version, nil
}

// ensureDir creates the parent directory of a SQLite database file.
func ensureDir(cfg *Config) error {
	if cfg.Driver != DriverSQLite {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	return nil
}
