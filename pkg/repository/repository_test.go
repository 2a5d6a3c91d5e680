package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/JaimeStill/binsort/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
	errOther     = errors.New("disk on fire")
)

type item struct {
	Name string
	Bin  string
}

func scanItem(s repository.Scanner) (item, error) {
	var it item
	err := s.Scan(&it.Name, &it.Bin)
	return it, err
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE items (name TEXT PRIMARY KEY, bin TEXT NOT NULL)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	return db
}

func TestMapError(t *testing.T) {
	pgFK := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"pg unique", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"pg other", pgFK, pgFK},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, errDuplicate},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, errDuplicate},
		{"passthrough", errOther, errOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecAndQuery(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	for _, it := range []item{{"can.jpg", "Blue"}, {"peel.jpg", "Green"}} {
		if err := repository.ExecExpectOne(ctx, db, `INSERT INTO items (name, bin) VALUES ($1, $2)`, it.Name, it.Bin); err != nil {
			t.Fatalf("insert %s: %v", it.Name, err)
		}
	}

	got, err := repository.QueryOne(ctx, db, `SELECT name, bin FROM items WHERE name = $1`, []any{"peel.jpg"}, scanItem)
	if err != nil {
		t.Fatalf("query one: %v", err)
	}
	if got.Bin != "Green" {
		t.Errorf("bin: got %s, want Green", got.Bin)
	}

	all, err := repository.QueryMany(ctx, db, `SELECT name, bin FROM items ORDER BY name`, nil, scanItem)
	if err != nil {
		t.Fatalf("query many: %v", err)
	}
	want := []item{{"can.jpg", "Blue"}, {"peel.jpg", "Green"}}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	none, err := repository.QueryMany(ctx, db, `SELECT name, bin FROM items WHERE bin = $1`, []any{"Red"}, scanItem)
	if err != nil {
		t.Fatalf("query empty: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("empty query: got %#v, want empty slice", none)
	}

	_, err = repository.QueryOne(ctx, db, `SELECT name, bin FROM items WHERE name = $1`, []any{"nope"}, scanItem)
	if !errors.Is(repository.MapError(err, errNotFound, errDuplicate), errNotFound) {
		t.Errorf("missing row: got %v", err)
	}

	err = repository.ExecExpectOne(ctx, db, `INSERT INTO items (name, bin) VALUES ($1, $2)`, "can.jpg", "Red")
	if !errors.Is(repository.MapError(err, errNotFound, errDuplicate), errDuplicate) {
		t.Errorf("duplicate insert: got %v", err)
	}

	err = repository.ExecExpectOne(ctx, db, `DELETE FROM items WHERE name = $1`, "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("delete missing: got %v, want sql.ErrNoRows", err)
	}
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	n, err := repository.WithTx(ctx, db, nil, func(tx *sql.Tx) (int, error) {
		if err := repository.ExecExpectOne(ctx, tx, `INSERT INTO items (name, bin) VALUES ($1, $2)`, "a.jpg", "Blue"); err != nil {
			return 0, err
		}
		return 1, nil
	})
	if err != nil || n != 1 {
		t.Fatalf("commit: n=%d err=%v", n, err)
	}

	_, err = repository.WithTx(ctx, db, nil, func(tx *sql.Tx) (int, error) {
		if err := repository.ExecExpectOne(ctx, tx, `INSERT INTO items (name, bin) VALUES ($1, $2)`, "b.jpg", "Red"); err != nil {
			return 0, err
		}
		return 0, errOther
	})
	if !errors.Is(err, errOther) {
		t.Fatalf("rollback: got %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("rows after rollback: got %d, want 1", count)
	}

	names, err := repository.WithTx(ctx, db, repository.ReadOnly(), func(tx *sql.Tx) ([]string, error) {
		return repository.QueryMany(ctx, tx, `SELECT name FROM items`, nil, func(s repository.Scanner) (string, error) {
			var name string
			err := s.Scan(&name)
			return name, err
		})
	})
	if err != nil {
		t.Fatalf("read-only: %v", err)
	}
	if len(names) != 1 || names[0] != "a.jpg" {
		t.Errorf("read-only names = %v, want [a.jpg]", names)
	}
}
