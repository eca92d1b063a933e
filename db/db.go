// Package db implements the relational side of a sync pass: target table creation,
// transactional insert/update of sheet records and table snapshots. PostgreSQL is accessed
// through the pgx database/sql driver, SQLite through modernc.org/sqlite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store is a single-connection handle to the target database. A Store is opened at the
// start of a sync pass and closed at the end of it.
type Store struct {
	db      *sql.DB
	dialect dialect
}

type dialect struct {
	driver      string
	placeholder func(n int) string
}

var postgres = dialect{
	driver:      "pgx",
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

var sqlite = dialect{
	driver:      "sqlite",
	placeholder: func(n int) string { return "?" },
}

// Open opens and pings the database. The driver is one of 'pgx' (or 'postgres') and
// 'sqlite' (or 'sqlite3').
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var d dialect

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "pgx", "postgres", "postgresql":
		d = postgres

	case "sqlite", "sqlite3":
		d = sqlite

	default:
		return nil, fmt.Errorf("unsupported database driver '%v' - expected 'pgx' or 'sqlite'", driver)
	}

	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("missing database DSN")
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %v database (%w)", d.driver, err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to %v database (%w)", d.driver, err)
	}

	if d.driver == "sqlite" {
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{
		db:      db,
		dialect: d,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Store) placeholders(from, count int) []string {
	list := make([]string, count)
	for i := range list {
		list[i] = s.dialect.placeholder(from + i)
	}

	return list
}
