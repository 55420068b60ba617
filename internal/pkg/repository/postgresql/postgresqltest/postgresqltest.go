// Package postgresqltest opens throwaway databases for package tests. The
// database is a file-backed SQLite instance driven through the same bun code
// paths the service uses against Postgres.
package postgresqltest

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"

	"indengsvc/backend/internal/pkg/config"
	"indengsvc/backend/internal/pkg/repository/postgresql"
)

// New returns a database in t's temp dir, closed on cleanup.
func New(t testing.TB) *postgresql.Database {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "indeng.db") + "?_pragma=busy_timeout(5000)"
	db, err := postgresql.NewDatabase(config.DB{
		Conn:        dsn,
		PoolSize:    4,
		MaxOverflow: 2,
	}, log.New(io.Discard, "", 0), nil)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// Employee is a row of the externally owned employees table.
type Employee struct {
	ID       int64
	Email    *string
	Reports  *int64
	Position *string
	Hired    *string
	Salary   *string
	TeamID   *int64
}

// CreateExternalTables creates the employees and teams tables the service
// reads but never owns.
func CreateExternalTables(t testing.TB, db *postgresql.Database) {
	t.Helper()

	exec(t, db, `
		CREATE TABLE IF NOT EXISTS teams (
			id        INTEGER PRIMARY KEY,
			team_name VARCHAR(255)
		)`)
	exec(t, db, `
		CREATE TABLE IF NOT EXISTS employees (
			id       INTEGER PRIMARY KEY,
			email    VARCHAR(255),
			reports  INTEGER,
			position VARCHAR(255),
			hired    DATE,
			salary   NUMERIC(12, 2),
			team_id  INTEGER
		)`)
}

func InsertTeam(t testing.TB, db *postgresql.Database, id int64, name string) {
	t.Helper()
	exec(t, db, `INSERT INTO teams (id, team_name) VALUES (?, ?)`, id, name)
}

func InsertEmployee(t testing.TB, db *postgresql.Database, e Employee) {
	t.Helper()
	exec(t, db, `
		INSERT INTO employees (id, email, reports, position, hired, salary, team_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Email, e.Reports, e.Position, e.Hired, e.Salary, e.TeamID)
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *postgresql.Database, table string) int {
	t.Helper()

	var n int
	err := db.WithSession(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.QueryRowContext(ctx, "SELECT count(*) FROM ?", bun.Ident(table)).Scan(&n)
	})
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func exec(t testing.TB, db *postgresql.Database, query string, args ...any) {
	t.Helper()

	err := db.WithSession(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func Ptr[T any](v T) *T { return &v }
