package commands

import (
	"context"
	"database/sql"
	"log"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"indengsvc/backend/internal/pkg/errs"
	"indengsvc/backend/internal/pkg/repository/postgresql"
	"indengsvc/backend/internal/repository/postgres/syncrun"
	"indengsvc/backend/internal/repository/postgres/user"
)

type Scheme struct {
	Index       int
	Description string
	Query       string
}

// employees and teams belong to another system and are never migrated here.
var scheme = []Scheme{
	{
		Index:       1,
		Description: "Create table: users.",
		Query:       user.CreateTableQuery,
	},
	{
		Index:       2,
		Description: "Create table: sync_runs.",
		Query:       syncrun.CreateTableQuery,
	},
}

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER NOT NULL,
		dirty   BOOLEAN NOT NULL,
		error   TEXT
	)`

// MigrateUP applies every scheme entry newer than the recorded version. A
// version left dirty by a failed run is retried first. Each step runs in its
// own transaction.
func MigrateUP(ctx context.Context, db *postgresql.Database, logger *log.Logger) error {
	version, dirty, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, s := range scheme {
		if s.Index < version || (s.Index == version && !dirty) {
			continue
		}

		err = db.WithSession(ctx, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, s.Query); err != nil {
				return errors.Wrapf(err, "migrate version %d", s.Index)
			}
			_, err := tx.ExecContext(ctx,
				`UPDATE schema_migrations SET version = ?, dirty = ?, error = NULL`, s.Index, false)
			return err
		})
		if err != nil {
			markDirty(ctx, db, s.Index, err, logger)
			return &errs.StorageError{Op: "migrating schema", Err: err}
		}

		logger.Printf("migrate: applied version %d: %s", s.Index, s.Description)
	}

	return nil
}

func currentVersion(ctx context.Context, db *postgresql.Database) (version int, dirty bool, err error) {
	err = db.WithSession(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, createMigrationsTable); err != nil {
			return err
		}

		err := tx.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations`).Scan(&version, &dirty)
		if errors.Is(err, sql.ErrNoRows) {
			version, dirty = 0, false
			_, err = tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, 0, false)
		}
		return err
	})
	if err != nil {
		return 0, false, &errs.StorageError{Op: "reading schema_migrations", Err: err}
	}

	return version, dirty, nil
}

func markDirty(ctx context.Context, db *postgresql.Database, index int, cause error, logger *log.Logger) {
	err := db.WithSession(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE schema_migrations SET version = ?, dirty = ?, error = ?`, index, true, cause.Error())
		return err
	})
	if err != nil {
		logger.Println("migrate: recording failure:", err)
	}
}
