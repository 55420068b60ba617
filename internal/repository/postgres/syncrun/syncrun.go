package syncrun

import (
	"context"

	"github.com/uptrace/bun"

	"indengsvc/backend/internal/entity"
	"indengsvc/backend/internal/pkg/errs"
	"indengsvc/backend/internal/pkg/repository/postgresql"
)

const CreateTableQuery = `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id          VARCHAR(36) NOT NULL PRIMARY KEY,
		started_at  TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		status      VARCHAR(16) NOT NULL,
		summary     TEXT
	)`

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// Create stores run with summary encoded as JSON text.
func (r Repository) Create(ctx context.Context, run entity.SyncRun, summary entity.SyncSummary) error {
	encoded, err := postgresql.EncodeJSON(summary)
	if err != nil {
		return err
	}
	run.Summary = encoded

	return r.WithSession(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, CreateTableQuery); err != nil {
			return &errs.StorageError{Op: "creating sync_runs table", Err: err}
		}
		if _, err := tx.NewInsert().Model(&run).Exec(ctx); err != nil {
			return &errs.StorageError{Op: "creating sync run", Err: err}
		}
		return nil
	})
}

// GetList returns the latest runs, newest first. The table must already
// exist: it is created by the migrations or by the first Create.
func (r Repository) GetList(ctx context.Context, limit int) ([]GetListResponse, error) {
	var runs []entity.SyncRun

	err := r.WithSession(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(&runs).Order("started_at DESC").Limit(limit).Scan(ctx); err != nil {
			return &errs.StorageError{Op: "selecting sync runs", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	list := make([]GetListResponse, 0, len(runs))
	for _, run := range runs {
		detail := GetListResponse{
			ID:         run.ID,
			StartedAt:  run.StartedAt,
			FinishedAt: run.FinishedAt,
			Status:     run.Status,
		}
		if run.Summary != "" {
			if err = postgresql.DecodeJSON(run.Summary, &detail.Summary); err != nil {
				return nil, &errs.StorageError{Op: "decoding sync run summary", Err: err}
			}
		}
		list = append(list, detail)
	}

	return list, nil
}
