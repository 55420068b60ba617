package syncrun_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"indengsvc/backend/internal/commands"
	"indengsvc/backend/internal/entity"
	"indengsvc/backend/internal/pkg/errs"
	"indengsvc/backend/internal/pkg/repository/postgresql/postgresqltest"
	"indengsvc/backend/internal/repository/postgres/syncrun"
)

func TestCreateAndList(t *testing.T) {
	db := postgresqltest.New(t)
	repo := syncrun.NewRepository(db)
	ctx := context.Background()

	if err := commands.MigrateUP(ctx, db, log.New(io.Discard, "", 0)); err != nil {
		t.Fatalf("MigrateUP: %v", err)
	}

	list, err := repo.GetList(ctx, 20)
	if err != nil {
		t.Fatalf("GetList on empty table: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no runs, got %d", len(list))
	}

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		started := start.Add(time.Duration(i) * time.Hour)
		run := entity.SyncRun{
			ID:         fmt.Sprintf("run-%d", i),
			StartedAt:  started,
			FinishedAt: started.Add(time.Minute),
			Status:     entity.SyncStatusSuccess,
		}
		summary := entity.SyncSummary{Tokens: i, Employees: i, DurationMS: 60000}
		if i == 2 {
			run.Status = entity.SyncStatusFailed
			summary.Error = "legacy unavailable"
		}
		if err = repo.Create(ctx, run, summary); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err = repo.GetList(ctx, 2)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != "run-2" || list[1].ID != "run-1" {
		t.Errorf("order = %s, %s; want run-2, run-1", list[0].ID, list[1].ID)
	}
	if list[0].Status != entity.SyncStatusFailed || list[0].Summary.Error != "legacy unavailable" {
		t.Errorf("unexpected failed run: %+v", list[0])
	}
	if list[1].Summary.Tokens != 1 || list[1].Summary.DurationMS != 60000 {
		t.Errorf("summary not decoded: %+v", list[1].Summary)
	}
}

func TestGetListDoesNotCreateTable(t *testing.T) {
	db := postgresqltest.New(t)
	repo := syncrun.NewRepository(db)
	ctx := context.Background()

	_, err := repo.GetList(ctx, 20)

	var storage *errs.StorageError
	if !errors.As(err, &storage) || storage.Op != "selecting sync runs" {
		t.Fatalf("GetList on a fresh database: err = %v, want a select StorageError", err)
	}
	var tables int
	err = db.WithSession(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'sync_runs'").Scan(&tables)
	})
	if err != nil {
		t.Fatal(err)
	}
	if tables != 0 {
		t.Error("sync_runs was created by a read")
	}

	if err = repo.Create(ctx, entity.SyncRun{ID: "run-0", Status: entity.SyncStatusSuccess}, entity.SyncSummary{}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	list, err := repo.GetList(ctx, 20)
	if err != nil || len(list) != 1 {
		t.Errorf("GetList after Create: len = %d, err = %v", len(list), err)
	}
}
