// Package employee mirrors the legacy employee records into the users table.
package employee

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"indengsvc/backend/internal/entity"
	"indengsvc/backend/internal/pkg/errs"
	"indengsvc/backend/internal/pkg/lock"
)

const lockKey = "indengsvc:employee-sync"

type Legacy interface {
	FetchTokenManifest(ctx context.Context) ([]string, error)
	FetchEmployee(ctx context.Context, token string) (entity.Employee, error)
}

type Store interface {
	ReplaceAll(ctx context.Context, employees []entity.Employee) error
}

type RunRecorder interface {
	Create(ctx context.Context, run entity.SyncRun, summary entity.SyncSummary) error
}

type Service struct {
	legacy  Legacy
	store   Store
	runs    RunRecorder
	locker  lock.Locker
	workers int
	log     *log.Logger
}

// NewService wires the sync. runs may be nil to skip run history; workers
// above one fetch records concurrently.
func NewService(legacy Legacy, store Store, runs RunRecorder, locker lock.Locker, workers int, logger *log.Logger) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Service{
		legacy:  legacy,
		store:   store,
		runs:    runs,
		locker:  locker,
		workers: workers,
		log:     logger,
	}
}

// Synchronize fetches the token manifest, exchanges every token for its
// record in manifest order and replaces the users table with the result.
// Nothing is written unless every fetch succeeds.
func (s *Service) Synchronize(ctx context.Context) ([]entity.Employee, error) {
	unlock, ok, err := s.locker.TryLock(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &errs.ConflictError{Resource: "employee synchronization"}
	}
	defer unlock()

	started := time.Now()

	tokens, err := s.legacy.FetchTokenManifest(ctx)
	if err != nil {
		s.record(ctx, started, 0, 0, err)
		return nil, err
	}

	employees, err := s.fetchAll(ctx, tokens)
	if err != nil {
		s.record(ctx, started, len(tokens), 0, err)
		return nil, err
	}

	if err = s.store.ReplaceAll(ctx, employees); err != nil {
		s.record(ctx, started, len(tokens), 0, err)
		return nil, err
	}

	s.record(ctx, started, len(tokens), len(employees), nil)
	return employees, nil
}

func (s *Service) fetchAll(ctx context.Context, tokens []string) ([]entity.Employee, error) {
	employees := make([]entity.Employee, len(tokens))

	if s.workers <= 1 {
		for i, token := range tokens {
			employee, err := s.legacy.FetchEmployee(ctx, token)
			if err != nil {
				return nil, err
			}
			employees[i] = employee
		}
		return employees, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, token := range tokens {
		i, token := i, token
		g.Go(func() error {
			employee, err := s.legacy.FetchEmployee(gctx, token)
			if err != nil {
				return err
			}
			employees[i] = employee
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return employees, nil
}

func (s *Service) record(ctx context.Context, started time.Time, tokens, employees int, cause error) {
	finished := time.Now()

	run := entity.SyncRun{
		ID:         uuid.NewString(),
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
		Status:     entity.SyncStatusSuccess,
	}
	summary := entity.SyncSummary{
		Tokens:     tokens,
		Employees:  employees,
		DurationMS: finished.Sub(started).Milliseconds(),
	}
	if cause != nil {
		run.Status = entity.SyncStatusFailed
		summary.Error = cause.Error()
	}

	if s.log != nil {
		s.log.Printf("sync %s: status=%s tokens=%d employees=%d duration=%dms",
			run.ID, run.Status, tokens, employees, summary.DurationMS)
	}

	if s.runs == nil {
		return
	}
	if err := s.runs.Create(context.WithoutCancel(ctx), run, summary); err != nil && s.log != nil {
		s.log.Println("recording sync run:", err)
	}
}
