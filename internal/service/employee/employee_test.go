package employee_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"indengsvc/backend/internal/entity"
	"indengsvc/backend/internal/pkg/errs"
	"indengsvc/backend/internal/pkg/lock"
	"indengsvc/backend/internal/pkg/repository/postgresql/postgresqltest"
	"indengsvc/backend/internal/repository/postgres/syncrun"
	"indengsvc/backend/internal/repository/postgres/user"
	"indengsvc/backend/internal/service/employee"
)

type fakeLegacy struct {
	tokens   []string
	failAt   string
	failWith error
	jitter   bool
	block    chan struct{}
	entered  chan struct{}
	once     sync.Once
	calls    atomic.Int32
}

func (f *fakeLegacy) FetchTokenManifest(ctx context.Context) ([]string, error) {
	if f.block != nil {
		f.once.Do(func() { close(f.entered) })
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.tokens, nil
}

func (f *fakeLegacy) FetchEmployee(ctx context.Context, token string) (entity.Employee, error) {
	f.calls.Add(1)
	if f.jitter {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
	}
	if token == f.failAt {
		return entity.Employee{}, f.failWith
	}

	var id int64
	if _, err := fmt.Sscanf(token, "tok-%d", &id); err != nil {
		return entity.Employee{}, err
	}
	email := fmt.Sprintf("user%d@example.com", id)
	return entity.Employee{ID: id, Email: &email}, nil
}

func tokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("tok-%d", i+1)
	}
	return out
}

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func TestSynchronizeIsIdempotent(t *testing.T) {
	db := postgresqltest.New(t)
	repo := user.NewRepository(db)
	runs := syncrun.NewRepository(db)
	legacy := &fakeLegacy{tokens: tokens(3)}
	svc := employee.NewService(legacy, repo, runs, lock.NewLocal(), 1, quiet())

	for i := 0; i < 2; i++ {
		got, err := svc.Synchronize(context.Background())
		if err != nil {
			t.Fatalf("Synchronize run %d: %v", i+1, err)
		}
		if len(got) != 3 {
			t.Fatalf("run %d returned %d employees, want 3", i+1, len(got))
		}
		if n := postgresqltest.Count(t, db, "users"); n != 3 {
			t.Errorf("run %d: users rows = %d, want 3", i+1, n)
		}
	}

	history, err := runs.GetList(context.Background(), 20)
	if err != nil {
		t.Fatalf("GetList runs: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("recorded runs = %d, want 2", len(history))
	}
	for _, run := range history {
		if run.Status != entity.SyncStatusSuccess || run.Summary.Employees != 3 || run.Summary.Tokens != 3 {
			t.Errorf("unexpected run: %+v", run)
		}
	}
}

func TestSynchronizeFailureLeavesTableUntouched(t *testing.T) {
	db := postgresqltest.New(t)
	repo := user.NewRepository(db)
	runs := syncrun.NewRepository(db)

	seed := employee.NewService(&fakeLegacy{tokens: tokens(2)}, repo, runs, nil, 1, quiet())
	if _, err := seed.Synchronize(context.Background()); err != nil {
		t.Fatalf("seed Synchronize: %v", err)
	}

	upstream := &errs.UpstreamError{URL: "http://legacy/tok-4", StatusCode: 503}
	for _, workers := range []int{1, 4} {
		legacy := &fakeLegacy{tokens: tokens(6), failAt: "tok-4", failWith: upstream}
		svc := employee.NewService(legacy, repo, runs, nil, workers, quiet())

		_, err := svc.Synchronize(context.Background())
		if !errors.Is(err, upstream) {
			t.Fatalf("workers=%d: expected the upstream error unchanged, got %v", workers, err)
		}
		if n := postgresqltest.Count(t, db, "users"); n != 2 {
			t.Errorf("workers=%d: users rows = %d, want 2", workers, n)
		}
	}

	history, err := runs.GetList(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetList runs: %v", err)
	}
	if len(history) != 1 || history[0].Status != entity.SyncStatusFailed || history[0].Summary.Error == "" {
		t.Errorf("last run should be a recorded failure: %+v", history)
	}
}

func TestSynchronizeKeepsManifestOrderWithWorkers(t *testing.T) {
	db := postgresqltest.New(t)
	legacy := &fakeLegacy{tokens: tokens(40), jitter: true}
	svc := employee.NewService(legacy, user.NewRepository(db), nil, nil, 8, quiet())

	got, err := svc.Synchronize(context.Background())
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	for i, e := range got {
		if e.ID != int64(i+1) {
			t.Fatalf("got[%d].ID = %d, want %d", i, e.ID, i+1)
		}
	}
	if int(legacy.calls.Load()) != 40 {
		t.Errorf("FetchEmployee calls = %d, want 40", legacy.calls.Load())
	}
}

func TestSynchronizeRejectsConcurrentRun(t *testing.T) {
	db := postgresqltest.New(t)
	legacy := &fakeLegacy{tokens: tokens(1), block: make(chan struct{}), entered: make(chan struct{})}
	svc := employee.NewService(legacy, user.NewRepository(db), nil, lock.NewLocal(), 1, quiet())

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.Synchronize(context.Background())
	}()

	<-legacy.entered

	_, err := svc.Synchronize(context.Background())
	var conflict *errs.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError while a run is in progress, got %v", err)
	}

	close(legacy.block)
	wg.Wait()
	if firstErr != nil {
		t.Fatalf("first Synchronize: %v", firstErr)
	}
}
