package syncrun

import (
	"context"

	"indengsvc/backend/internal/repository/postgres/syncrun"
)

type SyncRun interface {
	GetList(ctx context.Context, limit int) ([]syncrun.GetListResponse, error)
}
