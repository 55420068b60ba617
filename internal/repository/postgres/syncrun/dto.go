package syncrun

import (
	"time"

	"indengsvc/backend/internal/entity"
)

type GetListResponse struct {
	ID         string             `json:"id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Status     string             `json:"status"`
	Summary    entity.SyncSummary `json:"summary"`
}
