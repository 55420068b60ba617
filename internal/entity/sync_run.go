package entity

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// SyncRun records one synchronization attempt. Summary is stored as JSON text.
type SyncRun struct {
	bun.BaseModel `bun:"table:sync_runs"`

	ID         string    `json:"id"          bun:"id,pk"`
	StartedAt  time.Time `json:"started_at"  bun:"started_at"`
	FinishedAt time.Time `json:"finished_at" bun:"finished_at"`
	Status     string    `json:"status"      bun:"status"`
	Summary    string    `json:"-"           bun:"summary"`
}

// SyncSummary is the structured payload kept in SyncRun.Summary.
type SyncSummary struct {
	Tokens     int    `json:"tokens"`
	Employees  int    `json:"employees"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}
