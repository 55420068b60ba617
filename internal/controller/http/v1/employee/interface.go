package employee

import (
	"context"

	"indengsvc/backend/internal/entity"
)

type Employee interface {
	Synchronize(ctx context.Context) ([]entity.Employee, error)
}
