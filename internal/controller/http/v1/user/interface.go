package user

import (
	"context"

	"indengsvc/backend/internal/repository/postgres/user"
)

type User interface {
	GetList(ctx context.Context) ([]user.GetListResponse, error)
	GetDetailById(ctx context.Context, rawID string) (user.GetDetailByIdResponse, error)
}
