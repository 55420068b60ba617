package user

import (
	"github.com/Azure/go-autorest/autorest/date"
	"github.com/shopspring/decimal"
)

// GetListResponse is one row of the composed user view.
type GetListResponse struct {
	ID        int64            `json:"id"`
	Email     *string          `json:"email"`
	Phone     *string          `json:"phone"`
	FullName  *string          `json:"full_name"`
	FirstName *string          `json:"first_name"`
	LastName  *string          `json:"last_name"`
	Gender    *string          `json:"gender"`
	Birth     *date.Date       `json:"birth"`
	Reports   *int64           `json:"reports"`
	Position  *string          `json:"position"`
	Hired     *date.Date       `json:"hired"`
	Salary    *decimal.Decimal `json:"salary"`
	Team      *string          `json:"team"`
}

type GetDetailByIdResponse = GetListResponse
