package entity

import (
	"github.com/Azure/go-autorest/autorest/date"
	"github.com/uptrace/bun"
)

// Employee is one record fetched from the legacy service and mirrored into
// the users table.
type Employee struct {
	ID        int64      `json:"id"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	FullName  *string    `json:"full_name"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Gender    *string    `json:"gender"`
	Birth     *date.Date `json:"birth"`
}

// User is the users table row. Birth is bound in its YYYY-MM-DD string form.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        int64   `json:"id"         bun:"id,pk"`
	Email     *string `json:"email"      bun:"email"`
	Phone     *string `json:"phone"      bun:"phone"`
	FullName  *string `json:"full_name"  bun:"full_name"`
	FirstName *string `json:"first_name" bun:"first_name"`
	LastName  *string `json:"last_name"  bun:"last_name"`
	Gender    *string `json:"gender"     bun:"gender"`
	Birth     *string `json:"birth"      bun:"birth"`
}
