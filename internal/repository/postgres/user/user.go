package user

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"indengsvc/backend/internal/entity"
	"indengsvc/backend/internal/pkg/errs"
	"indengsvc/backend/internal/pkg/repository/postgresql"
)

// CreateTableQuery creates the users table owned by the employee sync.
const CreateTableQuery = `
	CREATE TABLE IF NOT EXISTS users (
		id          INTEGER NOT NULL PRIMARY KEY,
		email       VARCHAR(255),
		phone       VARCHAR(255),
		full_name   VARCHAR(255),
		first_name  VARCHAR(255),
		last_name   VARCHAR(255),
		gender      VARCHAR(255),
		birth       DATE
	)`

// composedQuery joins employees with the synced users and their team.
// email prefers the employees value; personal fields come only from users.
// Dates are selected as text so every driver hands back YYYY-MM-DD.
const composedQuery = `
	SELECT
		e.id,
		COALESCE(e.email, u.email),
		u.phone,
		u.full_name,
		u.first_name,
		u.last_name,
		u.gender,
		CAST(u.birth AS TEXT),
		e.reports,
		e.position,
		CAST(e.hired AS TEXT),
		e.salary,
		t.team_name
	FROM employees e
	LEFT JOIN users u ON u.id = e.id
	LEFT JOIN teams t ON t.id = e.team_id
`

const insertBatchSize = 500

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// ParseID accepts only a non-negative base-10 integer literal.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseUint(raw, 10, 63)
	if err != nil {
		return 0, &errs.InvalidArgumentError{Name: "user id", Value: raw}
	}
	return int64(id), nil
}

func (r Repository) GetList(ctx context.Context) ([]GetListResponse, error) {
	list := []GetListResponse{}

	err := r.WithSession(ctx, func(ctx context.Context, tx bun.Tx) error {
		rows, err := tx.QueryContext(ctx, composedQuery+" ORDER BY e.id")
		if err != nil {
			return &errs.StorageError{Op: "selecting users", Err: err}
		}
		defer rows.Close()

		for rows.Next() {
			detail, err := scanComposed(rows)
			if err != nil {
				return &errs.StorageError{Op: "scanning user list", Err: err}
			}
			list = append(list, detail)
		}

		if err = rows.Err(); err != nil {
			return &errs.StorageError{Op: "reading user list", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (r Repository) GetDetailById(ctx context.Context, rawID string) (GetDetailByIdResponse, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return GetDetailByIdResponse{}, err
	}

	var detail GetDetailByIdResponse

	err = r.WithSession(ctx, func(ctx context.Context, tx bun.Tx) error {
		row := tx.QueryRowContext(ctx, composedQuery+" WHERE e.id = ?", id)

		var err error
		detail, err = scanComposed(row)
		if errors.Is(err, sql.ErrNoRows) {
			return &errs.NotFoundError{ID: id}
		}
		if err != nil {
			return &errs.StorageError{Op: "selecting user detail", Err: err}
		}
		return nil
	})
	if err != nil {
		return GetDetailByIdResponse{}, err
	}

	return detail, nil
}

// ReplaceAll swaps the users table contents for employees in one transaction:
// create the table if needed, delete every row, insert the new set.
func (r Repository) ReplaceAll(ctx context.Context, employees []entity.Employee) error {
	return r.WithSession(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := EnsureTable(ctx, tx); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
			return &errs.StorageError{Op: "clearing users", Err: err}
		}

		rows := make([]entity.User, 0, len(employees))
		for _, e := range employees {
			rows = append(rows, entity.User{
				ID:        e.ID,
				Email:     e.Email,
				Phone:     e.Phone,
				FullName:  e.FullName,
				FirstName: e.FirstName,
				LastName:  e.LastName,
				Gender:    e.Gender,
				Birth:     postgresql.FormatDate(e.Birth),
			})
		}

		for start := 0; start < len(rows); start += insertBatchSize {
			batch := rows[start:min(start+insertBatchSize, len(rows))]
			if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
				return &errs.StorageError{Op: "inserting users", Err: err}
			}
		}

		return nil
	})
}

// EnsureTable creates the users table inside tx when it is absent.
func EnsureTable(ctx context.Context, tx bun.Tx) error {
	if _, err := tx.ExecContext(ctx, CreateTableQuery); err != nil {
		return &errs.StorageError{Op: "creating users table", Err: err}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComposed(row scanner) (GetListResponse, error) {
	var (
		detail       GetListResponse
		birth, hired *string
		salary       decimal.NullDecimal
	)

	if err := row.Scan(
		&detail.ID,
		&detail.Email,
		&detail.Phone,
		&detail.FullName,
		&detail.FirstName,
		&detail.LastName,
		&detail.Gender,
		&birth,
		&detail.Reports,
		&detail.Position,
		&hired,
		&salary,
		&detail.Team,
	); err != nil {
		return GetListResponse{}, err
	}

	var err error
	if detail.Birth, err = postgresql.ParseDate(birth); err != nil {
		return GetListResponse{}, errors.Wrap(err, "converting birth to date.Date")
	}
	if detail.Hired, err = postgresql.ParseDate(hired); err != nil {
		return GetListResponse{}, errors.Wrap(err, "converting hired to date.Date")
	}
	if salary.Valid {
		detail.Salary = &salary.Decimal
	}

	return detail, nil
}
