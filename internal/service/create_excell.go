package service

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"indengsvc/backend/internal/repository/postgres/user"
)

const usersSheet = "Users"

var usersHeader = []any{
	"ID", "Email", "Phone", "Full Name", "First Name", "Last Name", "Gender",
	"Birth", "Reports", "Position", "Hired", "Salary", "Team",
}

// WriteUsersExcel renders the composed users as one sheet with a header row.
// Null values are left as empty cells.
func WriteUsersExcel(w io.Writer, users []user.GetListResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), usersSheet); err != nil {
		return errors.Wrap(err, "naming users sheet")
	}

	if err := f.SetSheetRow(usersSheet, "A1", &usersHeader); err != nil {
		return errors.Wrap(err, "writing users header")
	}

	for i, u := range users {
		row := []any{
			u.ID,
			str(u.Email),
			str(u.Phone),
			str(u.FullName),
			str(u.FirstName),
			str(u.LastName),
			str(u.Gender),
			nil,
			nil,
			str(u.Position),
			nil,
			nil,
			str(u.Team),
		}
		if u.Birth != nil {
			row[7] = u.Birth.String()
		}
		if u.Reports != nil {
			row[8] = *u.Reports
		}
		if u.Hired != nil {
			row[10] = u.Hired.String()
		}
		if u.Salary != nil {
			row[11] = u.Salary.InexactFloat64()
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "addressing users row")
		}
		if err = f.SetSheetRow(usersSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing user %d", u.ID)
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing users workbook")
	}
	return nil
}

func str(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
