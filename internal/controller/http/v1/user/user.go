package user

import (
	"bytes"
	"net/http"

	"indengsvc/backend/foundation/web"
	"indengsvc/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Controller struct {
	user User
}

func NewController(user User) *Controller {
	return &Controller{user}
}

func (uc Controller) GetUserList(c *web.Context) error {
	list, err := uc.user.GetList(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   len(list),
		},
		"status": true,
	}, http.StatusOK)
}

// GetUserDetailById passes the raw path value down; the repository rejects
// anything that is not a plain integer.
func (uc Controller) GetUserDetailById(c *web.Context) error {
	response, err := uc.user.GetDetailById(c.Ctx, c.Param("id"))
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) ExportUsers(c *web.Context) error {
	list, err := uc.user.GetList(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	var buf bytes.Buffer
	if err = service.WriteUsersExcel(&buf, list); err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", `attachment; filename="users.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	return nil
}
