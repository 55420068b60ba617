package employee

import (
	"fmt"
	"net/http"

	"indengsvc/backend/foundation/web"
)

type Controller struct {
	employee Employee
}

func NewController(employee Employee) *Controller {
	return &Controller{employee}
}

func (ec Controller) Synchronize(c *web.Context) error {
	employees, err := ec.employee.Synchronize(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   fmt.Sprintf("%d employees have been synchronized", len(employees)),
		"count":  len(employees),
		"status": true,
	}, http.StatusOK)
}
