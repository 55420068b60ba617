package syncrun

import (
	"net/http"

	"indengsvc/backend/foundation/web"
)

const listLimit = 20

type Controller struct {
	syncRun SyncRun
}

func NewController(syncRun SyncRun) *Controller {
	return &Controller{syncRun}
}

func (sc Controller) GetList(c *web.Context) error {
	list, err := sc.syncRun.GetList(c.Ctx, listLimit)
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
