package rest

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/issuetrack/tracker"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 100
)

type ActivityController struct {
	Store tracker.ActivityStore
}

func (c *ActivityController) InstallTo(authorizationHandler fiber.Handler, app *fiber.App) {
	app.Get("/activities", combineHandlers(authorizationHandler, c.serveLastActivity))
}

func (c *ActivityController) serveLastActivity(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	limit := ctx.QueryInt("limit", defaultActivityLimit)
	if limit <= 0 || limit > maxActivityLimit {
		return fiber.NewError(fiber.StatusBadRequest, "invalid limit")
	}

	logs, err := c.Store.ByUserId(ctx.Context(), user.Id, limit)
	if err != nil {
		return fmt.Errorf("get logs by user id: %w", err)
	}

	type Log struct {
		Id        int64                  `json:"id"`
		CreatedAt int64                  `json:"createdAt"`
		Name      string                 `json:"name"`
		Data      map[string]interface{} `json:"data,omitempty"`
	}
	mapped := make([]Log, len(logs))
	for i, log := range logs {
		mapped[i] = Log{Id: log.Id, CreatedAt: log.CreatedAt.Unix(), Name: log.Name, Data: log.Data}
	}
	return ctx.JSON(mapped)
}
