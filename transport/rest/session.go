package rest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/issuetrack/tracker"
)

const sessionLocalsKey = "session"

type SessionController struct {
	Store tracker.SessionStore
}

func (c *SessionController) InstallTo(requestAuthorizer fiber.Handler, app *fiber.App) {
	app.Get("/session", combineHandlers(requestAuthorizer, c.serveCurrentSession))
}

func (c *SessionController) serveCurrentSession(ctx *fiber.Ctx) error {
	session, ok := ctx.Locals(sessionLocalsKey).(tracker.Session)
	if !ok {
		return fiber.ErrUnauthorized
	}

	// the token is never echoed back
	type SessionMeta struct {
		Id             string         `json:"id"`
		UserId         tracker.UserId `json:"userId"`
		Ip             string         `json:"ip"`
		UserAgent      string         `json:"userAgent"`
		LastAccessedAt int64          `json:"lastAccessedAt"`
		ExpiresAt      int64          `json:"expiresAt"`
	}
	return ctx.JSON(SessionMeta{
		Id:             session.Id,
		UserId:         session.UserId,
		Ip:             session.Ip,
		UserAgent:      session.UserAgent,
		LastAccessedAt: session.LastAccessedAt.Unix(),
		ExpiresAt:      session.ExpiresAt.Unix(),
	})
}

func RequestAuthorizer(sessionStore tracker.SessionStore, userStore tracker.UserStore) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		auth := ctx.Get(fiber.HeaderAuthorization)
		if auth == "" {
			return fiber.ErrUnauthorized
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			return fiber.NewError(fiber.StatusBadRequest, "invalid auth type")
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		session, err := sessionStore.AcquireAndRefresh(ctx.Context(), token, ctx.IP(),
			string(ctx.Request().Header.UserAgent()))
		if err != nil {
			if errors.Is(err, tracker.ErrSessionNotFound) {
				return fiber.ErrUnauthorized
			}
			return fmt.Errorf("acquire and refresh session: %w", err)
		}
		user, err := userStore.ById(ctx.Context(), session.UserId)
		if err != nil {
			if errors.Is(err, tracker.ErrUserNotFound) {
				return fiber.ErrUnauthorized
			}
			return fmt.Errorf("retrieve user by id: %w", err)
		}

		requestLog(ctx).
			WithField("user_id", user.Id).
			Infoln("Authorized access.")

		ctx.Locals(sessionLocalsKey, session)
		ctx.Locals(userLocalsKey, user)
		return nil
	}
}
