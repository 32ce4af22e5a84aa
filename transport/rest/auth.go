package rest

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/issuetrack/tracker"
)

type AuthController struct {
	SessionStore  tracker.SessionStore
	UserStore     tracker.UserStore
	ProfileStore  tracker.ProfileStore
	ActivityStore tracker.ActivityStore
}

func (c *AuthController) InstallTo(app *fiber.App) {
	app.Post("/auth/login", c.serveLogin)
	app.Post("/auth/logout", c.logoutHandler())
}

var errInvalidCredentials = fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")

func (c *AuthController) serveLogin(ctx *fiber.Ctx) error {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := ctx.BodyParser(&body); err != nil {
		requestLog(ctx).WithError(err).Infoln("Invalid body.")
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if body.Email == "" || body.Password == "" {
		return errInvalidCredentials
	}

	user, err := c.UserStore.ByEmail(ctx.Context(), tracker.Email(body.Email))
	if err != nil {
		if errors.Is(err, tracker.ErrUserNotFound) {
			return errInvalidCredentials
		}
		return fmt.Errorf("user by email: %w", err)
	}

	now := time.Now()
	if err := user.CheckPassword(body.Password); err != nil {
		if !errors.Is(err, tracker.ErrInvalidCredentials) {
			return fmt.Errorf("check password: %w", err)
		}
		if err := c.ProfileStore.TouchLogin(ctx.Context(), user.Id, false, now); err != nil {
			return fmt.Errorf("touch failed login: %w", err)
		}
		err = c.ActivityStore.AddLog(ctx.Context(), user.Id, tracker.Activity{
			Name: tracker.ActivityLoginFailed,
			Data: map[string]interface{}{"ip": ctx.IP()},
		})
		if err != nil {
			return fmt.Errorf("add login_failed activity log: %w", err)
		}
		requestLog(ctx).WithField("user_id", user.Id).Infoln("Login failed.")
		return errInvalidCredentials
	}

	if err := c.ProfileStore.TouchLogin(ctx.Context(), user.Id, true, now); err != nil {
		return fmt.Errorf("touch login: %w", err)
	}
	session, err := c.SessionStore.RegisterNew(ctx.Context(), user.Id, ctx.IP(), string(ctx.Request().Header.UserAgent()))
	if err != nil {
		return fmt.Errorf("session register new: %w", err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(map[string]interface{}{
		"id":          session.Id,
		"userId":      session.UserId,
		"accessToken": session.Token,
		"expiresAt":   session.ExpiresAt.Unix(),
	})
}

func (c *AuthController) logoutHandler() fiber.Handler {
	return combineHandlers(RequestAuthorizer(c.SessionStore, c.UserStore), c.serveLogout)
}

func (c *AuthController) serveLogout(ctx *fiber.Ctx) error {
	session, ok := ctx.Locals(sessionLocalsKey).(tracker.Session)
	if !ok {
		return fiber.ErrUnauthorized
	}
	return c.SessionStore.InvalidateByAuthToken(session.Token)
}
