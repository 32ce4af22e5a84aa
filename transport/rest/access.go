package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/issuetrack/tracker"
)

func requirePermissions(permission tracker.PermissionName) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, ok := ctx.Locals(userLocalsKey).(tracker.User)
		if !ok {
			return fiber.ErrUnauthorized
		}
		if user.Roles.Access(permission) != tracker.AccessAllowed {
			return fiber.ErrForbidden
		}
		return nil
	}
}

func currentUser(ctx *fiber.Ctx) (tracker.User, error) {
	user, ok := ctx.Locals(userLocalsKey).(tracker.User)
	if !ok {
		return tracker.User{}, fiber.ErrUnauthorized
	}
	return user, nil
}
