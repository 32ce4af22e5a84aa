package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/issuetrack/tracker"
)

// InstallStatus exposes the fiber monitor to admins only.
func InstallStatus(requestAuthorizer fiber.Handler, app *fiber.App) {
	app.Get("/status", combineHandlers(
		requestAuthorizer,
		requirePermissions(tracker.PermissionAdminDashboard),
		monitor.New(monitor.Config{Title: "tracker status"}),
	))
}
