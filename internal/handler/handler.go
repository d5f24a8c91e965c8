package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"internship-portal/internal/middleware"
	"internship-portal/internal/service"
)

type Handlers struct {
	Entity       *EntityHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Entity:       NewEntityHandler(services.Lifecycle),
		Notification: NewNotificationHandler(services.Notification),
		Dashboard:    NewDashboardHandler(services.Dashboard),
	}
}

// SetupRoutes mounts the lifecycle API. registry may be nil to skip /metrics.
func SetupRoutes(app *fiber.App, h *Handlers, registry *prometheus.Registry) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	v1 := app.Group("/api/v1", middleware.ActorRequired())

	entities := v1.Group("/entities")
	entities.Post("/", h.Entity.Create)
	entities.Get("/", h.Entity.List)
	entities.Get("/:entityId", h.Entity.Get)
	entities.Put("/:entityId", h.Entity.Update)
	entities.Delete("/:entityId", h.Entity.Delete)
	entities.Post("/:entityId/transitions", h.Entity.Transition)

	notifications := v1.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/all", h.Notification.ListAll)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Get("/:id", h.Notification.Get)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)

	dashboard := v1.Group("/dashboard")
	dashboard.Get("/stats", h.Dashboard.GetStats)
	dashboard.Get("/activity", h.Dashboard.GetRecentActivity)

	v1.Post("/reminders/drafts", h.Entity.RemindDrafts)
}
