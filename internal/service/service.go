package service

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"internship-portal/internal/config"
	"internship-portal/internal/metrics"
	"internship-portal/internal/pkg/i18n"
	"internship-portal/internal/repository"
	"internship-portal/internal/service/dashboard"
	"internship-portal/internal/service/email"
	"internship-portal/internal/service/lifecycle"
	"internship-portal/internal/service/notification"
	"internship-portal/internal/service/toast"
)

// Collaborators are the process-level dependencies built in main.
type Collaborators struct {
	Sender  email.Sender
	Toaster toast.Toaster
	Catalog *i18n.Catalog
	Metrics *metrics.Metrics
	Logger  *logrus.Logger
	// Redis may be nil; the dashboard then computes stats on every call.
	Redis *redis.Client
}

type Services struct {
	Lifecycle    lifecycle.Service
	Notification notification.Service
	Dashboard    dashboard.Service
	Dispatcher   *notification.Dispatcher
}

func NewServices(repos *repository.Repositories, collab Collaborators, cfg *config.Config) *Services {
	dispatcher := notification.NewDispatcher(notification.DispatcherConfig{
		NotifRepo: repos.Notification,
		Catalog:   collab.Catalog,
		Locale:    cfg.Locale,
		Composer:  email.NewComposer(collab.Catalog, cfg.Locale),
		Sender:    collab.Sender,
		Toaster:   collab.Toaster,
		Metrics:   collab.Metrics,
		Logger:    collab.Logger,
		Async:     cfg.AsyncSend(),
	})

	lifecycleService := lifecycle.NewService(repos.Entity, dispatcher, collab.Toaster, collab.Metrics, collab.Logger, lifecycle.Options{
		SCADOfficeID:      cfg.SCADOfficeID,
		SCADOfficeContact: cfg.SCADOfficeContact,
	})
	notificationService := notification.NewService(repos.Notification)

	var cache *redis.Client
	if cfg.CacheBackend == "redis" {
		cache = collab.Redis
	}
	dashboardService := dashboard.NewService(repos.Entity, repos.Notification, cache, cfg.DashboardCacheTTL)
	lifecycleService.SetStatsCache(dashboardService)
	notificationService.SetStatsCache(dashboardService)

	return &Services{
		Lifecycle:    lifecycleService,
		Notification: notificationService,
		Dashboard:    dashboardService,
		Dispatcher:   dispatcher,
	}
}
