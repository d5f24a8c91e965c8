package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"internship-portal/internal/config"
	"internship-portal/internal/handler"
	"internship-portal/internal/metrics"
	"internship-portal/internal/middleware"
	"internship-portal/internal/pkg/i18n"
	"internship-portal/internal/pkg/logger"
	"internship-portal/internal/repository"
	"internship-portal/internal/service"
	"internship-portal/internal/service/email"
	"internship-portal/internal/service/toast"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if envErr != nil {
		log.Info("No .env file found, using environment variables")
	}

	catalog, err := i18n.Default()
	if err != nil {
		log.WithError(err).Fatal("Failed to load notification catalog")
	}

	redisClient := connectRedis(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}
	toaster := newToaster(cfg, redisClient, log)

	m := metrics.New()
	repos := repository.NewRepositories()
	services := service.NewServices(repos, service.Collaborators{
		Sender:  email.NewSender(cfg, log),
		Toaster: toaster,
		Catalog: catalog,
		Metrics: m,
		Logger:  log,
		Redis:   redisClient,
	}, cfg)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(recover.New())
	if cfg.LogRequests {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/health" || c.Path() == "/metrics"
			},
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.ActorIDHeader + ", " + middleware.ActorTypeHeader,
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	handler.SetupRoutes(app, handlers, m.Registry)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down")
		_ = app.Shutdown()
	}()

	log.WithFields(logrus.Fields{
		"port":      cfg.Port,
		"env":       cfg.Environment,
		"send_mode": cfg.SendMode,
		"email":     cfg.EmailBackend,
		"toasts":    cfg.ToastBackend,
		"cache":     cfg.CacheBackend,
	}).Info("Server starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("Server stopped")
	}

	services.Dispatcher.Wait()
}

func connectRedis(cfg *config.Config, log *logrus.Logger) *redis.Client {
	if !cfg.NeedsRedis() {
		return nil
	}

	client, err := config.NewRedisClient(cfg)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to Redis, falling back to in-process backends")
		return nil
	}

	log.Info("Connected to Redis")
	return client
}

func newToaster(cfg *config.Config, client *redis.Client, log *logrus.Logger) toast.Toaster {
	if cfg.ToastBackend != "redis" || client == nil {
		return toast.NewLogToaster(log)
	}
	return toast.NewRedisToaster(client, cfg.ToastChannelPrefix, cfg.ToastTimeout)
}
