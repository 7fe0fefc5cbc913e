package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/dukex/flowstudio/pkg/registry"
	"github.com/dukex/flowstudio/pkg/services"
	"github.com/dukex/flowstudio/pkg/web"
)

type API struct {
	logger   *slog.Logger
	sessions *services.Sessions
	registry *registry.Registry
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	sessions *services.Sessions,
	registry *registry.Registry,
) *API {
	return &API{
		logger:   logger,
		sessions: sessions,
		registry: registry,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.sessions, a.validate, a.registry)

	app := fiber.New()
	app.Use(recoverer.New())
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowstudio API")
	})

	handlers.Register(app)

	return app
}

// Start serves the API until ctx is cancelled.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	stop := context.AfterFunc(ctx, func() {
		if err := app.Shutdown(); err != nil {
			a.logger.Error("Failed to shutdown API server", "error", err)
		}
	})
	defer stop()

	return app.Listen(":" + strconv.Itoa(port))
}
