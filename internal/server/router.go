package server

import (
	"github.com/gofiber/fiber/v2"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *HealthHandler
	Intents *IntentsHandler
	Tokens  *TokenManager
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/v1", BearerAuth(cfg.Tokens))
	v1.Get("/intents", cfg.Intents.List)
	v1.Post("/intents", cfg.Intents.Handle)
}
