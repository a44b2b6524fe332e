package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"jira-skill/internal/config"
	"jira-skill/internal/services"
)

const (
	serviceName    = "jira-skill"
	requestTimeout = 2 * time.Minute
)

// Version is reported by the liveness probe.
var Version = "dev"

// Server is the HTTP intent webhook.
type Server struct {
	app      *fiber.App
	addr     string
	tokens   *TokenManager
	sessions *SessionStore
	logger   *zap.Logger
}

// New assembles the webhook for settings. The skill's display holds are
// disabled; the display lines are returned to the caller instead.
func New(settings *config.Config, skill *services.Skill, logger *zap.Logger) *Server {
	connector := services.NewConnectionManager(logger)
	tokens := NewTokenManager(settings.Server.JWTSecret, settings.Server.TokenTTL())
	skill.DisableHold()
	sessions := NewSessionStore(settings, connector, logger)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterMiddlewares(app, logger, requestTimeout)
	RegisterRoutes(app, RouteConfig{
		Health:  NewHealthHandler(serviceName, Version, settings, connector),
		Intents: NewIntentsHandler(skill, sessions, logger),
		Tokens:  tokens,
	})

	return &Server{app: app, addr: settings.Server.Addr(), tokens: tokens, sessions: sessions, logger: logger}
}

// App exposes the fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Tokens returns the token manager used to authenticate callers.
func (s *Server) Tokens() *TokenManager {
	return s.tokens
}

// Run serves until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.addr))
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}
