package server

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"jira-skill/internal/config"
	"jira-skill/internal/services"
	"jira-skill/internal/speech"
)

// IntentRequest is one intent invocation. Responses answer the skill's
// follow-up questions in order; a multi-turn intent is replayed with every
// answer collected so far.
type IntentRequest struct {
	Intent    string   `json:"intent"`
	Session   string   `json:"session"`
	Responses []string `json:"responses"`
}

// IntentResponse carries what the skill said and showed during this turn.
type IntentResponse struct {
	ID             string   `json:"id"`
	Intent         string   `json:"intent"`
	Session        string   `json:"session"`
	Speech         []string `json:"speech"`
	Display        []string `json:"display"`
	ExpectResponse bool     `json:"expect_response"`
}

// IntentsHandler runs skill intents for webhook callers.
type IntentsHandler struct {
	skill    *services.Skill
	sessions *SessionStore
	logger   *zap.Logger
}

func NewIntentsHandler(skill *services.Skill, sessions *SessionStore, logger *zap.Logger) *IntentsHandler {
	return &IntentsHandler{skill: skill, sessions: sessions, logger: logger}
}

// Handle runs one intent.
func (h *IntentsHandler) Handle(c *fiber.Ctx) error {
	var req IntentRequest
	if err := c.BodyParser(&req); err != nil {
		return NewValidationError("invalid request body", nil)
	}
	req.Intent = strings.TrimSpace(req.Intent)
	if req.Intent == "" {
		return NewValidationError("intent is required", map[string]any{"field": "intent"})
	}

	// Without a session id there is no later turn to serve, so nothing is kept.
	var session *services.Session
	if req.Session == "" {
		session = h.sessions.Ephemeral()
	} else {
		var release func()
		session, release = h.sessions.Acquire(req.Session)
		defer release()
	}
	h.logger.Info("intent request",
		zap.String("caller", SubjectFromContext(c)),
		zap.String("intent", req.Intent),
		zap.String("caller_session", req.Session),
		zap.String("session", session.ID),
		zap.Int("responses", len(req.Responses)))

	script := speech.NewScript(req.Responses...)
	err := h.skill.Handle(c.UserContext(), req.Intent, session, script)
	if errors.Is(err, services.ErrUnknownIntent) {
		return NewNotFound("intent", map[string]any{"intent": req.Intent})
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return NewInternalError(err)
	}

	display := script.Display()
	if display == nil {
		display = []string{}
	}
	return c.JSON(IntentResponse{
		ID:             uuid.NewString(),
		Intent:         req.Intent,
		Session:        req.Session,
		Speech:         script.Turn(),
		Display:        display,
		ExpectResponse: script.Waiting(),
	})
}

// List returns the registered intent names.
func (h *IntentsHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"intents": h.skill.Intents()})
}

// readyCacheTTL bounds how often readiness probes log in to JIRA. Repeated
// failed logins would otherwise lock the account behind a CAPTCHA.
const readyCacheTTL = 30 * time.Second

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	settings    *config.Config
	connector   *services.ConnectionManager

	mu        sync.Mutex
	now       func() time.Time
	checkedAt time.Time
	ready     bool
	detail    string
}

func NewHealthHandler(serviceName, version string, settings *config.Config, connector *services.ConnectionManager) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		settings:    settings,
		connector:   connector,
		now:         time.Now,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports whether JIRA accepts the configured credentials. The answer
// is reused for readyCacheTTL.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ready, detail := h.check(c.UserContext())
	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": fiber.Map{"jira": "ok"},
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "JIRA Service Desk unavailable",
			"details": fiber.Map{"jira": detail},
		},
	})
}

func (h *HealthHandler) check(ctx context.Context) (bool, string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.checkedAt.IsZero() && h.now().Sub(h.checkedAt) < readyCacheTTL {
		return h.ready, h.detail
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result := h.connector.Connect(ctx, speech.NewScript(), h.settings.Jira)
	h.checkedAt = h.now()
	h.ready = result.Status == services.Connected
	h.detail = "ok"
	if !h.ready {
		h.detail = result.Status.String()
		if result.Err != nil {
			h.detail = result.Err.Error()
		}
	}
	return h.ready, h.detail
}
