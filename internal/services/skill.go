package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jira-skill/internal/models"
	"jira-skill/internal/speech"
)

// ErrUnknownIntent is returned for intents the skill has no handler for
var ErrUnknownIntent = errors.New("unknown intent")

// Handler answers one intent
type Handler func(ctx context.Context, s *Session, conv speech.Conversation) error

// Skill maps intents to handlers
type Skill struct {
	logger   *zap.Logger
	handlers map[string]Handler
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewSkill creates the skill with every intent registered
func NewSkill(logger *zap.Logger) *Skill {
	k := &Skill{
		logger:   logger,
		handlers: make(map[string]Handler),
		now:      time.Now,
		sleep:    sleepContext,
	}

	k.Register(models.StatusReportIntent, k.handleStatusReport)
	k.Register(models.IssuesOpenIntent, k.handleIssuesOpen)
	k.Register(models.IssuesOverdueIntent, k.handleIssuesOverdue)
	k.Register(models.MostUrgentIssueIntent, k.handleMostUrgentIssue)
	k.Register(models.IssueStatusIntent, k.handleIssueStatus)
	k.Register(models.RaiseIssueIntent, k.handleRaiseIssue)
	k.Register(models.ContactInfoIntent, k.handleContactInfo)

	return k
}

// Register adds or replaces the handler for an intent
func (k *Skill) Register(intent string, handler Handler) {
	k.handlers[intent] = handler
}

// DisableHold stops handlers from pausing while text is on the display.
// Hosts that return the display lines to a remote device use it.
func (k *Skill) DisableHold() {
	k.sleep = func(context.Context, time.Duration) error { return nil }
}

// Intents lists the registered intent names
func (k *Skill) Intents() []string {
	names := make([]string, 0, len(k.handlers))
	for name := range k.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle runs the handler for intent. Failures talking to JIRA are spoken
// and logged by the handlers; only unexpected errors are returned.
func (k *Skill) Handle(ctx context.Context, intent string, s *Session, conv speech.Conversation) error {
	handler, ok := k.handlers[intent]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIntent, intent)
	}

	logger := k.logger.With(
		zap.String("intent", intent),
		zap.String("session", s.ID),
		zap.String("utterance", uuid.NewString()),
	)
	logger.Info("handling intent")

	start := k.now()
	if err := handler(ctx, s, conv); err != nil {
		logger.Error("intent handler failed", zap.Error(err))
		return err
	}
	logger.Debug("intent handled", zap.Duration("elapsed", k.now().Sub(start)))
	return nil
}

// apologize reports a failed JIRA call to the user and the log
func (k *Skill) apologize(s *Session, conv speech.Conversation, what string, err error) {
	conv.Speak("Sorry, I could not get the " + what + " from the JIRA Service Desk.")
	k.logger.Error("JIRA query failed",
		zap.String("session", s.ID),
		zap.String("query", what),
		zap.Error(err))
	s.NoteFailure(err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
