package services

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jira-skill/internal/config"
	"jira-skill/internal/repositories"
	"jira-skill/internal/speech"
)

// Session is the per-user state of the skill: the settings, the cached
// JIRA client and the cached project key.
//
// A cached client is reused without re-checking it. When a call fails in a
// way that suggests the login is no longer good, Invalidate drops it and the
// next handler invocation logs in again.
type Session struct {
	ID         string
	settings   *config.Config
	connector  *ConnectionManager
	logger     *zap.Logger
	client     JiraClient
	projectKey string
}

// NewSession creates a session with no connection yet
func NewSession(settings *config.Config, connector *ConnectionManager, logger *zap.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		ID:        id,
		settings:  settings,
		connector: connector,
		logger:    logger.With(zap.String("session", id)),
	}
}

// Settings returns the configuration the session was created with
func (s *Session) Settings() *config.Config {
	return s.settings
}

// Connected reports whether a client is cached
func (s *Session) Connected() bool {
	return s.client != nil
}

// ProjectKeyCached returns the cached project key, if any
func (s *Session) ProjectKeyCached() string {
	return s.projectKey
}

// Client returns the cached client, logging in first when there is none.
// The second result is false when no usable connection could be made; the
// user has already been told why.
func (s *Session) Client(ctx context.Context, speaker speech.Speaker) (JiraClient, bool) {
	if s.client != nil {
		s.logger.Debug("reusing JIRA connection")
		return s.client, true
	}

	result := s.connector.Connect(ctx, speaker, s.settings.Jira)
	if result.Status != Connected {
		return nil, false
	}
	s.client = result.Client
	return s.client, true
}

// ProjectKey returns the cached project key, resolving it on first use
func (s *Session) ProjectKey(ctx context.Context, client JiraClient) (string, error) {
	if s.projectKey != "" {
		return s.projectKey, nil
	}
	key, err := ResolveProjectKey(ctx, client, s.settings.Jira.ProjectKey, s.logger)
	if err != nil {
		s.NoteFailure(err)
		return "", err
	}
	s.projectKey = key
	s.logger.Info("JIRA project key set", zap.String("project_key", key))
	return key, nil
}

// Invalidate drops the cached client so the next call logs in again
func (s *Session) Invalidate() {
	s.client = nil
}

// NoteFailure invalidates the connection when err indicates the login or
// the transport is broken.
func (s *Session) NoteFailure(err error) {
	if err == nil {
		return
	}
	var urlErr *url.Error
	if repositories.IsAuthFailure(err) || errors.As(err, &urlErr) {
		s.logger.Warn("dropping JIRA connection", zap.Error(err))
		s.Invalidate()
	}
}
