package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jira-skill/internal/config"
	"jira-skill/internal/models"
	"jira-skill/internal/repositories"
	"jira-skill/internal/speech"
)

// JiraClient is the part of the JIRA API the skill uses
type JiraClient interface {
	Myself(ctx context.Context) (*models.JiraUser, error)
	ListProjects(ctx context.Context) ([]models.JiraProjectInfo, error)
	GetProjectInfo(ctx context.Context, projectKey string) (*models.JiraProjectInfo, error)
	GetIssueTypes(ctx context.Context, projectKey string) ([]models.JiraIssueTypeInfo, error)
	SearchIssues(ctx context.Context, jql string, maxResults int, fields ...string) (*models.JiraSearchResponse, error)
	GetIssue(ctx context.Context, key string, fields ...string) (*models.JiraIssueRecord, error)
	CreateIssue(ctx context.Context, issue *models.JiraIssue) (*models.JiraResponse, error)
}

var _ JiraClient = (*repositories.JiraRepository)(nil)

// ConnectStatus tags the outcome of a connection attempt
type ConnectStatus int

const (
	// Connected means the credentials were accepted
	Connected ConnectStatus = iota
	// ConfigError means the settings are missing or malformed
	ConfigError
	// AuthError means the server rejected the login or could not be reached
	AuthError
)

func (s ConnectStatus) String() string {
	switch s {
	case Connected:
		return "connected"
	case ConfigError:
		return "config_error"
	case AuthError:
		return "auth_error"
	default:
		return fmt.Sprintf("ConnectStatus(%d)", int(s))
	}
}

// ConnectResult is the outcome of ConnectionManager.Connect
type ConnectResult struct {
	Status   ConnectStatus
	Client   JiraClient
	BaseURL  string
	User     *models.JiraUser
	Captcha  bool
	Warnings []string
	Err      error
}

// Spoken configuration guidance
const (
	configureMessage = "Please navigate to the skill settings to establish or complete " +
		"JIRA Service Desk server access configuration."
	amendMessage = "Please navigate to the skill settings to amend or update " +
		"the JIRA Service Desk server access configuration."
	invalidURLMessage = "It seems that you have specified an invalid server URL. " +
		"A valid server URL must include the h t t p colon slash slash prefix."
	restPathMessage = "It seems that you have included the rest api 2 path in the server URL. " +
		"This should work fine. However, if the API is upgraded, you may need to " +
		"update my record of the endpoint URL."
	loginFailedMessage = "I could not log in to the JIRA Service Desk server. Sorry."
	captchaMessage     = "The JIRA server wants a CAPTCHA solved before it accepts my login. " +
		"Please log in once through the web interface, then ask me again."
)

// ConnectionManager builds authenticated JIRA clients from settings
type ConnectionManager struct {
	logger    *zap.Logger
	newClient func(cfg *config.JiraConfig) JiraClient
}

// NewConnectionManager creates a connection manager
func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		logger: logger,
		newClient: func(cfg *config.JiraConfig) JiraClient {
			return repositories.NewJiraRepository(cfg)
		},
	}
}

// NormalizeServerURL checks the scheme of a configured server URL and strips
// a trailing REST API path. restPath reports whether one was present.
func NormalizeServerURL(raw string) (base string, restPath bool, err error) {
	base = strings.TrimSpace(raw)
	lower := strings.ToLower(base)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "", false, fmt.Errorf("server URL %q is missing the http:// or https:// prefix", raw)
	}

	trimmed := strings.TrimRight(base, "/")
	suffix := strings.TrimRight(repositories.RESTAPIPath, "/")
	if strings.HasSuffix(strings.ToLower(trimmed), "/"+suffix) {
		restPath = true
		trimmed = trimmed[:len(trimmed)-len(suffix)-1]
	}
	return strings.TrimRight(trimmed, "/"), restPath, nil
}

// Connect validates the settings and logs in. Problems are spoken to the
// user and logged; the returned status says which kind of failure occurred.
func (m *ConnectionManager) Connect(ctx context.Context, speaker speech.Speaker, cfg config.JiraConfig) ConnectResult {
	if strings.TrimSpace(cfg.BaseURL) == "" || cfg.Username == "" || cfg.APIToken == "" {
		speaker.Speak(configureMessage)
		err := errors.New("JIRA server URL, username and password are required")
		m.logger.Warn("JIRA settings incomplete", zap.Error(err))
		return ConnectResult{Status: ConfigError, Err: err}
	}

	base, restPath, err := NormalizeServerURL(cfg.BaseURL)
	if err != nil {
		speaker.Speak(invalidURLMessage)
		speaker.Speak(amendMessage)
		m.logger.Warn("invalid JIRA server URL", zap.Error(err))
		return ConnectResult{Status: ConfigError, Err: err}
	}

	var warnings []string
	if restPath {
		speaker.Speak(restPathMessage)
		speaker.Speak(amendMessage)
		warnings = append(warnings, "server URL includes the REST API path")
		m.logger.Warn("JIRA server URL includes the REST API path", zap.String("url", cfg.BaseURL))
	}

	cfg.BaseURL = base
	client := m.newClient(&cfg)

	user, err := client.Myself(ctx)
	if err != nil {
		result := ConnectResult{Status: AuthError, BaseURL: base, Warnings: warnings, Err: err}
		var apiErr *repositories.APIError
		if errors.As(err, &apiErr) && apiErr.CaptchaRequired() {
			result.Captcha = true
			speaker.Speak(captchaMessage)
		} else {
			speaker.Speak(loginFailedMessage)
		}
		m.logger.Error("JIRA server connection failure",
			zap.String("url", base),
			zap.Bool("captcha", result.Captcha),
			zap.Error(err))
		return result
	}

	m.logger.Info("logged in to JIRA", zap.String("url", base), zap.String("user", user.Name))
	return ConnectResult{Status: Connected, Client: client, BaseURL: base, User: user, Warnings: warnings}
}
