package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jira-skill/internal/config"
	"jira-skill/internal/helpers"
	"jira-skill/internal/models"
	"jira-skill/internal/speech"
)

// CheckReport is what a connection check found
type CheckReport struct {
	User       *models.JiraUser
	Projects   []models.JiraProjectInfo
	ProjectKey string
	IssueType  string
}

// JiraService checks that the configured JIRA server is usable by the skill
type JiraService struct {
	connector *ConnectionManager
	config    *config.JiraConfig
	logger    *zap.Logger
}

// NewJiraService creates a new JIRA service
func NewJiraService(jiraConfig *config.JiraConfig, connector *ConnectionManager, logger *zap.Logger) *JiraService {
	return &JiraService{connector: connector, config: jiraConfig, logger: logger}
}

// TestConnection logs in, lists the accessible projects and works out the
// project and issue type the skill will file issues with.
func (s *JiraService) TestConnection(ctx context.Context, speaker speech.Speaker) (*CheckReport, error) {
	helpers.PrintInfo("Testing JIRA authentication and listing accessible projects...")

	result := s.connector.Connect(ctx, speaker, *s.config)
	switch {
	case result.Status == ConfigError:
		return nil, fmt.Errorf("JIRA is not configured: %w", errOrStatus(result))
	case result.Captcha:
		return nil, errors.New("authentication failed: the server requires a CAPTCHA")
	case result.Status != Connected:
		return nil, fmt.Errorf("authentication failed: %w", errOrStatus(result))
	}

	report := &CheckReport{User: result.User}
	projects, err := result.Client.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	report.Projects = projects

	name := s.config.Username
	if result.User != nil && result.User.DisplayName != "" {
		name = result.User.DisplayName
	}
	helpers.PrintSuccess("Authentication successful as %s! Found %d accessible projects:", name, len(projects))

	for _, project := range projects {
		marker := " "
		if strings.EqualFold(project.Key, s.config.ProjectKey) {
			marker = "*"
		}
		helpers.PrintInfo("  %s %s (%s)", marker, project.Key, project.Name)
	}

	key, err := ResolveProjectKey(ctx, result.Client, s.config.ProjectKey, s.logger)
	if err != nil {
		return nil, err
	}
	report.ProjectKey = key
	if s.config.ProjectKey != "" && !strings.EqualFold(key, s.config.ProjectKey) {
		helpers.PrintWarning("Project key '%s' not found in accessible projects; using '%s'", s.config.ProjectKey, key)
	}

	helpers.PrintInfo("Testing access to project '%s'...", key)
	project, err := result.Client.GetProjectInfo(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to access project: %w", err)
	}
	if project.Name != "" {
		helpers.PrintInfo("Project '%s' is %s", key, project.Name)
	}

	types, err := result.Client.GetIssueTypes(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to access project: %w", err)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("project %s has no issue types", key)
	}
	report.IssueType = preferredIssueType(types, s.config.IssueType)

	helpers.PrintSuccess("New issues will be filed in '%s' as '%s'", key, report.IssueType)
	helpers.PrintSuccess("JIRA connection successful")
	return report, nil
}

func errOrStatus(result ConnectResult) error {
	if result.Err != nil {
		return result.Err
	}
	return errors.New(result.Status.String())
}
