package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jira-skill/internal/models"
)

// ErrNoProjects is returned when the account can see no projects
var ErrNoProjects = errors.New("no JIRA projects visible to this account")

// ProjectLister lists the projects visible to the account
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]models.JiraProjectInfo, error)
}

// ResolveProjectKey picks the project issue numbers are prefixed with: the
// one matching preferred, or else the first visible project. The skill is
// meant for single-project service desk installs.
func ResolveProjectKey(ctx context.Context, lister ProjectLister, preferred string, logger *zap.Logger) (string, error) {
	projects, err := lister.ListProjects(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		return "", ErrNoProjects
	}

	preferred = strings.TrimSpace(preferred)
	if preferred != "" {
		for _, project := range projects {
			if strings.EqualFold(project.Key, preferred) {
				return project.Key, nil
			}
		}
		logger.Warn("configured project key not visible, using first project",
			zap.String("project_key", preferred),
			zap.String("fallback", projects[0].Key))
	}

	return projects[0].Key, nil
}
