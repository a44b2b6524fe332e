package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"jira-skill/internal/models"
	"jira-skill/internal/repositories"
	"jira-skill/internal/speech"
)

// Priorities a caller may choose when raising an issue
var priorityNames = []string{"Highest", "High", "Medium", "Low", "Lowest"}

const (
	defaultPriority   = "Medium"
	cannotFileMessage = "Unfortunately, I could not file an issue record by myself."
)

// NormalizePriority maps a spoken answer onto a JIRA priority name
func NormalizePriority(answer string) (string, bool) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	answer = strings.TrimSuffix(answer, " priority")
	for _, name := range priorityNames {
		if answer == strings.ToLower(name) {
			return name, true
		}
	}
	switch answer {
	case "urgent", "critical":
		return "Highest", true
	case "normal":
		return "Medium", true
	}
	return "", false
}

func nonEmpty(answer string) bool {
	return strings.TrimSpace(answer) != ""
}

func yes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y", "yeah", "sure", "please do", "ok", "okay":
		return true
	}
	return false
}

// raiseRequest is what the caller told us about the new issue
type raiseRequest struct {
	summary     string
	description string
	priority    string
}

func (k *Skill) handleRaiseIssue(ctx context.Context, s *Session, conv speech.Conversation) error {
	client, ok := s.Client(ctx, conv)
	if !ok {
		return k.cannotFile(ctx, s, conv)
	}

	projectKey, err := s.ProjectKey(ctx, client)
	if err != nil {
		k.logger.Error("no project to file issue in", zap.String("session", s.ID), zap.Error(err))
		return k.cannotFile(ctx, s, conv)
	}

	req, err := k.collectRaiseRequest(ctx, conv)
	if errors.Is(err, speech.ErrAwaitingResponse) {
		return nil
	}
	if err != nil {
		k.logger.Info("issue raise abandoned", zap.String("session", s.ID), zap.Error(err))
		return k.cannotFile(ctx, s, conv)
	}

	proceed, err := k.checkDuplicates(ctx, client, conv, projectKey, req.summary)
	if err != nil {
		if errors.Is(err, speech.ErrAwaitingResponse) {
			return nil
		}
		if errors.Is(err, speech.ErrNoResponse) {
			conv.Speak("All right, I will not file a new issue.")
			return nil
		}
		// A failed duplicate search should not stop the filing.
		k.logger.Warn("duplicate search failed", zap.String("session", s.ID), zap.Error(err))
		s.NoteFailure(err)
		if !s.Connected() {
			return k.cannotFile(ctx, s, conv)
		}
	}
	if !proceed {
		conv.Speak("All right, I will not file a new issue.")
		return nil
	}

	key, err := k.fileIssue(ctx, client, s, projectKey, req)
	if err != nil {
		k.logger.Error("failed to create JIRA issue", zap.String("session", s.ID), zap.Error(err))
		s.NoteFailure(err)
		return k.cannotFile(ctx, s, conv)
	}

	k.logger.Info("created JIRA issue", zap.String("session", s.ID), zap.String("issue", key))
	conv.Speak("I have filed issue " + key + ".")
	return k.hold(ctx, s, conv, key)
}

func (k *Skill) collectRaiseRequest(ctx context.Context, conv speech.Conversation) (*raiseRequest, error) {
	summary, err := speech.GetResponse(ctx, conv, speech.Prompt{
		Text:     "Briefly, what is the problem?",
		Validate: nonEmpty,
		OnFail:   "I need a short summary to file an issue.",
		Retries:  2,
	})
	if err != nil {
		return nil, err
	}

	description, err := speech.GetResponse(ctx, conv, speech.Prompt{
		Text:     "Please describe the problem in a sentence or two.",
		Validate: nonEmpty,
		Retries:  1,
	})
	if err != nil {
		return nil, err
	}

	priority := defaultPriority
	answer, err := speech.GetResponse(ctx, conv, speech.Prompt{
		Text: "How urgent is it? Highest, high, medium, low or lowest?",
		Validate: func(a string) bool {
			_, ok := NormalizePriority(a)
			return ok
		},
		OnFail:  "Please say highest, high, medium, low or lowest.",
		Retries: 2,
	})
	switch {
	case err == nil:
		priority, _ = NormalizePriority(answer)
	case errors.Is(err, speech.ErrInvalidResponse):
		conv.Speak("I will file it at " + defaultPriority + " priority.")
	default:
		return nil, err
	}

	return &raiseRequest{summary: summary, description: description, priority: priority}, nil
}

// checkDuplicates looks for an open issue with a similar summary and, when
// one exists, asks whether to file anyway.
func (k *Skill) checkDuplicates(ctx context.Context, client JiraClient, conv speech.Conversation, projectKey, summary string) (bool, error) {
	jql := fmt.Sprintf(`project = "%s" AND resolution = Unresolved AND summary ~ "%s" ORDER BY created DESC`,
		escapeJQL(projectKey), escapeJQL(summary))
	result, err := client.SearchIssues(ctx, jql, 1, "summary")
	if err != nil {
		return true, err
	}
	if result.Total < 1 || len(result.Issues) == 0 {
		return true, nil
	}

	dup := result.Issues[0]
	conv.Speak("This may already be filed as " + dup.Key + ", regarding: " + speakable(dup.Fields.Summary))
	answer, err := conv.Ask(ctx, "Shall I file a new issue anyway?")
	if err != nil {
		return false, err
	}
	return yes(answer), nil
}

// fileIssue creates the issue. Projects whose create screen has no priority
// field reject it, so a 400 is retried once without one.
func (k *Skill) fileIssue(ctx context.Context, client JiraClient, s *Session, projectKey string, req *raiseRequest) (string, error) {
	issueType, err := k.chooseIssueType(ctx, client, projectKey, s.Settings().Jira.IssueType)
	if err != nil {
		return "", err
	}

	issue := &models.JiraIssue{
		Fields: models.JiraFields{
			Project:     models.JiraProject{Key: projectKey},
			Summary:     req.summary,
			Description: req.description,
			IssueType:   models.JiraIssueType{Name: issueType},
			Priority:    &models.JiraPriority{Name: req.priority},
		},
	}

	resp, err := client.CreateIssue(ctx, issue)
	var apiErr *repositories.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
		k.logger.Warn("issue create rejected, retrying without priority", zap.Error(err))
		issue.Fields.Priority = nil
		resp, err = client.CreateIssue(ctx, issue)
	}
	if err != nil {
		return "", err
	}
	return resp.Key, nil
}

// chooseIssueType prefers the configured type, then a service request, then
// a task, then whatever the project lists first.
func (k *Skill) chooseIssueType(ctx context.Context, client JiraClient, projectKey, configured string) (string, error) {
	types, err := client.GetIssueTypes(ctx, projectKey)
	if err != nil {
		return "", err
	}
	if len(types) == 0 {
		return "", fmt.Errorf("project %s has no issue types", projectKey)
	}
	return preferredIssueType(types, configured), nil
}

func preferredIssueType(types []models.JiraIssueTypeInfo, configured string) string {
	for _, want := range []string{configured, "Service Request", "Task"} {
		if want == "" {
			continue
		}
		for _, t := range types {
			if strings.EqualFold(t.Name, want) {
				return t.Name
			}
		}
	}
	return types[0].Name
}

func (k *Skill) cannotFile(ctx context.Context, s *Session, conv speech.Conversation) error {
	conv.Speak(cannotFileMessage)
	return k.speakContactInfo(ctx, s, conv)
}

func escapeJQL(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `"`, `\"`)
}
