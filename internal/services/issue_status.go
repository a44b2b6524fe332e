package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"jira-skill/internal/models"
	"jira-skill/internal/repositories"
	"jira-skill/internal/speech"
)

// An issue number is digits only; spaces from speech recognition are
// tolerated. Twenty characters is an arbitrary cap.
var issueIDPattern = regexp.MustCompile(`^[\s0-9]{1,20}$`)

var whitespace = regexp.MustCompile(`\s+`)

const (
	specifyIssuePrompt = "What is the issue number?"
	validIssueIDHint   = "A valid issue I D is an integer number. No prefix, if you please. " +
		"I will prefix the issue I D with a predetermined JIRA project name abbreviation. " +
		"Let us try again."
	invalidIssueIDMessage = "I am afraid that is not a valid issue id number or perhaps I misunderstood."
	issueLookupFailed     = "Search for further details on the issue record failed. Sorry."
)

// ValidIssueID reports whether an answer looks like an issue number
func ValidIssueID(answer string) bool {
	return issueIDPattern.MatchString(answer) && strings.TrimSpace(answer) != ""
}

func (k *Skill) handleIssueStatus(ctx context.Context, s *Session, conv speech.Conversation) error {
	client, ok := s.Client(ctx, conv)
	if !ok {
		return nil
	}

	projectKey, err := s.ProjectKey(ctx, client)
	if err != nil {
		k.apologize(s, conv, "project list", err)
		return nil
	}

	answer, err := speech.GetResponse(ctx, conv, speech.Prompt{
		Text:     specifyIssuePrompt,
		Validate: ValidIssueID,
		OnFail:   validIssueIDHint,
		Retries:  3,
	})
	switch {
	case errors.Is(err, speech.ErrAwaitingResponse):
		return nil
	case errors.Is(err, speech.ErrNoResponse), errors.Is(err, speech.ErrInvalidResponse):
		conv.Speak(invalidIssueIDMessage)
		return nil
	case err != nil:
		return err
	}

	issueID := whitespace.ReplaceAllString(answer, "")
	k.logger.Info("issue id understood", zap.String("session", s.ID), zap.String("issue_id", issueID))

	key := projectKey + "-" + issueID
	conv.Speak("Searching for issue " + key)

	issue, err := client.GetIssue(ctx, key)
	if err != nil {
		conv.Speak(issueLookupFailed)
		if repositories.IsNotFound(err) {
			k.logger.Warn("JIRA issue not found", zap.String("issue", key))
			return nil
		}
		k.logger.Error("JIRA issue API error", zap.String("issue", key), zap.Error(err))
		s.NoteFailure(err)
		return nil
	}

	k.describeIssue(issue, conv)
	return nil
}

// describeIssue reads out the state of a single issue
func (k *Skill) describeIssue(issue *models.JiraIssueRecord, conv speech.Conversation) {
	now := k.now()
	fields := issue.Fields

	conv.Speak(speakable(fields.Summary))

	if fields.Resolution != nil {
		conv.Speak("This issue is already resolved.")
		if fields.Resolution.Description != "" {
			conv.Speak(fields.Resolution.Description)
		}
		if resolved, ok := k.timestamp(fields.ResolutionDate); ok {
			conv.Speak(ResolvedWhen(resolved, now))
		}
		return
	}

	conv.Speak("It is not yet resolved.")

	if due, ok := k.timestamp(fields.DueDate); ok {
		if clause := DueClause(due, now); clause != "" {
			conv.Speak(clause)
		}
	}

	if updated, ok := k.timestamp(fields.Updated); ok {
		conv.Speak("Record last updated " + DescriptivePast(updated, now))
	} else {
		conv.Speak("No recorded progress on this issue, yet.")
	}

	if fields.Priority != nil && fields.Priority.Name != "" {
		conv.Speak("Issue is at " + fields.Priority.Name + " priority.")
	}

	if fields.Assignee == nil {
		conv.Speak("And the issue has not yet been assigned to a staff person.")
	}

	if blocker := outstandingBlocker(fields.IssueLinks); blocker != nil {
		conv.Speak("Also note that this issue is currently blocked by outstanding issue " +
			blocker.Key + " " + speakable(blocker.Fields.Summary))
	}
}

// outstandingBlocker finds an unresolved issue blocking this one
func outstandingBlocker(links []models.JiraIssueLink) *models.JiraIssueRecord {
	for _, link := range links {
		if !strings.EqualFold(link.Type.Name, "blocks") || link.InwardIssue == nil {
			continue
		}
		status := link.InwardIssue.Fields.Status
		if status != nil && strings.EqualFold(status.Name, "resolved") {
			continue
		}
		return link.InwardIssue
	}
	return nil
}

func (k *Skill) timestamp(value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	t, err := ParseTimestamp(value)
	if err != nil {
		k.logger.Warn("unparsable JIRA timestamp", zap.String("value", value), zap.Error(err))
		return time.Time{}, false
	}
	return t, true
}
