package services

import (
	"context"

	"jira-skill/internal/models"
	"jira-skill/internal/speech"
)

// JQL behind the report intents
const (
	UnassignedJQL   = "assignee is EMPTY AND status != Resolved ORDER BY createdDate DESC"
	OverdueJQL      = "status != Resolved AND duedate < now() ORDER BY duedate"
	HighPriorityJQL = "resolution = Unresolved AND priority > Medium ORDER BY priority DESC"
	OpenJQL         = "status != Resolved ORDER BY priority DESC, duedate ASC"
	MostUrgentJQL   = "status != Resolved ORDER BY priority desc, duedate asc, createdDate asc"
)

// report is one search whose top result is read out
type report struct {
	name  string
	jql   string
	none  string
	count func(total int) string
	top   func(issue *models.JiraIssueRecord) string
}

var (
	unassignedReport = report{
		name: "unassigned queue",
		jql:  UnassignedJQL,
		none: "No JIRA issues found in the unassigned queue.",
		count: func(n int) string {
			return Pluralize(n, "issue", "issues") + " found in the unassigned queue."
		},
		top: func(issue *models.JiraIssueRecord) string {
			return "Latest issue is regarding: " + speakable(issue.Fields.Summary)
		},
	}
	overdueReport = report{
		name: "overdue issues",
		jql:  OverdueJQL,
		none: "No overdue issues.",
		count: func(n int) string {
			return Pluralize(n, "issue", "issues") + " overdue!"
		},
		top: func(issue *models.JiraIssueRecord) string {
			return "Most overdue issue is regarding: " + speakable(issue.Fields.Summary)
		},
	}
	highPriorityReport = report{
		name: "high priority issues",
		jql:  HighPriorityJQL,
		none: "No HIGH priority JIRA issues remain open.",
		count: func(n int) string {
			if n == 1 {
				return "1 high priority issue remains open!"
			}
			return Pluralize(n, "high priority issue", "high priority issues") + " remain open!"
		},
		top: func(issue *models.JiraIssueRecord) string {
			return "Highest priority issue is regarding: " + speakable(issue.Fields.Summary)
		},
	}
	openReport = report{
		name: "unresolved issues",
		jql:  OpenJQL,
		none: "No unresolved issues.",
		count: func(n int) string {
			if n == 1 {
				return "1 issue remains unresolved."
			}
			return Pluralize(n, "issue", "issues") + " remain unresolved."
		},
		top: func(issue *models.JiraIssueRecord) string {
			return "Highest priority unresolved issue is regarding: " + speakable(issue.Fields.Summary)
		},
	}
	mostUrgentReport = report{
		name: "most urgent issue",
		jql:  MostUrgentJQL,
		none: "No unresolved issues found!",
		top: func(issue *models.JiraIssueRecord) string {
			return "The highest priority issue is " + issue.Key + " regarding: " + speakable(issue.Fields.Summary)
		},
	}
)

// run searches for the report and reads out the count and the top issue.
// The top issue is only fetched when the search found something.
func (r report) run(ctx context.Context, client JiraClient, conv speech.Conversation) error {
	result, err := client.SearchIssues(ctx, r.jql, 1, "summary")
	if err != nil {
		return err
	}

	if result.Total < 1 || len(result.Issues) == 0 {
		conv.Speak(r.none)
		return nil
	}

	if r.count != nil {
		conv.Speak(r.count(result.Total))
	}

	issue, err := client.GetIssue(ctx, result.Issues[0].Key, "summary", "comment")
	if err != nil {
		return err
	}
	conv.Speak(r.top(issue))
	return nil
}

// runReports runs each report in turn, apologizing for any that fail
func (k *Skill) runReports(ctx context.Context, s *Session, conv speech.Conversation, reports ...report) error {
	client, ok := s.Client(ctx, conv)
	if !ok {
		return nil
	}

	for _, r := range reports {
		if err := r.run(ctx, client, conv); err != nil {
			k.apologize(s, conv, r.name, err)
			if !s.Connected() {
				return nil
			}
		}
	}
	return nil
}

func (k *Skill) handleStatusReport(ctx context.Context, s *Session, conv speech.Conversation) error {
	if _, ok := s.Client(ctx, conv); !ok {
		return nil
	}

	conv.Speak("JIRA Service Desk status report:")
	return k.runReports(ctx, s, conv, unassignedReport, overdueReport, highPriorityReport)
}

func (k *Skill) handleIssuesOpen(ctx context.Context, s *Session, conv speech.Conversation) error {
	return k.runReports(ctx, s, conv, openReport)
}

func (k *Skill) handleIssuesOverdue(ctx context.Context, s *Session, conv speech.Conversation) error {
	return k.runReports(ctx, s, conv, overdueReport)
}

func (k *Skill) handleMostUrgentIssue(ctx context.Context, s *Session, conv speech.Conversation) error {
	return k.runReports(ctx, s, conv, mostUrgentReport)
}
