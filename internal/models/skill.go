package models

import "time"

// Intent names understood by the skill
const (
	StatusReportIntent    = "StatusReportIntent"
	IssuesOpenIntent      = "IssuesOpenIntent"
	IssuesOverdueIntent   = "IssuesOverdueIntent"
	MostUrgentIssueIntent = "MostUrgentIssueIntent"
	IssueStatusIntent     = "IssueStatusIntent"
	RaiseIssueIntent      = "RaiseIssueIntent"
	ContactInfoIntent     = "ContactInfoIntent"
)

// Utterance is one intent invocation and everything the skill said in reply
type Utterance struct {
	ID        string    `json:"id"`
	Intent    string    `json:"intent"`
	Speech    []string  `json:"speech"`
	Display   []string  `json:"display,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Transcript is the saved record of a REPL session
type Transcript struct {
	Session    string      `json:"session"`
	Utterances []Utterance `json:"utterances"`
	SavedAt    time.Time   `json:"saved_at"`
}
