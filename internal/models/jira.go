package models

// JiraIssue represents a JIRA issue create request
type JiraIssue struct {
	Fields JiraFields `json:"fields"`
}

// JiraFields represents JIRA issue fields sent on create
type JiraFields struct {
	Project     JiraProject   `json:"project"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	IssueType   JiraIssueType `json:"issuetype"`
	Priority    *JiraPriority `json:"priority,omitempty"`
}

// JiraProject represents a JIRA project
type JiraProject struct {
	Key string `json:"key"`
}

// JiraIssueType represents a JIRA issue type
type JiraIssueType struct {
	Name string `json:"name"`
}

// JiraPriority represents a JIRA priority
type JiraPriority struct {
	Name string `json:"name"`
}

// JiraResponse represents a JIRA API response
type JiraResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// JiraProjectInfo represents JIRA project information
type JiraProjectInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// JiraIssueTypeInfo represents JIRA issue type information
type JiraIssueTypeInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JiraUser represents a JIRA user
type JiraUser struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// JiraStatus represents the workflow status of an issue
type JiraStatus struct {
	Name string `json:"name"`
}

// JiraResolution represents how an issue was resolved
type JiraResolution struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// JiraIssueRecord is an issue as returned by the search and issue endpoints
type JiraIssueRecord struct {
	ID     string           `json:"id"`
	Key    string           `json:"key"`
	Fields JiraRecordFields `json:"fields"`
}

// JiraRecordFields holds the issue fields the skill reads.
// Timestamps are kept in JIRA's string form.
type JiraRecordFields struct {
	Summary        string          `json:"summary"`
	Description    string          `json:"description"`
	Status         *JiraStatus     `json:"status"`
	Resolution     *JiraResolution `json:"resolution"`
	ResolutionDate string          `json:"resolutiondate"`
	Assignee       *JiraUser       `json:"assignee"`
	Priority       *JiraPriority   `json:"priority"`
	DueDate        string          `json:"duedate"`
	Created        string          `json:"created"`
	Updated        string          `json:"updated"`
	IssueLinks     []JiraIssueLink `json:"issuelinks"`
}

// JiraIssueLink is a link between two issues
type JiraIssueLink struct {
	ID           string           `json:"id"`
	Type         JiraLinkType     `json:"type"`
	InwardIssue  *JiraIssueRecord `json:"inwardIssue,omitempty"`
	OutwardIssue *JiraIssueRecord `json:"outwardIssue,omitempty"`
}

// JiraLinkType names the relation of an issue link
type JiraLinkType struct {
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

// JiraSearchResponse represents the response from a JIRA search
type JiraSearchResponse struct {
	StartAt    int               `json:"startAt"`
	MaxResults int               `json:"maxResults"`
	Total      int               `json:"total"`
	Issues     []JiraIssueRecord `json:"issues"`
}

// JiraErrorResponse is the error body returned by the REST API
type JiraErrorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}
