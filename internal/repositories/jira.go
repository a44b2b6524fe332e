package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jira-skill/internal/config"
	"jira-skill/internal/models"
)

// RESTAPIPath is the path of the JIRA REST API below the server URL
const RESTAPIPath = "rest/api/2/"

// APIError is a non-success response from the JIRA API
type APIError struct {
	StatusCode   int
	Body         string
	LoginReason  string
	DeniedReason string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("JIRA API returned status %d: %s", e.StatusCode, e.Body)
}

// CaptchaRequired reports whether JIRA locked the account behind a CAPTCHA
// after too many failed logins.
func (e *APIError) CaptchaRequired() bool {
	if e.DeniedReason != "" {
		return strings.Contains(strings.ToUpper(e.DeniedReason), "CAPTCHA")
	}
	return strings.Contains(e.LoginReason, "AUTHENTICATION_DENIED")
}

// IsAuthFailure reports whether err is a rejected-credentials response.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// JiraRepository handles JIRA API interactions
type JiraRepository struct {
	config *config.JiraConfig
	client *http.Client
}

// NewJiraRepository creates a new JIRA repository. BaseURL must not carry
// the REST API path or a trailing slash.
func NewJiraRepository(jiraConfig *config.JiraConfig) *JiraRepository {
	return &JiraRepository{
		config: jiraConfig,
		client: &http.Client{
			Timeout: jiraConfig.RequestTimeout(),
		},
	}
}

// Myself returns the authenticated user, validating the credentials
func (r *JiraRepository) Myself(ctx context.Context) (*models.JiraUser, error) {
	var user models.JiraUser
	if err := r.do(ctx, http.MethodGet, "myself", nil, nil, http.StatusOK, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListProjects returns the projects visible to the authenticated account
func (r *JiraRepository) ListProjects(ctx context.Context) ([]models.JiraProjectInfo, error) {
	var projects []models.JiraProjectInfo
	if err := r.do(ctx, http.MethodGet, "project", nil, nil, http.StatusOK, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProjectInfo gets information about a specific project
func (r *JiraRepository) GetProjectInfo(ctx context.Context, projectKey string) (*models.JiraProjectInfo, error) {
	var project models.JiraProjectInfo
	path := "project/" + url.PathEscape(projectKey)
	if err := r.do(ctx, http.MethodGet, path, nil, nil, http.StatusOK, &project); err != nil {
		return nil, fmt.Errorf("project lookup failed: %w", err)
	}
	return &project, nil
}

// GetIssueTypes gets available issue types for a project
func (r *JiraRepository) GetIssueTypes(ctx context.Context, projectKey string) ([]models.JiraIssueTypeInfo, error) {
	var projectInfo struct {
		IssueTypes []models.JiraIssueTypeInfo `json:"issueTypes"`
	}
	path := "project/" + url.PathEscape(projectKey)
	if err := r.do(ctx, http.MethodGet, path, nil, nil, http.StatusOK, &projectInfo); err != nil {
		return nil, fmt.Errorf("issue types lookup failed: %w", err)
	}
	return projectInfo.IssueTypes, nil
}

// SearchIssues runs a JQL query
func (r *JiraRepository) SearchIssues(ctx context.Context, jql string, maxResults int, fields ...string) (*models.JiraSearchResponse, error) {
	query := url.Values{}
	query.Set("jql", jql)
	query.Set("maxResults", strconv.Itoa(maxResults))
	if len(fields) > 0 {
		query.Set("fields", strings.Join(fields, ","))
	}

	var result models.JiraSearchResponse
	if err := r.do(ctx, http.MethodGet, "search", query, nil, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return &result, nil
}

// GetIssue fetches a single issue by key
func (r *JiraRepository) GetIssue(ctx context.Context, key string, fields ...string) (*models.JiraIssueRecord, error) {
	var query url.Values
	if len(fields) > 0 {
		query = url.Values{}
		query.Set("fields", strings.Join(fields, ","))
	}

	var issue models.JiraIssueRecord
	path := "issue/" + url.PathEscape(key)
	if err := r.do(ctx, http.MethodGet, path, query, nil, http.StatusOK, &issue); err != nil {
		return nil, fmt.Errorf("issue %s: %w", key, err)
	}
	return &issue, nil
}

// CreateIssue creates a new JIRA issue
func (r *JiraRepository) CreateIssue(ctx context.Context, issue *models.JiraIssue) (*models.JiraResponse, error) {
	jsonData, err := json.Marshal(issue)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal issue: %w", err)
	}

	var jiraResp models.JiraResponse
	if err := r.do(ctx, http.MethodPost, "issue", nil, jsonData, http.StatusCreated, &jiraResp); err != nil {
		return nil, err
	}
	return &jiraResp, nil
}

func (r *JiraRepository) do(ctx context.Context, method, path string, query url.Values, body []byte, wantStatus int, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s%s", r.config.BaseURL, RESTAPIPath, path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(r.config.Username, r.config.APIToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode:   resp.StatusCode,
			Body:         errorText(respBody),
			LoginReason:  resp.Header.Get("X-Seraph-LoginReason"),
			DeniedReason: resp.Header.Get("X-Authentication-Denied-Reason"),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorText prefers the messages of a JIRA error body over the raw bytes
func errorText(body []byte) string {
	var jiraErr models.JiraErrorResponse
	if err := json.Unmarshal(body, &jiraErr); err == nil {
		parts := append([]string{}, jiraErr.ErrorMessages...)
		for field, msg := range jiraErr.Errors {
			parts = append(parts, field+": "+msg)
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	return strings.TrimSpace(string(body))
}
