package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"jira-skill/internal/config"
	"jira-skill/internal/models"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) *JiraRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewJiraRepository(&config.JiraConfig{
		BaseURL:  srv.URL,
		Username: "desk",
		APIToken: "secret",
		Timeout:  5,
	})
}

func TestSearchIssuesSendsQuery(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "desk" || pass != "secret" {
			t.Errorf("basic auth = %q/%q/%v", user, pass, ok)
		}
		q := r.URL.Query()
		if q.Get("jql") != "status != Resolved ORDER BY duedate" {
			t.Errorf("jql = %q", q.Get("jql"))
		}
		if q.Get("maxResults") != "1" {
			t.Errorf("maxResults = %q", q.Get("maxResults"))
		}
		if q.Get("fields") != "summary,duedate" {
			t.Errorf("fields = %q", q.Get("fields"))
		}
		_ = json.NewEncoder(w).Encode(models.JiraSearchResponse{
			Total:  4,
			Issues: []models.JiraIssueRecord{{Key: "SD-7"}},
		})
	})

	result, err := repo.SearchIssues(context.Background(), "status != Resolved ORDER BY duedate", 1, "summary", "duedate")
	if err != nil {
		t.Fatalf("SearchIssues: %v", err)
	}
	if result.Total != 4 || len(result.Issues) != 1 || result.Issues[0].Key != "SD-7" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestGetIssueDecodesFields(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/issue/SD-12" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{
			"key": "SD-12",
			"fields": {
				"summary": "RE: printer jam",
				"priority": {"name": "High"},
				"duedate": "2018-03-02",
				"issuelinks": [{"type": {"name": "Blocks"}, "inwardIssue": {"key": "SD-9", "fields": {"summary": "toner", "status": {"name": "Open"}}}}]
			}
		}`)
	})

	issue, err := repo.GetIssue(context.Background(), "SD-12")
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	if issue.Fields.Priority == nil || issue.Fields.Priority.Name != "High" {
		t.Errorf("priority = %+v", issue.Fields.Priority)
	}
	if issue.Fields.Resolution != nil {
		t.Errorf("resolution should be nil")
	}
	if len(issue.Fields.IssueLinks) != 1 || issue.Fields.IssueLinks[0].InwardIssue.Key != "SD-9" {
		t.Errorf("links = %+v", issue.Fields.IssueLinks)
	}
}

func TestCreateIssue(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		var issue models.JiraIssue
		if err := json.NewDecoder(r.Body).Decode(&issue); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if issue.Fields.Project.Key != "SD" || issue.Fields.Priority.Name != "High" {
			t.Errorf("issue = %+v", issue)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": "10001", "key": "SD-42"}`)
	})

	resp, err := repo.CreateIssue(context.Background(), &models.JiraIssue{Fields: models.JiraFields{
		Project:   models.JiraProject{Key: "SD"},
		Summary:   "disk full",
		IssueType: models.JiraIssueType{Name: "Task"},
		Priority:  &models.JiraPriority{Name: "High"},
	}})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if resp.Key != "SD-42" {
		t.Errorf("key = %q", resp.Key)
	}
}

func TestGetIssueTypes(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"key": "SD", "issueTypes": [{"id": "1", "name": "Task"}, {"id": "2", "name": "Service Request"}]}`)
	})

	types, err := repo.GetIssueTypes(context.Background(), "SD")
	if err != nil {
		t.Fatalf("GetIssueTypes: %v", err)
	}
	if len(types) != 2 || types[1].Name != "Service Request" {
		t.Errorf("types = %+v", types)
	}
}

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		headers     map[string]string
		body        string
		wantAuth    bool
		wantNF      bool
		wantCaptcha bool
		wantBody    string
	}{
		{"unauthorized", http.StatusUnauthorized, nil, "", true, false, false, ""},
		{"captcha via seraph", http.StatusForbidden, map[string]string{"X-Seraph-LoginReason": "AUTHENTICATION_DENIED"}, "", true, false, true, ""},
		{"captcha via denied reason", http.StatusForbidden, map[string]string{"X-Authentication-Denied-Reason": "CAPTCHA_CHALLENGE; login-url=x"}, "", true, false, true, ""},
		{"not found", http.StatusNotFound, nil, `{"errorMessages": ["Issue does not exist"]}`, false, true, false, "Issue does not exist"},
		{"server error", http.StatusInternalServerError, nil, "boom", false, false, false, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := repo.Myself(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if got := IsAuthFailure(err); got != tt.wantAuth {
				t.Errorf("IsAuthFailure = %v", got)
			}
			if got := IsNotFound(err); got != tt.wantNF {
				t.Errorf("IsNotFound = %v", got)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not an APIError", err)
			}
			if got := apiErr.CaptchaRequired(); got != tt.wantCaptcha {
				t.Errorf("CaptchaRequired = %v", got)
			}
			if tt.wantBody != "" && apiErr.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", apiErr.Body, tt.wantBody)
			}
		})
	}
}
