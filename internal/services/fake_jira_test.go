package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"jira-skill/internal/config"
	"jira-skill/internal/models"
)

// fakeJira is an in-process JIRA REST server with canned answers
type fakeJira struct {
	t   *testing.T
	srv *httptest.Server

	mu          sync.Mutex
	calls       map[string]int
	searches    []string
	projects    []models.JiraProjectInfo
	issueTypes  []models.JiraIssueTypeInfo
	results     map[string]models.JiraSearchResponse
	issues      map[string]models.JiraIssueRecord
	created     []models.JiraIssue
	myselfCode  int
	myselfHdr   http.Header
	createCodes []int
}

func newFakeJira(t *testing.T) *fakeJira {
	f := &fakeJira{
		t:          t,
		calls:      make(map[string]int),
		projects:   []models.JiraProjectInfo{{Key: "SD", Name: "Service Desk"}, {Key: "OPS", Name: "Operations"}},
		issueTypes: []models.JiraIssueTypeInfo{{ID: "1", Name: "Task"}, {ID: "2", Name: "Service Request"}},
		results:    make(map[string]models.JiraSearchResponse),
		issues:     make(map[string]models.JiraIssueRecord),
		myselfCode: http.StatusOK,
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeJira) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/rest/api/2/")
	switch {
	case path == "myself":
		f.calls["myself"]++
		if f.myselfCode != http.StatusOK {
			for k, v := range f.myselfHdr {
				w.Header()[k] = v
			}
			w.WriteHeader(f.myselfCode)
			return
		}
		writeJSON(w, models.JiraUser{Name: "desk"})
	case path == "project":
		f.calls["project"]++
		writeJSON(w, f.projects)
	case strings.HasPrefix(path, "project/"):
		f.calls["issuetypes"]++
		writeJSON(w, map[string]interface{}{"issueTypes": f.issueTypes})
	case path == "search":
		f.calls["search"]++
		jql := r.URL.Query().Get("jql")
		f.searches = append(f.searches, jql)
		if strings.Contains(jql, "summary ~") {
			writeJSON(w, f.results["duplicates"])
			return
		}
		writeJSON(w, f.results[jql])
	case path == "issue" && r.Method == http.MethodPost:
		f.calls["create"]++
		var issue models.JiraIssue
		_ = json.NewDecoder(r.Body).Decode(&issue)
		f.created = append(f.created, issue)
		if len(f.createCodes) > 0 {
			code := f.createCodes[0]
			f.createCodes = f.createCodes[1:]
			if code != http.StatusCreated {
				w.WriteHeader(code)
				_, _ = io.WriteString(w, `{"errors": {"priority": "Field 'priority' cannot be set."}}`)
				return
			}
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, models.JiraResponse{ID: "10042", Key: "SD-42"})
	case strings.HasPrefix(path, "issue/"):
		f.calls["issue"]++
		key := strings.TrimPrefix(path, "issue/")
		issue, ok := f.issues[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"errorMessages": ["Issue Does Not Exist"]}`)
			return
		}
		writeJSON(w, issue)
	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeJira) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeJira) setResult(jql string, total int, keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := models.JiraSearchResponse{Total: total}
	for _, key := range keys {
		resp.Issues = append(resp.Issues, models.JiraIssueRecord{Key: key, Fields: models.JiraRecordFields{Summary: f.issues[key].Fields.Summary}})
	}
	f.results[jql] = resp
}

func (f *fakeJira) addIssue(issue models.JiraIssueRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issues[issue.Key] = issue
}

func (f *fakeJira) settings() *config.Config {
	return &config.Config{
		Jira: config.JiraConfig{
			BaseURL:  f.srv.URL,
			Username: "desk",
			APIToken: "secret",
			Timeout:  5,
		},
		Support: config.SupportConfig{
			Telephone: "555-0100",
			Email:     "help@ex.io",
		},
	}
}

// fixedNow is a Wednesday afternoon
var fixedNow = time.Date(2018, 3, 14, 15, 0, 0, 0, time.Local)

func newTestSkill() *Skill {
	k := NewSkill(zap.NewNop())
	k.now = func() time.Time { return fixedNow }
	k.sleep = func(context.Context, time.Duration) error { return nil }
	return k
}

func newTestSession(cfg *config.Config) *Session {
	return NewSession(cfg, NewConnectionManager(zap.NewNop()), zap.NewNop())
}

func contains(lines []string, want string) bool {
	for _, line := range lines {
		if line == want {
			return true
		}
	}
	return false
}

func containsPrefix(lines []string, prefix string) bool {
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
