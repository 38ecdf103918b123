package jira

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/groblegark/jiragraph/internal/model"
)

// testHandler captures the incoming request details and returns a canned
// response.
type testHandler struct {
	// captured from the request
	method string
	path   string
	query  string
	header http.Header
	hits   int

	// canned response
	statusCode   int
	responseBody string

	// failures to serve before succeeding (for retry tests)
	failures int
	failCode int
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.hits++
	h.method = r.Method
	h.path = r.URL.Path
	h.query = r.URL.RawQuery
	h.header = r.Header.Clone()

	if h.failures > 0 {
		h.failures--
		w.WriteHeader(h.failCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the
// given handler. Retries are immediate so tests stay fast.
func newTestClient(h http.Handler, auth Auth) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL, auth, false)
	c.retryDelay = 0
	return c, srv
}

const issueBody = `{
	"key": "PROJ-1",
	"fields": {
		"summary": "Fix the widget",
		"status": {"name": "In Progress", "statusCategory": {"name": "In Progress"}},
		"issuetype": {"name": "Task", "subtask": false},
		"subtasks": [
			{"key": "PROJ-2", "fields": {"summary": "sub one", "status": {"name": "Open"}}}
		],
		"issuelinks": [
			{
				"type": {"name": "Blocks", "inward": "is blocked by", "outward": "blocks"},
				"outwardIssue": {"key": "PROJ-3", "fields": {"summary": "blocked", "status": {"name": "Open"}}}
			},
			{
				"type": {"name": "Blocks", "inward": "is blocked by", "outward": "blocks"},
				"inwardIssue": {"key": "PROJ-4", "fields": {"status": {"name": "Closed"}}}
			},
			{
				"type": {"name": "Relates", "inward": "relates to", "outward": "relates to"}
			}
		]
	}
}`

func TestHTTPClient_FetchIssue(t *testing.T) {
	h := &testHandler{responseBody: issueBody}
	c, srv := newTestClient(h, Auth{Username: "alice", Token: "secret"})
	defer srv.Close()

	rec, err := c.FetchIssue(context.Background(), "PROJ-1")
	if err != nil {
		t.Fatalf("FetchIssue() error: %v", err)
	}

	if h.path != "/rest/api/latest/issue/PROJ-1" {
		t.Errorf("path = %q", h.path)
	}
	if got := h.header.Get("Authorization"); got == "" {
		t.Error("basic auth header missing")
	}

	want := model.Issue{
		Key:            "PROJ-1",
		Summary:        "Fix the widget",
		Status:         "In Progress",
		StatusCategory: "In Progress",
		Type:           "Task",
	}
	if rec.Issue != want {
		t.Errorf("Issue = %+v, want %+v", rec.Issue, want)
	}
	if len(rec.Subtasks) != 1 || rec.Subtasks[0].Key != "PROJ-2" {
		t.Errorf("Subtasks = %+v", rec.Subtasks)
	}
	// The endpoint-less relates link is dropped; two usable links remain.
	if len(rec.Links) != 2 {
		t.Fatalf("Links = %+v, want 2", rec.Links)
	}
	if rec.Links[0].Direction != model.DirectionOutward || rec.Links[0].OtherKey != "PROJ-3" {
		t.Errorf("Links[0] = %+v", rec.Links[0])
	}
	if rec.Links[1].Direction != model.DirectionInward || rec.Links[1].OtherStatus != "Closed" {
		t.Errorf("Links[1] = %+v", rec.Links[1])
	}
}

func TestHTTPClient_FetchIssue_EpicFlag(t *testing.T) {
	h := &testHandler{responseBody: `{
		"key": "PROJ-10",
		"fields": {
			"status": {"name": "Open"},
			"issuetype": {"name": "Epic", "subtask": false}
		}
	}`}
	c, srv := newTestClient(h, Auth{})
	defer srv.Close()

	rec, err := c.FetchIssue(context.Background(), "PROJ-10")
	if err != nil {
		t.Fatalf("FetchIssue() error: %v", err)
	}
	if !rec.Issue.Epic {
		t.Error("Epic issue type not flagged")
	}
}

func TestHTTPClient_AuthModes(t *testing.T) {
	for _, tc := range []struct {
		name  string
		auth  Auth
		check func(t *testing.T, h *testHandler)
	}{
		{
			name: "bearer",
			auth: Auth{Bearer: "tok123"},
			check: func(t *testing.T, h *testHandler) {
				if got := h.header.Get("Authorization"); got != "Bearer tok123" {
					t.Errorf("Authorization = %q", got)
				}
			},
		},
		{
			name: "cookie",
			auth: Auth{Cookie: "abc"},
			check: func(t *testing.T, h *testHandler) {
				if got := h.header.Get("Cookie"); got != "JSESSIONID=abc" {
					t.Errorf("Cookie = %q", got)
				}
			},
		},
		{
			name: "anonymous",
			auth: Auth{},
			check: func(t *testing.T, h *testHandler) {
				if got := h.header.Get("Authorization"); got != "" {
					t.Errorf("Authorization = %q, want none", got)
				}
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := &testHandler{responseBody: `{"key":"P-1","fields":{"status":{"name":"Open"}}}`}
			c, srv := newTestClient(h, tc.auth)
			defer srv.Close()

			if _, err := c.FetchIssue(context.Background(), "P-1"); err != nil {
				t.Fatalf("FetchIssue() error: %v", err)
			}
			tc.check(t, h)
		})
	}
}

func TestHTTPClient_FetchIssue_ErrorKinds(t *testing.T) {
	for _, tc := range []struct {
		status int
		want   FetchKind
	}{
		{http.StatusNotFound, FetchNotFound},
		{http.StatusUnauthorized, FetchPermissionDenied},
		{http.StatusForbidden, FetchPermissionDenied},
	} {
		h := &testHandler{statusCode: tc.status, responseBody: `{"errorMessages":["nope"]}`}
		c, srv := newTestClient(h, Auth{})

		_, err := c.FetchIssue(context.Background(), "PROJ-1")
		srv.Close()

		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("status %d: error = %v, want *FetchError", tc.status, err)
		}
		if fe.Kind != tc.want {
			t.Errorf("status %d: kind = %s, want %s", tc.status, fe.Kind, tc.want)
		}
		if fe.Fatal() {
			t.Errorf("status %d: Fatal() = true, want skippable", tc.status)
		}
		if fe.Message != "nope" {
			t.Errorf("status %d: message = %q", tc.status, fe.Message)
		}
		if h.hits != 1 {
			t.Errorf("status %d: %d requests, want 1 (no retry for definitive answers)", tc.status, h.hits)
		}
	}
}

func TestHTTPClient_RetriesTransientThenSucceeds(t *testing.T) {
	h := &testHandler{
		failures:     2,
		failCode:     http.StatusServiceUnavailable,
		responseBody: `{"key":"PROJ-1","fields":{"status":{"name":"Open"}}}`,
	}
	c, srv := newTestClient(h, Auth{})
	defer srv.Close()

	rec, err := c.FetchIssue(context.Background(), "PROJ-1")
	if err != nil {
		t.Fatalf("FetchIssue() error: %v", err)
	}
	if rec.Issue.Key != "PROJ-1" {
		t.Errorf("Key = %q", rec.Issue.Key)
	}
	if h.hits != 3 {
		t.Errorf("requests = %d, want 3", h.hits)
	}
}

func TestHTTPClient_RetriesExhaustedIsFatal(t *testing.T) {
	h := &testHandler{statusCode: http.StatusInternalServerError}
	c, srv := newTestClient(h, Auth{})
	defer srv.Close()

	_, err := c.FetchIssue(context.Background(), "PROJ-1")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.Kind != FetchTransient || !fe.Fatal() {
		t.Errorf("error = %+v, want fatal transient", fe)
	}
	if h.hits != c.maxRetries+1 {
		t.Errorf("requests = %d, want %d", h.hits, c.maxRetries+1)
	}
}

func TestHTTPClient_FetchIssue_Malformed(t *testing.T) {
	for _, tc := range []struct {
		name string
		body string
	}{
		{"missing key", `{"fields":{"status":{"name":"Open"}}}`},
		{"missing status", `{"key":"PROJ-1","fields":{"summary":"x"}}`},
		{"not JSON", `<html>login page</html>`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := &testHandler{responseBody: tc.body}
			c, srv := newTestClient(h, Auth{})
			defer srv.Close()

			_, err := c.FetchIssue(context.Background(), "PROJ-1")
			var me *MalformedError
			if !errors.As(err, &me) {
				t.Fatalf("error = %v, want *MalformedError", err)
			}
		})
	}
}

func TestHTTPClient_SearchKeys(t *testing.T) {
	h := &testHandler{responseBody: `{"issues":[{"key":"PROJ-1"},{"key":"PROJ-2"}]}`}
	c, srv := newTestClient(h, Auth{})
	defer srv.Close()

	keys, err := c.SearchKeys(context.Background(), "project = PROJ")
	if err != nil {
		t.Fatalf("SearchKeys() error: %v", err)
	}
	if h.path != "/rest/api/latest/search" {
		t.Errorf("path = %q", h.path)
	}
	want := []string{"PROJ-1", "PROJ-2"}
	if len(keys) != 2 || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestHTTPClient_BrowseURL(t *testing.T) {
	c := NewHTTPClient("https://tracker.example.com/", Auth{}, false)
	if got := c.BrowseURL("PROJ-1"); got != "https://tracker.example.com/browse/PROJ-1" {
		t.Errorf("BrowseURL() = %q", got)
	}
}

func TestEpicChildrenJQL(t *testing.T) {
	got := EpicChildrenJQL("PROJ-1")
	want := `"Epic Link" = "PROJ-1" OR "Parent" = "PROJ-1"`
	if got != want {
		t.Errorf("EpicChildrenJQL() = %q, want %q", got, want)
	}
}
