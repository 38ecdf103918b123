package jira

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/groblegark/jiragraph/internal/model"
)

// issueFields is the field set requested on every issue fetch; subtasks and
// links are what the traversal cares about.
const issueFields = "key,summary,status,issuetype,issuelinks,subtasks"

// searchPageSize bounds how many keys a JQL search resolves.
const searchPageSize = 100

// Auth selects how requests authenticate. Exactly one mode should be set;
// all zero means anonymous access.
type Auth struct {
	Username string // basic auth user (paired with Token)
	Token    string // basic auth password or API token
	Bearer   string // bearer token, sent as an Authorization header
	Cookie   string // JSESSIONID session cookie value
}

// HTTPClient implements Tracker against the tracker's HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	apiURL     string
	auth       Auth
	httpClient *http.Client

	maxRetries int
	retryDelay time.Duration
}

// NewHTTPClient creates a client targeting the given base URL
// (e.g. "https://jira.example.com"). When insecure is true, TLS certificate
// verification is disabled.
func NewHTTPClient(baseURL string, auth Auth, insecure bool) *HTTPClient {
	hc := &http.Client{}
	if insecure {
		hc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	base := strings.TrimRight(baseURL, "/")
	return &HTTPClient{
		baseURL:    base,
		apiURL:     base + "/rest/api/latest",
		auth:       auth,
		httpClient: hc,
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
}

// BrowseURL returns the human-facing URL for an issue key.
func (c *HTTPClient) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + url.PathEscape(key)
}

// FetchIssue retrieves and validates one issue record.
func (c *HTTPClient) FetchIssue(ctx context.Context, key string) (*model.Record, error) {
	q := url.Values{}
	q.Set("fields", issueFields)
	path := "/issue/" + url.PathEscape(key) + "?" + q.Encode()

	var wire wireIssue
	if err := c.getJSON(ctx, key, path, &wire); err != nil {
		return nil, err
	}
	return recordFromWire(key, wire)
}

// SearchKeys resolves a JQL query to issue keys.
func (c *HTTPClient) SearchKeys(ctx context.Context, jql string) ([]string, error) {
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("fields", "key")
	q.Set("maxResults", fmt.Sprintf("%d", searchPageSize))

	var resp struct {
		Issues []struct {
			Key string `json:"key"`
		} `json:"issues"`
	}
	if err := c.getJSON(ctx, jql, "/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(resp.Issues))
	for _, is := range resp.Issues {
		keys = append(keys, is.Key)
	}
	return keys, nil
}

// EpicChildrenJQL builds the query that resolves an epic's child issues.
func EpicChildrenJQL(key string) string {
	return fmt.Sprintf("\"Epic Link\" = %q OR \"Parent\" = %q", key, key)
}

// getJSON performs a GET with auth headers and bounded retries for transient
// failures, then decodes the JSON response into result.
func (c *HTTPClient) getJSON(ctx context.Context, subject, path string, result any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &FetchError{Key: subject, Kind: FetchTransient, Message: ctx.Err().Error()}
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		switch {
		case c.auth.Bearer != "":
			req.Header.Set("Authorization", "Bearer "+c.auth.Bearer)
		case c.auth.Cookie != "":
			req.AddCookie(&http.Cookie{Name: "JSESSIONID", Value: c.auth.Cookie})
		case c.auth.Username != "":
			req.SetBasicAuth(c.auth.Username, c.auth.Token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return &FetchError{Key: subject, Kind: FetchNotFound, StatusCode: resp.StatusCode, Message: errorMessage(body)}
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return &FetchError{Key: subject, Kind: FetchPermissionDenied, StatusCode: resp.StatusCode, Message: errorMessage(body)}
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorMessage(body))
			continue
		case resp.StatusCode >= 400:
			// Other client errors are not retryable and not skippable; the
			// request itself is wrong.
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorMessage(body))
		}

		if result != nil {
			if err := json.Unmarshal(body, result); err != nil {
				return &MalformedError{Key: subject, Reason: "undecodable response: " + err.Error()}
			}
		}
		return nil
	}
	return &FetchError{Key: subject, Kind: FetchTransient, Message: lastErr.Error()}
}

// errorMessage extracts the tracker's error text from a response body.
func errorMessage(body []byte) string {
	var errResp struct {
		ErrorMessages []string `json:"errorMessages"`
	}
	if json.Unmarshal(body, &errResp) == nil && len(errResp.ErrorMessages) > 0 {
		return strings.Join(errResp.ErrorMessages, "; ")
	}
	return strings.TrimSpace(string(body))
}

// --- wire shapes ---

type wireIssue struct {
	Key    string     `json:"key"`
	Fields wireFields `json:"fields"`
}

type wireFields struct {
	Summary    string      `json:"summary"`
	Status     *wireStatus `json:"status"`
	IssueType  *wireType   `json:"issuetype"`
	Subtasks   []wireStub  `json:"subtasks"`
	IssueLinks []wireLink  `json:"issuelinks"`
}

type wireStatus struct {
	Name           string `json:"name"`
	StatusCategory struct {
		Name string `json:"name"`
	} `json:"statusCategory"`
}

type wireType struct {
	Name    string `json:"name"`
	Subtask bool   `json:"subtask"`
}

type wireStub struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string      `json:"summary"`
		Status  *wireStatus `json:"status"`
	} `json:"fields"`
}

type wireLink struct {
	Type         model.LinkType `json:"type"`
	InwardIssue  *wireStub      `json:"inwardIssue"`
	OutwardIssue *wireStub      `json:"outwardIssue"`
}

// recordFromWire validates a raw payload into a Record. Missing key or
// status breaks graph identity and fails with *MalformedError.
func recordFromWire(requested string, w wireIssue) (*model.Record, error) {
	if w.Key == "" {
		return nil, &MalformedError{Key: requested, Reason: "missing key"}
	}
	if w.Fields.Status == nil || w.Fields.Status.Name == "" {
		return nil, &MalformedError{Key: w.Key, Reason: "missing status"}
	}

	issue := model.Issue{
		Key:            w.Key,
		Summary:        w.Fields.Summary,
		Status:         w.Fields.Status.Name,
		StatusCategory: w.Fields.Status.StatusCategory.Name,
	}
	if w.Fields.IssueType != nil {
		issue.Type = w.Fields.IssueType.Name
		issue.Subtask = w.Fields.IssueType.Subtask
		issue.Epic = strings.EqualFold(w.Fields.IssueType.Name, "Epic")
	}

	rec := &model.Record{Issue: issue}
	for _, st := range w.Fields.Subtasks {
		if st.Key == "" {
			continue
		}
		stub := model.SubtaskStub{Key: st.Key, Summary: st.Fields.Summary}
		if st.Fields.Status != nil {
			stub.Status = st.Fields.Status.Name
		}
		rec.Subtasks = append(rec.Subtasks, stub)
	}
	for _, l := range w.Fields.IssueLinks {
		var (
			dir  model.Direction
			stub *wireStub
		)
		switch {
		case l.OutwardIssue != nil:
			dir, stub = model.DirectionOutward, l.OutwardIssue
		case l.InwardIssue != nil:
			dir, stub = model.DirectionInward, l.InwardIssue
		default:
			// Link with neither endpoint; nothing to observe.
			continue
		}
		link := model.Link{Type: l.Type, Direction: dir, OtherKey: stub.Key}
		if stub.Fields.Status != nil {
			link.OtherStatus = stub.Fields.Status.Name
		}
		if link.OtherKey == "" {
			continue
		}
		rec.Links = append(rec.Links, link)
	}
	return rec, nil
}
