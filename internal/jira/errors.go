package jira

import "fmt"

// FetchKind classifies a failed fetch or search.
type FetchKind string

const (
	FetchNotFound         FetchKind = "not-found"
	FetchPermissionDenied FetchKind = "permission-denied"
	FetchTransient        FetchKind = "transient"
)

// FetchError represents a failed issue fetch or key search. NotFound and
// PermissionDenied are skippable per issue; Transient means the bounded
// retries inside the client were exhausted and the whole run must abort.
type FetchError struct {
	Key        string // issue key, or the JQL string for searches
	Kind       FetchKind
	StatusCode int
	Message    string
}

// Error formats the fetch error.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s (HTTP %d: %s)", e.Key, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch %s: %s: %s", e.Key, e.Kind, e.Message)
}

// Fatal reports whether the error aborts the traversal. Partial graphs are
// not emitted for transient failures; a skipped key is only acceptable when
// the tracker definitively answered for it.
func (e *FetchError) Fatal() bool {
	return e.Kind == FetchTransient
}

// MalformedError reports a payload missing fields required for graph
// identity (key, status). The affected issue is reported and skipped.
type MalformedError struct {
	Key    string
	Reason string
}

// Error formats the malformed-record error.
func (e *MalformedError) Error() string {
	key := e.Key
	if key == "" {
		key = "(unknown)"
	}
	return fmt.Sprintf("malformed issue record %s: %s", key, e.Reason)
}
