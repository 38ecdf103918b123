// Package jira provides the tracker-client collaborator for the graph
// builder: a transport-agnostic interface over the issue tracker's REST API
// and an HTTP implementation of it. The rest of the program only ever sees
// the validated model.Record shape, never raw payloads.
package jira

import (
	"context"

	"github.com/groblegark/jiragraph/internal/model"
)

// Tracker is the interface the traversal engine uses to pull issues. It is
// implemented by HTTPClient and can be backed by any transport (tests use an
// in-memory fake).
type Tracker interface {
	// FetchIssue returns the validated record for one issue key. Failures are
	// *FetchError (not-found, permission-denied, transient) or
	// *MalformedError for undecodable payloads.
	FetchIssue(ctx context.Context, key string) (*model.Record, error)

	// SearchKeys resolves a JQL query to a sequence of issue keys.
	SearchKeys(ctx context.Context, jql string) ([]string, error)

	// BrowseURL returns the human-facing URL for an issue key.
	BrowseURL(key string) string
}
