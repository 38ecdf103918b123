package model

import "strings"

// Direction identifies which side of a link an observation was made from.
type Direction string

const (
	DirectionInward  Direction = "inward"
	DirectionOutward Direction = "outward"
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	return string(d)
}

// IsValid checks whether the direction is a known value.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionInward, DirectionOutward:
		return true
	}
	return false
}

// LinkType describes a tracker link type with its two directional phrasings,
// e.g. {Name: "Blocks", Inward: "is blocked by", Outward: "blocks"}.
type LinkType struct {
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

// Symmetric reports whether both phrasings read the same, as with
// "relates to". Symmetric links have no meaningful direction.
func (t LinkType) Symmetric() bool {
	return t.Inward != "" && t.Inward == t.Outward
}

// SubtaskLink is the fixed link type used for structural parent/child
// relationships (subtasks and epic children), which the tracker reports
// outside the issue-link list.
var SubtaskLink = LinkType{Name: "Subtask", Inward: "is subtask of", Outward: "subtask"}

// Link is one typed relationship as reported from one issue's perspective.
type Link struct {
	Type        LinkType  `json:"type"`
	Direction   Direction `json:"direction"`
	OtherKey    string    `json:"other_key"`
	OtherStatus string    `json:"other_status,omitempty"`
}

// Label returns the phrasing for the link as seen from the reporting side.
func (l Link) Label() string {
	if l.Direction == DirectionInward {
		return l.Type.Inward
	}
	return l.Type.Outward
}

// OtherClosed reports whether the far endpoint is known to be Closed. The
// link payload carries the endpoint's status, so a closed neighbor can be
// recognized without fetching it.
func (l Link) OtherClosed() bool {
	return strings.EqualFold(l.OtherStatus, "Closed")
}

// Issue is a normalized tracker issue — one node in the dependency graph.
// A given key maps to exactly one Issue; re-discovery reuses the existing node.
type Issue struct {
	Key            string `json:"key"`
	Summary        string `json:"summary"`
	Status         string `json:"status"`
	StatusCategory string `json:"status_category,omitempty"`
	Type           string `json:"type"`
	Subtask        bool   `json:"subtask,omitempty"`
	Epic           bool   `json:"epic,omitempty"`

	// External marks a node that was referenced by a kept issue but itself
	// filtered out or never expanded. External nodes carry the key only.
	External bool `json:"external,omitempty"`
}

// Closed reports whether the issue's status is Closed.
func (i *Issue) Closed() bool {
	return strings.EqualFold(i.Status, "Closed")
}

// Prefix returns the project prefix of the issue key.
func (i *Issue) Prefix() string {
	return KeyPrefix(i.Key)
}

// KeyPrefix returns the project portion of an issue key ("PROJ-42" -> "PROJ").
// Keys without a dash are their own prefix.
func KeyPrefix(key string) string {
	if idx := strings.IndexByte(key, '-'); idx > 0 {
		return key[:idx]
	}
	return key
}

// SubtaskStub is a child-issue stub carried inline on the parent record.
type SubtaskStub struct {
	Key     string `json:"key"`
	Summary string `json:"summary,omitempty"`
	Status  string `json:"status,omitempty"`
}

// Closed reports whether the stub's status is Closed.
func (s SubtaskStub) Closed() bool {
	return strings.EqualFold(s.Status, "Closed")
}

// Record is a fetched issue together with its raw relationship facts,
// exactly as reported by the tracker for that one issue.
type Record struct {
	Issue    Issue         `json:"issue"`
	Subtasks []SubtaskStub `json:"subtasks,omitempty"`
	Links    []Link        `json:"links,omitempty"`
}

// Observation is a single link fact discovered while processing one issue.
// Two observations from the two endpoints of the same underlying link are the
// same relationship seen from opposite directions; the normalizer collapses
// them into one canonical edge.
type Observation struct {
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Type      LinkType  `json:"type"`
	Direction Direction `json:"direction"`
}
