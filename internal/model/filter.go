package model

import (
	"fmt"
	"strings"
)

// Filter bounds which issues and links the traversal keeps. It is supplied
// once at the start of a build and read-only for the whole traversal.
type Filter struct {
	// ExcludedLinkNames drops links by type name ("Blocks", "Cloners", ...).
	// An excluded link is skipped entirely: no edge, no enqueued child.
	ExcludedLinkNames []string `json:"excluded_link_names,omitempty"`

	// ExcludedKeys drops specific issues; links pointing at them are dropped
	// with them.
	ExcludedKeys []string `json:"excluded_keys,omitempty"`

	// IncludedPrefixes, when non-empty, restricts expansion to issues whose
	// project prefix is listed. Issues outside the set stay in the graph only
	// as external placeholders when a kept issue references them.
	IncludedPrefixes []string `json:"included_prefixes,omitempty"`

	IgnoreEpics    bool `json:"ignore_epics,omitempty"`
	IgnoreSubtasks bool `json:"ignore_subtasks,omitempty"`
	IgnoreClosed   bool `json:"ignore_closed,omitempty"`

	// MergeRelates collapses the two mirror observations of a symmetric
	// "relates to" link into a single edge. When false both directions are
	// emitted, which intentionally renders as a 2-cycle.
	MergeRelates bool `json:"merge_relates,omitempty"`

	// WalkDirections limits which observed directions are traversed;
	// ShowDirections limits which become edges. Empty means both.
	WalkDirections []Direction `json:"walk_directions,omitempty"`
	ShowDirections []Direction `json:"show_directions,omitempty"`
}

// ConfigError reports an invalid filter combination. It is returned before
// traversal starts; a bad config is never partially applied.
type ConfigError struct {
	Reason string
}

// Error formats the config error.
func (e *ConfigError) Error() string {
	return "invalid filter config: " + e.Reason
}

// Validate checks the filter against the resolved seed set. Seeds that the
// filter itself excludes are a configuration conflict, not a traversal result.
func (f *Filter) Validate(seeds []string) error {
	for _, d := range f.WalkDirections {
		if !d.IsValid() {
			return &ConfigError{Reason: fmt.Sprintf("unknown walk direction %q", d)}
		}
	}
	for _, d := range f.ShowDirections {
		if !d.IsValid() {
			return &ConfigError{Reason: fmt.Sprintf("unknown show direction %q", d)}
		}
	}
	for _, p := range f.IncludedPrefixes {
		if strings.TrimSpace(p) == "" {
			return &ConfigError{Reason: "empty include prefix"}
		}
	}
	for _, seed := range seeds {
		if f.ExcludesKey(seed) {
			return &ConfigError{Reason: fmt.Sprintf("seed issue %s is also excluded", seed)}
		}
	}
	return nil
}

// ExcludesLink reports whether links of the named type are dropped.
func (f *Filter) ExcludesLink(name string) bool {
	name = strings.TrimSpace(name)
	for _, x := range f.ExcludedLinkNames {
		if strings.EqualFold(strings.TrimSpace(x), name) {
			return true
		}
	}
	return false
}

// ExcludesKey reports whether the issue key is explicitly excluded.
func (f *Filter) ExcludesKey(key string) bool {
	for _, x := range f.ExcludedKeys {
		if x == key {
			return true
		}
	}
	return false
}

// KeepsPrefix reports whether an issue with the given key may be expanded.
// An empty include set keeps everything.
func (f *Filter) KeepsPrefix(key string) bool {
	if len(f.IncludedPrefixes) == 0 {
		return true
	}
	prefix := KeyPrefix(key)
	for _, p := range f.IncludedPrefixes {
		if strings.EqualFold(p, prefix) {
			return true
		}
	}
	return false
}

// Walks reports whether links observed in the given direction are traversed.
func (f *Filter) Walks(d Direction) bool {
	return directionAllowed(f.WalkDirections, d)
}

// Shows reports whether links observed in the given direction become edges.
func (f *Filter) Shows(d Direction) bool {
	return directionAllowed(f.ShowDirections, d)
}

func directionAllowed(allowed []Direction, d Direction) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == d {
			return true
		}
	}
	return false
}
