// Package graph builds the issue dependency graph: a breadth-first walk over
// remote issue relationships into a deduplicated, cycle-safe graph model,
// plus the normalization that collapses mirrored link pairs into canonical
// directed edges.
package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/groblegark/jiragraph/internal/jira"
	"github.com/groblegark/jiragraph/internal/model"
)

// Warning records a non-fatal per-issue failure encountered during a build.
// Warnings are accumulated and reported at the end without failing the run.
type Warning struct {
	Key string
	Err error
}

// Builder walks issue relationships reachable from a seed set into a Graph.
// A Builder is cheap; construct one per invocation.
type Builder struct {
	tracker jira.Tracker
	filter  model.Filter
	logger  *slog.Logger
}

// NewBuilder creates a builder over the given tracker, bounded by filter.
func NewBuilder(tracker jira.Tracker, filter model.Filter) *Builder {
	return &Builder{tracker: tracker, filter: filter, logger: slog.Default()}
}

// Build explores the relationship graph reachable from seeds and returns the
// assembled graph plus per-issue warnings. Traversal is breadth-first and
// deterministic for a fixed seed order and tracker state. A transient fetch
// failure whose retries were exhausted aborts the whole run with no graph;
// a partial result must not masquerade as a complete one.
func (b *Builder) Build(ctx context.Context, seeds []string) (*model.Graph, []Warning, error) {
	if err := b.filter.Validate(seeds); err != nil {
		return nil, nil, err
	}

	g := model.NewGraph()
	visited := make(map[string]bool)
	queue := append([]string(nil), seeds...)

	var (
		observations []model.Observation
		warnings     []Warning
	)

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if visited[key] {
			continue
		}
		// Mark before fetching: at most one fetch per key even when the key
		// is re-discovered from multiple parents.
		visited[key] = true

		// Prefix filtering needs no fetch; the key alone decides. Edges that
		// already point here keep the node as an external placeholder.
		if !b.filter.KeepsPrefix(key) {
			b.logger.Debug("skipping issue outside included prefixes", "key", key)
			continue
		}

		rec, err := b.tracker.FetchIssue(ctx, key)
		if err != nil {
			if skippable(err) {
				warnings = append(warnings, Warning{Key: key, Err: err})
				continue
			}
			return nil, nil, err
		}

		if b.filter.IgnoreClosed && rec.Issue.Closed() {
			b.logger.Debug("skipping closed issue", "key", key)
			continue
		}

		g.AddIssue(rec.Issue)

		children, obs, err := b.expand(ctx, rec, &warnings)
		if err != nil {
			return nil, nil, err
		}
		observations = append(observations, obs...)
		queue = append(queue, children...)
	}

	for _, e := range Normalize(observations, b.filter.MergeRelates) {
		g.AddEdge(e)
	}
	return g, warnings, nil
}

// expand collects the child keys to enqueue and the raw edge observations
// for one fetched record. Skippable failures while resolving epic children
// become warnings; fatal ones are returned.
func (b *Builder) expand(ctx context.Context, rec *model.Record, warnings *[]Warning) ([]string, []model.Observation, error) {
	var (
		children     []string
		observations []model.Observation
	)
	key := rec.Issue.Key

	if !b.filter.IgnoreSubtasks {
		for _, st := range rec.Subtasks {
			if b.filter.ExcludesKey(st.Key) {
				continue
			}
			if b.filter.IgnoreClosed && st.Closed() {
				b.logger.Debug("skipping closed subtask", "key", st.Key)
				continue
			}
			observations = append(observations, model.Observation{
				Source:    key,
				Target:    st.Key,
				Type:      model.SubtaskLink,
				Direction: model.DirectionOutward,
			})
			children = append(children, st.Key)
		}
	}

	// Epic children are the same structural parent/child relation as
	// subtasks, so ignoring subtasks suppresses epic expansion too.
	if rec.Issue.Epic && !b.filter.IgnoreEpics && !b.filter.IgnoreSubtasks {
		childKeys, err := b.tracker.SearchKeys(ctx, jira.EpicChildrenJQL(key))
		if err != nil {
			if !skippable(err) {
				return nil, nil, err
			}
			*warnings = append(*warnings, Warning{Key: key, Err: err})
		}
		for _, childKey := range childKeys {
			if b.filter.ExcludesKey(childKey) {
				continue
			}
			observations = append(observations, model.Observation{
				Source:    key,
				Target:    childKey,
				Type:      model.SubtaskLink,
				Direction: model.DirectionOutward,
			})
			children = append(children, childKey)
		}
	}

	for _, l := range rec.Links {
		if !b.filter.Walks(l.Direction) {
			continue
		}
		// Excluded link types are skipped entirely: neither an edge nor a
		// new traversal root.
		if b.filter.ExcludesLink(l.Type.Name) {
			continue
		}
		if b.filter.ExcludesKey(l.OtherKey) {
			continue
		}
		// The link payload carries the far endpoint's status; a known closed
		// neighbor is dropped here without spending a fetch on it.
		if b.filter.IgnoreClosed && l.OtherClosed() {
			b.logger.Debug("skipping closed linked issue", "key", l.OtherKey, "link", l.Label())
			continue
		}
		children = append(children, l.OtherKey)
		if !b.filter.Shows(l.Direction) {
			continue
		}
		observations = append(observations, model.Observation{
			Source:    key,
			Target:    l.OtherKey,
			Type:      l.Type,
			Direction: l.Direction,
		})
	}

	return children, observations, nil
}

// skippable reports whether a fetch failure may be recorded as a warning
// rather than aborting the run.
func skippable(err error) bool {
	var fe *jira.FetchError
	if errors.As(err, &fe) {
		return !fe.Fatal()
	}
	var me *jira.MalformedError
	return errors.As(err, &me)
}
