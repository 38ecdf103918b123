package graph

import "github.com/groblegark/jiragraph/internal/model"

// Normalize collapses raw edge observations into canonical directed edges
// with no semantic duplicates.
//
// Directional observations are resolved into their outward form: for an
// inward observation "B is blocked by A" the canonical edge is A -> B labeled
// with the link type's outward phrasing. The two mirror observations of one
// underlying link therefore resolve to the same (from, to, label) tuple and
// dedup trivially.
//
// Symmetric link types ("relates to") have no meaningful direction to resolve,
// so each observation keeps its own source -> target orientation; the mirror
// pair survives as two edges, which intentionally renders as a 2-cycle. With
// mergeRelates the pair is instead deduplicated on the unordered endpoint
// pair and emitted once, with the lexicographically smaller key as from so
// the direction is stable.
//
// Edges are emitted in the order their defining observation was first seen.
// Genuine structural cycles (A blocks B, B blocks A as two separate tracker
// links) are distinct tuples and pass through untouched.
func Normalize(observations []model.Observation, mergeRelates bool) []model.Edge {
	seen := make(map[model.Edge]bool, len(observations))
	edges := make([]model.Edge, 0, len(observations))

	for _, o := range observations {
		e := canonical(o, mergeRelates)
		if seen[e] {
			continue
		}
		seen[e] = true
		edges = append(edges, e)
	}
	return edges
}

// canonical resolves one observation into its edge form, labeling it with
// the link type's outward phrasing.
func canonical(o model.Observation, mergeRelates bool) model.Edge {
	label := o.Type.Outward
	if label == "" {
		label = o.Type.Name
	}
	if o.Type.Symmetric() {
		// No direction to resolve; the observation's own orientation stands
		// unless merging collapses the pair onto sorted endpoints.
		e := model.Edge{From: o.Source, To: o.Target, Label: label}
		if mergeRelates && e.From > e.To {
			e.From, e.To = e.To, e.From
		}
		return e
	}
	if o.Direction == model.DirectionInward {
		return model.Edge{From: o.Target, To: o.Source, Label: label}
	}
	return model.Edge{From: o.Source, To: o.Target, Label: label}
}
