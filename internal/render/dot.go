// Package render turns an assembled graph into its output forms: GraphViz
// DOT text and a remotely rendered PNG image. It consumes the graph value
// read-only and owns all presentation decisions.
package render

import (
	"fmt"
	"strings"

	"github.com/groblegark/jiragraph/internal/model"
)

// maxSummaryLength is where node labels are truncated or wrapped.
const maxSummaryLength = 30

// Options control DOT output.
type Options struct {
	// NodeShape is the GraphViz shape for issue nodes ("box", "ellipse", ...).
	NodeShape string

	// WordWrap wraps long summaries onto multiple lines instead of
	// truncating them with "...".
	WordWrap bool

	// MergeRelates renders merged symmetric edges with arrowheads on both
	// ends. Must match the filter setting the graph was built with.
	MergeRelates bool

	// BrowseURL, when set, supplies the href attached to each issue node.
	BrowseURL func(key string) string
}

// DOT renders the graph as a GraphViz digraph. External placeholder nodes
// get no attribute statement; they appear only where edges reference them.
func DOT(g *model.Graph, opts Options) string {
	shape := opts.NodeShape
	if shape == "" {
		shape = "box"
	}

	var sb strings.Builder
	sb.WriteString("digraph{\nnode [shape=" + shape + "];\n\n")

	var stmts []string
	for _, n := range g.Nodes() {
		if n.External {
			continue
		}
		stmts = append(stmts, nodeStatement(n, opts))
	}
	for _, e := range g.Edges() {
		stmts = append(stmts, edgeStatement(g, e, opts))
	}
	sb.WriteString(strings.Join(stmts, ";\n"))
	sb.WriteString("\n}")
	return sb.String()
}

// nodeStatement renders one kept issue with its status color and link.
func nodeStatement(n *model.Issue, opts Options) string {
	attrs := []string{}
	if opts.BrowseURL != nil {
		attrs = append(attrs, fmt.Sprintf("href=%q", opts.BrowseURL(n.Key)))
	}
	attrs = append(attrs, fmt.Sprintf("fillcolor=%q", statusColor(n)), "style=filled")
	if n.Epic {
		attrs = append(attrs, "shape=doubleoctagon", "color=purple")
	}
	return fmt.Sprintf("%s [%s]", nodeID(n, opts), strings.Join(attrs, ", "))
}

func edgeStatement(g *model.Graph, e model.Edge, opts Options) string {
	from, _ := g.Node(e.From)
	to, _ := g.Node(e.To)

	extra := ""
	switch {
	case e.Label == "subtask":
		extra = ",color=\"blue\""
	case e.Label == "blocks":
		extra = ",color=\"red\""
	case e.Label == "has to be done before":
		extra = ",color=\"orange\""
	case e.Label == "relates to" && opts.MergeRelates:
		extra = ", dir=both"
	}
	return fmt.Sprintf("%s->%s[label=%q%s]", nodeID(from, opts), nodeID(to, opts), e.Label, extra)
}

// nodeID is the quoted node identity: the key plus its (shortened) summary.
// External placeholders render as the bare key.
func nodeID(n *model.Issue, opts Options) string {
	if n.External || n.Summary == "" {
		return fmt.Sprintf("%q", n.Key)
	}
	summary := n.Summary
	if opts.WordWrap {
		summary = wrap(summary, maxSummaryLength)
	} else if r := []rune(summary); len(r) > maxSummaryLength+2 {
		// Truncate on runes so a multibyte character is never split. The dots
		// must replace more than two characters, otherwise the shortened
		// label is longer than the original.
		summary = string(r[:maxSummaryLength]) + "..."
	}
	summary = strings.ReplaceAll(summary, `"`, `\"`)
	return fmt.Sprintf("\"%s\\n(%s)\"", n.Key, summary)
}

// statusColor maps the tracker's status category to a fill color.
func statusColor(n *model.Issue) string {
	switch strings.ToUpper(n.StatusCategory) {
	case "IN PROGRESS":
		return "yellow"
	case "DONE":
		return "green"
	}
	return "white"
}

// wrap breaks text into lines of at most width characters, splitting at
// spaces, joined with literal \n escapes for the DOT label.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, `\n`)
}
