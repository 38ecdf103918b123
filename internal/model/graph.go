package model

// Edge is a canonical, deduplicated directed relationship between two issues.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Graph is the assembled dependency graph: one node per discovered issue key
// and an ordered sequence of canonical edges. Every edge endpoint is present
// in the node set, if only as an external placeholder.
type Graph struct {
	nodes map[string]*Issue
	order []string
	edges []Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*Issue)}
}

// AddIssue records a kept issue as a node. If the key is already present as
// an external placeholder, the placeholder is filled in; a fully-populated
// node is never overwritten.
func (g *Graph) AddIssue(issue Issue) *Issue {
	if existing, ok := g.nodes[issue.Key]; ok {
		if existing.External && !issue.External {
			*existing = issue
		}
		return existing
	}
	n := issue
	g.nodes[issue.Key] = &n
	g.order = append(g.order, issue.Key)
	return &n
}

// AddEdge appends a canonical edge. Endpoints not yet in the node set are
// created as external placeholders so the edge can render as a dangling leaf.
func (g *Graph) AddEdge(e Edge) {
	g.ensureNode(e.From)
	g.ensureNode(e.To)
	g.edges = append(g.edges, e)
}

func (g *Graph) ensureNode(key string) {
	if _, ok := g.nodes[key]; ok {
		return
	}
	g.nodes[key] = &Issue{Key: key, External: true}
	g.order = append(g.order, key)
}

// Node returns the node for key, if present.
func (g *Graph) Node(key string) (*Issue, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Nodes returns all nodes in discovery order.
func (g *Graph) Nodes() []*Issue {
	out := make([]*Issue, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.nodes[key])
	}
	return out
}

// Edges returns the canonical edges in emission order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}
