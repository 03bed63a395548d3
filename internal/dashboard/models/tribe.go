package models

import "fmt"

// TribeEdge is a weighted collaboration link between two nodes.
type TribeEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// TribeGraph is the collaboration graph. Nodes have set semantics; edge
// order is preserved as received.
type TribeGraph struct {
	Nodes []string    `json:"nodes"`
	Edges []TribeEdge `json:"edges"`
}

// EdgeIssue describes an edge referencing a node missing from Nodes.
type EdgeIssue struct {
	Index   int    `json:"index"`
	Missing string `json:"missing"`
}

func (e EdgeIssue) String() string {
	return fmt.Sprintf("edge %d references unknown node %q", e.Index, e.Missing)
}

// Validate returns one issue per dangling edge endpoint. The store does not
// enforce this; consumers call it before rendering.
func (g TribeGraph) Validate() []EdgeIssue {
	nodes := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n] = struct{}{}
	}
	var issues []EdgeIssue
	for i, e := range g.Edges {
		if _, ok := nodes[e.Source]; !ok {
			issues = append(issues, EdgeIssue{Index: i, Missing: e.Source})
		}
		if _, ok := nodes[e.Target]; !ok && e.Target != e.Source {
			issues = append(issues, EdgeIssue{Index: i, Missing: e.Target})
		}
	}
	return issues
}

// Density is edges per node, 0 for an empty graph.
func (g TribeGraph) Density() float64 {
	if len(g.Nodes) == 0 {
		return 0
	}
	return float64(len(g.Edges)) / float64(len(g.Nodes))
}

// Clone returns a deep copy.
func (g TribeGraph) Clone() TribeGraph {
	return TribeGraph{
		Nodes: cloneSlice(g.Nodes),
		Edges: cloneSlice(g.Edges),
	}
}
