// Package graph builds the directed influence multigraph of authors from
// interaction signals (mentions, replies, reshares) and computes centrality
// rankings over its weighted simple-graph projection.
package graph

import (
	"sort"

	"protestlens/internal/model"
	"protestlens/internal/pipeline"
)

// Graph is the interaction multigraph. Edges are never deduplicated: edge
// multiplicity is a signal of interaction intensity. Metrics operate on the
// collapsed projection where weight = multiplicity.
type Graph struct {
	Handles    []string // every author in the input, sorted, zero-edge authors included
	Edges      []model.InteractionEdge
	Unresolved int // interactions that referenced no known author

	// collapsed projection: source -> target -> multiplicity
	weights map[string]map[string]int
}

// Build infers interaction edges from the post sequence. Mention targets are
// resolved case-insensitively against the authors present in the input;
// unresolvable references are counted but produce no edge. Self-interactions
// are skipped. Fails with DisconnectedInputError when not a single
// interaction resolves.
func Build(posts []model.Post) (*Graph, error) {
	known := map[string]struct{}{}
	for _, p := range posts {
		known[p.Author] = struct{}{}
	}

	g := &Graph{weights: map[string]map[string]int{}}
	for h := range known {
		g.Handles = append(g.Handles, h)
	}
	sort.Strings(g.Handles)

	for _, p := range posts {
		for _, m := range p.Mentions {
			g.addEdge(p, m, model.InteractionMention, known)
		}
		if p.ReplyToHandle != "" {
			g.addEdge(p, p.ReplyToHandle, model.InteractionReply, known)
		}
		if p.ReshareOfHandle != "" {
			g.addEdge(p, p.ReshareOfHandle, model.InteractionReshare, known)
		}
	}

	if len(g.Edges) == 0 {
		return nil, &pipeline.DisconnectedInputError{Posts: len(posts)}
	}
	return g, nil
}

func (g *Graph) addEdge(p model.Post, target string, kind model.InteractionKind, known map[string]struct{}) {
	if target == p.Author {
		return
	}
	if _, ok := known[target]; !ok {
		g.Unresolved++
		return
	}
	g.Edges = append(g.Edges, model.InteractionEdge{
		Source:    p.Author,
		Target:    target,
		Kind:      kind,
		Timestamp: p.Timestamp,
		PostID:    p.ID,
	})
	if g.weights[p.Author] == nil {
		g.weights[p.Author] = map[string]int{}
	}
	g.weights[p.Author][target]++
}

// Weight returns the collapsed-edge weight (multiplicity) from source to
// target.
func (g *Graph) Weight(source, target string) int {
	return g.weights[source][target]
}

// successors returns the collapsed out-neighbors of h in lexicographic
// order. Deterministic iteration order is what makes betweenness output
// identical across runs.
func (g *Graph) successors(h string) []string {
	m := g.weights[h]
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
