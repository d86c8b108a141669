package graph

import (
	"fmt"
	"time"

	"protestlens/internal/model"
	"protestlens/internal/pipeline"
)

// Centrality metric names.
const (
	MetricInDegree    = "in_degree"
	MetricOutDegree   = "out_degree"
	MetricBetweenness = "betweenness"
)

// Centrality computes the requested metrics for every author, zero-edge
// authors included. Results are ordered by handle, then metric, so repeated
// runs emit identical sequences. A recomputation supersedes earlier scores.
func (g *Graph) Centrality(metrics []string, computedAt time.Time) ([]model.CentralityScore, error) {
	values := map[string]map[string]float64{}
	for _, m := range metrics {
		switch m {
		case MetricInDegree:
			values[m] = g.inDegrees()
		case MetricOutDegree:
			values[m] = g.outDegrees()
		case MetricBetweenness:
			values[m] = g.betweenness()
		default:
			return nil, &pipeline.ConfigurationError{Key: "graph.metrics", Reason: fmt.Sprintf("unknown metric %q", m)}
		}
	}

	var out []model.CentralityScore
	for _, h := range g.Handles {
		for _, m := range metrics {
			out = append(out, model.CentralityScore{
				Handle:     h,
				Metric:     m,
				Value:      values[m][h],
				ComputedAt: computedAt,
			})
		}
	}
	return out, nil
}

// inDegrees and outDegrees are multiplicity-weighted: the degree of an
// author is the sum of collapsed-edge weights touching it, so three mentions
// of B by A contribute 3 to in-degree(B).

func (g *Graph) inDegrees() map[string]float64 {
	d := map[string]float64{}
	for _, h := range g.Handles {
		d[h] = 0
	}
	for _, targets := range g.weights {
		for t, w := range targets {
			d[t] += float64(w)
		}
	}
	return d
}

func (g *Graph) outDegrees() map[string]float64 {
	d := map[string]float64{}
	for _, h := range g.Handles {
		d[h] = 0
	}
	for src, targets := range g.weights {
		for _, w := range targets {
			d[src] += float64(w)
		}
	}
	return d
}

// betweenness implements Brandes' algorithm on the collapsed projection.
// Shortest paths use hop count: multiplicity measures intensity, not
// distance. All iteration is in lexicographic handle order, so the
// floating-point accumulation order, and therefore the result, is identical
// across runs on identical input.
func (g *Graph) betweenness() map[string]float64 {
	bc := map[string]float64{}
	for _, h := range g.Handles {
		bc[h] = 0
	}

	for _, s := range g.Handles {
		// single-source shortest paths (BFS)
		sigma := map[string]float64{s: 1}
		dist := map[string]int{s: 0}
		preds := map[string][]string{}
		var stack []string
		queue := []string{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.successors(v) {
				dw, seen := dist[w]
				if !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
					dw = dist[w]
				}
				if dw == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		// accumulation, reverse order of discovery
		delta := map[string]float64{}
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				bc[w] += delta[w]
			}
		}
	}
	return bc
}
