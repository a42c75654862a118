package metrics

import (
	"context"
	"fmt"
	"log"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"bridgewise/internal/graph"
)

// GraphOps is the slice of the graph store the engine needs.
type GraphOps interface {
	PersonIDs(ctx context.Context) ([]string, error)
	LayerEdges(ctx context.Context, relType string) ([]graph.LayerEdge, error)
	WriteLayerMetrics(ctx context.Context, layer graph.LayerProps, rows []graph.MetricRow) error
}

// Engine recomputes community, betweenness and bridging metrics for one
// similarity layer at a time and writes them back atomically.
type Engine struct {
	graph GraphOps
}

func NewEngine(g GraphOps) *Engine {
	return &Engine{graph: g}
}

// RunBoth recomputes metrics for the skills layer then the job layer.
func (e *Engine) RunBoth(ctx context.Context, excludeIDs []string, maxIter int) error {
	if err := e.RunLayer(ctx, graph.SkillsLayer, excludeIDs, maxIter); err != nil {
		return fmt.Errorf("skills layer: %w", err)
	}
	if err := e.RunLayer(ctx, graph.JobLayer, excludeIDs, maxIter); err != nil {
		return fmt.Errorf("job layer: %w", err)
	}
	return nil
}

// RunLayer projects one layer in memory, computes Louvain communities,
// betweenness centrality and the bridging coefficient, then writes every
// person's metrics for that layer in one transaction. Excluded ids are
// left out of the projection and written with zeroed metrics.
func (e *Engine) RunLayer(ctx context.Context, layer graph.LayerProps, excludeIDs []string, maxIter int) error {
	ids, err := e.graph.PersonIDs(ctx)
	if err != nil {
		return fmt.Errorf("list persons: %w", err)
	}
	edges, err := e.graph.LayerEdges(ctx, layer.RelType)
	if err != nil {
		return fmt.Errorf("load %s edges: %w", layer.RelType, err)
	}

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var included []string
	for _, id := range ids {
		if !excluded[id] {
			included = append(included, id)
		}
	}
	sort.Strings(included)

	rows := computeLayer(included, edges, maxIter)
	for id := range excluded {
		rows = append(rows, graph.MetricRow{ID: id, Community: -1})
	}

	if err := e.graph.WriteLayerMetrics(ctx, layer, rows); err != nil {
		return fmt.Errorf("write %s metrics: %w", layer.RelType, err)
	}
	log.Printf("[Metrics] %s: %d nodes, %d edges, %d excluded",
		layer.RelType, len(included), len(edges), len(excluded))
	return nil
}

// computeLayer runs the per-layer algorithms over an in-memory projection.
func computeLayer(ids []string, edges []graph.LayerEdge, maxIter int) []graph.MetricRow {
	n := len(ids)
	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}

	adj := make([]map[int]float64, n)
	for i := range adj {
		adj[i] = map[int]float64{}
	}
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range ids {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		a, okA := index[e.A]
		b, okB := index[e.B]
		if !okA || !okB || a == b {
			continue
		}
		w := e.Weight
		if w <= 0 {
			w = 1
		}
		adj[a][b] = w
		adj[b][a] = w
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(a), T: simple.Node(b), W: w})
	}

	comm := louvain(n, adj, maxIter)
	betweenness := network.Betweenness(g)

	rows := make([]graph.MetricRow, 0, n)
	for i, id := range ids {
		deg := len(adj[i])
		coeff := bridgingCoefficient(i, adj)
		bc := betweenness[int64(i)]
		rows = append(rows, graph.MetricRow{
			ID:              id,
			Community:       int64(comm[i]),
			Betweenness:     bc,
			BridgeCoeff:     coeff,
			BridgePotential: bc * coeff,
			Degree:          int64(deg),
		})
	}
	return rows
}

// bridgingCoefficient is (1/deg(v)) / sum over neighbours of 1/deg(u).
// Nodes with no neighbours, or whose neighbours all have zero degree,
// get 0.
func bridgingCoefficient(v int, adj []map[int]float64) float64 {
	deg := len(adj[v])
	if deg == 0 {
		return 0
	}
	var invSum float64
	for u := range adj[v] {
		if d := len(adj[u]); d > 0 {
			invSum += 1.0 / float64(d)
		}
	}
	if invSum == 0 {
		return 0
	}
	return (1.0 / float64(deg)) / invSum
}
