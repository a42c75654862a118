package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridgewise/internal/graph"
)

func TestLouvainTwoCliques(t *testing.T) {
	// two triangles joined by one weak edge
	adj := []map[int]float64{
		{1: 1, 2: 1},
		{0: 1, 2: 1},
		{0: 1, 1: 1, 3: 0.1},
		{2: 0.1, 4: 1, 5: 1},
		{3: 1, 5: 1},
		{3: 1, 4: 1},
	}
	comm := louvain(6, adj, 20)
	assert.Equal(t, comm[0], comm[1])
	assert.Equal(t, comm[1], comm[2])
	assert.Equal(t, comm[3], comm[4])
	assert.Equal(t, comm[4], comm[5])
	assert.NotEqual(t, comm[0], comm[3])
}

func TestLouvainEmptyGraph(t *testing.T) {
	adj := []map[int]float64{{}, {}, {}}
	comm := louvain(3, adj, 20)
	require.Len(t, comm, 3)
}

func TestBridgingCoefficient(t *testing.T) {
	// path a-b-c: b bridges two degree-1 nodes
	adj := []map[int]float64{
		{1: 1},
		{0: 1, 2: 1},
		{1: 1},
	}
	// b: (1/2) / (1/1 + 1/1) = 0.25
	assert.InDelta(t, 0.25, bridgingCoefficient(1, adj), 1e-9)
	// a: (1/1) / (1/2) = 2
	assert.InDelta(t, 2.0, bridgingCoefficient(0, adj), 1e-9)
	// isolated node
	assert.Zero(t, bridgingCoefficient(0, []map[int]float64{{}}))
}

func TestComputeLayerPathGraph(t *testing.T) {
	ids := []string{"a", "b", "c"}
	edges := []graph.LayerEdge{
		{A: "a", B: "b", Weight: 1},
		{A: "b", B: "c", Weight: 1},
	}
	rows := computeLayer(ids, edges, 20)
	require.Len(t, rows, 3)

	byID := map[string]graph.MetricRow{}
	for _, r := range rows {
		byID[r.ID] = r
	}
	// only b lies on a shortest path between distinct endpoints
	assert.Greater(t, byID["b"].Betweenness, byID["a"].Betweenness)
	assert.Equal(t, int64(2), byID["b"].Degree)
	assert.Equal(t, int64(1), byID["a"].Degree)
	assert.InDelta(t, byID["b"].Betweenness*0.25, byID["b"].BridgePotential, 1e-9)
}

func TestComputeLayerIgnoresUnknownEndpoints(t *testing.T) {
	rows := computeLayer([]string{"a"}, []graph.LayerEdge{{A: "a", B: "ghost", Weight: 1}}, 20)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(0), rows[0].Degree)
}

type fakeMetricsGraph struct {
	ids    []string
	edges  map[string][]graph.LayerEdge
	writes map[string][]graph.MetricRow
}

func (f *fakeMetricsGraph) PersonIDs(context.Context) ([]string, error) { return f.ids, nil }
func (f *fakeMetricsGraph) LayerEdges(_ context.Context, relType string) ([]graph.LayerEdge, error) {
	return f.edges[relType], nil
}
func (f *fakeMetricsGraph) WriteLayerMetrics(_ context.Context, layer graph.LayerProps, rows []graph.MetricRow) error {
	if f.writes == nil {
		f.writes = map[string][]graph.MetricRow{}
	}
	f.writes[layer.RelType] = rows
	return nil
}

func TestRunBothWritesBothLayers(t *testing.T) {
	f := &fakeMetricsGraph{
		ids: []string{"me", "a", "b"},
		edges: map[string][]graph.LayerEdge{
			"SIMILAR":     {{A: "a", B: "b", Weight: 2}},
			"SIMILAR_JOB": {{A: "a", B: "b", Weight: 1}},
		},
	}
	e := NewEngine(f)
	require.NoError(t, e.RunBoth(context.Background(), []string{"me"}, 20))

	require.Contains(t, f.writes, "SIMILAR")
	require.Contains(t, f.writes, "SIMILAR_JOB")

	var meRow *graph.MetricRow
	for i := range f.writes["SIMILAR"] {
		if f.writes["SIMILAR"][i].ID == "me" {
			meRow = &f.writes["SIMILAR"][i]
		}
	}
	require.NotNil(t, meRow, "excluded id still gets a row")
	assert.Equal(t, int64(-1), meRow.Community)
	assert.Zero(t, meRow.BridgePotential)
}
