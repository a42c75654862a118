package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridgewise/internal/config"
	"bridgewise/internal/graph"
	"bridgewise/internal/rank"
	"bridgewise/internal/similarity"
	"bridgewise/internal/vector"
)

type fakeGraphStore struct {
	person *graph.PersonSummary
	path   *graph.IntroPath
	bridge map[string]graph.BridgeInfo
}

func (f *fakeGraphStore) GetPerson(_ context.Context, pid string) (*graph.PersonSummary, error) {
	if f.person == nil || f.person.ID != pid {
		return nil, graph.ErrNotFound
	}
	return f.person, nil
}
func (f *fakeGraphStore) JobTitleCounts(context.Context) ([]graph.TitleCount, error) {
	return []graph.TitleCount{{JobTitle: "SoftwareEngineer", TotalCount: 3}}, nil
}
func (f *fakeGraphStore) ClusterSummaries(context.Context, int) ([]graph.ClusterSummary, error) {
	return nil, nil
}
func (f *fakeGraphStore) ClusterMembers(context.Context, int64, int) ([]graph.PersonCard, error) {
	return nil, nil
}
func (f *fakeGraphStore) ShortestKnowsPath(context.Context, string, string, int) (*graph.IntroPath, error) {
	if f.path == nil {
		return nil, graph.ErrNotFound
	}
	return f.path, nil
}
func (f *fakeGraphStore) BridgeInfoByIDs(context.Context, []string) (map[string]graph.BridgeInfo, error) {
	return f.bridge, nil
}

type fakeRanker struct {
	vocab   *rank.Vocab
	results []rank.RankedPerson
	view    *rank.GraphView
	lastP   rank.Params
}

func (f *fakeRanker) Rank(_ context.Context, p rank.Params) ([]rank.RankedPerson, error) {
	f.lastP = p
	if err := validateLike(p); err != nil {
		return nil, err
	}
	return f.results, nil
}
func (f *fakeRanker) RankBatch(_ context.Context, meID string, queries []string, base rank.Params) ([]rank.BatchResult, error) {
	out := make([]rank.BatchResult, 0, len(queries))
	for _, q := range queries {
		out = append(out, rank.BatchResult{Query: q, Results: f.results})
	}
	return out, nil
}
func (f *fakeRanker) Explain(_ context.Context, meID, query string, _ bool, sample int) (*rank.Explanation, error) {
	return &rank.Explanation{Query: query, CandidateCount: 2}, nil
}
func (f *fakeRanker) Graph(_ context.Context, p rank.Params) (*rank.GraphView, error) {
	f.lastP = p
	return f.view, nil
}
func (f *fakeRanker) Vocab() *rank.Vocab { return f.vocab }

func validateLike(p rank.Params) error {
	if p.MeID == "" || p.Query == "" {
		return rank.ErrValidation
	}
	return nil
}

type vocabSourceStub struct{ loads int }

func (s *vocabSourceStub) AllSkills(context.Context) ([]string, error) {
	s.loads++
	return nil, nil
}
func (s *vocabSourceStub) AllCompanies(context.Context) ([]string, error) { return nil, nil }

type fakeBuilder struct{ calls []string }

func (f *fakeBuilder) RebuildSimilar(_ context.Context, _ similarity.Params) error {
	f.calls = append(f.calls, "similar")
	return nil
}
func (f *fakeBuilder) RebuildSimilarJob(_ context.Context, _ float64) error {
	f.calls = append(f.calls, "job")
	return nil
}
func (f *fakeBuilder) AugmentWithEmbeddingEdges(_ context.Context, _ int, _ float64) error {
	f.calls = append(f.calls, "augment")
	return nil
}

type fakeMetrics struct{ ran bool }

func (f *fakeMetrics) RunBoth(context.Context, []string, int) error {
	f.ran = true
	return nil
}

type stubVector struct{ matches []vector.Match }

func (s *stubVector) QueryVector(context.Context, []float64, int, bool) ([]vector.Match, error) {
	return s.matches, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedQuery(context.Context, string) ([]float64, error) {
	return []float64{0.5}, nil
}

func newTestAPI(store *fakeGraphStore, ranker *fakeRanker, builder *fakeBuilder, metrics *fakeMetrics, vec VectorSearcher) *API {
	cfg := &config.Config{
		WVec: 0.40, WSkill: 0.18, WJob: 0.14,
		WStructGlobal: 0.14, WStructEgo: 0.09, WCompany: 0.05,
	}
	if ranker.vocab == nil {
		ranker.vocab = rank.NewVocab(&vocabSourceStub{})
	}
	return NewAPI(cfg, store, ranker, builder, metrics, vec, stubEmbedder{})
}

func doRequest(t *testing.T, a *API, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	NewRouter(a).ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	a := newTestAPI(&fakeGraphStore{}, &fakeRanker{}, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPersonNotFound(t *testing.T) {
	a := newTestAPI(&fakeGraphStore{}, &fakeRanker{}, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodGet, "/person/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPersonFound(t *testing.T) {
	store := &fakeGraphStore{person: &graph.PersonSummary{ID: "P1", Name: "Pat"}}
	a := newTestAPI(store, &fakeRanker{}, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodGet, "/person/P1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got graph.PersonSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Pat", got.Name)
}

func TestRankConnectionsValidation(t *testing.T) {
	a := newTestAPI(&fakeGraphStore{}, &fakeRanker{}, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodPost, "/rank-connections", map[string]any{"query": "python"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankConnectionsDefaults(t *testing.T) {
	ranker := &fakeRanker{results: []rank.RankedPerson{{ID: "P2", Score: 0.8}}}
	a := newTestAPI(&fakeGraphStore{}, ranker, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodPost, "/rank-connections",
		map[string]any{"me_id": "P1", "query": "python"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 20, ranker.lastP.TopK)
	assert.Equal(t, 1000, ranker.lastP.PineconeTopK)
	assert.True(t, ranker.lastP.Prefilter)
	assert.Equal(t, 0.8, ranker.lastP.RescaleTop)
	assert.Equal(t, 0.40, ranker.lastP.Weights.Vec)
	assert.Equal(t, 0.05, ranker.lastP.Weights.Company)
}

func TestRankConnectionsOverrides(t *testing.T) {
	ranker := &fakeRanker{}
	a := newTestAPI(&fakeGraphStore{}, ranker, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodPost, "/rank-connections", map[string]any{
		"me_id": "P1", "query": "python",
		"top_k": 5, "prefilter": false, "w_vec": 0.9, "rescale_top": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, ranker.lastP.TopK)
	assert.False(t, ranker.lastP.Prefilter)
	assert.Equal(t, 0.9, ranker.lastP.Weights.Vec)
	assert.Zero(t, ranker.lastP.RescaleTop)
}

func TestRankConnectionsGraphFallbackPayload(t *testing.T) {
	ranker := &fakeRanker{view: &rank.GraphView{Fallback: true, Error: "embed_fail: boom"}}
	a := newTestAPI(&fakeGraphStore{}, ranker, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodPost, "/rank-connections/graph",
		map[string]any{"me_id": "P1", "query": "python"})
	require.Equal(t, http.StatusOK, rec.Code)
	var view rank.GraphView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Fallback)
	assert.Contains(t, view.Error, "embed_fail")
}

func TestRecomputeRejectsUnknownWeightMode(t *testing.T) {
	a := newTestAPI(&fakeGraphStore{}, &fakeRanker{}, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodPost, "/recompute", map[string]any{"weight_mode": "cosine"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecomputeRunsPipeline(t *testing.T) {
	builder := &fakeBuilder{}
	metrics := &fakeMetrics{}
	a := newTestAPI(&fakeGraphStore{}, &fakeRanker{}, builder, metrics, &stubVector{})
	rec := doRequest(t, a, http.MethodPost, "/recompute",
		map[string]any{"weight_mode": "jaccard", "embed_top_k": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"similar", "job", "augment"}, builder.calls)
	assert.True(t, metrics.ran)
}

func TestIntroPathNotFound(t *testing.T) {
	a := newTestAPI(&fakeGraphStore{}, &fakeRanker{}, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodGet, "/intro-path?src=P1&dst=P4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":[],"hops":null}`, rec.Body.String())
}

func TestIntroPathFound(t *testing.T) {
	store := &fakeGraphStore{path: &graph.IntroPath{Path: []string{"P1", "P2", "P4"}, Hops: 2}}
	a := newTestAPI(store, &fakeRanker{}, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodGet, "/intro-path?src=P1&dst=P4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":["P1","P2","P4"],"hops":2}`, rec.Body.String())
}

func TestRankGroupsByCommunity(t *testing.T) {
	store := &fakeGraphStore{bridge: map[string]graph.BridgeInfo{
		"P2": {Community: 1, BridgePotential: 2.0},
		"P3": {Community: 1, BridgePotential: 0.5},
	}}
	vec := &stubVector{matches: []vector.Match{
		{ID: "P2", Score: 0.5},
		{ID: "P3", Score: 0.9},
	}}
	a := newTestAPI(store, &fakeRanker{}, &fakeBuilder{}, &fakeMetrics{}, vec)
	rec := doRequest(t, a, http.MethodPost, "/rank", map[string]any{"query": "python"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		People []struct {
			PersonID    string  `json:"person_id"`
			BridgeScore float64 `json:"bridgeScore"`
		} `json:"people"`
		Communities map[string][]json.RawMessage `json:"communities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.People, 2)
	// P2: 0.5*2.0 = 1.0 beats P3: 0.9*0.5 = 0.45
	assert.Equal(t, "P2", resp.People[0].PersonID)
	assert.Len(t, resp.Communities["1"], 2)
}

func TestClusters(t *testing.T) {
	a := newTestAPI(&fakeGraphStore{}, &fakeRanker{}, &fakeBuilder{}, &fakeMetrics{}, &stubVector{})
	rec := doRequest(t, a, http.MethodGet, "/clusters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []graph.TitleCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].TotalCount)
}
