package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"bridgewise/internal/config"
	"bridgewise/internal/graph"
	"bridgewise/internal/rank"
	"bridgewise/internal/similarity"
	"bridgewise/internal/vector"
)

// GraphStore is the slice of the graph adapter the handlers read from.
type GraphStore interface {
	GetPerson(ctx context.Context, pid string) (*graph.PersonSummary, error)
	JobTitleCounts(ctx context.Context) ([]graph.TitleCount, error)
	ClusterSummaries(ctx context.Context, topN int) ([]graph.ClusterSummary, error)
	ClusterMembers(ctx context.Context, community int64, limit int) ([]graph.PersonCard, error)
	ShortestKnowsPath(ctx context.Context, src, dst string, maxDepth int) (*graph.IntroPath, error)
	BridgeInfoByIDs(ctx context.Context, ids []string) (map[string]graph.BridgeInfo, error)
}

// ConnectionRanker is the ranking engine behind the rank-connections
// endpoints.
type ConnectionRanker interface {
	Rank(ctx context.Context, p rank.Params) ([]rank.RankedPerson, error)
	RankBatch(ctx context.Context, meID string, queries []string, base rank.Params) ([]rank.BatchResult, error)
	Explain(ctx context.Context, meID, query string, prefilter bool, sample int) (*rank.Explanation, error)
	Graph(ctx context.Context, p rank.Params) (*rank.GraphView, error)
	Vocab() *rank.Vocab
}

// LayerBuilder rebuilds the similarity layers during a recompute.
type LayerBuilder interface {
	RebuildSimilar(ctx context.Context, p similarity.Params) error
	RebuildSimilarJob(ctx context.Context, weight float64) error
	AugmentWithEmbeddingEdges(ctx context.Context, topK int, scale float64) error
}

// MetricsRunner recomputes both layers' graph metrics.
type MetricsRunner interface {
	RunBoth(ctx context.Context, excludeIDs []string, maxIter int) error
}

// VectorSearcher answers whole-graph similarity queries for /rank.
type VectorSearcher interface {
	QueryVector(ctx context.Context, vec []float64, topK int, includeMetadata bool) ([]vector.Match, error)
}

// QueryEmbedder embeds query text for /rank.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// API wires the handlers to the engine components.
type API struct {
	cfg     *config.Config
	store   GraphStore
	ranker  ConnectionRanker
	builder LayerBuilder
	metrics MetricsRunner
	vec     VectorSearcher
	embed   QueryEmbedder

	recomputeMu sync.Mutex
}

func NewAPI(cfg *config.Config, store GraphStore, ranker ConnectionRanker, builder LayerBuilder, metrics MetricsRunner, vec VectorSearcher, embed QueryEmbedder) *API {
	return &API{
		cfg:     cfg,
		store:   store,
		ranker:  ranker,
		builder: builder,
		metrics: metrics,
		vec:     vec,
		embed:   embed,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Encode response: %v", err)
	}
}

// respondError maps domain errors to status codes and emits {"error": msg}.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, graph.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, graph.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, rank.ErrValidation):
		status = http.StatusBadRequest
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// HealthHandler reports liveness
// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PersonHandler surfaces one person with community and bridge metrics
// @Summary Get a person
// @Produce json
// @Param pid path string true "Person id"
// @Success 200 {object} graph.PersonSummary
// @Failure 404 {object} map[string]string
// @Router /person/{pid} [get]
func (a *API) PersonHandler(w http.ResponseWriter, r *http.Request) {
	pid := r.PathValue("pid")
	if pid == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing person id"})
		return
	}
	p, err := a.store.GetPerson(r.Context(), pid)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// IntroPathHandler finds a shortest KNOWS chain between two people
// @Summary Shortest intro path
// @Produce json
// @Param src query string true "Source person id"
// @Param dst query string true "Destination person id"
// @Param max_depth query int false "Maximum hops" default(4)
// @Success 200 {object} map[string]any
// @Router /intro-path [get]
func (a *API) IntroPathHandler(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	dst := r.URL.Query().Get("dst")
	if src == "" || dst == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "src and dst are required"})
		return
	}
	maxDepth := queryInt(r, "max_depth", 4)

	type pathResponse struct {
		Path []string `json:"path"`
		Hops *int64   `json:"hops"`
	}
	p, err := a.store.ShortestKnowsPath(r.Context(), src, dst, maxDepth)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			respondJSON(w, http.StatusOK, pathResponse{Path: []string{}})
			return
		}
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pathResponse{Path: p.Path, Hops: &p.Hops})
}
