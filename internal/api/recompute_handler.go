package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"bridgewise/internal/similarity"
)

type recomputeRequest struct {
	MinSharedSkills *int     `json:"min_shared_skills"`
	WeightMode      string   `json:"weight_mode"`
	BoostCompany    *float64 `json:"boost_company"`
	BoostSchool     *float64 `json:"boost_school"`
	Exclude         []string `json:"exclude"`
	MaxIter         *int     `json:"max_iter"`
	EmbedTopK       int      `json:"embed_top_k"`
	EmbedScale      *float64 `json:"embed_scale"`
}

// RecomputeHandler rebuilds both similarity layers and their metrics.
// Runs are serialized; a second request waits for the first
// @Summary Rebuild similarity layers and metrics
// @Accept json
// @Produce json
// @Param request body recomputeRequest true "Recompute parameters"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /recompute [post]
func (a *API) RecomputeHandler(w http.ResponseWriter, r *http.Request) {
	var req recomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	minShared := 2
	if req.MinSharedSkills != nil {
		minShared = *req.MinSharedSkills
	}
	weightMode := req.WeightMode
	if weightMode == "" {
		weightMode = "count"
	}
	if weightMode != "count" && weightMode != "jaccard" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "weight_mode must be count or jaccard"})
		return
	}
	boostCompany := 1.0
	if req.BoostCompany != nil {
		boostCompany = *req.BoostCompany
	}
	boostSchool := 0.5
	if req.BoostSchool != nil {
		boostSchool = *req.BoostSchool
	}
	maxIter := 20
	if req.MaxIter != nil {
		maxIter = *req.MaxIter
	}
	embedScale := 1.0
	if req.EmbedScale != nil {
		embedScale = *req.EmbedScale
	}

	a.recomputeMu.Lock()
	defer a.recomputeMu.Unlock()

	ctx := r.Context()
	start := time.Now()

	params := similarity.Params{
		MinSharedSkills: minShared,
		WeightMode:      weightMode,
		BoostCompany:    boostCompany,
		BoostSchool:     boostSchool,
		ClearExisting:   true,
	}
	if err := a.builder.RebuildSimilar(ctx, params); err != nil {
		respondError(w, err)
		return
	}
	if err := a.builder.RebuildSimilarJob(ctx, 1.0); err != nil {
		respondError(w, err)
		return
	}
	if req.EmbedTopK > 0 {
		if err := a.builder.AugmentWithEmbeddingEdges(ctx, req.EmbedTopK, embedScale); err != nil {
			respondError(w, err)
			return
		}
	}
	if err := a.metrics.RunBoth(ctx, req.Exclude, maxIter); err != nil {
		respondError(w, err)
		return
	}

	a.ranker.Vocab().Invalidate()
	a.writeSnapshot(req, params, time.Since(start))

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeSnapshot records one recompute run as a JSON file when a snapshot
// directory is configured. Failures are logged, never fatal.
func (a *API) writeSnapshot(req recomputeRequest, params similarity.Params, took time.Duration) {
	if a.cfg.SnapshotDir == "" {
		return
	}
	snap := map[string]any{
		"id":          uuid.NewString(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"params":      params,
		"exclude":     req.Exclude,
		"embed_top_k": req.EmbedTopK,
		"duration_ms": took.Milliseconds(),
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Printf("[API] Snapshot marshal: %v", err)
		return
	}
	if err := os.MkdirAll(a.cfg.SnapshotDir, 0o755); err != nil {
		log.Printf("[API] Snapshot dir: %v", err)
		return
	}
	path := filepath.Join(a.cfg.SnapshotDir, "recompute-"+snap["id"].(string)+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		log.Printf("[API] Snapshot write: %v", err)
		return
	}
	log.Printf("[API] Recompute snapshot written to %s", path)
}
