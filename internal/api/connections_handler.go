package api

import (
	"encoding/json"
	"net/http"

	"bridgewise/internal/rank"
)

type rankConnectionsRequest struct {
	MeID         string   `json:"me_id"`
	Query        string   `json:"query"`
	TopK         *int     `json:"top_k"`
	PineconeTopK *int     `json:"pinecone_top_k"`
	Prefilter    *bool    `json:"prefilter"`
	WVec         *float64 `json:"w_vec"`
	WSkill       *float64 `json:"w_skill"`
	WJob         *float64 `json:"w_job"`
	WStructGlob  *float64 `json:"w_struct_global"`
	WStructEgo   *float64 `json:"w_struct_ego"`
	WCompany     *float64 `json:"w_company"`
	RescaleTop   *float64 `json:"rescale_top"`
	Debug        bool     `json:"debug"`
}

// toParams applies the request over the engine defaults. Weight overrides
// come from config so env can retune the defaults.
func (req *rankConnectionsRequest) toParams(defaults rank.Weights, topK, pineconeTopK int) rank.Params {
	p := rank.Params{
		MeID:         req.MeID,
		Query:        req.Query,
		TopK:         topK,
		PineconeTopK: pineconeTopK,
		Prefilter:    true,
		Weights:      defaults,
		RescaleTop:   0.8,
	}
	if req.TopK != nil {
		p.TopK = *req.TopK
	}
	if req.PineconeTopK != nil {
		p.PineconeTopK = *req.PineconeTopK
	}
	if req.Prefilter != nil {
		p.Prefilter = *req.Prefilter
	}
	if req.WVec != nil {
		p.Weights.Vec = *req.WVec
	}
	if req.WSkill != nil {
		p.Weights.Skill = *req.WSkill
	}
	if req.WJob != nil {
		p.Weights.Job = *req.WJob
	}
	if req.WStructGlob != nil {
		p.Weights.StructGlobal = *req.WStructGlob
	}
	if req.WStructEgo != nil {
		p.Weights.StructEgo = *req.WStructEgo
	}
	if req.WCompany != nil {
		p.Weights.Company = *req.WCompany
	}
	if req.RescaleTop != nil {
		p.RescaleTop = *req.RescaleTop
	}
	return p
}

func (a *API) defaultWeights() rank.Weights {
	return rank.Weights{
		Vec:          a.cfg.WVec,
		Skill:        a.cfg.WSkill,
		Job:          a.cfg.WJob,
		StructGlobal: a.cfg.WStructGlobal,
		StructEgo:    a.cfg.WStructEgo,
		Company:      a.cfg.WCompany,
	}
}

// RankConnectionsHandler ranks me's first-degree connections for a query
// @Summary Rank my connections
// @Accept json
// @Produce json
// @Param request body rankConnectionsRequest true "Ranking request"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /rank-connections [post]
func (a *API) RankConnectionsHandler(w http.ResponseWriter, r *http.Request) {
	var req rankConnectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	p := req.toParams(a.defaultWeights(), 20, 1000)

	results, err := a.ranker.Rank(r.Context(), p)
	if err != nil {
		respondError(w, err)
		return
	}
	out := map[string]any{"results": results}
	if req.Debug {
		exp, err := a.ranker.Explain(r.Context(), req.MeID, req.Query, p.Prefilter, 0)
		if err == nil {
			out["debug"] = map[string]any{
				"goal_skills":     exp.GoalSkills,
				"goal_job_tokens": exp.GoalJobTokens,
				"goal_companies":  exp.GoalCompanies,
				"candidate_count": exp.CandidateCount,
			}
		}
	}
	respondJSON(w, http.StatusOK, out)
}

type rankConnectionsBatchRequest struct {
	rankConnectionsRequest
	Queries []string `json:"queries"`
}

// RankConnectionsBatchHandler ranks several queries in one call
// @Summary Rank my connections for several queries
// @Accept json
// @Produce json
// @Param request body rankConnectionsBatchRequest true "Batch ranking request"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /rank-connections/batch [post]
func (a *API) RankConnectionsBatchHandler(w http.ResponseWriter, r *http.Request) {
	var req rankConnectionsBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.Queries) == 0 {
		respondJSON(w, http.StatusOK, map[string]any{"results": []rank.BatchResult{}})
		return
	}
	p := req.toParams(a.defaultWeights(), 10, 500)

	results, err := a.ranker.RankBatch(r.Context(), req.MeID, req.Queries, p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

type rankConnectionsExplainRequest struct {
	MeID      string `json:"me_id"`
	Query     string `json:"query"`
	Prefilter *bool  `json:"prefilter"`
	Sample    *int   `json:"sample"`
}

// RankConnectionsExplainHandler reports parsed goals and candidates
// @Summary Explain a connection ranking
// @Accept json
// @Produce json
// @Param request body rankConnectionsExplainRequest true "Explain request"
// @Success 200 {object} rank.Explanation
// @Failure 400 {object} map[string]string
// @Router /rank-connections/explain [post]
func (a *API) RankConnectionsExplainHandler(w http.ResponseWriter, r *http.Request) {
	var req rankConnectionsExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	prefilter := true
	if req.Prefilter != nil {
		prefilter = *req.Prefilter
	}
	sample := 10
	if req.Sample != nil {
		sample = *req.Sample
	}
	exp, err := a.ranker.Explain(r.Context(), req.MeID, req.Query, prefilter, sample)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, exp)
}

// RankConnectionsGraphHandler returns the ranked subgraph around me.
// Embedding failures degrade to the plain ego network with fallback=true
// instead of an error status
// @Summary Ranked connections subgraph
// @Accept json
// @Produce json
// @Param request body rankConnectionsRequest true "Ranking request"
// @Success 200 {object} rank.GraphView
// @Failure 400 {object} map[string]string
// @Router /rank-connections/graph [post]
func (a *API) RankConnectionsGraphHandler(w http.ResponseWriter, r *http.Request) {
	var req rankConnectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	p := req.toParams(a.defaultWeights(), 20, 1000)

	view, err := a.ranker.Graph(r.Context(), p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
