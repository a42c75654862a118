package api

import (
	"net/http"
	"strconv"
)

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// ClustersHandler lists canonical job titles by frequency
// @Summary List job title clusters
// @Produce json
// @Success 200 {array} graph.TitleCount
// @Router /clusters [get]
func (a *API) ClustersHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := a.store.JobTitleCounts(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// ClusterSummaryHandler summarizes each skills-layer community
// @Summary Top skills and titles per community
// @Produce json
// @Param top_n query int false "Entries per community" default(5)
// @Success 200 {array} graph.ClusterSummary
// @Router /clusters/summary [get]
func (a *API) ClusterSummaryHandler(w http.ResponseWriter, r *http.Request) {
	topN := queryInt(r, "top_n", 5)
	rows, err := a.store.ClusterSummaries(r.Context(), topN)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// ClusterMembersHandler lists one community's members
// @Summary Community members
// @Produce json
// @Param cid path int true "Community id"
// @Param limit query int false "Maximum members" default(100)
// @Success 200 {array} graph.PersonCard
// @Failure 400 {object} map[string]string
// @Router /clusters/{cid} [get]
func (a *API) ClusterMembersHandler(w http.ResponseWriter, r *http.Request) {
	cid, err := strconv.ParseInt(r.PathValue("cid"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "community id must be an integer"})
		return
	}
	limit := queryInt(r, "limit", 100)
	rows, err := a.store.ClusterMembers(r.Context(), cid, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
