package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
)

type rankRequest struct {
	Query   string   `json:"query"`
	TopK    int      `json:"top_k"`
	Exclude []string `json:"exclude"`
}

type rankedMatch struct {
	PersonID        string         `json:"person_id"`
	Similarity      float64        `json:"similarity"`
	Metadata        map[string]any `json:"metadata"`
	Community       int64          `json:"community"`
	BridgePotential float64        `json:"bridgePotential"`
	BridgeScore     float64        `json:"bridgeScore"`
}

type rankResponse struct {
	People      []rankedMatch            `json:"people"`
	Communities map[string][]rankedMatch `json:"communities"`
}

// RankHandler ranks the whole graph by vector similarity times bridge
// potential and groups the hits by community
// @Summary Whole-graph bridge rank
// @Accept json
// @Produce json
// @Param request body rankRequest true "Query"
// @Success 200 {object} rankResponse
// @Failure 400 {object} map[string]string
// @Router /rank [post]
func (a *API) RankHandler(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Query == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	if req.TopK <= 0 {
		req.TopK = 10
	}

	vec, err := a.embed.EmbedQuery(r.Context(), req.Query)
	if err != nil {
		respondError(w, err)
		return
	}
	matches, err := a.vec.QueryVector(r.Context(), vec, req.TopK, true)
	if err != nil {
		respondError(w, err)
		return
	}

	excluded := make(map[string]bool, len(req.Exclude))
	for _, id := range req.Exclude {
		excluded[id] = true
	}
	var people []rankedMatch
	var ids []string
	for _, m := range matches {
		if excluded[m.ID] {
			continue
		}
		people = append(people, rankedMatch{
			PersonID:   m.ID,
			Similarity: m.Score,
			Metadata:   m.Metadata,
		})
		ids = append(ids, m.ID)
	}
	if len(people) == 0 {
		respondJSON(w, http.StatusOK, rankResponse{People: []rankedMatch{}, Communities: map[string][]rankedMatch{}})
		return
	}

	info, err := a.store.BridgeInfoByIDs(r.Context(), ids)
	if err != nil {
		respondError(w, err)
		return
	}
	for i := range people {
		bi := info[people[i].PersonID]
		people[i].Community = bi.Community
		people[i].BridgePotential = bi.BridgePotential
		people[i].BridgeScore = people[i].Similarity * bi.BridgePotential
	}
	sort.Slice(people, func(i, j int) bool {
		return people[i].BridgeScore > people[j].BridgeScore
	})

	grouped := map[string][]rankedMatch{}
	for _, p := range people {
		key := strconv.FormatInt(p.Community, 10)
		grouped[key] = append(grouped[key], p)
	}
	respondJSON(w, http.StatusOK, rankResponse{People: people, Communities: grouped})
}
