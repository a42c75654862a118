package rank

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"bridgewise/internal/graph"
	"bridgewise/internal/vector"
)

var (
	// ErrValidation marks bad caller input.
	ErrValidation = errors.New("rank: invalid input")
	// ErrEmbed marks embedding or vector-store failures during ranking.
	ErrEmbed = errors.New("rank: embedding failure")
)

// GraphReader is the slice of the graph store the ranker needs.
type GraphReader interface {
	Neighborhood(ctx context.Context, meID string) ([]graph.PersonFeatures, error)
	EgoNetwork(ctx context.Context, meID string) ([]string, [][2]string, error)
	KnowsEdgesAmong(ctx context.Context, ids []string) ([][2]string, error)
	PersonCards(ctx context.Context, ids []string) ([]graph.PersonCard, error)
}

// VectorQuerier answers similarity queries, normally the Pinecone client.
type VectorQuerier interface {
	QueryVector(ctx context.Context, vec []float64, topK int, includeMetadata bool) ([]vector.Match, error)
}

// Embedder turns the query text into a vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// Weights are the six scoring coefficients.
type Weights struct {
	Vec          float64 `json:"w_vec"`
	Skill        float64 `json:"w_skill"`
	Job          float64 `json:"w_job"`
	StructGlobal float64 `json:"w_struct_global"`
	StructEgo    float64 `json:"w_struct_ego"`
	Company      float64 `json:"w_company"`
}

// DefaultWeights returns the standard scoring mix.
func DefaultWeights() Weights {
	return Weights{Vec: 0.40, Skill: 0.18, Job: 0.14, StructGlobal: 0.14, StructEgo: 0.09, Company: 0.05}
}

// Params control one ranking call. RescaleTop <= 0 disables rescaling.
type Params struct {
	MeID         string
	Query        string
	TopK         int
	PineconeTopK int
	Prefilter    bool
	Weights      Weights
	RescaleTop   float64
}

// RankedPerson is one scored connection.
type RankedPerson struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Title      string             `json:"title"`
	Score      float64            `json:"score"`
	Components map[string]float64 `json:"components"`
}

// Ranker scores a person's first-degree connections against a query.
type Ranker struct {
	graph GraphReader
	vec   VectorQuerier
	embed Embedder
	vocab *Vocab
}

func NewRanker(g GraphReader, v VectorQuerier, e Embedder, vocab *Vocab) *Ranker {
	return &Ranker{graph: g, vec: v, embed: e, vocab: vocab}
}

// Vocab exposes the vocabulary cache so a recompute can invalidate it.
func (r *Ranker) Vocab() *Vocab { return r.vocab }

// Rank scores me's connections for one query.
func (r *Ranker) Rank(ctx context.Context, p Params) ([]RankedPerson, error) {
	if err := validate(p.MeID, p.Query); err != nil {
		return nil, err
	}
	if p.TopK <= 0 {
		return []RankedPerson{}, nil
	}
	rc, err := r.loadContext(ctx, p.MeID)
	if err != nil {
		return nil, err
	}
	return r.scoreQuery(ctx, rc, p)
}

// BatchResult pairs a query with its ranking.
type BatchResult struct {
	Query   string         `json:"query"`
	Results []RankedPerson `json:"results"`
}

// RankBatch runs the same ranking over several queries, reusing the
// neighborhood and ego reads.
func (r *Ranker) RankBatch(ctx context.Context, meID string, queries []string, base Params) ([]BatchResult, error) {
	if meID == "" {
		return nil, fmt.Errorf("%w: me_id is required", ErrValidation)
	}
	if len(queries) == 0 {
		return []BatchResult{}, nil
	}
	rc, err := r.loadContext(ctx, meID)
	if err != nil {
		return nil, err
	}
	out := make([]BatchResult, 0, len(queries))
	for _, q := range queries {
		p := base
		p.MeID = meID
		p.Query = q
		if err := validate(p.MeID, p.Query); err != nil {
			return nil, err
		}
		var results []RankedPerson
		if p.TopK > 0 {
			results, err = r.scoreQuery(ctx, rc, p)
			if err != nil {
				return nil, err
			}
		} else {
			results = []RankedPerson{}
		}
		out = append(out, BatchResult{Query: q, Results: results})
	}
	return out, nil
}

// Explanation reports parsed goals and the candidate pool without scoring.
type Explanation struct {
	Query           string   `json:"query"`
	GoalSkills      []string `json:"goal_skills"`
	GoalJobTokens   []string `json:"goal_job_tokens"`
	GoalCompanies   []string `json:"goal_companies"`
	CandidateCount  int      `json:"candidate_count"`
	CandidateSample []string `json:"candidate_sample"`
}

// Explain parses the query and reports the candidate set, no scoring.
func (r *Ranker) Explain(ctx context.Context, meID, query string, prefilter bool, sample int) (*Explanation, error) {
	if err := validate(meID, query); err != nil {
		return nil, err
	}
	skills, companies, err := r.vocab.Get(ctx)
	if err != nil {
		return nil, err
	}
	goals := ParseQuery(query, skills, companies)
	feats, err := r.graph.Neighborhood(ctx, meID)
	if err != nil {
		return nil, err
	}
	cands := applyPrefilter(feats, goals, prefilter)
	ids := make([]string, 0, len(cands))
	for _, f := range cands {
		ids = append(ids, f.ID)
	}
	sort.Strings(ids)
	if sample < 0 {
		sample = 0
	}
	if sample > len(ids) {
		sample = len(ids)
	}
	return &Explanation{
		Query:           query,
		GoalSkills:      goals.Skills,
		GoalJobTokens:   goals.JobTokens,
		GoalCompanies:   goals.Companies,
		CandidateCount:  len(ids),
		CandidateSample: ids[:sample],
	}, nil
}

// rankContext carries the per-me graph reads shared across queries.
type rankContext struct {
	feats      []graph.PersonFeatures
	egoMembers []string
	egoEdges   [][2]string
}

func (r *Ranker) loadContext(ctx context.Context, meID string) (*rankContext, error) {
	feats, err := r.graph.Neighborhood(ctx, meID)
	if err != nil {
		return nil, fmt.Errorf("load connections of %s: %w", meID, err)
	}
	members, edges, err := r.graph.EgoNetwork(ctx, meID)
	if err != nil {
		return nil, fmt.Errorf("load ego network of %s: %w", meID, err)
	}
	return &rankContext{feats: feats, egoMembers: members, egoEdges: edges}, nil
}

func (r *Ranker) scoreQuery(ctx context.Context, rc *rankContext, p Params) ([]RankedPerson, error) {
	skills, companies, err := r.vocab.Get(ctx)
	if err != nil {
		return nil, err
	}
	goals := ParseQuery(p.Query, skills, companies)

	cands := applyPrefilter(rc.feats, goals, p.Prefilter)
	if len(cands) == 0 {
		return []RankedPerson{}, nil
	}
	candIDs := make([]string, 0, len(cands))
	for _, f := range cands {
		candIDs = append(candIDs, f.ID)
	}

	vecSim, err := r.vectorSimilarity(ctx, p.Query, p.PineconeTopK, candIDs)
	if err != nil {
		return nil, err
	}

	structEgo := minmaxOnSubset(egoBridging(rc.egoMembers, rc.egoEdges), candIDs)

	bpRaw := make(map[string]float64, len(cands))
	for _, f := range cands {
		bpRaw[f.ID] = f.BPSkills + f.BPJob
	}
	structGlobal := minmaxOnSubset(bpRaw, candIDs)

	goalSkills := toSet(goals.Skills)
	goalJobs := toSet(goals.JobTokens)
	goalCompanies := toSet(goals.Companies)

	w := p.Weights
	scored := make([]RankedPerson, 0, len(cands))
	for _, f := range cands {
		comps := map[string]float64{
			"vec_sim":       round4(vecSim[f.ID]),
			"skill_match":   round4(jaccard(goalSkills, toSet(f.Skills))),
			"job_match":     round4(jaccard(goalJobs, expandJobTokens(f.JobTokens))),
			"struct_global": round4(structGlobal[f.ID]),
			"struct_ego":    round4(structEgo[f.ID]),
		}
		companyMatch := 0.0
		if len(goalCompanies) > 0 {
			companyMatch = jaccard(goalCompanies, toSet(f.Companies))
		}
		comps["company_match"] = round4(companyMatch)

		score := w.Vec*comps["vec_sim"] +
			w.Skill*comps["skill_match"] +
			w.Job*comps["job_match"] +
			w.StructGlobal*comps["struct_global"] +
			w.StructEgo*comps["struct_ego"] +
			w.Company*comps["company_match"]

		name := f.Name
		if name == "" {
			name = f.ID
		}
		scored = append(scored, RankedPerson{
			ID:         f.ID,
			Name:       name,
			Title:      f.Title,
			Score:      round6(score),
			Components: comps,
		})
	}

	if p.RescaleTop > 0 {
		var max float64
		for _, s := range scored {
			if s.Score > max {
				max = s.Score
			}
		}
		if max > 0 {
			for i := range scored {
				scored[i].Score = round6(scored[i].Score / max * p.RescaleTop)
			}
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if len(scored) > p.TopK {
		scored = scored[:p.TopK]
	}
	return scored, nil
}

// vectorSimilarity embeds the query and pulls raw matches, restricted to
// the candidate set. Candidates without a match score 0.
func (r *Ranker) vectorSimilarity(ctx context.Context, query string, topK int, candIDs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(candIDs))
	for _, id := range candIDs {
		out[id] = 0
	}
	if r.embed == nil || r.vec == nil {
		return out, nil
	}
	qvec, err := r.embed.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbed, err)
	}
	if topK <= 0 {
		topK = 1000
	}
	matches, err := r.vec.QueryVector(ctx, qvec, topK, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbed, err)
	}
	for _, m := range matches {
		if _, ok := out[m.ID]; ok {
			out[m.ID] = m.Score
		}
	}
	return out, nil
}

// applyPrefilter narrows candidates to those matching the parsed goals.
// Dimensions combine with OR, except job+company without skills which
// tightens to AND. With no goals at all everyone stays.
func applyPrefilter(feats []graph.PersonFeatures, goals Goals, enabled bool) []graph.PersonFeatures {
	useSkills := len(goals.Skills) > 0
	useJobs := len(goals.JobTokens) > 0
	useCompanies := len(goals.Companies) > 0
	if !enabled || (!useSkills && !useJobs && !useCompanies) {
		return feats
	}

	goalSkills := toSet(goals.Skills)
	goalJobs := toSet(goals.JobTokens)
	goalCompanies := toSet(goals.Companies)

	var out []graph.PersonFeatures
	for _, f := range feats {
		skillHit := useSkills && intersects(goalSkills, toSet(f.Skills))
		jobHit := useJobs && intersects(goalJobs, expandJobTokens(f.JobTokens))
		companyHit := useCompanies && intersects(goalCompanies, toSet(f.Companies))

		keep := skillHit || jobHit || companyHit
		if useJobs && useCompanies && !useSkills {
			keep = jobHit && companyHit
		}
		if keep {
			out = append(out, f)
		}
	}
	return out
}

func intersects(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

func validate(meID, query string) error {
	if strings.TrimSpace(meID) == "" {
		return fmt.Errorf("%w: me_id is required", ErrValidation)
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is empty", ErrValidation)
	}
	return nil
}

// GraphNode is one node of the ranked-subgraph response.
type GraphNode struct {
	graph.PersonCard
	Score float64 `json:"score"`
	IsMe  bool    `json:"isMe"`
}

// GraphLink is one KNOWS edge of the ranked-subgraph response.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphView is the ranked subgraph around me. Fallback is set when
// embedding failed and the plain ego network was returned instead.
type GraphView struct {
	Nodes    []GraphNode `json:"nodes"`
	Links    []GraphLink `json:"links"`
	Fallback bool        `json:"fallback,omitempty"`
	Error    string      `json:"error,omitempty"`
}

const fallbackNeighborCap = 50

// Graph ranks and returns the {me} + top results subgraph with KNOWS
// links. Embedding failures degrade to the raw ego network rather than
// erroring.
func (r *Ranker) Graph(ctx context.Context, p Params) (*GraphView, error) {
	ranked, err := r.Rank(ctx, p)
	if err != nil {
		if errors.Is(err, ErrEmbed) {
			log.Printf("[Rank] Graph view degrading to ego fallback for %s: %v", p.MeID, err)
			return r.fallbackGraph(ctx, p.MeID, err)
		}
		return nil, err
	}

	ids := []string{p.MeID}
	scores := map[string]float64{p.MeID: 1.0}
	for _, rp := range ranked {
		ids = append(ids, rp.ID)
		scores[rp.ID] = rp.Score
	}
	return r.buildGraph(ctx, p.MeID, ids, scores, false, "")
}

func (r *Ranker) fallbackGraph(ctx context.Context, meID string, cause error) (*GraphView, error) {
	members, _, err := r.graph.EgoNetwork(ctx, meID)
	if err != nil {
		return nil, err
	}
	if len(members) > fallbackNeighborCap {
		members = members[:fallbackNeighborCap]
	}
	ids := append([]string{meID}, members...)
	scores := map[string]float64{meID: 1.0}
	return r.buildGraph(ctx, meID, ids, scores, true, fmt.Sprintf("embed_fail: %v", cause))
}

func (r *Ranker) buildGraph(ctx context.Context, meID string, ids []string, scores map[string]float64, fallback bool, errNote string) (*GraphView, error) {
	cards, err := r.graph.PersonCards(ctx, ids)
	if err != nil {
		return nil, err
	}
	edges, err := r.graph.KnowsEdgesAmong(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &GraphView{Fallback: fallback, Error: errNote}
	for _, c := range cards {
		view.Nodes = append(view.Nodes, GraphNode{
			PersonCard: c,
			Score:      scores[c.ID],
			IsMe:       c.ID == meID,
		})
	}
	for _, e := range edges {
		view.Links = append(view.Links, GraphLink{Source: e[0], Target: e[1]})
	}
	return view, nil
}
