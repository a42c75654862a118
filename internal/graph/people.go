package graph

import (
	"context"
	"strings"
)

// PersonFeatures is what the ranker needs per candidate. Everything is
// lowercased on the way out so scoring never re-normalizes.
type PersonFeatures struct {
	ID        string
	Name      string
	Title     string
	Skills    []string
	JobTokens []string
	BPSkills  float64
	BPJob     float64
	Companies []string
}

// PersonCard is the node payload for graph-shaped responses.
type PersonCard struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Skills          []string `json:"skills"`
	BridgePotential float64  `json:"bridgePotential"`
}

// AllSkills returns the distinct lowercase skills vocabulary.
func (s *Store) AllSkills(ctx context.Context) ([]string, error) {
	rows, err := s.Query(ctx, `
		MATCH (p:Person) UNWIND coalesce(p.skills, []) AS sk
		WITH toLower(trim(sk)) AS sk
		WHERE sk <> ''
		RETURN collect(DISTINCT sk) AS allSkills`, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return asStrings(rows[0]["allSkills"]), nil
}

// AllCompanies returns the distinct lowercase company vocabulary, from
// Company nodes when the label exists plus the scalar company property.
func (s *Store) AllCompanies(ctx context.Context) ([]string, error) {
	s.detectSchema(ctx)
	cypher := `
		MATCH (p:Person)
		WITH collect(DISTINCT toLower(trim(coalesce(p.company, '')))) AS fromScalar
		RETURN [x IN fromScalar WHERE x <> ''] AS allCompanies`
	if s.hasCompany {
		cypher = `
		MATCH (p:Person)
		WITH collect(DISTINCT toLower(trim(coalesce(p.company, '')))) AS fromScalar
		OPTIONAL MATCH (c:Company)
		WITH fromScalar, collect(DISTINCT toLower(trim(c.name))) AS fromNodes
		RETURN [x IN fromScalar + fromNodes WHERE x IS NOT NULL AND x <> ''] AS allCompanies`
	}
	rows, err := s.Query(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	seen := map[string]bool{}
	var out []string
	for _, c := range asStrings(rows[0]["allCompanies"]) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// Neighborhood returns features for every person connected to me via KNOWS.
func (s *Store) Neighborhood(ctx context.Context, meID string) ([]PersonFeatures, error) {
	s.detectSchema(ctx)
	companyPart := `WITH p, [] AS workedAt`
	if s.hasCompany {
		companyPart = `
		OPTIONAL MATCH (p)-[:WORKED_AT]->(c:Company)
		WITH p, collect(DISTINCT c.name) AS workedAt`
	}
	rows, err := s.Query(ctx, `
		MATCH (me:Person {id: $meId})-[:KNOWS]-(p:Person)
		WITH DISTINCT p
		`+companyPart+`
		RETURN p.id AS id,
		       coalesce(p.name, p.full_name, p.id) AS name,
		       coalesce(p.jobTitleCanon, p.title, '') AS title,
		       [x IN coalesce(p.skills, []) WHERE x IS NOT NULL] AS skills,
		       CASE WHEN size(coalesce(p.jobTitleCanonTokens, [])) > 0
		            THEN p.jobTitleCanonTokens
		            ELSE coalesce(p.jobTitleTokens, []) END AS jobTokens,
		       coalesce(p.bridgePotentialSkills, 0.0) AS bpSkills,
		       coalesce(p.bridgePotentialJob, 0.0) AS bpJob,
		       coalesce(p.company, '') AS company,
		       workedAt`,
		map[string]any{"meId": meID})
	if err != nil {
		return nil, err
	}

	out := make([]PersonFeatures, 0, len(rows))
	for _, r := range rows {
		f := PersonFeatures{
			ID:       asString(r["id"]),
			Name:     asString(r["name"]),
			Title:    asString(r["title"]),
			BPSkills: asFloat(r["bpSkills"]),
			BPJob:    asFloat(r["bpJob"]),
		}
		for _, sk := range asStrings(r["skills"]) {
			f.Skills = append(f.Skills, strings.ToLower(strings.TrimSpace(sk)))
		}
		for _, t := range asStrings(r["jobTokens"]) {
			f.JobTokens = append(f.JobTokens, strings.ToLower(t))
		}
		companies := map[string]bool{}
		if c := strings.ToLower(strings.TrimSpace(asString(r["company"]))); c != "" {
			companies[c] = true
		}
		for _, c := range asStrings(r["workedAt"]) {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				companies[c] = true
			}
		}
		for c := range companies {
			f.Companies = append(f.Companies, c)
		}
		out = append(out, f)
	}
	return out, nil
}

// EgoNetwork returns my direct KNOWS neighbours and the KNOWS edges that
// exist between them (me itself excluded). Read-only; used for per-query
// ego bridging.
func (s *Store) EgoNetwork(ctx context.Context, meID string) (members []string, edges [][2]string, err error) {
	rows, err := s.Query(ctx, `
		MATCH (me:Person {id: $meId})-[:KNOWS]-(x:Person)
		RETURN collect(DISTINCT x.id) AS ego`,
		map[string]any{"meId": meID})
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	members = asStrings(rows[0]["ego"])
	if len(members) == 0 {
		return nil, nil, nil
	}

	edgeRows, err := s.Query(ctx, `
		MATCH (a:Person)-[:KNOWS]-(b:Person)
		WHERE a.id IN $ego AND b.id IN $ego AND a.id < b.id
		RETURN DISTINCT a.id AS a, b.id AS b`,
		map[string]any{"ego": members})
	if err != nil {
		return nil, nil, err
	}
	for _, r := range edgeRows {
		edges = append(edges, [2]string{asString(r["a"]), asString(r["b"])})
	}
	return members, edges, nil
}

// KnowsEdgesAmong returns the KNOWS edges between the given ids, in
// canonical a<b orientation. Duplicate stored edges collapse via DISTINCT.
func (s *Store) KnowsEdgesAmong(ctx context.Context, ids []string) ([][2]string, error) {
	if len(ids) < 2 {
		return nil, nil
	}
	rows, err := s.Query(ctx, `
		MATCH (p1:Person)-[:KNOWS]-(p2:Person)
		WHERE p1.id IN $ids AND p2.id IN $ids AND p1.id < p2.id
		RETURN DISTINCT p1.id AS source, p2.id AS target`,
		map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	out := make([][2]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, [2]string{asString(r["source"]), asString(r["target"])})
	}
	return out, nil
}

// PersonCards loads display info for a set of ids.
func (s *Store) PersonCards(ctx context.Context, ids []string) ([]PersonCard, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.Query(ctx, `
		UNWIND $ids AS pid
		MATCH (p:Person {id: pid})
		RETURN p.id AS id,
		       coalesce(p.name, p.full_name, p.id) AS name,
		       coalesce(p.title, p.jobTitleCanon, '') AS title,
		       coalesce(p.company, '') AS company,
		       [x IN coalesce(p.skills, []) WHERE x IS NOT NULL] AS skills,
		       coalesce(p.bridgePotentialSkills, 0.0) + coalesce(p.bridgePotentialJob, 0.0) AS bridgePotential`,
		map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	out := make([]PersonCard, 0, len(rows))
	for _, r := range rows {
		out = append(out, PersonCard{
			ID:              asString(r["id"]),
			Name:            asString(r["name"]),
			Title:           asString(r["title"]),
			Company:         asString(r["company"]),
			Skills:          asStrings(r["skills"]),
			BridgePotential: asFloat(r["bridgePotential"]),
		})
	}
	return out, nil
}

// PersonSummary surfaces one person with community and bridge potential
// per layer. Returns ErrNotFound for unknown ids.
type PersonSummary struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Title                 string  `json:"title"`
	CommunitySkills       int64   `json:"communitySkills"`
	CommunityJob          int64   `json:"communityJob"`
	BridgePotentialSkills float64 `json:"bridgePotentialSkills"`
	BridgePotentialJob    float64 `json:"bridgePotentialJob"`
}

func (s *Store) GetPerson(ctx context.Context, pid string) (*PersonSummary, error) {
	rows, err := s.Query(ctx, `
		MATCH (p:Person {id: $id})
		RETURN p.id AS id,
		       coalesce(p.name, p.full_name, p.id) AS name,
		       coalesce(p.title, p.jobTitleCanon, '') AS title,
		       coalesce(p.communitySkills, -1) AS communitySkills,
		       coalesce(p.communityJob, -1) AS communityJob,
		       coalesce(p.bridgePotentialSkills, 0.0) AS bpSkills,
		       coalesce(p.bridgePotentialJob, 0.0) AS bpJob`,
		map[string]any{"id": pid})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	r := rows[0]
	return &PersonSummary{
		ID:                    asString(r["id"]),
		Name:                  asString(r["name"]),
		Title:                 asString(r["title"]),
		CommunitySkills:       asInt(r["communitySkills"]),
		CommunityJob:          asInt(r["communityJob"]),
		BridgePotentialSkills: asFloat(r["bpSkills"]),
		BridgePotentialJob:    asFloat(r["bpJob"]),
	}, nil
}

// BridgeInfo returns community and summed bridge potential for a set of
// ids, for the whole-graph /rank endpoint.
type BridgeInfo struct {
	Community       int64
	BridgePotential float64
}

func (s *Store) BridgeInfoByIDs(ctx context.Context, ids []string) (map[string]BridgeInfo, error) {
	if len(ids) == 0 {
		return map[string]BridgeInfo{}, nil
	}
	rows, err := s.Query(ctx, `
		UNWIND $ids AS pid
		MATCH (p:Person {id: pid})
		RETURN p.id AS id,
		       coalesce(p.communitySkills, -1) AS community,
		       coalesce(p.bridgePotentialSkills, 0.0) + coalesce(p.bridgePotentialJob, 0.0) AS bridgePotential`,
		map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	out := make(map[string]BridgeInfo, len(rows))
	for _, r := range rows {
		out[asString(r["id"])] = BridgeInfo{
			Community:       asInt(r["community"]),
			BridgePotential: asFloat(r["bridgePotential"]),
		}
	}
	return out, nil
}
