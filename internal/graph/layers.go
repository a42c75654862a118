package graph

import (
	"context"
	"fmt"
)

// LayerEdge is a weighted similarity edge in canonical a<b orientation.
type LayerEdge struct {
	A      string
	B      string
	Weight float64
}

// MetricRow carries per-person metrics for one layer, written in a single
// transaction so readers never observe a half-updated layer.
type MetricRow struct {
	ID              string
	Community       int64
	Betweenness     float64
	BridgeCoeff     float64
	BridgePotential float64
	Degree          int64
}

// LayerProps names the persisted properties of one similarity layer.
type LayerProps struct {
	RelType         string
	Community       string
	Betweenness     string
	Degree          string
	BridgeCoeff     string
	BridgePotential string
}

var (
	SkillsLayer = LayerProps{
		RelType:         "SIMILAR",
		Community:       "communitySkills",
		Betweenness:     "betweennessSkills",
		Degree:          "similarDegreeSkills",
		BridgeCoeff:     "bridgeCoeffSkills",
		BridgePotential: "bridgePotentialSkills",
	}
	JobLayer = LayerProps{
		RelType:         "SIMILAR_JOB",
		Community:       "communityJob",
		Betweenness:     "betweennessJob",
		Degree:          "similarDegreeJob",
		BridgeCoeff:     "bridgeCoeffJob",
		BridgePotential: "bridgePotentialJob",
	}
)

// EnsureIndexes creates the id index the merge queries depend on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return s.Write(ctx,
		`CREATE INDEX person_id IF NOT EXISTS FOR (p:Person) ON (p.id)`, nil)
}

// BuildValueEdges materializes Company and School nodes from scalar
// person properties so overlap boosts can traverse them. MERGE keeps the
// step idempotent across recomputes.
func (s *Store) BuildValueEdges(ctx context.Context) error {
	return s.WriteTx(ctx,
		Statement{Cypher: `
			MATCH (p:Person)
			UNWIND [x IN [p.company, p.previousCompany] WHERE x IS NOT NULL AND trim(x) <> ''] AS name
			MERGE (c:Company {name: name})
			MERGE (p)-[:WORKED_AT]->(c)`},
		Statement{Cypher: `
			MATCH (p:Person)
			UNWIND [x IN [p.school, p.previousSchool] WHERE x IS NOT NULL AND trim(x) <> ''] AS name
			MERGE (u:School {name: name})
			MERGE (p)-[:ATTENDED]->(u)`},
	)
}

// ClearSimilar drops every SIMILAR edge before a rebuild.
func (s *Store) ClearSimilar(ctx context.Context) error {
	return s.Write(ctx, `MATCH ()-[r:SIMILAR]-() DELETE r`, nil)
}

// MergeSimilarByCount builds SIMILAR edges weighted by shared-skill count.
func (s *Store) MergeSimilarByCount(ctx context.Context, minShared int) error {
	return s.Write(ctx, `
		MATCH (p1:Person)-[:HAS_SKILL]->(s:Skill)<-[:HAS_SKILL]-(p2:Person)
		WHERE p1.id < p2.id
		WITH p1, p2, count(s) AS shared
		WHERE shared >= $minShared
		MERGE (p1)-[r:SIMILAR]->(p2)
		SET r.weight = toFloat(shared), r.sharedSkills = shared`,
		map[string]any{"minShared": minShared})
}

// MergeSimilarByJaccard builds SIMILAR edges weighted by skill Jaccard.
// Union size is computed in plain Cypher so no APOC is required.
func (s *Store) MergeSimilarByJaccard(ctx context.Context, minShared int) error {
	return s.Write(ctx, `
		MATCH (p1:Person)-[:HAS_SKILL]->(s:Skill)<-[:HAS_SKILL]-(p2:Person)
		WHERE p1.id < p2.id
		WITH p1, p2, count(s) AS shared
		WHERE shared >= $minShared
		MATCH (p1)-[:HAS_SKILL]->(s1:Skill)
		WITH p1, p2, shared, collect(DISTINCT s1.name) AS s1Skills
		MATCH (p2)-[:HAS_SKILL]->(s2:Skill)
		WITH p1, p2, shared, s1Skills, collect(DISTINCT s2.name) AS s2Skills
		WITH p1, p2, shared,
		     size(s1Skills) AS a,
		     size(s2Skills) AS b,
		     size([x IN s1Skills WHERE x IN s2Skills]) AS inter
		WITH p1, p2, shared, (a + b - inter) AS unionSize
		WITH p1, p2, shared,
		     CASE WHEN unionSize = 0 THEN 0.0 ELSE toFloat(shared)/unionSize END AS jaccard
		MERGE (p1)-[r:SIMILAR]->(p2)
		SET r.weight = jaccard, r.sharedSkills = shared, r.jaccard = jaccard`,
		map[string]any{"minShared": minShared})
}

// BoostCompanyOverlap adds a flat boost to SIMILAR weight for pairs with a
// shared employer, creating the edge if absent.
func (s *Store) BoostCompanyOverlap(ctx context.Context, boost float64) error {
	return s.Write(ctx, `
		MATCH (p1:Person)-[:WORKED_AT]->(c:Company)<-[:WORKED_AT]-(p2:Person)
		WHERE p1.id < p2.id
		MERGE (p1)-[r:SIMILAR]->(p2)
		SET r.weight = coalesce(r.weight, 0) + $b`,
		map[string]any{"b": boost})
}

// BoostSchoolOverlap adds a flat boost for a shared school.
func (s *Store) BoostSchoolOverlap(ctx context.Context, boost float64) error {
	return s.Write(ctx, `
		MATCH (p1:Person)-[:ATTENDED]->(u:School)<-[:ATTENDED]-(p2:Person)
		WHERE p1.id < p2.id
		MERGE (p1)-[r:SIMILAR]->(p2)
		SET r.weight = coalesce(r.weight, 0) + $b`,
		map[string]any{"b": boost})
}

// AddSimilarWeights merges pre-oriented a<b edges into the SIMILAR layer,
// summing into existing weights. Used by the embedding kNN augmentation.
func (s *Store) AddSimilarWeights(ctx context.Context, edges []LayerEdge) error {
	if len(edges) == 0 {
		return nil
	}
	payload := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		payload = append(payload, map[string]any{"a": e.A, "b": e.B, "w": e.Weight})
	}
	return s.Write(ctx, `
		UNWIND $edges AS e
		MATCH (p1:Person {id: e.a}), (p2:Person {id: e.b})
		MERGE (p1)-[r:SIMILAR]->(p2)
		SET r.weight = coalesce(r.weight, 0) + e.w`,
		map[string]any{"edges": payload})
}

// ClearSimilarJob drops every SIMILAR_JOB edge before a rebuild.
func (s *Store) ClearSimilarJob(ctx context.Context) error {
	return s.Write(ctx, `MATCH ()-[r:SIMILAR_JOB]-() DELETE r`, nil)
}

// MergeSimilarJob connects people sharing a non-empty canonical job title.
func (s *Store) MergeSimilarJob(ctx context.Context, weight float64) error {
	return s.Write(ctx, `
		MATCH (p1:Person), (p2:Person)
		WHERE p1.jobTitleCanon IS NOT NULL AND trim(p1.jobTitleCanon) <> ''
		  AND p2.jobTitleCanon = p1.jobTitleCanon
		  AND p1.id < p2.id
		MERGE (p1)-[r:SIMILAR_JOB]->(p2)
		SET r.weight = $w`,
		map[string]any{"w": weight})
}

// PersonIDs lists every person id, for layer projection and kNN sweeps.
func (s *Store) PersonIDs(ctx context.Context) ([]string, error) {
	rows, err := s.Query(ctx, `MATCH (p:Person) RETURN p.id AS id`, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, asString(r["id"]))
	}
	return out, nil
}

// LayerEdges returns the weighted edges of one similarity layer in
// canonical orientation, for in-memory projection.
func (s *Store) LayerEdges(ctx context.Context, relType string) ([]LayerEdge, error) {
	if relType != SkillsLayer.RelType && relType != JobLayer.RelType {
		return nil, fmt.Errorf("graph: unknown layer %q", relType)
	}
	rows, err := s.Query(ctx, fmt.Sprintf(`
		MATCH (p1:Person)-[r:%s]-(p2:Person)
		WHERE p1.id < p2.id
		RETURN DISTINCT p1.id AS a, p2.id AS b, coalesce(r.weight, 1.0) AS w`,
		relType), nil)
	if err != nil {
		return nil, err
	}
	out := make([]LayerEdge, 0, len(rows))
	for _, r := range rows {
		out = append(out, LayerEdge{
			A:      asString(r["a"]),
			B:      asString(r["b"]),
			Weight: asFloat(r["w"]),
		})
	}
	return out, nil
}

// WriteLayerMetrics persists one layer's metrics in a single transaction.
func (s *Store) WriteLayerMetrics(ctx context.Context, layer LayerProps, rows []MetricRow) error {
	if len(rows) == 0 {
		return nil
	}
	payload := make([]map[string]any, 0, len(rows))
	for _, m := range rows {
		payload = append(payload, map[string]any{
			"id":              m.ID,
			"community":       m.Community,
			"betweenness":     m.Betweenness,
			"bridgeCoeff":     m.BridgeCoeff,
			"bridgePotential": m.BridgePotential,
			"degree":          m.Degree,
		})
	}
	stmt := Statement{
		Cypher: fmt.Sprintf(`
			UNWIND $rows AS rec
			MATCH (p:Person {id: rec.id})
			SET p.%s = rec.community,
			    p.%s = rec.betweenness,
			    p.%s = rec.bridgeCoeff,
			    p.%s = rec.bridgePotential,
			    p.%s = rec.degree`,
			layer.Community, layer.Betweenness, layer.BridgeCoeff,
			layer.BridgePotential, layer.Degree),
		Params: map[string]any{"rows": payload},
	}
	return s.WriteTx(ctx, stmt)
}
