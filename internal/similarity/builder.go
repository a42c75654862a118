package similarity

import (
	"context"
	"fmt"
	"log"
	"sort"

	"bridgewise/internal/graph"
	"bridgewise/internal/vector"
)

// GraphOps is the slice of the graph store the builder needs.
type GraphOps interface {
	BuildValueEdges(ctx context.Context) error
	ClearSimilar(ctx context.Context) error
	MergeSimilarByCount(ctx context.Context, minShared int) error
	MergeSimilarByJaccard(ctx context.Context, minShared int) error
	BoostCompanyOverlap(ctx context.Context, boost float64) error
	BoostSchoolOverlap(ctx context.Context, boost float64) error
	AddSimilarWeights(ctx context.Context, edges []graph.LayerEdge) error
	ClearSimilarJob(ctx context.Context) error
	MergeSimilarJob(ctx context.Context, weight float64) error
	PersonIDs(ctx context.Context) ([]string, error)
}

// KNN answers id-based nearest-neighbour queries, normally the Pinecone
// client.
type KNN interface {
	QueryID(ctx context.Context, id string, topK int) ([]vector.Match, error)
}

// Params control a SIMILAR rebuild.
type Params struct {
	MinSharedSkills int
	WeightMode      string // "count" or "jaccard"
	BoostCompany    float64
	BoostSchool     float64
	ClearExisting   bool
}

// Builder rebuilds the SIMILAR and SIMILAR_JOB layers.
type Builder struct {
	graph GraphOps
	knn   KNN
}

func NewBuilder(g GraphOps, knn KNN) *Builder {
	return &Builder{graph: g, knn: knn}
}

// RebuildSimilar reconstructs the skills layer: shared-skill base edges in
// the requested weight mode, then flat boosts for shared employers and
// schools.
func (b *Builder) RebuildSimilar(ctx context.Context, p Params) error {
	if p.WeightMode != "count" && p.WeightMode != "jaccard" {
		return fmt.Errorf("similarity: unknown weight mode %q", p.WeightMode)
	}
	if err := b.graph.BuildValueEdges(ctx); err != nil {
		return fmt.Errorf("build value edges: %w", err)
	}
	if p.ClearExisting {
		if err := b.graph.ClearSimilar(ctx); err != nil {
			return fmt.Errorf("clear SIMILAR: %w", err)
		}
	}
	var err error
	if p.WeightMode == "count" {
		err = b.graph.MergeSimilarByCount(ctx, p.MinSharedSkills)
	} else {
		err = b.graph.MergeSimilarByJaccard(ctx, p.MinSharedSkills)
	}
	if err != nil {
		return fmt.Errorf("build SIMILAR (%s): %w", p.WeightMode, err)
	}
	if p.BoostCompany > 0 {
		if err := b.graph.BoostCompanyOverlap(ctx, p.BoostCompany); err != nil {
			return fmt.Errorf("company boost: %w", err)
		}
	}
	if p.BoostSchool > 0 {
		if err := b.graph.BoostSchoolOverlap(ctx, p.BoostSchool); err != nil {
			return fmt.Errorf("school boost: %w", err)
		}
	}
	log.Printf("[Similarity] Rebuilt SIMILAR edges (mode=%s minShared=%d)", p.WeightMode, p.MinSharedSkills)
	return nil
}

// RebuildSimilarJob reconstructs the job layer from canonical job titles.
func (b *Builder) RebuildSimilarJob(ctx context.Context, weight float64) error {
	if err := b.graph.ClearSimilarJob(ctx); err != nil {
		return fmt.Errorf("clear SIMILAR_JOB: %w", err)
	}
	if err := b.graph.MergeSimilarJob(ctx, weight); err != nil {
		return fmt.Errorf("build SIMILAR_JOB: %w", err)
	}
	log.Printf("[Similarity] Rebuilt SIMILAR_JOB edges (weight=%.2f)", weight)
	return nil
}

// AugmentWithEmbeddingEdges adds embedding kNN weight to the SIMILAR
// layer. Each person's stored vector is queried for topK neighbours and
// positive scores are merged as scale*score. Per-id query failures are
// skipped so one bad vector never aborts a recompute.
func (b *Builder) AugmentWithEmbeddingEdges(ctx context.Context, topK int, scale float64) error {
	if topK <= 0 {
		return nil
	}
	if b.knn == nil {
		return fmt.Errorf("similarity: embedding augmentation requested but no vector client configured")
	}
	ids, err := b.graph.PersonIDs(ctx)
	if err != nil {
		return fmt.Errorf("list person ids: %w", err)
	}

	// Contributions accumulate per canonical pair, so a mutually-nearest
	// pair gets both directions' weight.
	weights := map[[2]string]float64{}
	skipped := 0
	for _, pid := range ids {
		matches, err := b.knn.QueryID(ctx, pid, topK+1)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			skipped++
			continue
		}
		for _, m := range matches {
			if m.ID == "" || m.ID == pid || m.Score <= 0 {
				continue
			}
			a, c := pid, m.ID
			if a > c {
				a, c = c, a
			}
			weights[[2]string{a, c}] += m.Score * scale
		}
	}
	if skipped > 0 {
		log.Printf("[Similarity] Embedding augmentation skipped %d ids without vectors", skipped)
	}
	if len(weights) == 0 {
		return nil
	}

	edges := make([]graph.LayerEdge, 0, len(weights))
	for pair, w := range weights {
		edges = append(edges, graph.LayerEdge{A: pair[0], B: pair[1], Weight: w})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	if err := b.graph.AddSimilarWeights(ctx, edges); err != nil {
		return fmt.Errorf("merge embedding edges: %w", err)
	}
	log.Printf("[Similarity] Added %d embedding kNN edges (topK=%d scale=%.2f)", len(edges), topK, scale)
	return nil
}
