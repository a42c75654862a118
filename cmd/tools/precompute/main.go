package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bridgewise/internal/graph"
	"bridgewise/internal/metrics"
	"bridgewise/internal/similarity"
	"bridgewise/internal/titles"
	"bridgewise/internal/vector"
)

// enrichedPerson mirrors one record of the enrichment export. Only the
// fields needed for title derivation are decoded.
type enrichedPerson struct {
	PersonID string `json:"person_id"`
	ID       string `json:"id"`
	JobTitle string `json:"linkedinJobTitle"`
	Raw      struct {
		JobTitle         string `json:"linkedinJobTitle"`
		PreviousJobTitle string `json:"linkedinPreviousJobTitle"`
		SchoolDateRange  string `json:"linkedinSchoolDateRange"`
	} `json:"raw"`
}

func main() {
	var (
		peoplePath   string
		titlesOnly   bool
		skipTitles   bool
		minShared    int
		weightMode   string
		boostCompany float64
		boostSchool  float64
		jobWeight    float64
		embedTopK    int
		embedScale   float64
		exclude      string
		maxIter      int
	)
	flag.StringVar(&peoplePath, "people", "data/enriched_people.json", "Enriched people JSON for title assignment")
	flag.BoolVar(&titlesOnly, "titles-only", false, "Assign job titles and exit")
	flag.BoolVar(&skipTitles, "skip-titles", false, "Skip the title assignment step")
	flag.IntVar(&minShared, "min-shared", 2, "Minimum shared skills for a SIMILAR edge")
	flag.StringVar(&weightMode, "weight-mode", "count", "SIMILAR weight mode: count or jaccard")
	flag.Float64Var(&boostCompany, "boost-company", 1.0, "Weight boost per shared employer")
	flag.Float64Var(&boostSchool, "boost-school", 0.5, "Weight boost per shared school")
	flag.Float64Var(&jobWeight, "job-weight", 1.0, "Flat weight for SIMILAR_JOB edges")
	flag.IntVar(&embedTopK, "embed-top-k", 0, "Neighbors per person for embedding edge augmentation (0 disables)")
	flag.Float64Var(&embedScale, "embed-scale", 1.0, "Weight scale for embedding-derived edges")
	flag.StringVar(&exclude, "exclude", "", "Comma-separated person ids to exclude from metrics")
	flag.IntVar(&maxIter, "max-iter", 20, "Max community detection iterations per layer")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	uri := os.Getenv("NEO4J_URI")
	pass := os.Getenv("NEO4J_PASS")
	if uri == "" || pass == "" {
		log.Fatal("NEO4J_URI and NEO4J_PASS must be set")
	}

	ctx := context.Background()
	store, err := graph.Connect(ctx, graph.Options{
		URI:          uri,
		User:         envOr("NEO4J_USER", "neo4j"),
		Pass:         pass,
		Retries:      3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		QueryTimeout: 5 * time.Minute,
	})
	if err != nil {
		log.Fatalf("graph connect failed: %v", err)
	}
	defer store.Close(ctx)

	if err := store.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: index setup failed: %v", err)
	}

	if !skipTitles {
		if err := assignTitles(ctx, store, peoplePath); err != nil {
			log.Fatalf("title assignment failed: %v", err)
		}
	}
	if titlesOnly {
		return
	}

	var knn similarity.KNN
	if embedTopK > 0 {
		apiKey := os.Getenv("PINECONE_API_KEY")
		indexName := os.Getenv("PINECONE_INDEX_NAME")
		if apiKey == "" || indexName == "" {
			log.Fatal("PINECONE_API_KEY and PINECONE_INDEX_NAME must be set when -embed-top-k > 0")
		}
		knn = vector.New(vector.Options{
			APIKey:    apiKey,
			IndexName: indexName,
			IndexHost: os.Getenv("PINECONE_INDEX_HOST"),
		})
	}

	builder := similarity.NewBuilder(store, knn)
	start := time.Now()

	if err := builder.RebuildSimilar(ctx, similarity.Params{
		MinSharedSkills: minShared,
		WeightMode:      weightMode,
		BoostCompany:    boostCompany,
		BoostSchool:     boostSchool,
		ClearExisting:   true,
	}); err != nil {
		log.Fatalf("SIMILAR rebuild failed: %v", err)
	}
	if err := builder.RebuildSimilarJob(ctx, jobWeight); err != nil {
		log.Fatalf("SIMILAR_JOB rebuild failed: %v", err)
	}
	if embedTopK > 0 {
		if err := builder.AugmentWithEmbeddingEdges(ctx, embedTopK, embedScale); err != nil {
			log.Fatalf("embedding augmentation failed: %v", err)
		}
	}

	var excludeIDs []string
	for _, id := range strings.Split(exclude, ",") {
		if id = strings.TrimSpace(id); id != "" {
			excludeIDs = append(excludeIDs, id)
		}
	}
	if err := metrics.NewEngine(store).RunBoth(ctx, excludeIDs, maxIter); err != nil {
		log.Fatalf("metrics computation failed: %v", err)
	}

	log.Printf("[Precompute] Done in %s", time.Since(start).Round(time.Millisecond))
}

// assignTitles derives jobTitle properties from the enrichment export and
// batch-writes them to the graph.
func assignTitles(ctx context.Context, store *graph.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[Precompute] No enrichment file at %s, skipping title assignment", path)
			return nil
		}
		return err
	}
	var people []enrichedPerson
	if err := json.Unmarshal(data, &people); err != nil {
		return err
	}

	canonizer := titles.NewCanonicalizer(os.Getenv("TITLE_CANON_JSON"))
	today := time.Now().UTC()
	updates := make([]graph.TitleUpdate, 0, len(people))
	for _, rec := range people {
		pid := rec.PersonID
		if pid == "" {
			pid = rec.ID
		}
		if pid == "" {
			continue
		}
		current := rec.JobTitle
		if current == "" {
			current = rec.Raw.JobTitle
		}
		title := titles.DeriveJobTitle(current, rec.Raw.PreviousJobTitle, rec.Raw.SchoolDateRange, today)
		canon, short, snake := canonizer.Canonicalize(title)
		updates = append(updates, graph.TitleUpdate{
			ID:          pid,
			Title:       title,
			Canon:       canon,
			Short:       short,
			Snake:       snake,
			JobTokens:   titles.Tokenize(title),
			CanonTokens: titles.Tokenize(canon),
		})
	}

	updated, err := store.UpdatePersonTitles(ctx, updates)
	if err != nil {
		return err
	}
	log.Printf("[Precompute] Processed %d records, updated %d persons", len(updates), updated)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
