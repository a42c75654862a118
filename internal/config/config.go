package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the service needs from the environment.
type Config struct {
	Port string

	// Graph store (Neo4j)
	Neo4jURI          string
	Neo4jUser         string
	Neo4jPass         string
	ConnectRetries    int
	ConnectInitDelay  time.Duration
	ConnectMaxDelay   time.Duration
	GraphQueryTimeout time.Duration

	// Vector store (Pinecone)
	PineconeAPIKey    string
	PineconeRegion    string
	PineconeIndexName string
	PineconeIndexHost string // optional; resolved from the control plane when empty

	// Embedder
	AzureEmbedDeployment string // when set, use Azure OpenAI
	AzureEndpoint        string
	OpenAIAPIKey         string
	OpenAIEmbedModel     string

	// Ranking weight defaults (overridable per request)
	WVec          float64
	WSkill        float64
	WJob          float64
	WStructGlobal float64
	WStructEgo    float64
	WCompany      float64

	// Optional extras
	TitleCanonJSON string // exact-lookup map for the title canonicalizer
	SnapshotDir    string // parameter-run snapshots after recompute
}

// Load reads configuration from .env / environment variables.
// A missing required value is fatal for the caller.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		Port:              envOr("PORT", "8080"),
		Neo4jURI:          os.Getenv("NEO4J_URI"),
		Neo4jUser:         envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:         os.Getenv("NEO4J_PASS"),
		ConnectRetries:    envInt("NEO4J_CONNECT_RETRIES", 5),
		ConnectInitDelay:  envDuration("NEO4J_CONNECT_INITIAL_DELAY", time.Second),
		ConnectMaxDelay:   envDuration("NEO4J_CONNECT_MAX_DELAY", 30*time.Second),
		GraphQueryTimeout: envDuration("NEO4J_QUERY_TIMEOUT", 60*time.Second),

		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeRegion:    envOr("PINECONE_REGION", os.Getenv("PINECONE_ENV")),
		PineconeIndexName: os.Getenv("PINECONE_INDEX_NAME"),
		PineconeIndexHost: os.Getenv("PINECONE_INDEX_HOST"),

		AzureEmbedDeployment: os.Getenv("AZURE_OPENAI_EMBED_DEPLOYMENT"),
		AzureEndpoint:        os.Getenv("AZURE_OPENAI_ENDPOINT"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIEmbedModel:     envOr("OPENAI_EMBED_MODEL", "text-embedding-3-small"),

		WVec:          envFloat("RANK_W_VEC", 0.40),
		WSkill:        envFloat("RANK_W_SKILL", 0.18),
		WJob:          envFloat("RANK_W_JOB", 0.14),
		WStructGlobal: envFloat("RANK_W_STRUCT_GLOBAL", 0.14),
		WStructEgo:    envFloat("RANK_W_STRUCT_EGO", 0.09),
		WCompany:      envFloat("RANK_W_COMPANY", 0.05),

		TitleCanonJSON: os.Getenv("TITLE_CANON_JSON"),
		SnapshotDir:    os.Getenv("SNAPSHOT_DIR"),
	}

	if cfg.Neo4jURI == "" || cfg.Neo4jPass == "" {
		return nil, fmt.Errorf("config: NEO4J_URI and NEO4J_PASS must be set")
	}
	if cfg.PineconeAPIKey == "" || cfg.PineconeIndexName == "" {
		return nil, fmt.Errorf("config: PINECONE_API_KEY and PINECONE_INDEX_NAME must be set")
	}
	if cfg.AzureEmbedDeployment == "" && cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("config: set AZURE_OPENAI_EMBED_DEPLOYMENT or OPENAI_API_KEY for embeddings")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid %s=%q, using %v", key, v, def)
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// bare numbers are taken as seconds
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
		log.Printf("Warning: invalid %s=%q, using %v", key, v, def)
	}
	return def
}
