package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "bridgewise/docs" // Swagger docs
	"bridgewise/internal/api"
	"bridgewise/internal/config"
	"bridgewise/internal/embed"
	"bridgewise/internal/graph"
	"bridgewise/internal/metrics"
	"bridgewise/internal/rank"
	"bridgewise/internal/similarity"
	"bridgewise/internal/vector"
)

// @title Bridgewise Connector Ranking API
// @version 1.0
// @description Ranks a person's professional network for natural-language queries using vector similarity, attribute matches and graph-structural signals.

// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("[Main] Connecting to graph store...")
	store, err := graph.Connect(ctx, graph.Options{
		URI:          cfg.Neo4jURI,
		User:         cfg.Neo4jUser,
		Pass:         cfg.Neo4jPass,
		Retries:      cfg.ConnectRetries,
		InitialDelay: cfg.ConnectInitDelay,
		MaxDelay:     cfg.ConnectMaxDelay,
		QueryTimeout: cfg.GraphQueryTimeout,
	})
	if err != nil {
		log.Fatalf("[Main] Graph store: %v", err)
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		log.Printf("[Main] Ensure indexes: %v", err)
	}

	vec := vector.New(vector.Options{
		APIKey:    cfg.PineconeAPIKey,
		IndexName: cfg.PineconeIndexName,
		IndexHost: cfg.PineconeIndexHost,
	})
	embedder := embed.New(embed.Options{
		APIKey:          cfg.OpenAIAPIKey,
		Model:           cfg.OpenAIEmbedModel,
		AzureEndpoint:   cfg.AzureEndpoint,
		AzureDeployment: cfg.AzureEmbedDeployment,
	})

	ranker := rank.NewRanker(store, vec, embedder, rank.NewVocab(store))
	builder := similarity.NewBuilder(store, vec)
	engine := metrics.NewEngine(store)

	a := api.NewAPI(cfg, store, ranker, builder, engine, vec, embedder)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(a),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // recompute can be slow
	}

	go func() {
		log.Printf("[Main] Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Main] Server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[Main] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] Shutdown: %v", err)
	}
}
