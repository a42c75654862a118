package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter registers every endpoint on a stdlib mux with permissive CORS.
func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	mux.HandleFunc("GET /health", a.HealthHandler)

	mux.HandleFunc("GET /clusters", a.ClustersHandler)
	mux.HandleFunc("GET /clusters/summary", a.ClusterSummaryHandler)
	mux.HandleFunc("GET /clusters/{cid}", a.ClusterMembersHandler)
	mux.HandleFunc("GET /person/{pid}", a.PersonHandler)
	mux.HandleFunc("GET /intro-path", a.IntroPathHandler)

	mux.HandleFunc("POST /rank", a.RankHandler)
	mux.HandleFunc("POST /recompute", a.RecomputeHandler)

	mux.HandleFunc("POST /rank-connections", a.RankConnectionsHandler)
	mux.HandleFunc("POST /rank-connections/batch", a.RankConnectionsBatchHandler)
	mux.HandleFunc("POST /rank-connections/explain", a.RankConnectionsExplainHandler)
	mux.HandleFunc("POST /rank-connections/graph", a.RankConnectionsGraphHandler)

	return corsMiddleware(mux)
}

// corsMiddleware allows cross-origin calls from browser frontends.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
