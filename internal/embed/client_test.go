package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func azureClient(ts *httptest.Server) *Client {
	return New(Options{APIKey: "secret", AzureEndpoint: ts.URL, AzureDeployment: "embedder"})
}

func TestEmbedDocuments(t *testing.T) {
	var gotBody struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/openai/deployments/embedder/embeddings", r.URL.Path)
		gotKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float64{0.1, 0.2}},
				{"embedding": []float64{0.3, 0.4}},
			},
		})
	}))
	defer ts.Close()

	vecs, err := azureClient(ts).EmbedDocuments(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, []string{"alpha", "beta"}, gotBody.Input)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float64{0.1, 0.2}, vecs[0])
	assert.Equal(t, []float64{0.3, 0.4}, vecs[1])
}

func TestEmbedQueryReturnsSingleVector(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.5}}},
		})
	}))
	defer ts.Close()

	vec, err := azureClient(ts).EmbedQuery(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, vec)
}

func TestEmbedDocumentsRetriesOnce(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.5}}},
		})
	}))
	defer ts.Close()

	vec, err := azureClient(ts).EmbedQuery(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []float64{0.5}, vec)
}

func TestEmbedDocumentsRejectsShortResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.5}}},
		})
	}))
	defer ts.Close()

	_, err := azureClient(ts).EmbedDocuments(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 2")
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	vecs, err := New(Options{APIKey: "secret"}).EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}
