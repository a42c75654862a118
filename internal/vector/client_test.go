package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryVector(t *testing.T) {
	var gotReq queryRequest
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/query", r.URL.Path)
		gotKey = r.Header.Get("Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(queryResponse{Matches: []Match{
			{ID: "P2", Score: 0.91},
			{ID: "P3", Score: 0.42},
		}})
	}))
	defer ts.Close()

	c := New(Options{APIKey: "secret", IndexName: "people", IndexHost: ts.URL})
	matches, err := c.QueryVector(context.Background(), []float64{0.1, 0.2}, 5, true)
	require.NoError(t, err)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, 5, gotReq.TopK)
	assert.True(t, gotReq.IncludeMetadata)
	assert.Equal(t, []float64{0.1, 0.2}, gotReq.Vector)
	require.Len(t, matches, 2)
	assert.Equal(t, "P2", matches[0].ID)
	assert.Equal(t, 0.91, matches[0].Score)
}

func TestQueryIDSendsIDNotVector(t *testing.T) {
	var gotReq queryRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(queryResponse{})
	}))
	defer ts.Close()

	c := New(Options{APIKey: "secret", IndexName: "people", IndexHost: ts.URL})
	_, err := c.QueryID(context.Background(), "P1", 3)
	require.NoError(t, err)
	assert.Equal(t, "P1", gotReq.ID)
	assert.Empty(t, gotReq.Vector)
	assert.Equal(t, 3, gotReq.TopK)
}

func TestUpsert(t *testing.T) {
	var got struct {
		Vectors []Vector `json:"vectors"`
	}
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "/vectors/upsert", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"upsertedCount":1}`))
	}))
	defer ts.Close()

	c := New(Options{APIKey: "secret", IndexName: "people", IndexHost: ts.URL})
	err := c.Upsert(context.Background(), []Vector{
		{ID: "P1", Values: []float64{0.5}, Metadata: map[string]any{"name": "Pat"}},
	})
	require.NoError(t, err)
	require.Len(t, got.Vectors, 1)
	assert.Equal(t, "P1", got.Vectors[0].ID)

	// empty batch never hits the wire
	require.NoError(t, c.Upsert(context.Background(), nil))
	assert.Equal(t, 1, calls)
}

func TestQuerySurfacesServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"index is bored"}`, http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := New(Options{APIKey: "secret", IndexName: "people", IndexHost: ts.URL})
	_, err := c.QueryVector(context.Background(), []float64{0.1}, 1, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://index.pinecone.io", baseURL("index.pinecone.io"))
	assert.Equal(t, "http://127.0.0.1:9999", baseURL("http://127.0.0.1:9999"))
}
