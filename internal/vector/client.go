package vector

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	bridgehttp "bridgewise/pkg/http"
)

// Match is one vector-store hit.
type Match struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Client talks to a Pinecone index over its REST data plane.
type Client struct {
	apiKey    string
	indexName string
	host      string
	http      *bridgehttp.Client
}

// Options configure the Pinecone client. IndexHost, when set, skips the
// control-plane host lookup.
type Options struct {
	APIKey    string
	IndexName string
	IndexHost string
	Timeout   time.Duration
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:    opts.APIKey,
		indexName: opts.IndexName,
		host:      opts.IndexHost,
		http:      bridgehttp.NewClient(timeout),
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Api-Key": c.apiKey}
}

// baseURL accepts both the bare hosts the control plane returns and
// fully qualified ones.
func baseURL(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

// resolveHost fetches the index host from the control plane on first use.
func (c *Client) resolveHost(ctx context.Context) (string, error) {
	if c.host != "" {
		return c.host, nil
	}
	var desc struct {
		Host string `json:"host"`
	}
	url := fmt.Sprintf("https://api.pinecone.io/indexes/%s", c.indexName)
	if err := c.http.DoJSON(ctx, http.MethodGet, url, c.headers(), nil, &desc); err != nil {
		return "", fmt.Errorf("describe index %s: %w", c.indexName, err)
	}
	if desc.Host == "" {
		return "", fmt.Errorf("index %s has no host", c.indexName)
	}
	c.host = desc.Host
	log.Printf("[Vector] Resolved index %s host %s", c.indexName, c.host)
	return c.host, nil
}

type queryRequest struct {
	Vector          []float64 `json:"vector,omitempty"`
	ID              string    `json:"id,omitempty"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []Match `json:"matches"`
}

// QueryVector runs a similarity query with an explicit query vector.
func (c *Client) QueryVector(ctx context.Context, vec []float64, topK int, includeMetadata bool) ([]Match, error) {
	return c.query(ctx, queryRequest{Vector: vec, TopK: topK, IncludeMetadata: includeMetadata})
}

// QueryID runs a similarity query against a stored vector's id.
func (c *Client) QueryID(ctx context.Context, id string, topK int) ([]Match, error) {
	return c.query(ctx, queryRequest{ID: id, TopK: topK})
}

func (c *Client) query(ctx context.Context, req queryRequest) ([]Match, error) {
	host, err := c.resolveHost(ctx)
	if err != nil {
		return nil, err
	}
	var resp queryResponse
	url := baseURL(host) + "/query"
	if err := c.http.DoJSON(ctx, http.MethodPost, url, c.headers(), req, &resp); err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	return resp.Matches, nil
}

// Vector is one upsert payload entry.
type Vector struct {
	ID       string         `json:"id"`
	Values   []float64      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Upsert writes vectors to the index.
func (c *Client) Upsert(ctx context.Context, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	host, err := c.resolveHost(ctx)
	if err != nil {
		return err
	}
	body := map[string]any{"vectors": vectors}
	url := baseURL(host) + "/vectors/upsert"
	if err := c.http.DoJSON(ctx, http.MethodPost, url, c.headers(), body, nil); err != nil {
		return fmt.Errorf("vector upsert: %w", err)
	}
	return nil
}
