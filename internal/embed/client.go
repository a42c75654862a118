package embed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	bridgehttp "bridgewise/pkg/http"
)

// Client produces text embeddings via Azure OpenAI when a deployment is
// configured, otherwise via the OpenAI API.
type Client struct {
	apiKey          string
	model           string
	azureEndpoint   string
	azureDeployment string
	http            *bridgehttp.Client
}

type Options struct {
	APIKey          string
	Model           string
	AzureEndpoint   string
	AzureDeployment string
	Timeout         time.Duration
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	model := opts.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &Client{
		apiKey:          opts.APIKey,
		model:           model,
		azureEndpoint:   opts.AzureEndpoint,
		azureDeployment: opts.AzureDeployment,
		http:            bridgehttp.NewClient(timeout),
	}
}

func (c *Client) endpoint() (url string, headers map[string]string) {
	if c.azureDeployment != "" && c.azureEndpoint != "" {
		url = fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=2024-02-01",
			c.azureEndpoint, c.azureDeployment)
		headers = map[string]string{"api-key": c.apiKey}
		return
	}
	url = "https://api.openai.com/v1/embeddings"
	headers = map[string]string{"Authorization": "Bearer " + c.apiKey}
	return
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// EmbedQuery embeds one text. A single retry covers transient failures.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vecs, err := c.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedDocuments embeds a batch of texts, preserving input order.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	url, headers := c.endpoint()
	body := map[string]any{"input": texts, "model": c.model}

	var resp embedResponse
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
		resp = embedResponse{}
		if err = c.http.DoJSON(ctx, http.MethodPost, url, headers, body, &resp); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors, want %d", len(resp.Data), len(texts))
	}
	out := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}
