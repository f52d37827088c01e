package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/clipsense/retrieval/internal/infrastructure/resilience"
)

// Client calls the Pinecone inference API for dense embeddings. The
// model's vector dimension is fixed; passage calls are batched, query
// calls embed one text.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Options struct {
	BaseURL            string
	Model              string
	RequestsPerMinute  int
	ResilienceExecutor *resilience.Executor
}

func New(apiKey string, options Options) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "https://api.pinecone.io"
	}
	model := options.Model
	if model == "" {
		model = "multilingual-e5-large"
	}
	rpm := options.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		executor:   options.ResilienceExecutor,
	}
}

func (c *Client) EmbedPassages(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return c.embed(ctx, texts, "passage")
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, "query")
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (c *Client) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	inputs := make([]map[string]string, len(texts))
	for i, text := range texts {
		inputs[i] = map[string]string{"text": text}
	}
	request := map[string]any{
		"model":  c.model,
		"inputs": inputs,
		"parameters": map[string]string{
			"input_type": inputType,
			"truncate":   "END",
		},
	}

	var response struct {
		Data []struct {
			Values []float32 `json:"values"`
		} `json:"data"`
	}

	call := func(callCtx context.Context) error {
		if err := c.limiter.Wait(callCtx); err != nil {
			return fmt.Errorf("embed rate limit: %w", err)
		}
		return c.postJSON(callCtx, "/embed", request, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "pinecone.embed."+inputType, call, classifyEmbedError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(response.Data))
	for i, d := range response.Data {
		vectors[i] = d.Values
	}
	return vectors, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("X-Pinecone-API-Version", "2025-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  "embed",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode embed response: %w", err)
	}
	return nil
}
