package llm

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/markdave123-py/newsprint/internal/core"
)

// newCohereClient forces HTTP/1.1; the Cohere endpoints drop HTTP/2 streams
// under load.
func newCohereClient(apiKey string) *cohereclient.Client {
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	return cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
}

// CohereLLM generates text with the Cohere chat endpoint.
type CohereLLM struct {
	client *cohereclient.Client
	model  string
}

func NewCohereLLM(apiKey, model string) *CohereLLM {
	if model == "" {
		model = "command-r"
	}
	return &CohereLLM{client: newCohereClient(apiKey), model: model}
}

func (c *CohereLLM) Name() string { return "cohere/" + c.model }

func (c *CohereLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := c.model
	req := &cohere.ChatRequest{
		Message: userPrompt,
		Model:   &model,
	}
	if systemPrompt != "" {
		req.Preamble = &systemPrompt
	}

	resp, err := c.client.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}
	if resp == nil {
		return "", errors.New("cohere chat returned empty response")
	}
	return resp.Text, nil
}

// CohereEmbedder implements core.EmbeddingProvider using the Cohere Embed API (v2).
type CohereEmbedder struct {
	client    *cohereclient.Client
	model     string
	inputType cohere.EmbedInputType
}

func NewCohereEmbedder(apiKey, model string) *CohereEmbedder {
	if model == "" {
		model = "embed-english-v3.0"
	}
	return &CohereEmbedder{client: newCohereClient(apiKey), model: model, inputType: cohere.EmbedInputTypeSearchDocument}
}

// ForQueries returns an embedder for search queries on the same client.
func (c *CohereEmbedder) ForQueries() *CohereEmbedder {
	q := *c
	q.inputType = cohere.EmbedInputTypeSearchQuery
	return &q
}

func (c *CohereEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.V2.Embed(
		ctx,
		&cohere.V2EmbedRequest{
			Texts:          texts,
			Model:          c.model,
			InputType:      c.inputType,
			EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("cohere embed: %w", err)
	}
	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errors.New("cohere embed returned no float embeddings")
	}

	floats := resp.Embeddings.Float
	if len(floats) != len(texts) {
		return nil, fmt.Errorf("cohere embed: got %d vectors for %d texts", len(floats), len(texts))
	}

	out := make([][]float32, len(floats))
	for i, vec := range floats {
		fv := make([]float32, len(vec))
		for j, v := range vec {
			fv[j] = float32(v)
		}
		out[i] = fv
	}
	return out, nil
}

var (
	_ core.LLMProvider       = (*CohereLLM)(nil)
	_ core.EmbeddingProvider = (*CohereEmbedder)(nil)
)
