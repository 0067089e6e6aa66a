package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"

	"github.com/markdave123-py/newsprint/internal/core"
)

const (
	defaultGeminiEmbedModel = "text-embedding-004"
	// maxEmbedBatch is the per-request limit of batchEmbedContents.
	maxEmbedBatch = 100
)

// GeminiEmbedder embeds article headings and summaries for vector search.
// Queries use the same model with the retrieval-query task type.
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
	taskType  genai.TaskType
}

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string) (*GeminiEmbedder, error) {
	cl, err := newGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = defaultGeminiEmbedModel
	}
	return &GeminiEmbedder{client: cl, modelName: modelName, taskType: genai.TaskTypeRetrievalDocument}, nil
}

// ForQueries returns an embedder sharing the client that tags inputs as
// search queries. Close only the original.
func (g *GeminiEmbedder) ForQueries() *GeminiEmbedder {
	q := *g
	q.taskType = genai.TaskTypeRetrievalQuery
	return &q
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedTexts returns one vector per text, in order, splitting large inputs
// into several requests.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.modelName)
	em.TaskType = g.taskType

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		part := texts[start:min(start+maxEmbedBatch, len(texts))]

		batch := em.NewBatch()
		for _, t := range part {
			batch.AddContent(genai.Text(t))
		}
		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("gemini batch embed: %w", err)
		}
		if len(resp.Embeddings) != len(part) {
			return nil, fmt.Errorf("gemini batch embed: got %d vectors for %d texts", len(resp.Embeddings), len(part))
		}
		for _, e := range resp.Embeddings {
			out = append(out, e.Values)
		}
	}
	return out, nil
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)
