package rag

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type embeddingAPI interface {
	CreateEmbeddings(ctx context.Context, request openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder implements Embedder over an OpenAI-compatible embeddings
// endpoint.
type OpenAIEmbedder struct {
	client embeddingAPI
	model  string
}

// NewOpenAIEmbedder wraps an OpenAI client for embedding calls.
func NewOpenAIEmbedder(client *openai.Client, model string) *OpenAIEmbedder {
	if client == nil {
		panic("rag: openai client cannot be nil")
	}
	if strings.TrimSpace(model) == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{client: client, model: model}
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// Embed returns one vector per input text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, &openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.New("rag: embedding response size mismatch")
	}

	out := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		out[i] = item.Embedding
	}
	return out, nil
}
