package model

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pdfbot/types"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

const DefaultOpenAIEmbeddingModel = "text-embedding-ada-002"

// OpenAIEmbedder calls the OpenAI embeddings endpoint with whole batches.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

func NewOpenAIEmbedder(apiKey, model, baseURL string) *OpenAIEmbedder {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIEmbeddingModel
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		log.Printf("[EMBEDDER] Error OpenAI embeddings: %v", err)
		return nil, OpenAIError(err)
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, &types.ProviderError{
				Provider: ProviderOpenAI,
				Message:  fmt.Sprintf("embedding index %d out of range", d.Index),
			}
		}
		out[d.Index] = d.Embedding
	}
	for i, v := range out {
		if len(v) == 0 {
			return nil, &types.ProviderError{
				Provider: ProviderOpenAI,
				Message:  fmt.Sprintf("no embedding returned for input %d", i),
			}
		}
	}
	return out, nil
}

// OpenAIError converts SDK errors into a ProviderError carrying the HTTP status.
func OpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &types.ProviderError{
			Provider:   ProviderOpenAI,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &types.ProviderError{
			Provider:   ProviderOpenAI,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    "request failed",
			Err:        err,
		}
	}
	return &types.ProviderError{
		Provider: ProviderOpenAI,
		Message:  err.Error(),
		Err:      err,
	}
}
