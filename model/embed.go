package model

import (
	"context"
	"fmt"
	"log"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Embedder превращает батч текстов в векторы; i-й вектор соответствует i-му тексту.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

// Settings describes which embedding provider to talk to.
type Settings struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// NewEmbedder создает embedder для выбранного провайдера
func NewEmbedder(s Settings) (Embedder, error) {
	switch s.Provider {
	case ProviderOpenAI, "":
		log.Printf("[EMBEDDER] Uses OpenAI for embeddings (%s)", s.Model)
		return NewOpenAIEmbedder(s.APIKey, s.Model, s.BaseURL), nil
	case ProviderOllama:
		log.Printf("[EMBEDDER] 🤖 Uses local Ollama for embeddings (%s)", s.Model)
		return NewOllamaEmbedder(s.BaseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", s.Provider)
	}
}
