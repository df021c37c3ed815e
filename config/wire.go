package config

import (
	"context"
	"fmt"

	"pdfbot/app/agent"
	"pdfbot/loader/pipeline"
	"pdfbot/model"
	"pdfbot/store"
)

func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		ChunkSize:    c.Chunk.Size,
		ChunkOverlap: c.Chunk.Overlap,
		TopK:         c.Retrieval.TopK,
		BatchSize:    c.Retrieval.BatchSize,
		Temperature:  c.LLM.Temperature,
	}
}

func (c *Config) NewEmbedder() (model.Embedder, error) {
	return model.NewEmbedder(model.Settings{
		Provider: c.Embedder.Provider,
		APIKey:   c.APIKey,
		BaseURL:  c.Embedder.BaseURL,
		Model:    c.Embedder.Model,
	})
}

func (c *Config) NewCompleter() (agent.Completer, error) {
	switch c.LLM.Provider {
	case "openai":
		return agent.NewOpenAICompleter(c.APIKey, c.LLM.Model, c.LLM.BaseURL), nil
	case "ollama":
		return agent.NewOllamaCompleter(c.LLM.BaseURL, c.LLM.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
}

// NewStores returns the vector store factory for the configured backend and
// a func releasing the resources behind it.
func (c *Config) NewStores(ctx context.Context) (pipeline.StoreFactory, func() error, error) {
	switch c.VectorStore.Type {
	case "memory":
		return pipeline.MemoryStores(), func() error { return nil }, nil
	case "pgvector":
		pg, err := store.NewPostgres(ctx, c.PostgresConnString())
		if err != nil {
			return nil, nil, fmt.Errorf("error to connect to Postgres database: %w", err)
		}
		return pipeline.PostgresStores(pg), pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store %q", c.VectorStore.Type)
	}
}

// NewPipeline wires providers and storage from c.
func (c *Config) NewPipeline(ctx context.Context) (*pipeline.Pipeline, func() error, error) {
	embedder, err := c.NewEmbedder()
	if err != nil {
		return nil, nil, err
	}
	completer, err := c.NewCompleter()
	if err != nil {
		return nil, nil, err
	}
	stores, release, err := c.NewStores(ctx)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(c.Pipeline(), embedder, completer, stores)
	if err != nil {
		release()
		return nil, nil, err
	}
	return p, release, nil
}
