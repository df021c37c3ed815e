package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pdfbot/app/agent"
	"pdfbot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "PDFBOT_EMBEDDER", "PDFBOT_EMBEDDING_MODEL", "PDFBOT_EMBEDDING_URL",
		"PDFBOT_LLM", "LLM_MODEL", "LLM_URL", "PDFBOT_VECTOR_STORE", "PG_HOST", "PG_USER",
		"PG_PASS", "PG_DB_NAME", "PG_PORT", "SERVER_ADDR", "CHUNK_SIZE", "CHUNK_OVERLAP", "TOP_K",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1000, cfg.Chunk.Size)
	assert.Equal(t, 200, cfg.Chunk.Overlap)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pdfbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_key: from-file
embedder:
  provider: ollama
  model: nomic-embed-text
chunk:
  size: 500
  overlap: 50
retrieval:
  top_k: 6
`), 0o644))

	t.Setenv("CHUNK_OVERLAP", "100")
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "ollama", cfg.Embedder.Provider)
	assert.Equal(t, "nomic-embed-text", cfg.Embedder.Model)
	assert.Equal(t, 500, cfg.Chunk.Size)
	assert.Equal(t, 100, cfg.Chunk.Overlap)
	assert.Equal(t, 6, cfg.Retrieval.TopK)
	// не заданные в файле поля остаются по умолчанию
	assert.Equal(t, 64, cfg.Retrieval.BatchSize)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"overlap not below size", map[string]string{"CHUNK_SIZE": "100", "CHUNK_OVERLAP": "100"}},
		{"zero chunk size", map[string]string{"CHUNK_SIZE": "0", "CHUNK_OVERLAP": "0"}},
		{"bad number", map[string]string{"TOP_K": "four"}},
		{"unknown provider", map[string]string{"PDFBOT_EMBEDDER": "cohere"}},
		{"unknown store", map[string]string{"PDFBOT_VECTOR_STORE": "faiss"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk: [1, 2"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestPostgresConnString(t *testing.T) {
	cfg := Default()
	cfg.VectorStore.Postgres.User = "rag"
	cfg.VectorStore.Postgres.Password = "secret"
	cfg.VectorStore.Postgres.DBName = "pdfbot"

	assert.Equal(t, "host=localhost port=5432 user=rag password=secret dbname=pdfbot sslmode=disable", cfg.PostgresConnString())
}

func TestWiring(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "k"

	pc := cfg.Pipeline()
	assert.Equal(t, 1000, pc.ChunkSize)
	assert.Equal(t, 200, pc.ChunkOverlap)
	assert.Equal(t, 4, pc.TopK)

	emb, err := cfg.NewEmbedder()
	require.NoError(t, err)
	assert.IsType(t, &model.OpenAIEmbedder{}, emb)

	cfg.LLM.Provider = "ollama"
	comp, err := cfg.NewCompleter()
	require.NoError(t, err)
	assert.IsType(t, &agent.OllamaCompleter{}, comp)

	p, release, err := cfg.NewPipeline(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NoError(t, release())

	assert.True(t, cfg.NeedsAPIKey())
	cfg.Embedder.Provider = "ollama"
	assert.False(t, cfg.NeedsAPIKey())
}
