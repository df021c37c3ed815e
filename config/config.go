package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"pdfbot/types"

	"gopkg.in/yaml.v3"
)

type EmbedderConfig struct {
	Provider string `yaml:"provider" validate:"oneof=openai ollama"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider" validate:"oneof=openai ollama"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
}

type ChunkConfig struct {
	Size    int `yaml:"size" validate:"gt=0"`
	Overlap int `yaml:"overlap" validate:"gte=0,ltfield=Size"`
}

type RetrievalConfig struct {
	TopK      int `yaml:"top_k" validate:"gt=0,lte=100"`
	BatchSize int `yaml:"batch_size" validate:"gt=0"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"db_name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type VectorStoreConfig struct {
	Type     string         `yaml:"type" validate:"oneof=memory pgvector"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr" validate:"required"`
	MaxUploadMB int    `yaml:"max_upload_mb" validate:"gt=0"`
}

// Config is the root configuration shared by the HTTP server and the CLI.
type Config struct {
	APIKey      string            `yaml:"api_key"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	LLM         LLMConfig         `yaml:"llm"`
	Chunk       ChunkConfig       `yaml:"chunk"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Server      ServerConfig      `yaml:"server"`
}

func Default() *Config {
	return &Config{
		Embedder:  EmbedderConfig{Provider: "openai"},
		LLM:       LLMConfig{Provider: "openai"},
		Chunk:     ChunkConfig{Size: 1000, Overlap: 200},
		Retrieval: RetrievalConfig{TopK: 4, BatchSize: 64},
		VectorStore: VectorStoreConfig{
			Type:     "memory",
			Postgres: PostgresConfig{Host: "localhost", Port: 5432, SSLMode: "disable"},
		},
		Server: ServerConfig{Addr: ":3000", MaxUploadMB: 50},
	}
}

// Load reads path over the defaults (a missing file is not an error), then
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	errs := types.ValidateStruct(c)
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(errs))
	for field, msg := range errs {
		parts = append(parts, field+" "+msg)
	}
	sort.Strings(parts)
	return fmt.Errorf("invalid config: %s", strings.Join(parts, "; "))
}

// NeedsAPIKey reports whether any configured provider is OpenAI.
func (c *Config) NeedsAPIKey() bool {
	return c.Embedder.Provider == "openai" || c.LLM.Provider == "openai"
}

func (c *Config) PostgresConnString() string {
	pg := c.VectorStore.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, pg.SSLMode)
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, v)
		}
		*dst = n
		return nil
	}

	str("OPENAI_API_KEY", &cfg.APIKey)
	str("PDFBOT_EMBEDDER", &cfg.Embedder.Provider)
	str("PDFBOT_EMBEDDING_MODEL", &cfg.Embedder.Model)
	str("PDFBOT_EMBEDDING_URL", &cfg.Embedder.BaseURL)
	str("PDFBOT_LLM", &cfg.LLM.Provider)
	str("LLM_MODEL", &cfg.LLM.Model)
	str("LLM_URL", &cfg.LLM.BaseURL)
	str("PDFBOT_VECTOR_STORE", &cfg.VectorStore.Type)
	str("PG_HOST", &cfg.VectorStore.Postgres.Host)
	str("PG_USER", &cfg.VectorStore.Postgres.User)
	str("PG_PASS", &cfg.VectorStore.Postgres.Password)
	str("PG_DB_NAME", &cfg.VectorStore.Postgres.DBName)
	str("SERVER_ADDR", &cfg.Server.Addr)

	for key, dst := range map[string]*int{
		"CHUNK_SIZE":    &cfg.Chunk.Size,
		"CHUNK_OVERLAP": &cfg.Chunk.Overlap,
		"TOP_K":         &cfg.Retrieval.TopK,
		"PG_PORT":       &cfg.VectorStore.Postgres.Port,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}
