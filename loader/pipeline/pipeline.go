// Package pipeline runs a document set through extraction, chunking and
// indexing, and answers questions against the resulting Session.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"pdfbot/app/agent"
	"pdfbot/loader/internal"
	"pdfbot/model"
	"pdfbot/store"
	"pdfbot/types"
)

type Config struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	BatchSize    int
	Temperature  float32
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:    internal.DefaultChunkSize,
		ChunkOverlap: internal.DefaultChunkOverlap,
		TopK:         DefaultTopK,
		BatchSize:    store.DefaultBatchSize,
	}
}

// StoreFactory returns a fresh, empty vector store for one Session.
type StoreFactory func(ctx context.Context) (store.VectorStore, error)

func MemoryStores() StoreFactory {
	return func(context.Context) (store.VectorStore, error) {
		return store.NewMemoryStore()
	}
}

func PostgresStores(pg *store.Postgres) StoreFactory {
	return func(context.Context) (store.VectorStore, error) {
		return pg.NewStore(), nil
	}
}

type Pipeline struct {
	cfg         Config
	extractor   *internal.Extractor
	splitter    *internal.Splitter
	embedder    model.Embedder
	synthesizer *agent.Synthesizer
	newStore    StoreFactory
	logger      *slog.Logger
}

// New checks the chunk configuration up front so a bad setting fails before
// any document is read.
func New(cfg Config, embedder model.Embedder, completer agent.Completer, newStore StoreFactory) (*Pipeline, error) {
	splitter, err := internal.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if embedder == nil || completer == nil {
		return nil, errors.New("pipeline needs an embedder and a completer")
	}
	if newStore == nil {
		newStore = MemoryStores()
	}

	return &Pipeline{
		cfg:         cfg,
		extractor:   internal.NewExtractor(),
		splitter:    splitter,
		embedder:    embedder,
		synthesizer: agent.NewSynthesizer(completer, agent.WithTemperature(cfg.Temperature)),
		newStore:    newStore,
		logger:      slog.Default(),
	}, nil
}

func (p *Pipeline) Config() Config {
	return p.cfg
}

// Build always rebuilds from scratch: extract, split, embed, index.
func (p *Pipeline) Build(ctx context.Context, docs []types.Document) (*Session, error) {
	start := time.Now()

	ex, err := p.extractor.Extract(ctx, docs)
	if err != nil {
		return nil, err
	}

	chunks, err := p.splitter.Split(ex.Text)
	if err != nil {
		return nil, err
	}
	p.logger.Info("chunked", "chunks", len(chunks), "chunk_size", p.cfg.ChunkSize, "chunk_overlap", p.cfg.ChunkOverlap)

	vs, err := p.newStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	index, err := store.Build(ctx, chunks, p.embedder, vs, store.BuildOptions{BatchSize: p.cfg.BatchSize})
	if err != nil {
		return nil, err
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}

	return &Session{
		retriever:   NewRetriever(index, p.embedder, p.cfg.TopK),
		synthesizer: p.synthesizer,
		index:       index,
		documents:   names,
		stats: types.BuildStats{
			Documents:  len(docs),
			Pages:      ex.Pages,
			Characters: utf8.RuneCountInString(ex.Text),
			Chunks:     index.Len(),
			Model:      index.Model(),
			Dimension:  index.Dimension(),
			Took:       time.Since(start),
		},
	}, nil
}

// Session owns one Index. Search and Ask are safe for concurrent use.
type Session struct {
	retriever   *Retriever
	synthesizer *agent.Synthesizer
	index       *store.Index
	documents   []string
	stats       types.BuildStats

	closeOnce sync.Once
	closeErr  error
}

func (s *Session) Search(ctx context.Context, query string, topK int) (types.RetrievalResult, error) {
	return s.retriever.Search(ctx, query, topK)
}

// Ask retrieves then synthesizes. A *types.SynthesisError still carries the
// retrieved chunks.
func (s *Session) Ask(ctx context.Context, query string, topK int) (*types.Answer, error) {
	retrieved, err := s.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	return s.synthesizer.Synthesize(ctx, query, retrieved)
}

func (s *Session) Stats() types.BuildStats {
	return s.stats
}

func (s *Session) Documents() []string {
	return append([]string(nil), s.documents...)
}

func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.index.Close()
	})
	return s.closeErr
}
