package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"pdfbot/types"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
)

var errNoEmbedding = errors.New("memory store: documents must carry precomputed embeddings")

// MemoryStore keeps one index in an in-process chromem collection and scores
// every document on each query.
type MemoryStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

func NewMemoryStore() (*MemoryStore, error) {
	db := chromem.NewDB()

	// Векторы всегда считаем сами, встроенный embedder chromem не нужен.
	noEmbed := func(context.Context, string) ([]float32, error) { return nil, errNoEmbedding }

	collection, err := db.CreateCollection("chunks-"+uuid.NewString(), map[string]string{"hnsw:space": "cosine"}, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return &MemoryStore{db: db, collection: collection}, nil
}

func (s *MemoryStore) Add(ctx context.Context, records []Record) error {
	if s.collection == nil {
		return errors.New("memory store is closed")
	}
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	vectors := make([][]float32, len(records))
	metadatas := make([]map[string]string, len(records))
	contents := make([]string, len(records))
	for i, r := range records {
		ids[i] = strconv.Itoa(r.Chunk.Position)
		vectors[i] = r.Embedding
		metadatas[i] = map[string]string{
			"start":   strconv.Itoa(r.Chunk.Start),
			"end":     strconv.Itoa(r.Chunk.End),
			"overlap": strconv.Itoa(r.Chunk.Overlap),
		}
		contents[i] = r.Chunk.Content
	}
	return s.collection.Add(ctx, ids, vectors, metadatas, contents)
}

// Search ignores k and returns every document scored, so ties can be
// resolved by position afterwards.
func (s *MemoryStore) Search(ctx context.Context, query []float32, k int) (types.RetrievalResult, error) {
	if s.collection == nil {
		return nil, errors.New("memory store is closed")
	}
	n := s.collection.Count()
	if n == 0 {
		return types.RetrievalResult{}, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	res := make(types.RetrievalResult, 0, len(results))
	for _, r := range results {
		c, err := chunkFromResult(r)
		if err != nil {
			return nil, err
		}
		res = append(res, types.ScoredChunk{Chunk: c, Score: float64(r.Similarity)})
	}
	return res, nil
}

func chunkFromResult(r chromem.Result) (types.Chunk, error) {
	var (
		c   = types.Chunk{Content: r.Content}
		err error
	)
	if c.Position, err = strconv.Atoi(r.ID); err != nil {
		return c, fmt.Errorf("bad document id %q: %w", r.ID, err)
	}
	for key, dst := range map[string]*int{"start": &c.Start, "end": &c.End, "overlap": &c.Overlap} {
		if *dst, err = strconv.Atoi(r.Metadata[key]); err != nil {
			return c, fmt.Errorf("document %s: bad %s: %w", r.ID, key, err)
		}
	}
	return c, nil
}

func (s *MemoryStore) Count() int {
	if s.collection == nil {
		return 0
	}
	return s.collection.Count()
}

func (s *MemoryStore) Close() error {
	s.collection = nil
	s.db = nil
	return nil
}
