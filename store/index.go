package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"pdfbot/model"
	"pdfbot/types"
)

const DefaultBatchSize = 64

type BuildOptions struct {
	BatchSize int
}

// Index is a read-only similarity index over one document set.
type Index struct {
	store     VectorStore
	model     string
	dimension int
	size      int
}

// Build embeds every chunk and loads the vectors into vs. On any failure vs is
// closed and no Index is returned.
func Build(ctx context.Context, chunks []types.Chunk, embedder model.Embedder, vs VectorStore, opts BuildOptions) (*Index, error) {
	start := time.Now()
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	idx, err := build(ctx, chunks, embedder, vs, batch)
	if err != nil {
		if cerr := vs.Close(); cerr != nil {
			slog.Warn("failed to discard vector store", "err", cerr)
		}
		return nil, &types.EmbeddingServiceError{
			Op:         "build index",
			StatusCode: types.StatusCode(err),
			Err:        err,
		}
	}

	slog.Info("index built",
		"chunks", idx.size,
		"model", idx.model,
		"dimension", idx.dimension,
		"took", time.Since(start),
	)
	return idx, nil
}

func build(ctx context.Context, chunks []types.Chunk, embedder model.Embedder, vs VectorStore, batch int) (*Index, error) {
	idx := &Index{store: vs, model: embedder.ModelName()}

	for from := 0; from < len(chunks); from += batch {
		part := chunks[from:min(from+batch, len(chunks))]

		texts := make([]string, len(part))
		for i, c := range part {
			texts[i] = c.Content
		}
		vecs, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(part) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(part))
		}

		records := make([]Record, len(part))
		for i, v := range vecs {
			if idx.dimension == 0 {
				idx.dimension = len(v)
			}
			if len(v) == 0 || len(v) != idx.dimension {
				return nil, fmt.Errorf("chunk %d: embedding dimension %d, want %d", part[i].Position, len(v), idx.dimension)
			}
			records[i] = Record{Chunk: part[i], Embedding: v}
		}
		if err := vs.Add(ctx, records); err != nil {
			return nil, fmt.Errorf("vector store: %w", err)
		}
		idx.size += len(records)
	}
	return idx, nil
}

// Search returns at most k chunks closest to vec, best first, ties by
// chunk position.
func (idx *Index) Search(ctx context.Context, vec []float32, k int) (types.RetrievalResult, error) {
	if len(vec) != idx.dimension {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(vec), idx.dimension)
	}
	k = min(k, idx.size)
	if k <= 0 {
		return types.RetrievalResult{}, nil
	}

	res, err := idx.store.Search(ctx, vec, k)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Score != res[j].Score {
			return res[i].Score > res[j].Score
		}
		return res[i].Chunk.Position < res[j].Chunk.Position
	})
	if len(res) > k {
		res = res[:k]
	}
	return res, nil
}

func (idx *Index) Len() int { return idx.size }
func (idx *Index) Model() string { return idx.model }
func (idx *Index) Dimension() int { return idx.dimension }
func (idx *Index) Close() error { return idx.store.Close() }
