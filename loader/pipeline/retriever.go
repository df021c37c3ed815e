package pipeline

import (
	"context"
	"fmt"
	"strings"

	"pdfbot/model"
	"pdfbot/store"
	"pdfbot/types"
)

const DefaultTopK = 4

// Retriever embeds a query with the index's embedder and looks up the
// closest chunks.
type Retriever struct {
	index    *store.Index
	embedder model.Embedder
	topK     int
}

func NewRetriever(index *store.Index, embedder model.Embedder, defaultTopK int) *Retriever {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &Retriever{index: index, embedder: embedder, topK: defaultTopK}
}

// Search returns min(topK, index size) chunks, best first. topK <= 0 means
// the default.
func (r *Retriever) Search(ctx context.Context, query string, topK int) (types.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}
	if r.embedder.ModelName() != r.index.Model() {
		return nil, fmt.Errorf("%w: query %q, index %q", types.ErrEmbeddingModelMismatch, r.embedder.ModelName(), r.index.Model())
	}
	if topK <= 0 {
		topK = r.topK
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err == nil && len(vecs) != 1 {
		err = fmt.Errorf("embedder returned %d vectors for one query", len(vecs))
	}
	if err != nil {
		return nil, &types.EmbeddingServiceError{
			Op:         "embed query",
			StatusCode: types.StatusCode(err),
			Err:        err,
		}
	}

	return r.index.Search(ctx, vecs[0], topK)
}
