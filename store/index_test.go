package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"

	"pdfbot/testutil"
	"pdfbot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyStore struct {
	VectorStore
	closed bool
	addErr error
}

func (s *spyStore) Add(ctx context.Context, records []Record) error {
	if s.addErr != nil {
		return s.addErr
	}
	return s.VectorStore.Add(ctx, records)
}

func (s *spyStore) Close() error {
	s.closed = true
	return s.VectorStore.Close()
}

func newSpy(t *testing.T) *spyStore {
	t.Helper()
	mem, err := NewMemoryStore()
	require.NoError(t, err)
	return &spyStore{VectorStore: mem}
}

func chunksOf(texts ...string) []types.Chunk {
	chunks := make([]types.Chunk, len(texts))
	for i, s := range texts {
		chunks[i] = types.Chunk{Position: i, Content: s, Start: i * 100, End: i*100 + len(s)}
	}
	return chunks
}

func TestBuild_OneVectorPerChunk(t *testing.T) {
	emb := testutil.NewEmbedder()
	chunks := chunksOf("alpha beta", "gamma delta", "epsilon", "zeta eta", "theta")

	idx, err := Build(context.Background(), chunks, emb, newSpy(t), BuildOptions{BatchSize: 2})
	require.NoError(t, err)
	defer idx.Close()

	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, "fake-embedding", idx.Model())
	assert.Equal(t, testutil.FakeDimension, idx.Dimension())

	calls := emb.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"alpha beta", "gamma delta"}, calls[0])
	assert.Equal(t, []string{"theta"}, calls[2])
}

func TestBuild_DefaultBatch(t *testing.T) {
	emb := testutil.NewEmbedder()
	texts := make([]string, DefaultBatchSize+1)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk number %d", i)
	}

	idx, err := Build(context.Background(), chunksOf(texts...), emb, newSpy(t), BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(texts), idx.Len())
	assert.Len(t, emb.Calls(), 2)
}

func TestBuild_EmbeddingFailureDiscardsStore(t *testing.T) {
	emb := testutil.NewEmbedder()
	emb.Err = &types.ProviderError{Provider: "openai", StatusCode: http.StatusUnauthorized, Message: "Incorrect API key"}
	spy := newSpy(t)

	idx, err := Build(context.Background(), chunksOf("a", "b"), emb, spy, BuildOptions{})
	require.Error(t, err)
	assert.Nil(t, idx)
	assert.True(t, spy.closed)

	assert.ErrorIs(t, err, types.ErrEmbeddingService)
	var ee *types.EmbeddingServiceError
	require.ErrorAs(t, err, &ee)
	assert.True(t, ee.CredentialRejected())
	assert.Contains(t, err.Error(), "credential rejected")
}

func TestBuild_StoreFailure(t *testing.T) {
	spy := newSpy(t)
	spy.addErr = errors.New("disk full")

	idx, err := Build(context.Background(), chunksOf("a"), testutil.NewEmbedder(), spy, BuildOptions{})
	assert.ErrorIs(t, err, types.ErrEmbeddingService)
	assert.Nil(t, idx)
	assert.True(t, spy.closed)
}

type shortEmbedder struct{ *testutil.Embedder }

func (e shortEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.Embedder.Embed(ctx, texts)
	return vecs[:len(vecs)-1], err
}

func TestBuild_VectorCountMismatch(t *testing.T) {
	spy := newSpy(t)
	_, err := Build(context.Background(), chunksOf("a", "b"), shortEmbedder{testutil.NewEmbedder()}, spy, BuildOptions{})
	assert.ErrorIs(t, err, types.ErrEmbeddingService)
	assert.True(t, spy.closed)
}

func TestIndex_SearchOrdering(t *testing.T) {
	chunks := chunksOf(
		"the weather today is sunny",
		"the sky is blue",
		"pasta recipes with tomato",
		"the sky is blue",
		"blue whales in the ocean",
	)
	idx, err := Build(context.Background(), chunks, testutil.NewEmbedder(), newSpy(t), BuildOptions{})
	require.NoError(t, err)

	res, err := idx.Search(context.Background(), testutil.Vector("the sky is blue"), 3)
	require.NoError(t, err)
	require.Len(t, res, 3)

	// одинаковый текст дает одинаковый score, порядок по позиции
	assert.Equal(t, 1, res[0].Chunk.Position)
	assert.Equal(t, 3, res[1].Chunk.Position)
	assert.InDelta(t, res[0].Score, res[1].Score, 1e-9)
	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].Score, res[i].Score)
	}

	c := res[0].Chunk
	assert.Equal(t, chunks[1], c)
}

func TestIndex_SearchBounds(t *testing.T) {
	idx, err := Build(context.Background(), chunksOf("one", "two"), testutil.NewEmbedder(), newSpy(t), BuildOptions{})
	require.NoError(t, err)

	res, err := idx.Search(context.Background(), testutil.Vector("one"), 10)
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = idx.Search(context.Background(), testutil.Vector("one"), 0)
	require.NoError(t, err)
	assert.Empty(t, res)

	_, err = idx.Search(context.Background(), []float32{1, 2}, 1)
	assert.Error(t, err)
}

func TestMemoryStore_Closed(t *testing.T) {
	s, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, s.Add(context.Background(), []Record{{Chunk: types.Chunk{Content: "x"}, Embedding: testutil.Vector("x")}}))
	assert.Equal(t, 1, s.Count())

	require.NoError(t, s.Close())
	assert.Zero(t, s.Count())
	_, err = s.Search(context.Background(), testutil.Vector("x"), 1)
	assert.Error(t, err)
}

func TestMemoryStores_AreIndependent(t *testing.T) {
	a, err := Build(context.Background(), chunksOf("apples"), testutil.NewEmbedder(), newSpy(t), BuildOptions{})
	require.NoError(t, err)
	b, err := Build(context.Background(), chunksOf("oranges", "pears"), testutil.NewEmbedder(), newSpy(t), BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, b.Len())

	res, err := a.Search(context.Background(), testutil.Vector("pears"), 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "apples", res[0].Chunk.Content)
}

func TestPostgresStore(t *testing.T) {
	connStr := os.Getenv("PDFBOT_TEST_PG_URL")
	if connStr == "" {
		t.Skip("PDFBOT_TEST_PG_URL not set")
	}
	ctx := context.Background()

	pg, err := NewPostgres(ctx, connStr)
	require.NoError(t, err)
	defer pg.Close()

	vs := pg.NewStore()
	idx, err := Build(ctx, chunksOf("the sky is blue", "grass is green", "the sky is blue"), testutil.NewEmbedder(), vs, BuildOptions{BatchSize: 2})
	require.NoError(t, err)
	defer idx.Close()

	res, err := idx.Search(ctx, testutil.Vector("sky blue"), 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, 0, res[0].Chunk.Position)
	assert.Equal(t, 2, res[1].Chunk.Position)
	assert.Equal(t, 3, vs.Count())
}
