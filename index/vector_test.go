package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVectorFixture(t *testing.T) *SQLiteVectorIndex {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "vector.db")
	idx, err := NewSQLiteVectorIndex(dsn)
	require.NoError(t, err)
	return idx
}

func unitEmbed(vecs map[string][]float32) func(string) ([]float32, error) {
	return func(text string) ([]float32, error) {
		if v, ok := vecs[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 0}, nil
	}
}

func TestEncodeDecodeVectorRoundTrips(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.0}
	assert.Equal(t, vec, decodeVector(encodeVector(vec)))
}

func TestCosineSimilarityIdenticalVectorsIsOne(t *testing.T) {
	a := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, cosineSimilarity(a, a), 1e-9)
}

func TestCosineSimilarityOrthogonalVectorsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}))
}

func TestCosineSimilarityMismatchedLengthIsZero(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
}

func TestSQLiteVectorIndexSearchRanksByCosineSimilarity(t *testing.T) {
	idx := newVectorFixture(t)
	ctx := context.Background()
	embed := unitEmbed(map[string][]float32{
		"matching": {1, 0, 0},
		"opposite": {-1, 0, 0},
	})

	require.NoError(t, idx.Index(ctx, Chunks{
		{ID: "c1", NodeID: "n1", Content: "matching"},
		{ID: "c2", NodeID: "n2", Content: "opposite"},
	}, embed))

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1, "negative/zero similarity results should be filtered out")
	assert.Equal(t, "c1", results[0].ChunkID)
}

func TestSQLiteVectorIndexDeleteRemovesRows(t *testing.T) {
	idx := newVectorFixture(t)
	ctx := context.Background()
	embed := unitEmbed(map[string][]float32{"x": {1, 0}})

	require.NoError(t, idx.Index(ctx, Chunks{{ID: "c1", NodeID: "n1", Content: "x"}}, embed))
	require.NoError(t, idx.Delete(ctx, []string{"c1"}))

	results, err := idx.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSQLiteVectorIndexUpsertReplacesEmbedding(t *testing.T) {
	idx := newVectorFixture(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, Chunks{{ID: "c1", NodeID: "n1", Content: "a"}}, unitEmbed(map[string][]float32{"a": {1, 0}})))
	require.NoError(t, idx.Upsert(ctx, Chunks{{ID: "c1", NodeID: "n1", Content: "b"}}, unitEmbed(map[string][]float32{"b": {0, 1}})))

	results, err := idx.Search(ctx, []float32{0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}
