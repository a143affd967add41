package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLexicalFixture(t *testing.T) *SQLiteLexicalIndex {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "lexical.db")
	idx, err := NewSQLiteLexicalIndex(dsn)
	require.NoError(t, err)
	return idx
}

func TestSQLiteLexicalIndexSearchScoresByTermFrequency(t *testing.T) {
	idx := newLexicalFixture(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, Chunks{
		{ID: "c1", NodeID: "n1", Path: "auth.go", FQN: "authenticate", Content: "authenticate password against stored hash"},
		{ID: "c2", NodeID: "n2", Path: "log.go", FQN: "logRequest", Content: "log the incoming request"},
	}))

	results, err := idx.Search(ctx, "authenticate password", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChunkID)
}

func TestSQLiteLexicalIndexUpsertReplacesExistingRow(t *testing.T) {
	idx := newLexicalFixture(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, Chunks{{ID: "c1", NodeID: "n1", Path: "a.go", FQN: "f", Content: "old content"}}))
	require.NoError(t, idx.Upsert(ctx, Chunks{{ID: "c1", NodeID: "n1", Path: "a.go", FQN: "f", Content: "new content about widgets"}}))

	results, err := idx.Search(ctx, "widgets", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChunkID)

	results, err = idx.Search(ctx, "old", 10)
	require.NoError(t, err)
	assert.Empty(t, results, "upsert should have replaced the old row's content")
}

func TestSQLiteLexicalIndexDeleteRemovesRows(t *testing.T) {
	idx := newLexicalFixture(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, Chunks{{ID: "c1", NodeID: "n1", Path: "a.go", FQN: "f", Content: "findable text"}}))
	require.NoError(t, idx.Delete(ctx, []string{"c1"}))

	results, err := idx.Search(ctx, "findable", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSQLiteLexicalIndexSearchEmptyQueryReturnsNil(t *testing.T) {
	idx := newLexicalFixture(t)
	results, err := idx.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestSQLiteLexicalIndexPingSucceeds(t *testing.T) {
	idx := newLexicalFixture(t)
	assert.NoError(t, idx.Ping(context.Background()))
}
