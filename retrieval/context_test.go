package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/index"
)

func fetchFromMap(chunks map[string]*index.Chunk) ChunkFetcher {
	return func(ids []string) (map[string]*index.Chunk, error) {
		out := make(map[string]*index.Chunk, len(ids))
		for _, id := range ids {
			if c, ok := chunks[id]; ok {
				out[id] = c
			}
		}
		return out, nil
	}
}

func TestPackContextFitsWithinBudget(t *testing.T) {
	chunks := map[string]*index.Chunk{
		"a": {ID: "a", Path: "x.go", StartLine: 1, EndLine: 3, Content: "func A() {}"},
		"b": {ID: "b", Path: "x.go", StartLine: 10, EndLine: 12, Content: "func B() {}"},
	}
	hits := []SearchHit{
		{ChunkID: "a", Priority: 2.0},
		{ChunkID: "b", Priority: 1.0},
	}
	packed, err := PackContext(hits, fetchFromMap(chunks), 1000)
	require.NoError(t, err)
	require.Len(t, packed.Chunks, 2)
	assert.Equal(t, "a", packed.Chunks[0].Chunk.ID, "the higher-priority chunk should pack first")
}

func TestPackContextDropsFullyContainedOverlap(t *testing.T) {
	chunks := map[string]*index.Chunk{
		"outer": {ID: "outer", Path: "x.go", StartLine: 1, EndLine: 50, Content: strings.Repeat("x", 200)},
		"inner": {ID: "inner", Path: "x.go", StartLine: 5, EndLine: 10, Content: "inner body"},
	}
	hits := []SearchHit{
		{ChunkID: "outer", Priority: 2.0},
		{ChunkID: "inner", Priority: 1.0},
	}
	packed, err := PackContext(hits, fetchFromMap(chunks), 1000)
	require.NoError(t, err)
	require.Len(t, packed.Chunks, 1)
	assert.Equal(t, "outer", packed.Chunks[0].Chunk.ID)
	assert.Equal(t, 1, packed.DroppedCount)
}

func TestPackContextTrimsWhenOverBudget(t *testing.T) {
	big := "func Big() {\n" + strings.Repeat("    doStuff()\n", 200) + "}\n"
	chunks := map[string]*index.Chunk{
		"big": {ID: "big", Path: "x.go", StartLine: 1, EndLine: 201, Content: big, Signature: "func Big()"},
	}
	hits := []SearchHit{{ChunkID: "big", Priority: 1.0}}
	packed, err := PackContext(hits, fetchFromMap(chunks), 40)
	require.NoError(t, err)
	require.Len(t, packed.Chunks, 1)
	assert.True(t, packed.Chunks[0].IsTrimmed)
	assert.Contains(t, packed.Chunks[0].Chunk.Content, "func Big()")
}

func TestPackContextErrorsWhenNothingFits(t *testing.T) {
	chunks := map[string]*index.Chunk{
		"only": {ID: "only", Path: "x.go", StartLine: 1, EndLine: 2, Content: strings.Repeat("y", 1000)},
	}
	hits := []SearchHit{{ChunkID: "only", Priority: 1.0}}
	_, err := PackContext(hits, fetchFromMap(chunks), 1)
	assert.Error(t, err)
}
