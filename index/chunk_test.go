package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/ir"
)

func TestBuildChunksSlicesSourceBySpan(t *testing.T) {
	snap := ir.NewSnapshot("repo1", "snap1")
	source := []byte("package auth\n\nfunc authenticate(n int) bool {\n\treturn n < 3\n}\n")
	span := ir.Span{FilePath: "auth.go", StartLine: 3, EndLine: 5, StartByte: 14, EndByte: len(source) - 1}
	node := &ir.Node{ID: ir.NodeID("repo1", ir.KindFunction, "auth.go", "authenticate"), Kind: ir.KindFunction, FQN: "authenticate", Name: "authenticate", Span: span}
	snap.AddNode(node)

	builder := NewChunkBuilder("repo1")
	chunks := builder.BuildChunks(snap, "auth.go", source)

	require.Len(t, chunks, 1)
	assert.Equal(t, "authenticate", chunks[0].FQN)
	assert.Equal(t, string(source[span.StartByte:span.EndByte]), chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Part, "a chunk under maxChunkBytes should not be split")
}

func TestBuildChunksSkipsUnchunkableKinds(t *testing.T) {
	snap := ir.NewSnapshot("repo1", "snap1")
	source := []byte("package auth\nimport \"fmt\"\n")
	span := ir.Span{FilePath: "auth.go", StartByte: 13, EndByte: 26}
	node := &ir.Node{ID: ir.NodeID("repo1", ir.KindImport, "auth.go", "fmt"), Kind: ir.KindImport, FQN: "fmt", Name: "fmt", Span: span}
	snap.AddNode(node)

	builder := NewChunkBuilder("repo1")
	chunks := builder.BuildChunks(snap, "auth.go", source)
	assert.Empty(t, chunks, "Import nodes are not a chunkable kind")
}

func TestSplitBreaksOversizedChunkIntoParts(t *testing.T) {
	builder := NewChunkBuilder("repo1")
	content := make([]byte, maxChunkBytes*2+100)
	for i := range content {
		content[i] = 'x'
	}
	chunk := &Chunk{ID: "c1", Path: "big.go", FQN: "Big", Content: string(content)}

	parts := builder.split(chunk)
	require.Len(t, parts, 3)
	assert.Equal(t, 1, parts[0].Part)
	assert.Equal(t, 2, parts[1].Part)
	assert.Equal(t, 3, parts[2].Part)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p.Content), maxChunkBytes)
	}
}

func TestAnnotateImportanceNormalizesByBusiestNode(t *testing.T) {
	snap := ir.NewSnapshot("repo1", "snap1")
	caller := &ir.Node{ID: "caller", FQN: "caller", Kind: ir.KindFunction}
	popular := &ir.Node{ID: "popular", FQN: "popular", Kind: ir.KindFunction}
	lonely := &ir.Node{ID: "lonely", FQN: "lonely", Kind: ir.KindFunction}
	snap.AddNode(caller)
	snap.AddNode(popular)
	snap.AddNode(lonely)
	snap.AddEdge(&ir.Edge{ID: "e1", Kind: ir.EdgeCalls, SourceID: "caller", TargetID: "popular"})
	snap.AddEdge(&ir.Edge{ID: "e2", Kind: ir.EdgeCalls, SourceID: "caller", TargetID: "popular", Occurrence: 1})

	chunks := Chunks{
		{ID: "c-popular", NodeID: "popular"},
		{ID: "c-lonely", NodeID: "lonely"},
	}
	annotateImportance(snap, chunks)

	assert.Equal(t, 1.0, chunks[0].ImportanceScore, "the busiest node should normalize to 1.0")
	assert.Equal(t, 0.0, chunks[1].ImportanceScore, "a node with no inbound CALLS edges should score 0")
}
