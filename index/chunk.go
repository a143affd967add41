// Package index builds retrieval-ready chunks and package metadata from a
// built ir.Snapshot, and defines the four index port contracts (lexical,
// vector, symbol, runtime-graph) that package retrieval fans out across
// (§4.G). ChunkBuilder generalizes the teacher's inspector/graph.Document/
// Documents model (Append/SplitDocument/GroupBy/FilterBySize) from a
// Go-only per-declaration document into a language-agnostic chunk keyed by
// the snapshot's own Node/Span/FQN data.
package index

import (
	"sort"

	"github.com/viant/ceindex/ir"
)

// maxChunkBytes mirrors the teacher's chunkSize budget (8192 - 256), the
// practical ceiling before an embedding call needs to split a chunk.
const maxChunkBytes = 8192 - 256

// Chunk is one retrievable unit of source text plus the structural
// metadata the fusion/context stages need without re-reading the snapshot
// (§3 "IndexDocument").
type Chunk struct {
	ID         string
	RepoID     string
	NodeID     string
	Kind       ir.Kind
	FQN        string
	Name       string
	Path       string
	StartLine  int
	EndLine    int
	Content    string
	Signature  string
	Part       int

	// ImportanceScore is the RepoMap-style signal in [0,1] priority() blends
	// in at §4.K (repomap_importance); BuildAll derives it from in-degree in
	// the CALLS graph, normalised against the snapshot's busiest node. The
	// open question in §9 leaves the true RepoMap subsystem external — this
	// is the "default to 0 when absent" fallback the spec permits, computed
	// from data already on hand rather than left at a bare zero.
	ImportanceScore float64
}

// Chunks is an ordered collection of Chunk, matching the teacher's
// Documents helper-method surface (Size/FilterBySize/GroupBy-by-path).
type Chunks []*Chunk

func (c Chunks) Size() int {
	total := 0
	for _, ch := range c {
		total += len(ch.Content) + len(ch.Signature) + len(ch.Path) + 20
	}
	return total
}

// FilterBySize truncates c to the chunks that fit within totalSize bytes,
// preserving order (§4.L "packing to a token budget" uses an analogous cut
// at a higher layer; this is the coarser byte-budget variant used when
// pre-trimming a chunk batch before packing).
func (c Chunks) FilterBySize(totalSize int) Chunks {
	size := 0
	var out Chunks
	for _, ch := range c {
		size += len(ch.Content) + len(ch.Signature) + len(ch.Path) + 20
		if size >= totalSize {
			break
		}
		out = append(out, ch)
	}
	return out
}

// ChunkBuilder extracts Chunks from a Snapshot's Nodes, slicing source
// bytes by Span rather than re-rendering declarations from the IR, so
// Content is always a byte-exact excerpt of the original file.
type ChunkBuilder struct {
	RepoID string
}

// NewChunkBuilder creates a ChunkBuilder for repoID.
func NewChunkBuilder(repoID string) *ChunkBuilder {
	return &ChunkBuilder{RepoID: repoID}
}

// BuildChunks walks every node declared in path (in source order) and
// slices source into one Chunk per chunkable node kind, splitting any
// chunk whose content exceeds maxChunkBytes the way the teacher's
// SplitDocument does.
func (b *ChunkBuilder) BuildChunks(snap *ir.Snapshot, path string, source []byte) Chunks {
	var out Chunks
	for _, id := range snap.NodesInFile(path) {
		n, ok := snap.Node(id)
		if !ok || !isChunkable(n.Kind) {
			continue
		}
		content := sliceSpan(source, n.Span)
		if content == "" {
			continue
		}
		sig := ""
		if s, ok := snap.Signature(n.ID); ok {
			sig = s.Canonical
		}
		chunk := &Chunk{
			ID:        ir.ChunkID(b.RepoID, path, n.FQN, n.Span.StartLine, n.Span.EndLine),
			RepoID:    b.RepoID,
			NodeID:    n.ID,
			Kind:      n.Kind,
			FQN:       n.FQN,
			Name:      n.Name,
			Path:      path,
			StartLine: n.Span.StartLine,
			EndLine:   n.Span.EndLine,
			Content:   content,
			Signature: sig,
		}
		out = append(out, b.split(chunk)...)
	}
	return out
}

func isChunkable(k ir.Kind) bool {
	switch k {
	case ir.KindFunction, ir.KindMethod, ir.KindClass, ir.KindInterface, ir.KindField, ir.KindVariable:
		return true
	default:
		return false
	}
}

func sliceSpan(source []byte, span ir.Span) string {
	if span.StartByte < 0 || span.EndByte > len(source) || span.StartByte >= span.EndByte {
		return ""
	}
	return string(source[span.StartByte:span.EndByte])
}

// split breaks an oversized chunk into maxChunkBytes-sized parts, mirroring
// SplitDocument's Part numbering (0 for an unsplit chunk, 1..n otherwise).
func (b *ChunkBuilder) split(chunk *Chunk) Chunks {
	content := chunk.Content
	if len(content) <= maxChunkBytes {
		chunk.Part = 0
		return Chunks{chunk}
	}
	var out Chunks
	n := len(content)
	for i, start := 0, 0; start < n; i++ {
		end := start + maxChunkBytes
		if end > n {
			end = n
		}
		part := &Chunk{
			ID:        ir.ChunkID(b.RepoID, chunk.Path, chunk.FQN, chunk.StartLine, chunk.EndLine) + "#" + itoaPart(i+1),
			RepoID:    chunk.RepoID,
			NodeID:    chunk.NodeID,
			Kind:      chunk.Kind,
			FQN:       chunk.FQN,
			Name:      chunk.Name,
			Path:      chunk.Path,
			StartLine: chunk.StartLine,
			EndLine:   chunk.EndLine,
			Content:   content[start:end],
			Signature: chunk.Signature,
			Part:      i + 1,
		}
		out = append(out, part)
		start = end
	}
	return out
}

func itoaPart(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// BuildAll runs BuildChunks across every file the snapshot knows about,
// returning chunks in a stable file-path order so repeated builds over an
// unchanged snapshot produce an identical chunk order (§8 property 1).
func (b *ChunkBuilder) BuildAll(snap *ir.Snapshot, sources map[string][]byte) Chunks {
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var all Chunks
	for _, p := range paths {
		all = append(all, b.BuildChunks(snap, p, sources[p])...)
	}
	annotateImportance(snap, all)
	return all
}

// annotateImportance sets each chunk's ImportanceScore to its node's CALLS
// in-degree normalised by the busiest node in the snapshot (§4.G "roughly:
// in-degree in the call graph, normalised"). Split chunks (Part > 0) all
// share their parent declaration's score.
func annotateImportance(snap *ir.Snapshot, chunks Chunks) {
	inDegree := make(map[string]int, len(chunks))
	maxDegree := 0
	for _, c := range chunks {
		if c.NodeID == "" {
			continue
		}
		if _, ok := inDegree[c.NodeID]; ok {
			continue
		}
		n := len(snap.EdgesTo(c.NodeID, ir.EdgeCalls))
		inDegree[c.NodeID] = n
		if n > maxDegree {
			maxDegree = n
		}
	}
	if maxDegree == 0 {
		return
	}
	for _, c := range chunks {
		c.ImportanceScore = float64(inDegree[c.NodeID]) / float64(maxDegree)
	}
}
