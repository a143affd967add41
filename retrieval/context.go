// context.go implements §4.L: deduplicating overlapping hits, batch
// fetching their chunk content, and packing the result into a fixed token
// budget, trimming chunks that don't fit to their signature before
// dropping them outright.
package retrieval

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/viant/ceindex/ceerrors"
	"github.com/viant/ceindex/index"
)

// Defaults mirror §6's context-packing configuration surface; package
// config overrides all but DefaultUtilisation via PackOptions.
const (
	DefaultTokensPerChar  = 0.25
	DefaultOverlapThresh  = 0.5
	DefaultOverlapPenalty = 0.5
	DefaultTrimmedMaxTok  = 200
	DefaultUtilisation    = 0.95
)

// PackOptions carries §6's per-call context defaults so callers needn't
// reach into package config directly.
type PackOptions struct {
	TokensPerChar    float64
	OverlapThreshold float64
	OverlapPenalty   float64
	DropOnFullOverlap bool
	TrimmedMaxTokens int
}

// DefaultPackOptions returns the system defaults (§6).
func DefaultPackOptions() PackOptions {
	return PackOptions{
		TokensPerChar:     DefaultTokensPerChar,
		OverlapThreshold:  DefaultOverlapThresh,
		OverlapPenalty:    DefaultOverlapPenalty,
		DropOnFullOverlap: true,
		TrimmedMaxTokens:  DefaultTrimmedMaxTok,
	}
}

// PackedChunk is one chunk included in the final context, annotated with
// the hit that selected it and whether it was trimmed to fit.
type PackedChunk struct {
	Hit            SearchHit
	Chunk          *index.Chunk
	OriginalTokens int
	FinalTokens    int
	IsTrimmed      bool
	Reason         string
}

// PackedContext is the final, token-budgeted result handed to the caller.
type PackedContext struct {
	Chunks       []PackedChunk
	TotalTokens  int
	Utilisation  float64
	DroppedCount int // hits dropped by dedup/overlap or that didn't fit even trimmed
}

// ChunkFetcher resolves a chunk id to its content, e.g. backed by the
// snapshot's ChunkBuilder output or a persisted chunk store.
type ChunkFetcher func(chunkIDs []string) (map[string]*index.Chunk, error)

// PackContext batch-fetches every hit's chunk (§4.L step 2), deduplicates
// file-local overlaps by priority (§4.L step 1), and greedily fills
// budgetTokens in priority order, trimming a chunk to its signature
// before dropping it outright when it doesn't fit whole (§4.L step 3),
// stopping once 95% of budget is used (§4.L step 4).
func PackContext(hits []SearchHit, fetch ChunkFetcher, budgetTokens int) (*PackedContext, error) {
	return PackContextWithOptions(hits, fetch, budgetTokens, DefaultPackOptions())
}

// PackContextWithOptions is PackContext parameterized over package
// config's tuned overlap/trim thresholds.
func PackContextWithOptions(hits []SearchHit, fetch ChunkFetcher, budgetTokens int, opt PackOptions) (*PackedContext, error) {
	ids := make([]string, 0, len(hits))
	seenID := map[string]bool{}
	for _, h := range hits {
		if h.ChunkID != "" && !seenID[h.ChunkID] {
			seenID[h.ChunkID] = true
			ids = append(ids, h.ChunkID)
		}
	}
	chunksByID, err := fetch(ids)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		hit   SearchHit
		chunk *index.Chunk
	}
	candidates := make([]candidate, 0, len(hits))
	for _, h := range hits {
		c, ok := chunksByID[h.ChunkID]
		if !ok || c == nil {
			continue
		}
		candidates = append(candidates, candidate{hit: h, chunk: c})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].hit.Priority > candidates[j].hit.Priority })

	result := &PackedContext{}
	dropped := len(hits) - len(candidates)

	type accepted struct {
		chunk *index.Chunk
		idx   int
	}
	acceptedByFile := make(map[string][]accepted)
	var kept []candidate

	for _, cand := range candidates {
		fullyContained := false
		maxOverlap := 0.0
		for _, acc := range acceptedByFile[cand.chunk.Path] {
			if contains(acc.chunk, cand.chunk) {
				fullyContained = true
				break
			}
			if ov := overlapFraction(acc.chunk, cand.chunk); ov > maxOverlap {
				maxOverlap = ov
			}
		}
		if fullyContained && opt.DropOnFullOverlap {
			dropped++
			continue
		}
		if maxOverlap >= opt.OverlapThreshold {
			cand.hit.Priority *= opt.OverlapPenalty
		}
		acceptedByFile[cand.chunk.Path] = append(acceptedByFile[cand.chunk.Path], accepted{chunk: cand.chunk, idx: len(kept)})
		kept = append(kept, cand)
	}

	// Overlap penalties can change relative order; re-sort before packing
	// (§4.L step 1 "multiply its priority by 0.5 and re-sort").
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].hit.Priority > kept[j].hit.Priority })

	used := 0
	stopAt := int(float64(budgetTokens) * DefaultUtilisation)
	for _, cand := range kept {
		if budgetTokens > 0 && used >= stopAt {
			dropped += len(kept) - len(result.Chunks)
			break
		}
		original := estimateTokens(cand.chunk.Content, opt.TokensPerChar)
		if budgetTokens <= 0 || used+original <= budgetTokens {
			used += original
			result.Chunks = append(result.Chunks, PackedChunk{
				Hit: cand.hit, Chunk: cand.chunk,
				OriginalTokens: original, FinalTokens: original,
			})
			continue
		}

		trimmed, reason := trimToSignature(cand.chunk.Content, cand.chunk.Signature)
		trimmedTokens := estimateTokens(trimmed, opt.TokensPerChar)
		if trimmedTokens > opt.TrimmedMaxTokens {
			trimmedTokens = opt.TrimmedMaxTokens
		}
		if used+trimmedTokens <= budgetTokens {
			used += trimmedTokens
			trimmedChunk := *cand.chunk
			trimmedChunk.Content = trimmed
			result.Chunks = append(result.Chunks, PackedChunk{
				Hit: cand.hit, Chunk: &trimmedChunk,
				OriginalTokens: original, FinalTokens: trimmedTokens,
				IsTrimmed: true, Reason: reason,
			})
			continue
		}
		dropped++
	}

	result.TotalTokens = used
	result.DroppedCount = dropped
	if budgetTokens > 0 {
		result.Utilisation = float64(used) / float64(budgetTokens)
	}
	if len(result.Chunks) == 0 && len(hits) > 0 {
		return &PackedContext{}, ceerrors.BudgetExhausted("budget_too_small")
	}
	return result, nil
}

func estimateTokens(content string, tokensPerChar float64) int {
	n := int(float64(len(content)) * tokensPerChar)
	if n == 0 && content != "" {
		n = 1
	}
	return n
}

// contains reports whether b's line range is fully inside a's (§4.L step
// 1 "if a chunk is fully contained in a previously-accepted chunk").
func contains(a, b *index.Chunk) bool {
	return a.StartLine <= b.StartLine && b.EndLine <= a.EndLine
}

// overlapFraction is the fraction of b's line range covered by a.
func overlapFraction(a, b *index.Chunk) float64 {
	lo := maxInt(a.StartLine, b.StartLine)
	hi := minInt(a.EndLine, b.EndLine)
	if hi < lo {
		return 0
	}
	overlapLines := hi - lo + 1
	bLines := b.EndLine - b.StartLine + 1
	if bLines <= 0 {
		return 0
	}
	return float64(overlapLines) / float64(bLines)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// declRe approximates §4.L step 3's "lines matching language keyword
// patterns for declarations" across the languages the pack's parser
// drivers cover (Go, Java, JS/JSX).
var declRe = regexp.MustCompile(`^\s*(func |(public|private|protected|static|final|abstract)\s|class |interface |struct |type |def |function |export )`)

// trimToSignature keeps the declaration's signature line(s), its
// docstring if one precedes the body, up to five body lines, and appends
// a trimmed marker (§4.L step 3).
func trimToSignature(content, signature string) (string, string) {
	lines := strings.Split(content, "\n")
	var kept []string
	if signature != "" {
		kept = append(kept, signature)
	}
	bodyStart := 0
	for i, l := range lines {
		if declRe.MatchString(l) {
			if signature == "" {
				kept = append(kept, l)
			}
			bodyStart = i + 1
			break
		}
	}
	// carry a doc comment immediately preceding the declaration line.
	for i := bodyStart - 2; i >= 0 && i < len(lines); i-- {
		trimmedLine := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmedLine, "//") || strings.HasPrefix(trimmedLine, "*") || strings.HasPrefix(trimmedLine, "/*") {
			kept = append([]string{lines[i]}, kept...)
			continue
		}
		break
	}
	bodyLines := 0
	for i := bodyStart; i < len(lines) && bodyLines < 5; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		kept = append(kept, lines[i])
		bodyLines++
	}
	kept = append(kept, "// ... trimmed "+strconv.Itoa(len(lines)-bodyStart-bodyLines)+" more lines ...")
	return strings.Join(kept, "\n"), "exceeded_budget_trimmed_to_signature"
}

// Render flattens a PackedContext into the text block handed to a
// downstream consumer, each chunk prefixed with its path and line range so
// provenance survives the packing step.
func Render(pc *PackedContext) string {
	var b strings.Builder
	for _, c := range pc.Chunks {
		b.WriteString("// ")
		b.WriteString(c.Chunk.Path)
		b.WriteString(":")
		b.WriteString(strconv.Itoa(c.Chunk.StartLine))
		b.WriteString("-")
		b.WriteString(strconv.Itoa(c.Chunk.EndLine))
		if c.IsTrimmed {
			b.WriteString(" (trimmed)")
		}
		b.WriteString("\n")
		b.WriteString(c.Chunk.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
