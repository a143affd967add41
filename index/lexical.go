package index

import (
	"context"
	"sort"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// lexicalRow is the gorm-mapped persistence shape for a chunk's searchable
// text, giving the lexical adapter the same durable-store pattern the
// pack's reference document-store adapters use for query-side state
// instead of an ephemeral in-process map.
type lexicalRow struct {
	ChunkID string `gorm:"primaryKey"`
	NodeID  string
	Path    string
	FQN     string
	Content string `gorm:"type:text"`
}

// SQLiteLexicalIndex implements LexicalIndex with a term-frequency score
// over a gorm/sqlite-backed table. The pack carries no dedicated BM25/
// full-text engine dependency, so this ranks on raw term-frequency rather
// than true BM25.
type SQLiteLexicalIndex struct {
	db *gorm.DB
}

// NewSQLiteLexicalIndex opens (or creates) a sqlite database at dsn and
// migrates the lexical table.
func NewSQLiteLexicalIndex(dsn string) (*SQLiteLexicalIndex, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&lexicalRow{}); err != nil {
		return nil, err
	}
	return &SQLiteLexicalIndex{db: db}, nil
}

func (l *SQLiteLexicalIndex) Index(ctx context.Context, chunks Chunks) error {
	rows := make([]lexicalRow, 0, len(chunks))
	for _, c := range chunks {
		rows = append(rows, lexicalRow{ChunkID: c.ID, NodeID: c.NodeID, Path: c.Path, FQN: c.FQN, Content: c.Content})
	}
	if len(rows) == 0 {
		return nil
	}
	return l.db.WithContext(ctx).Save(&rows).Error
}

// Upsert replaces any existing row sharing a chunk id and inserts the
// rest, the same gorm.Save semantics Index already uses (§4.G/§6 "upsert
// (docs)" as a distinct write path from the initial bulk index call).
func (l *SQLiteLexicalIndex) Upsert(ctx context.Context, chunks Chunks) error {
	return l.Index(ctx, chunks)
}

// Delete removes rows by chunk id (§4.G/§6 "delete(ids)").
func (l *SQLiteLexicalIndex) Delete(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	return l.db.WithContext(ctx).Delete(&lexicalRow{}, "chunk_id IN ?", chunkIDs).Error
}

// Search scores every row by term-frequency of the lowercased query tokens
// appearing in Content or FQN, returning the top `limit` by score.
func (l *SQLiteLexicalIndex) Search(ctx context.Context, query string, limit int) ([]ScoredResult, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}
	var rows []lexicalRow
	if err := l.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	var results []ScoredResult
	for _, r := range rows {
		haystack := strings.ToLower(r.Content + " " + r.FQN)
		score := 0.0
		for _, t := range terms {
			score += float64(strings.Count(haystack, t))
		}
		if score == 0 {
			continue
		}
		results = append(results, ScoredResult{ChunkID: r.ChunkID, NodeID: r.NodeID, Score: score, Source: "lexical"})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (l *SQLiteLexicalIndex) Ping(ctx context.Context) error {
	db, err := l.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}
