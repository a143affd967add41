package index

import (
	"context"
	"encoding/binary"
	"math"
	"sort"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type vectorRow struct {
	ChunkID string `gorm:"primaryKey"`
	NodeID  string
	Vector  []byte `gorm:"type:blob"`
}

// SQLiteVectorIndex implements VectorIndex by persisting each chunk's
// embedding as a packed float32 BLOB and ranking by cosine similarity at
// query time, reusing the same gorm/sqlite adapter pattern as
// SQLiteLexicalIndex instead of a dedicated vector database dependency
// (none is wired in the reference pack).
type SQLiteVectorIndex struct {
	db *gorm.DB
}

// NewSQLiteVectorIndex opens (or creates) a sqlite database at dsn and
// migrates the vector table.
func NewSQLiteVectorIndex(dsn string) (*SQLiteVectorIndex, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&vectorRow{}); err != nil {
		return nil, err
	}
	return &SQLiteVectorIndex{db: db}, nil
}

func (v *SQLiteVectorIndex) Index(ctx context.Context, chunks Chunks, embed func(text string) ([]float32, error)) error {
	rows := make([]vectorRow, 0, len(chunks))
	for _, c := range chunks {
		vec, err := embed(c.Content)
		if err != nil {
			return err
		}
		rows = append(rows, vectorRow{ChunkID: c.ID, NodeID: c.NodeID, Vector: encodeVector(vec)})
	}
	if len(rows) == 0 {
		return nil
	}
	return v.db.WithContext(ctx).Save(&rows).Error
}

// Upsert re-embeds and replaces any existing row sharing a chunk id
// (§4.G/§6 "upsert(docs)").
func (v *SQLiteVectorIndex) Upsert(ctx context.Context, chunks Chunks, embed func(text string) ([]float32, error)) error {
	return v.Index(ctx, chunks, embed)
}

// Delete removes rows by chunk id (§4.G/§6 "delete(ids)").
func (v *SQLiteVectorIndex) Delete(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	return v.db.WithContext(ctx).Delete(&vectorRow{}, "chunk_id IN ?", chunkIDs).Error
}

func (v *SQLiteVectorIndex) Search(ctx context.Context, queryVector []float32, limit int) ([]ScoredResult, error) {
	var rows []vectorRow
	if err := v.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	var results []ScoredResult
	for _, r := range rows {
		vec := decodeVector(r.Vector)
		sim := cosineSimilarity(queryVector, vec)
		if sim <= 0 {
			continue
		}
		results = append(results, ScoredResult{ChunkID: r.ChunkID, NodeID: r.NodeID, Score: sim, Source: "vector"})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (v *SQLiteVectorIndex) Ping(ctx context.Context) error {
	db, err := v.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
