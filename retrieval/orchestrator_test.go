package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/index"
)

type fakeLexical struct {
	results []index.ScoredResult
	err     error
}

func (f *fakeLexical) Index(ctx context.Context, chunks index.Chunks) error  { return nil }
func (f *fakeLexical) Upsert(ctx context.Context, chunks index.Chunks) error { return nil }
func (f *fakeLexical) Delete(ctx context.Context, chunkIDs []string) error   { return nil }
func (f *fakeLexical) Search(ctx context.Context, query string, limit int) ([]index.ScoredResult, error) {
	return f.results, f.err
}

type fakeVector struct{ err error }

func (f *fakeVector) Index(ctx context.Context, chunks index.Chunks, embed func(string) ([]float32, error)) error {
	return nil
}
func (f *fakeVector) Upsert(ctx context.Context, chunks index.Chunks, embed func(string) ([]float32, error)) error {
	return nil
}
func (f *fakeVector) Delete(ctx context.Context, chunkIDs []string) error { return nil }
func (f *fakeVector) Search(ctx context.Context, q []float32, limit int) ([]index.ScoredResult, error) {
	return []index.ScoredResult{{ChunkID: "v1", Score: 0.5}}, f.err
}

func TestSearchIsolatesFailingPort(t *testing.T) {
	orch := &Orchestrator{
		Lexical: &fakeLexical{err: errors.New("db gone")},
		Vector:  &fakeVector{},
		Embed:   func(string) ([]float32, error) { return []float32{1}, nil },
	}
	raw := orch.Search(context.Background(), "q", Classification{Intent: IntentCode}, Scope{Type: ScopeFullRepo}, IndexSet{}, 10)
	require.Error(t, raw.Errors["lexical"])
	assert.Len(t, raw.Vector, 1, "the vector port's results should survive the lexical port's failure")
}

func TestSearchUsesDefaultIndexSetForIntent(t *testing.T) {
	orch := &Orchestrator{
		Lexical: &fakeLexical{results: []index.ScoredResult{{ChunkID: "l1"}}},
	}
	raw := orch.Search(context.Background(), "q", Classification{Intent: IntentCode}, Scope{Type: ScopeFullRepo}, IndexSet{}, 10)
	assert.Len(t, raw.Lexical, 1, "Code intent's default index set should include lexical")
}

func TestHealthCheckAggregatesPerPort(t *testing.T) {
	orch := &Orchestrator{Lexical: &fakeLexical{}}
	results := orch.HealthCheck(context.Background())
	assert.Empty(t, results, "no port implements HealthChecker so the result map should be empty")
}
