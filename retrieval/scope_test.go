package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/ceindex/index"
	"github.com/viant/ceindex/ir"
)

func buildTestSnapshot() *ir.Snapshot {
	snap := ir.NewSnapshot("repo", "snap1")
	file := &ir.Node{ID: "file1", Kind: ir.KindFile, Name: "auth.go", FQN: "auth.go", Span: ir.Span{FilePath: "auth.go"}}
	fn := &ir.Node{ID: "fn1", Kind: ir.KindFunction, Name: "Login", FQN: "pkg.Login", ParentID: "file1", Span: ir.Span{FilePath: "auth.go", StartLine: 10, EndLine: 20}}
	other := &ir.Node{ID: "fn2", Kind: ir.KindFunction, Name: "Logout", FQN: "pkg.Logout", ParentID: "file1", Span: ir.Span{FilePath: "auth.go", StartLine: 30, EndLine: 40}}
	snap.AddNode(file)
	snap.AddNode(fn)
	snap.AddNode(other)
	snap.AddEdge(&ir.Edge{SourceID: "file1", TargetID: "fn1", Kind: ir.EdgeContains})
	snap.AddEdge(&ir.Edge{SourceID: "file1", TargetID: "fn2", Kind: ir.EdgeContains})
	return snap
}

func testChunks() index.Chunks {
	return index.Chunks{
		{ID: "c-fn1", NodeID: "fn1", Path: "auth.go", StartLine: 10, EndLine: 20},
		{ID: "c-fn2", NodeID: "fn2", Path: "auth.go", StartLine: 30, EndLine: 40},
	}
}

func TestSelectScopeResolvesSymbolNameHint(t *testing.T) {
	snap := buildTestSnapshot()
	c := Classification{Intent: IntentSymbol, SymbolNames: []string{"Login"}}
	scope := SelectScope(snap, c, testChunks())
	assert.Equal(t, ScopeFocused, scope.Type)
	assert.True(t, scope.Includes("c-fn1"))
	assert.False(t, scope.Includes("c-fn2"), "unrelated sibling chunk should not be in scope")
}

func TestSelectScopeFallsBackToFullRepoWhenEmpty(t *testing.T) {
	snap := ir.NewSnapshot("repo", "empty")
	c := Classification{Intent: IntentBalanced}
	scope := SelectScope(snap, c, nil)
	assert.Equal(t, ScopeFullRepo, scope.Type)
	assert.True(t, scope.Includes("anything"))
}

func TestSelectScopeExpandsContainsSubtree(t *testing.T) {
	snap := buildTestSnapshot()
	c := Classification{Intent: IntentSymbol, FilePaths: []string{"auth.go"}}
	scope := SelectScope(snap, c, testChunks())
	assert.Equal(t, ScopeFocused, scope.Type)
	assert.True(t, scope.Includes("c-fn1"))
	assert.True(t, scope.Includes("c-fn2"))
}

func TestScopeValidateDetectsStaleNode(t *testing.T) {
	snap := buildTestSnapshot()
	scope := Scope{Type: ScopeFocused, FocusNodes: []string{"gone"}}
	assert.Error(t, scope.Validate(snap))
}

func TestScopeValidateAcceptsFullRepo(t *testing.T) {
	scope := Scope{Type: ScopeFullRepo}
	assert.NoError(t, scope.Validate(nil))
}
