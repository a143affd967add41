package incremental

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/ceindex/ir"
)

func TestTrackerChangedDetectsNewAndModifiedFiles(t *testing.T) {
	tr := NewTracker(nil)

	assert.True(t, tr.Changed("a.go", []byte("package a"), 1), "an unseen path should report changed")
	assert.False(t, tr.Changed("a.go", []byte("package a"), 1), "identical content should report unchanged")
	assert.True(t, tr.Changed("a.go", []byte("package a // edited"), 2), "modified content should report changed")
}

func TestDependentsOfFollowsReverseDependencyClosure(t *testing.T) {
	ctx := ir.NewGlobalContext()
	// b.go imports a.go; c.go imports b.go; d.go is unrelated.
	ctx.AddFileDependency("b.go", "a.go")
	ctx.AddFileDependency("c.go", "b.go")
	ctx.AddFileDependency("d.go", "unrelated.go")

	dependents := DependentsOf(ctx, "a.go")
	assert.ElementsMatch(t, []string{"b.go", "c.go"}, dependents, "renaming a.go should rebuild its transitive reverse-dependency closure, nothing else")
}

func TestDependentsOfEmptyForLeafFile(t *testing.T) {
	ctx := ir.NewGlobalContext()
	ctx.AddFileDependency("b.go", "a.go")

	assert.Empty(t, DependentsOf(ctx, "b.go"), "a file nothing imports should have no dependents")
}

func TestLocalOverlayPrefersStagedEditOverDisk(t *testing.T) {
	overlay := NewLocalOverlay(nil, "/repo")
	overlay.Set("a.go", []byte("staged"))

	content, err := overlay.Read(context.Background(), "a.go")
	require.NoError(t, err)
	assert.Equal(t, "staged", string(content))

	overlay.Clear("a.go")
	assert.NotContains(t, overlay.overlays, "a.go", "Clear should drop the staged edit")
}
