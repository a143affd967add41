package ir

import "testing"

func TestSnapshotDefinitionInvariant(t *testing.T) {
	snap := NewSnapshot("repo1", "snap1")
	id := NodeID("repo1", KindFunction, "a.go", "pkg.Foo")
	snap.AddNode(&Node{ID: id, Kind: KindFunction, FQN: "pkg.Foo", Name: "Foo", Span: Span{FilePath: "a.go"}})
	snap.AddOccurrence(&Occurrence{SymbolID: "pkg.Foo", FilePath: "a.go", Roles: RoleDefinition})
	snap.AddOccurrence(&Occurrence{SymbolID: "pkg.Foo", FilePath: "b.go", Roles: RoleReference | RoleCall})

	def, ok := snap.DefinitionOccurrence("pkg.Foo")
	if !ok {
		t.Fatalf("expected a definition occurrence")
	}
	if def.FilePath != "a.go" {
		t.Fatalf("expected definition in a.go, got %s", def.FilePath)
	}

	refs := snap.OccurrencesForSymbol("pkg.Foo")
	if len(refs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(refs))
	}
}

func TestSnapshotEdgeEndpointsExistInvariant(t *testing.T) {
	snap := NewSnapshot("repo1", "snap1")
	a := NodeID("repo1", KindFunction, "a.go", "pkg.A")
	b := NodeID("repo1", KindFunction, "a.go", "pkg.B")
	snap.AddNode(&Node{ID: a, Kind: KindFunction, FQN: "pkg.A"})
	snap.AddNode(&Node{ID: b, Kind: KindFunction, FQN: "pkg.B"})
	snap.AddEdge(&Edge{ID: EdgeID(EdgeCalls, a, b, 0), Kind: EdgeCalls, SourceID: a, TargetID: b})

	for _, e := range snap.Edges() {
		if _, ok := snap.Node(e.SourceID); !ok {
			t.Fatalf("edge source %s missing from snapshot", e.SourceID)
		}
		if _, ok := snap.Node(e.TargetID); !ok {
			t.Fatalf("edge target %s missing from snapshot", e.TargetID)
		}
	}
}

func TestOccurrenceExternalExcludedFromFileScopedQueries(t *testing.T) {
	snap := NewSnapshot("repo1", "snap1")
	snap.AddOccurrence(&Occurrence{SymbolID: "ext.Pkg.Func", FilePath: ExternalFilePath, Roles: RoleReference | RoleImport})
	if got := snap.OccurrencesInFile(ExternalFilePath); len(got) != 0 {
		t.Fatalf("expected external occurrences excluded from file-scoped queries, got %d", len(got))
	}
	if got := snap.OccurrencesForSymbol("ext.Pkg.Func"); len(got) != 1 {
		t.Fatalf("expected symbol-scoped lookup still to find it, got %d", len(got))
	}
}
