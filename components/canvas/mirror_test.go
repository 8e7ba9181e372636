package canvas

import (
	"errors"
	"testing"
)

func mirrorFixtureStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	err := store.Hydrate(
		[]Widget{sampleWidget("w-1", 0, 0, 6, 4), sampleWidget("w-2", 6, 0, 6, 4)},
		[]TextWidgetRecord{{ID: "t-1", Content: "<p>note</p>", Geometry: Geometry{X: 0, Y: 4, Width: 4, Height: 5}}},
	)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return store
}

func TestMirrorProjectsEveryEntry(t *testing.T) {
	store := mirrorFixtureStore(t)
	mirror, err := OpenMirror(store, MirrorOptions{})
	if err != nil {
		t.Fatalf("open mirror: %v", err)
	}
	t.Cleanup(mirror.Close)

	nodes := mirror.Nodes()
	if len(nodes) != store.Len() {
		t.Fatalf("expected %d nodes, got %d", store.Len(), len(nodes))
	}
	for _, node := range nodes {
		entry, ok := store.Entry(node.ID)
		if !ok {
			t.Fatalf("mirror node %s has no store entry", node.ID)
		}
		geom := entry.Geom()
		if node.X != geom.X || node.Y != geom.Y || node.W != geom.Width || node.H != geom.Height {
			t.Fatalf("mirror geometry drifted for %s: %+v vs %+v", node.ID, node, geom)
		}
	}
}

func TestMirrorIsReadOnly(t *testing.T) {
	store := mirrorFixtureStore(t)
	mirror, err := OpenMirror(store, MirrorOptions{})
	if err != nil {
		t.Fatalf("open mirror: %v", err)
	}
	t.Cleanup(mirror.Close)

	if err := mirror.grid.MoveNode("w-1", 3, 3, 6, 4); err == nil {
		t.Fatal("expected static grid to reject moves")
	}
	entry, _ := store.Entry("w-1")
	if entry.Geom() != (Geometry{X: 0, Y: 0, Width: 6, Height: 4}) {
		t.Fatalf("store mutated through mirror: %+v", entry.Geom())
	}
}

func TestMirrorRefreshTracksStore(t *testing.T) {
	store := mirrorFixtureStore(t)
	mirror, err := OpenMirror(store, MirrorOptions{})
	if err != nil {
		t.Fatalf("open mirror: %v", err)
	}
	t.Cleanup(mirror.Close)

	store.Remove("w-2")
	if _, err := store.ApplyGeometry("w-1", Geometry{X: 2, Y: 2, Width: 6, Height: 4}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := mirror.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	nodes := mirror.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes after removal, got %d", len(nodes))
	}
	node, ok := mirror.grid.Node("w-1")
	if !ok || node.X != 2 || node.Y != 2 {
		t.Fatalf("refresh did not apply move: %+v", node)
	}

	mutations := countMutations(mirror.grid)
	if err := mirror.Refresh(); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if *mutations != 0 {
		t.Fatalf("refresh with unchanged snapshot mutated the grid %d times", *mutations)
	}
}

func TestMirrorCloseThenReopen(t *testing.T) {
	store := mirrorFixtureStore(t)
	mirror, err := OpenMirror(store, MirrorOptions{})
	if err != nil {
		t.Fatalf("open mirror: %v", err)
	}
	mirror.Close()
	if !mirror.Closed() {
		t.Fatal("mirror should report closed")
	}
	if err := mirror.Refresh(); !errors.Is(err, ErrMirrorClosed) {
		t.Fatalf("expected ErrMirrorClosed, got %v", err)
	}

	store.Remove("t-1")
	reopened, err := OpenMirror(store, MirrorOptions{})
	if err != nil {
		t.Fatalf("reopen mirror: %v", err)
	}
	t.Cleanup(reopened.Close)
	if len(reopened.Nodes()) != 2 {
		t.Fatalf("reopened mirror carries stale nodes: %d", len(reopened.Nodes()))
	}
}

func TestDeriveNodesUsesExplicitPositions(t *testing.T) {
	entries := []Entry{
		{Kind: KindRegular, Widget: sampleWidget("w-1", 1, 2, 3, 4)},
		{Kind: KindText, Text: TextWidget{ID: "t-1", Geometry: Geometry{X: 4, Y: 0, Width: 4, Height: 5}}},
	}
	specs := DeriveNodes(entries)
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}
	if specs[0].ID != "w-1" || specs[0].X != 1 || specs[0].AutoPosition {
		t.Fatalf("unexpected spec: %+v", specs[0])
	}
	if specs[1].ID != "t-1" || specs[1].W != 4 || specs[1].H != 5 {
		t.Fatalf("unexpected spec: %+v", specs[1])
	}
}
