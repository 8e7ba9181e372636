package canvas

import (
	"context"
	"errors"
	"testing"
)

func TestSyncPersistGeometryChoosesEndpointByKind(t *testing.T) {
	backend := &fakeBackend{}
	adapter := NewSyncAdapter(backend, WithDispatcher(inline))
	ctx := context.Background()

	adapter.PersistGeometry(ctx, Entry{Kind: KindRegular, Widget: sampleWidget("w-1", 1, 2, 3, 4)})
	adapter.PersistGeometry(ctx, Entry{Kind: KindText, Text: TextWidget{
		ID:       "t-1",
		Content:  "<p>hi</p>",
		Geometry: Geometry{X: 0, Y: 0, Width: 4, Height: 5},
	}})

	if len(backend.widgetUpdates) != 1 || backend.widgetUpdates[0].ID != "w-1" {
		t.Fatalf("unexpected widget updates %#v", backend.widgetUpdates)
	}
	if len(backend.textUpdates) != 1 {
		t.Fatalf("unexpected text updates %#v", backend.textUpdates)
	}
	update := backend.textUpdates[0]
	if update.ID != "t-1" || !update.HasContent || update.Content != "<p>hi</p>" {
		t.Fatalf("text geometry update should carry content: %#v", update)
	}
}

func TestSyncFailureWarnsWithoutRollback(t *testing.T) {
	backend := &fakeBackend{updateErr: errors.New("boom")}
	notifier := &recordingNotifier{}
	adapter := NewSyncAdapter(backend, WithDispatcher(inline), WithNotifier(notifier))

	entry := Entry{Kind: KindRegular, Widget: sampleWidget("w-1", 1, 2, 3, 4)}
	adapter.PersistGeometry(context.Background(), entry)

	if notifier.count() != 1 {
		t.Fatalf("expected 1 warning, got %d", notifier.count())
	}
	// The entry the caller holds is untouched; no rollback happens anywhere.
	if entry.Widget.Geometry != (Geometry{X: 1, Y: 2, Width: 3, Height: 4}) {
		t.Fatalf("geometry mutated: %+v", entry.Widget.Geometry)
	}
}

func TestSyncPersistCreateBlocksAndReturnsRecord(t *testing.T) {
	backend := &fakeBackend{createID: "txt-42"}
	adapter := NewSyncAdapter(backend, WithDispatcher(inline))

	record, err := adapter.PersistCreate(context.Background(), TextWidget{
		ID:       "tmp-1",
		Content:  "<p>hello</p>",
		Geometry: Geometry{X: 0, Y: 0, Width: 4, Height: 5},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.ID != "txt-42" {
		t.Fatalf("unexpected record id %q", record.ID)
	}
	if len(backend.creates) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(backend.creates))
	}
	create := backend.creates[0]
	if create.Content != "<p>hello</p>" || create.Geometry != (Geometry{X: 0, Y: 0, Width: 4, Height: 5}) {
		t.Fatalf("unexpected create payload %#v", create)
	}
}

func TestSyncPersistCreateWithoutBackend(t *testing.T) {
	adapter := NewSyncAdapter(nil, WithDispatcher(inline))
	if _, err := adapter.PersistCreate(context.Background(), TextWidget{}); err == nil {
		t.Fatal("expected missing backend error")
	}
}

func TestSyncPersistDeleteChoosesEndpointByKind(t *testing.T) {
	backend := &fakeBackend{}
	adapter := NewSyncAdapter(backend, WithDispatcher(inline))
	ctx := context.Background()

	adapter.PersistDelete(ctx, Entry{Kind: KindRegular, Widget: Widget{ID: "w-1"}})
	adapter.PersistDelete(ctx, Entry{Kind: KindText, Text: TextWidget{ID: "t-1"}})

	if len(backend.widgetDeletes) != 1 || backend.widgetDeletes[0] != "w-1" {
		t.Fatalf("unexpected widget deletes %#v", backend.widgetDeletes)
	}
	if len(backend.textDeletes) != 1 || backend.textDeletes[0] != "t-1" {
		t.Fatalf("unexpected text deletes %#v", backend.textDeletes)
	}
}

func TestSyncDeleteFailureLeavesNoRetry(t *testing.T) {
	backend := &fakeBackend{deleteErr: errors.New("gone wrong")}
	notifier := &recordingNotifier{}
	adapter := NewSyncAdapter(backend, WithDispatcher(inline), WithNotifier(notifier))

	adapter.PersistDelete(context.Background(), Entry{Kind: KindText, Text: TextWidget{ID: "t-1"}})
	if notifier.count() != 1 {
		t.Fatalf("expected warning, got %d", notifier.count())
	}
	if len(backend.textDeletes) != 0 {
		t.Fatalf("delete recorded despite failure: %#v", backend.textDeletes)
	}
}
