package activity

import (
	"context"
	"testing"
	"time"
)

func TestHooksNotifyNormalizesAndSkipsInvalid(t *testing.T) {
	var called int
	hooks := Hooks{
		HookFunc(func(ctx context.Context, evt Event) error {
			called++
			if evt.Verb != "canvas.text.save" {
				t.Fatalf("unexpected verb %q", evt.Verb)
			}
			if evt.ObjectType != "text_widget" || evt.ObjectID != "txt-42" {
				t.Fatalf("unexpected object %s %s", evt.ObjectType, evt.ObjectID)
			}
			return nil
		}),
	}

	// Missing verb: should skip.
	_ = hooks.Notify(context.Background(), Event{})
	if called != 0 {
		t.Fatalf("expected no calls for invalid event")
	}

	// Valid event should trigger the hook once, with fields trimmed.
	_ = hooks.Notify(context.Background(), Event{
		Verb:       " canvas.text.save ",
		ObjectType: " text_widget ",
		ObjectID:   " txt-42 ",
	})
	if called != 1 {
		t.Fatalf("expected hook to be called once, got %d", called)
	}
}

func TestHooksNotifyStopsOnFirstError(t *testing.T) {
	var second int
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error {
			return context.Canceled
		}),
		HookFunc(func(context.Context, Event) error {
			second++
			return nil
		}),
	}
	if err := hooks.Notify(context.Background(), Event{Verb: "canvas.entry.move"}); err == nil {
		t.Fatalf("expected first hook error to propagate")
	}
	if second != 0 {
		t.Fatalf("expected later hooks to be skipped, got %d calls", second)
	}
}

func TestNormalizeEventClones(t *testing.T) {
	meta := map[string]any{"x": 3, "y": 1}
	recipients := []string{"ops@example.com"}
	now := time.Now()

	evt := Event{
		Verb:       "canvas.entry.move",
		ObjectType: "widget",
		ObjectID:   "w-1",
		Metadata:   meta,
		Recipients: recipients,
		OccurredAt: now,
	}
	n := NormalizeEvent(evt)

	n.Metadata["x"] = 9
	if evt.Metadata["x"] != 3 {
		t.Fatalf("original metadata mutated")
	}

	if len(n.Recipients) == 0 || &n.Recipients[0] == &evt.Recipients[0] {
		t.Fatalf("recipients slice should be cloned")
	}
	n.Recipients[0] = "alerts@example.com"
	if recipients[0] != "ops@example.com" {
		t.Fatalf("original recipients mutated")
	}
	if n.OccurredAt.IsZero() || !n.OccurredAt.Equal(now) {
		t.Fatalf("occurred_at should be preserved when set")
	}
}
