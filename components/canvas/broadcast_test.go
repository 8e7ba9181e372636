package canvas

import (
	"context"
	"testing"
)

func TestBroadcastHookFanOut(t *testing.T) {
	hook := NewBroadcastHook()
	first, cancelFirst := hook.Subscribe()
	second, cancelSecond := hook.Subscribe()
	t.Cleanup(cancelFirst)
	t.Cleanup(cancelSecond)

	event := Event{EntryID: "w-1", Kind: KindRegular, Reason: "move"}
	if err := hook.CanvasChanged(context.Background(), event); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	for _, ch := range []<-chan Event{first, second} {
		select {
		case got := <-ch:
			if got != event {
				t.Fatalf("unexpected event %#v", got)
			}
		default:
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	cancel()
	if _, open := <-events; open {
		t.Fatal("channel should be closed after cancel")
	}
	// Cancel twice is safe, and later broadcasts must not panic.
	cancel()
	if err := hook.CanvasChanged(context.Background(), Event{Reason: "delete"}); err != nil {
		t.Fatalf("broadcast after cancel: %v", err)
	}
}

func TestBroadcastHookDropsWhenSubscriberIsSlow(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	t.Cleanup(cancel)

	for i := 0; i < 20; i++ {
		_ = hook.CanvasChanged(context.Background(), Event{Reason: "move"})
	}
	received := 0
	for {
		select {
		case <-events:
			received++
			continue
		default:
		}
		break
	}
	if received == 0 || received > 8 {
		t.Fatalf("expected buffered delivery with overflow dropped, got %d", received)
	}
}
