package events

import "testing"

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	h.Publish(MoveStarted, MoveEvent{Target: 110, Ts: 1})

	ev := <-ch
	if ev.Name != MoveStarted {
		t.Errorf("event name = %s, want %s", ev.Name, MoveStarted)
	}
	payload, err := DecodeAs[MoveEvent](ev)
	if err != nil {
		t.Fatalf("DecodeAs returned error: %v", err)
	}
	if payload.Target != 110 {
		t.Errorf("payload target = %d, want 110", payload.Target)
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	h.Publish(MoveFinished, MoveEvent{Target: 70, Ts: 2})
}

func TestHubDropsEventsForSlowSubscribers(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	// Overfill the subscriber buffer; publishes must never block.
	for i := 0; i < 64; i++ {
		h.Publish(MoveStarted, MoveEvent{Target: i, Ts: int64(i)})
	}

	if n := len(ch); n != cap(ch) {
		t.Errorf("buffered events = %d, want full buffer of %d", n, cap(ch))
	}
}
