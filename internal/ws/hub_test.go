package ws

import (
	"encoding/json"
	"testing"
)

func TestHub_BroadcastReachesRegisteredClients(t *testing.T) {
	h := NewHub()
	a, b := NewClient(), NewClient()
	h.Register(a)
	h.Register(b)

	if err := h.Broadcast(map[string]string{"type": "callback"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Send:
			var got map[string]string
			if err := json.Unmarshal(msg, &got); err != nil || got["type"] != "callback" {
				t.Errorf("unexpected message %s (%v)", msg, err)
			}
		default:
			t.Error("expected a queued message")
		}
	}
}

func TestHub_CloseUnregisters(t *testing.T) {
	h := NewHub()
	c := NewClient()
	h.Register(c)
	if h.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", h.ClientCount())
	}
	c.Close()
	c.Close()
	if h.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", h.ClientCount())
	}
	if _, ok := <-c.Send; ok {
		t.Error("expected Send to be closed")
	}
	if err := h.Broadcast("after close"); err != nil {
		t.Errorf("broadcast: %v", err)
	}
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	h := NewHub()
	c := NewClient()
	h.Register(c)
	for i := 0; i < cap(c.Send)+10; i++ {
		if err := h.Broadcast(i); err != nil {
			t.Fatalf("broadcast %d: %v", i, err)
		}
	}
	if len(c.Send) != cap(c.Send) {
		t.Errorf("expected full buffer, got %d/%d", len(c.Send), cap(c.Send))
	}
}

func TestHub_BroadcastUnmarshalable(t *testing.T) {
	h := NewHub()
	if err := h.Broadcast(make(chan int)); err == nil {
		t.Error("expected marshal error")
	}
}
