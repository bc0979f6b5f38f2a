package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestEventEncode(t *testing.T) {
	msg, err := NewEvent(EventStatus, map[string]string{"state": "idle"}).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded struct {
		Type string            `json:"type"`
		Time time.Time         `json:"time"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(msg.Data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Type != EventStatus {
		t.Errorf("Expected type %q, got %q", EventStatus, decoded.Type)
	}
	if decoded.Data["state"] != "idle" {
		t.Errorf("Expected state idle, got %v", decoded.Data)
	}
	if decoded.Time.IsZero() {
		t.Error("Expected timestamp")
	}
}

func TestBroadcastNeverBlocks(t *testing.T) {
	h := New("test", nil)

	// Hub not running: the buffer fills, then messages are dropped
	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			h.Publish(EventStatus, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked")
	}
	if h.Dropped() != 300-256 {
		t.Errorf("Expected %d dropped, got %d", 300-256, h.Dropped())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	deadline := time.Now().Add(time.Second)
	for !h.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !h.IsRunning() {
		t.Fatal("Expected hub running")
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	if h.IsRunning() {
		t.Error("Expected hub stopped")
	}
	if h.ClientCount() != 0 {
		t.Errorf("Expected no clients, got %d", h.ClientCount())
	}
}

func TestNewClientAfterStop(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.Run(ctx)

	if _, err := NewClient(h, nil); err != ErrHubStopped {
		t.Errorf("Expected ErrHubStopped, got %v", err)
	}
}

func TestParseTopics(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"status", []string{EventStatus}},
		{" error , calibration", []string{EventError, EventCalibration}},
		{"status,frames,status", []string{EventStatus}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseTopics(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestBroadcastHonoursSubscriptions(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	all := newClient(h, nil, nil)
	errorsOnly := newClient(h, nil, []string{EventError})
	h.register <- all
	h.register <- errorsOnly

	h.Publish(EventStatus, "idle")
	h.Publish(EventError, "camera")

	for _, want := range []string{EventStatus, EventError} {
		select {
		case msg := <-all.send:
			if msg.Type != want {
				t.Errorf("Expected %s, got %s", want, msg.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("Expected %s for unfiltered client", want)
		}
	}

	select {
	case msg := <-errorsOnly.send:
		if msg.Type != EventError {
			t.Errorf("Expected only error events, got %s", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected error event for subscribed client")
	}
	select {
	case msg := <-errorsOnly.send:
		t.Errorf("Unexpected extra message %s", msg.Type)
	default:
	}
}
