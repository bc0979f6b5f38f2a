package httpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"state":"tracking","fps":29.5}`))
	}))
	defer srv.Close()

	var got struct {
		State string  `json:"state"`
		FPS   float64 `json:"fps"`
	}
	if err := GetJSON(context.Background(), srv.URL, &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if got.State != "tracking" || got.FPS != 29.5 {
		t.Errorf("Unexpected response: %+v", got)
	}
}

func TestPostJSONStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"cannot go from idle to paused"}`))
	}))
	defer srv.Close()

	err := PostJSON(context.Background(), srv.URL, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if se.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", se.Code)
	}
}

func TestGetJSONCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := GetJSON(ctx, "http://127.0.0.1:1/", nil); err == nil {
		t.Error("Expected cancelled request to fail")
	}
}
