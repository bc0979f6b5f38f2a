package loopback

import (
	"errors"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		addr string
		ok   bool
	}{
		{"127.0.0.1:8470", true},
		{"localhost:8470", true},
		{"[::1]:8470", true},
		{DashboardAddr, true},
		{"0.0.0.0:8470", false},
		{":8470", false},
		{"192.168.1.10:8470", false},
		{"no-port", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			err := Check(tt.addr)
			if tt.ok && err != nil {
				t.Errorf("Expected %s accepted, got %v", tt.addr, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("Expected %s rejected", tt.addr)
			}
		})
	}

	if err := Check("10.0.0.1:80"); !errors.Is(err, ErrNotLoopback) {
		t.Errorf("Expected ErrNotLoopback, got %v", err)
	}
}
