package chatclient

import (
	"testing"

	"github.com/pkg/errors"
)

func TestEndpoint_Validate(t *testing.T) {
	tests := []struct {
		port  int
		valid bool
	}{
		{0, true},
		{13000, true},
		{65535, true},
		{-1, false},
		{65536, false},
	}

	for _, tt := range tests {
		err := Endpoint{Host: "127.0.0.1", Port: tt.port}.Validate()
		if tt.valid && err != nil {
			t.Errorf("port %d: unexpected error %v", tt.port, err)
		}
		if !tt.valid && !errors.Is(err, ErrPortOutOfRange) {
			t.Errorf("port %d: expected ErrPortOutOfRange, got %v", tt.port, err)
		}
	}
}

func TestEndpoint_String(t *testing.T) {
	if got := (Endpoint{Host: "127.0.0.1", Port: 13000}).String(); got != "127.0.0.1:13000" {
		t.Errorf("String() = %q", got)
	}
	if got := (Endpoint{Host: "::1", Port: 80}).String(); got != "[::1]:80" {
		t.Errorf("String() = %q", got)
	}
}
