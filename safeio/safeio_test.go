package safeio

import (
	"strings"
	"testing"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		base, input string
		wantErr     bool
	}{
		{"/data/documents", "rapport.pptx", false},
		{"/data/documents", "2026/bilan.pdf", false},
		{"/data/documents", "../etc/passwd", true},
		{"/data/documents", "abc/../def", true},
		{"/data/documents", "abc/../../outside", true},
		{"/data/documents", "normal-id_123.csv", false},
	}
	for _, tt := range tests {
		_, err := ResolvePath(tt.base, tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolvePath(%q, %q) error=%v, wantErr=%v", tt.base, tt.input, err, tt.wantErr)
		}
	}
}

func TestLimitedReadAll(t *testing.T) {
	data := strings.Repeat("x", 100)
	got, err := LimitedReadAll(strings.NewReader(data), 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("expected 100 bytes, got %d", len(got))
	}

	_, err = LimitedReadAll(strings.NewReader(data), 50)
	if err == nil {
		t.Fatal("expected error for oversized read")
	}
}
