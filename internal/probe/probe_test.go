package probe

import (
	"context"
	"testing"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    float64
		wantErr bool
	}{
		{"plain seconds", "12.480000\n", 12.48, false},
		{"integer", "7", 7, false},
		{"trailing whitespace", "  3.5  \n", 3.5, false},
		{"empty output", "", 0, true},
		{"not available", "N/A\n", 0, true},
		{"garbage", "duration=oops", 0, true},
		{"negative", "-4", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDuration([]byte(tt.out))
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDuration(%q) expected error", tt.out)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDuration(%q) error = %v", tt.out, err)
			}
			if got != tt.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.out, got, tt.want)
			}
		})
	}
}

func TestStub_AlwaysZero(t *testing.T) {
	s := NewStub(nil)

	d, err := s.Duration(context.Background(), "/nowhere/clip.mp4")
	if err != nil {
		t.Fatalf("Duration() error = %v", err)
	}
	if d != 0 {
		t.Errorf("Duration() = %v, want 0", d)
	}
}
