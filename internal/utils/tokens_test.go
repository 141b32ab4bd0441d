package utils

import "testing"

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}
	b, _ := NewOpaqueToken(16)
	if a == b {
		t.Error("tokens must differ")
	}
	c, _ := NewOpaqueToken(0)
	if len(c) != 64 {
		t.Errorf("expected default 32 bytes, got %d hex chars", len(c))
	}
}
