package correlation

import (
	"context"
	"testing"
)

func TestWithDefaultKeepsInboundID(t *testing.T) {
	ctx := WithID(context.Background(), "req-1")
	ctx = WithDefault(ctx, "run-1")
	if got := FromContext(ctx); got != "req-1" {
		t.Fatalf("expected inbound id to win, got %q", got)
	}
}

func TestWithDefaultFillsEmptyContext(t *testing.T) {
	id := NewID()
	if len(id) != 26 {
		t.Fatalf("expected 26-char ulid, got %q", id)
	}
	ctx := WithDefault(context.Background(), id)
	if FromContext(ctx) != id {
		t.Fatal("expected generated id on context")
	}
}

func TestWithEmptyIDIsNoop(t *testing.T) {
	ctx := WithID(context.Background(), "")
	if FromContext(ctx) != "" {
		t.Fatal("expected no correlation id")
	}
}

func TestNewIDIsSortable(t *testing.T) {
	first := NewID()
	second := NewID()
	if second <= first {
		t.Fatalf("expected %q to sort after %q", second, first)
	}
}
