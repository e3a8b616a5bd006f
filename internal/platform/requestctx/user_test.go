package requestctx

import (
	"context"
	"testing"
)

func TestUserEmailRoundTrip(t *testing.T) {
	ctx := WithUserSlot(context.Background())
	SetUserEmail(ctx, "ana@example.com")
	if got := UserEmailFromContext(ctx); got != "ana@example.com" {
		t.Fatalf("UserEmailFromContext = %q, want %q", got, "ana@example.com")
	}
}

func TestUserEmailVisibleToParentContext(t *testing.T) {
	outer := WithUserSlot(context.Background())
	inner, cancel := context.WithCancel(outer)
	defer cancel()
	SetUserEmail(inner, "bo@example.com")
	if got := UserEmailFromContext(outer); got != "bo@example.com" {
		t.Fatalf("outer context = %q, want %q", got, "bo@example.com")
	}
}

func TestSetUserEmailWithoutSlot(t *testing.T) {
	ctx := context.Background()
	SetUserEmail(ctx, "ignored@example.com")
	if got := UserEmailFromContext(ctx); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestUserEmailFromNilContext(t *testing.T) {
	if got := UserEmailFromContext(nil); got != "" {
		t.Fatalf("expected empty string for nil context, got %q", got)
	}
	if ctx := WithUserSlot(nil); ctx == nil {
		t.Fatal("expected non-nil context")
	}
}
