package requestctx

import (
	"context"
	"testing"
)

func TestWithUserIDRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), " guest-42 ")
	if got := UserIDFromContext(ctx); got != "guest-42" {
		t.Fatalf("UserIDFromContext = %q, want %q", got, "guest-42")
	}
}

func TestBlankUserIDIsNotStored(t *testing.T) {
	parent := WithUserID(context.Background(), "guest-1")
	ctx := WithUserID(parent, "  ")
	if got := UserIDFromContext(ctx); got != "guest-1" {
		t.Fatalf("UserIDFromContext = %q, want parent value", got)
	}
}

func TestUserIDFromContextWithoutValue(t *testing.T) {
	if got := UserIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty caller, got %q", got)
	}
}
