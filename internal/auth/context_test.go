package auth

import (
	"context"
	"testing"
)

func TestWithActorAndFromContext(t *testing.T) {
	ctx := WithActor(context.Background(), Actor{ID: "mom", Role: RoleParent})
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected Actor in context")
	}
	if got.ID != "mom" {
		t.Errorf("ID = %q, want %q", got.ID, "mom")
	}
	if got.Role != RoleParent {
		t.Errorf("Role = %q, want %q", got.Role, RoleParent)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing Actor")
	}
}

func TestIsParent(t *testing.T) {
	if IsParent(context.Background()) {
		t.Error("empty context should not be parent")
	}
	child := WithActor(context.Background(), Actor{ID: "kid1", Role: RoleChild})
	if IsParent(child) {
		t.Error("child should not be parent")
	}
	parent := WithActor(context.Background(), Actor{Role: RoleParent})
	if !IsParent(parent) {
		t.Error("expected parent")
	}
}

func TestActorID(t *testing.T) {
	if got := ActorID(context.Background(), "parent"); got != "parent" {
		t.Errorf("ActorID = %q, want fallback", got)
	}
	ctx := WithActor(context.Background(), Actor{Role: RoleParent})
	if got := ActorID(ctx, "parent"); got != "parent" {
		t.Errorf("ActorID = %q, want fallback for empty id", got)
	}
	ctx = WithActor(context.Background(), Actor{ID: "dad", Role: RoleParent})
	if got := ActorID(ctx, "parent"); got != "dad" {
		t.Errorf("ActorID = %q, want %q", got, "dad")
	}
}
