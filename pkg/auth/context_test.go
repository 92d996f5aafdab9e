package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestWithBusinessID_BusinessIDFromCtx(t *testing.T) {
	businessID := uuid.New()
	ctx := WithBusinessID(context.Background(), businessID)

	got, err := BusinessIDFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != businessID {
		t.Fatalf("expected %v, got %v", businessID, got)
	}
}

func TestBusinessIDFromCtx_EmptyContext(t *testing.T) {
	_, err := BusinessIDFromCtx(context.Background())
	if !errors.Is(err, ErrBusinessIDNotFound) {
		t.Fatalf("expected ErrBusinessIDNotFound, got %v", err)
	}
}

func TestBusinessIDFromCtx_NilUUID(t *testing.T) {
	ctx := WithBusinessID(context.Background(), uuid.Nil)
	_, err := BusinessIDFromCtx(ctx)
	if !errors.Is(err, ErrBusinessIDNotFound) {
		t.Fatalf("expected ErrBusinessIDNotFound for uuid.Nil, got %v", err)
	}
}

func TestBusinessIDFromCtx_Isolation(t *testing.T) {
	businessID1 := uuid.New()
	businessID2 := uuid.New()

	ctx1 := WithBusinessID(context.Background(), businessID1)
	ctx2 := WithBusinessID(context.Background(), businessID2)

	got1, _ := BusinessIDFromCtx(ctx1)
	got2, _ := BusinessIDFromCtx(ctx2)

	if got1 != businessID1 {
		t.Fatalf("ctx1: expected %v, got %v", businessID1, got1)
	}
	if got2 != businessID2 {
		t.Fatalf("ctx2: expected %v, got %v", businessID2, got2)
	}
	if got1 == got2 {
		t.Fatal("expected different business IDs in isolated contexts")
	}
}
