package services_test

import (
	"context"
	"testing"

	"phototagger/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithImagePath(ctx, "/photos/a.jpg")
	ctx = services.WithStage(ctx, "genre")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if path, ok := services.ImagePathFromContext(ctx); !ok || path != "/photos/a.jpg" {
		t.Fatalf("unexpected image path: %v %v", path, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "genre" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
