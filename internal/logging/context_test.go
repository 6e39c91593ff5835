package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"reframe/internal/services"
)

func TestContextFieldsExtractsAnnotations(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithFile(ctx, "clip.mov")
	ctx = services.WithStage(ctx, "probe")

	fields := ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	for _, key := range []string{FieldRunID, FieldFile, FieldStage} {
		if !HasAttrKey(fields, key) {
			t.Fatalf("missing %s in %v", key, fields)
		}
	}
}

func TestContextFieldsEmpty(t *testing.T) {
	if fields := ContextFields(context.Background()); len(fields) != 0 {
		t.Fatalf("expected no fields, got %v", fields)
	}
}

func TestWithContextAugmentsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := services.WithRunID(context.Background(), "run-7")
	ctx = services.WithFile(ctx, "clip.mov")
	WithContext(ctx, logger).Info("processing")

	out := buf.String()
	if !strings.Contains(out, "run_id=run-7") || !strings.Contains(out, "file=clip.mov") {
		t.Fatalf("expected context attrs in output, got %q", out)
	}
}

func TestWithContextWithoutAnnotations(t *testing.T) {
	if WithContext(context.Background(), nil) == nil {
		t.Fatal("expected a usable logger")
	}
	logger := NewNop()
	if WithContext(context.Background(), logger) != logger {
		t.Fatal("expected the same logger back when nothing is annotated")
	}
}

func TestErrorWithContextBackfillsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ErrorWithContext(logger, "probe failed", "probe_failed")
	out := buf.String()
	if !strings.Contains(out, "event_type=probe_failed") {
		t.Fatalf("expected backfilled event type, got %q", out)
	}
	if !strings.Contains(out, "error_hint=") {
		t.Fatalf("expected backfilled hint, got %q", out)
	}
}

func TestWarnWithContextKeepsExplicitHint(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WarnWithContext(logger, "destination exists, skipping", "output_exists",
		String(FieldErrorHint, "use --overwrite to replace"))
	out := buf.String()
	if !strings.Contains(out, `error_hint="use --overwrite to replace"`) {
		t.Fatalf("expected explicit hint preserved, got %q", out)
	}
	if strings.Contains(out, "check logs for details") {
		t.Fatalf("default hint must not override the explicit one, got %q", out)
	}
}
