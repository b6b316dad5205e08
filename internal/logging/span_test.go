package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSpanEndLogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)

	ctx, span := StartSpan(ctx, "test.operation")
	span.End()

	out := buf.String()
	if !strings.Contains(out, "span completed") {
		t.Fatalf("expected completion entry, got %q", out)
	}
	if !strings.Contains(out, "test.operation") {
		t.Fatalf("expected span name in entry, got %q", out)
	}
	if TraceIDFromContext(ctx) == "" {
		t.Fatal("expected a trace id on the derived context")
	}
}

func TestSpanFailLogsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)

	_, span := StartSpan(ctx, "test.operation")
	span.Fail(errors.New("connection refused"))

	out := buf.String()
	if !strings.Contains(out, "span failed") {
		t.Fatalf("expected failure entry, got %q", out)
	}
	if !strings.Contains(out, "connection refused") {
		t.Fatalf("expected the error in the entry, got %q", out)
	}
}

func TestSpanNilSafe(t *testing.T) {
	var span *Span
	span.End()
	span.Fail(errors.New("ignored"))
}
