package reqctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestRequestMeta(t *testing.T) {
	ctx := context.Background()
	if _, ok := RequestMetaFromContext(ctx); ok {
		t.Fatal("expected no meta on a bare context")
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		t.Fatalf("expected empty request id, got %q", rid)
	}

	ctx = WithRequestMeta(ctx, &RequestMeta{RequestID: "req-1"})
	if rid := RequestIDFromContext(ctx); rid != "req-1" {
		t.Fatalf("expected req-1, got %q", rid)
	}

	if _, ok := RequestMetaFromContext(WithRequestMeta(context.Background(), nil)); ok {
		t.Fatal("nil meta must not be reported as present")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithRequestMeta(context.Background(), &RequestMeta{RequestID: "req-42"})
	Logger(ctx, base).Info("hello")

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Fatalf("expected request id attribute, got %q", buf.String())
	}
}
