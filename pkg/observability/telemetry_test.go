package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
)

func TestInitTelemetry_ServesFiberMetrics(t *testing.T) {
	provider, err := InitTelemetry(context.Background(), Config{
		ServiceName: "coachbook_test",
		Environment: "test",
	})
	if err != nil {
		t.Fatalf("InitTelemetry failed: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	if otel.GetTracerProvider() != provider.TracerProvider {
		t.Fatal("expected global tracer provider to be installed")
	}

	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/ping", func(c fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Trace-Id") == "" {
		t.Fatal("expected X-Trace-Id header")
	}

	rec := httptest.NewRecorder()
	provider.MetricsHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "http_server_request_count") {
		t.Fatalf("expected request counter in scrape output, got:\n%s", body)
	}
}
