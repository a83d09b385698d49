package logs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFanOut(t *testing.T) {
	var text, js bytes.Buffer
	textH := slog.NewTextHandler(&text, &slog.HandlerOptions{Level: slog.LevelDebug})
	jsonH := slog.NewJSONHandler(&js, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(fanOut(textH, jsonH)).With("coach_id", "c1")

	logger.Info("slots computed")
	logger.Warn("busy interval malformed", "source", "google:primary")

	if got := strings.Count(text.String(), "\n"); got != 2 {
		t.Fatalf("text handler: expected 2 lines, got %d: %s", got, text.String())
	}

	lines := strings.Split(strings.TrimSpace(js.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("json handler: expected only the warning, got %q", js.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json line: %v", err)
	}
	if rec["coach_id"] != "c1" || rec["source"] != "google:primary" {
		t.Fatalf("attributes not propagated: %v", rec)
	}
}

func TestFanOut_EnabledIfAnyHandlerIs(t *testing.T) {
	quiet := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})
	chatty := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	if !fanOut(quiet, chatty).Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be enabled through the chatty handler")
	}
	if fanOut(quiet).Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("single handler should keep its own level")
	}
}
