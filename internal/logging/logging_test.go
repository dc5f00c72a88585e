package logging_test

import (
	"alcyxob/hyrox-trainer/internal/logging"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestContextHandler_AddsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := logging.WithAttrs(context.Background(), slog.String("request_id", "abc"))
	ctx = logging.WithAttrs(ctx, slog.String("user_id", "u1"))
	logger.InfoContext(ctx, "hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log record: %v", err)
	}
	if record["request_id"] != "abc" || record["user_id"] != "u1" {
		t.Errorf("record = %v, want request_id and user_id", record)
	}
}

func TestWithAttrs_DoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	parent := logging.WithAttrs(context.Background(), slog.String("a", "1"))
	_ = logging.WithAttrs(parent, slog.String("b", "2"))
	logger.InfoContext(parent, "parent")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log record: %v", err)
	}
	if _, ok := record["b"]; ok {
		t.Errorf("parent context carries child attribute: %v", record)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format, level string
		wantErr       bool
	}{
		{"json", "info", false},
		{"text", "debug", false},
		{"", "WARN", false},
		{"xml", "info", true},
		{"json", "loud", true},
	}
	for _, tt := range tests {
		_, err := logging.New(&bytes.Buffer{}, tt.format, tt.level)
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q, %q) error = %v, wantErr %v", tt.format, tt.level, err, tt.wantErr)
		}
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "text", "warn")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %q", buf.String())
	}
	logger.Warn("loud")
	if buf.Len() == 0 {
		t.Error("warn record not written")
	}
}
