package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestContextFieldsAreAttached(t *testing.T) {
	var buf bytes.Buffer
	prev := SetDefault(New(&buf, "info", "json"))
	defer SetDefault(prev)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = WithRoom(WithBooking(ctx, 7), "101")
	InfoContext(ctx, "Booking confirmed")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if line["request_id"] != "req-1" || line["room"] != "101" || line["booking_id"] != float64(7) {
		t.Fatalf("missing context fields: %v", line)
	}
}

func TestLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	prev := SetDefault(New(&buf, "warn", "text"))
	defer SetDefault(prev)

	Info("hidden")
	Warn("shown", "room", "102")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "room=102") {
		t.Fatalf("expected text output, got %s", out)
	}
}
