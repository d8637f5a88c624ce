package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.With(String("component", "engine")).Info("evaluated",
		Int64("strategy_id", 7),
		Bool("satisfied", true),
		Strings("matched", []string{"Discount Zone"}),
		Duration("took", 15*time.Millisecond),
		Error(errors.New("boom")),
	)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if line["component"] != "engine" || line["message"] != "evaluated" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if line["strategy_id"] != float64(7) || line["satisfied"] != true || line["error"] != "boom" {
		t.Fatalf("missing structured fields: %v", line)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatal("expected warn line")
	}
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	orig := L()
	SetDefault(nil)
	if L() != orig {
		t.Fatal("nil logger must not replace default")
	}
}
