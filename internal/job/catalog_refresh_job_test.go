package job

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"alert-strategist/internal/catalog"
	"alert-strategist/internal/metrics"
	"alert-strategist/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace"
)

type stubRefresher struct {
	calls    atomic.Int32
	err      error
	loadedAt time.Time
}

func (s *stubRefresher) Refresh(ctx context.Context) (*catalog.Snapshot, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	at := s.loadedAt
	if at.IsZero() {
		at = time.Now()
	}
	return catalog.NewSnapshot(nil, nil, at), nil
}

func TestNewCatalogRefreshJobInterval(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")

	j := NewCatalogRefreshJob(tracer, &stubRefresher{}, 2, nil, logger.Nop())
	if j.interval != 2*time.Second {
		t.Fatalf("expected 2s interval, got %v", j.interval)
	}
	j = NewCatalogRefreshJob(tracer, &stubRefresher{}, 0, nil, logger.Nop())
	if j.interval != defaultRefreshInterval {
		t.Fatalf("expected default interval, got %v", j.interval)
	}
}

func TestCatalogRefreshJobStart(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubRefresher{}
	j := NewCatalogRefreshJob(tracer, stub, 1, nil, logger.Nop())
	j.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	eventually(t, func() bool { return stub.calls.Load() >= 2 })
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after cancel")
	}
}

func TestCatalogRefreshJobRecordsOutcome(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	ok := NewCatalogRefreshJob(tracer, &stubRefresher{}, 1, rec, logger.Nop())
	if err := ok.runOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failing := NewCatalogRefreshJob(tracer, &stubRefresher{err: errors.New("db down")}, 1, rec, logger.Nop())
	if err := failing.runOnce(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	if n, _ := testutil.GatherAndCount(reg, "strategist_catalog_refreshes_total"); n != 2 {
		t.Fatalf("expected ok and error series, got %d", n)
	}
}

func TestCatalogRefreshJobLogsSnapshot(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	stub := &stubRefresher{loadedAt: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)}
	j := NewCatalogRefreshJob(trace.NewNoopTracerProvider().Tracer("test"), stub, 1, nil, log)

	if err := j.runOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"loaded_at":"2026-03-04T10:00:00Z"`) || !strings.Contains(out, `"aliases":`) {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
