// Package notify delivers recorded actions to downstream channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"alert-strategist/internal/domain"
	"alert-strategist/internal/metrics"
	"alert-strategist/pkg/logger"
)

type Notifier interface {
	Send(ctx context.Context, action domain.Action) error
}

type namer interface {
	Name() string
}

func nameOf(n Notifier) string {
	if nn, ok := n.(namer); ok {
		return nn.Name()
	}
	return fmt.Sprintf("%T", n)
}

// Multi fans one action out to every notifier concurrently. A failing
// notifier never blocks the others; all failures are joined.
type Multi struct {
	mu        sync.RWMutex
	notifiers []Notifier
	metrics   *metrics.Recorder
}

func NewMulti(rec *metrics.Recorder, notifiers ...Notifier) *Multi {
	m := &Multi{metrics: rec}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Add registers a notifier after construction, for channels that depend on
// components built after the dispatcher.
func (m *Multi) Add(n Notifier) {
	if n == nil {
		return
	}
	m.mu.Lock()
	m.notifiers = append(m.notifiers, n)
	m.mu.Unlock()
}

func (m *Multi) snapshot() []Notifier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Notifier(nil), m.notifiers...)
}

func (m *Multi) Name() string {
	notifiers := m.snapshot()
	names := make([]string, 0, len(notifiers))
	for _, n := range notifiers {
		names = append(names, nameOf(n))
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

func (m *Multi) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notifiers)
}

// RecordsFailures is true when failures are counted per notifier.
func (m *Multi) RecordsFailures() bool { return m.metrics != nil }

func (m *Multi) Send(ctx context.Context, action domain.Action) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, n := range m.snapshot() {
		wg.Add(1)
		go func(n Notifier) {
			defer wg.Done()
			if err := n.Send(ctx, action); err != nil {
				name := nameOf(n)
				m.metrics.RecordNotifyError(name)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// LogNotifier writes each action as a structured log line. It is the
// fallback channel when no external notifier is configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.L()
	}
	return &LogNotifier{log: log.With(logger.String("component", "notify"))}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(ctx context.Context, a domain.Action) error {
	n.log.Info("action",
		logger.Int64("action_id", a.ID),
		logger.Int64("strategy_id", a.StrategyID),
		logger.String("strategy", a.StrategyName),
		logger.String("ticker", a.Ticker),
		logger.String("action", string(a.Kind)),
		logger.String("score", a.Score.String()),
		logger.Strings("matched", a.MatchedAlerts),
		logger.Strings("missing", a.MissingAlerts),
	)
	return nil
}
