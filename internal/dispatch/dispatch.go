package dispatch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"alert-strategist/internal/domain"
	"alert-strategist/internal/metrics"
	"alert-strategist/internal/rules"
	"alert-strategist/pkg/logger"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateUnmatched           State = "UNMATCHED"
	StateActionRecorded      State = "ACTION_RECORDED"
	StateSuppressedDuplicate State = "SUPPRESSED_DUPLICATE"
	StateFailed              State = "FAILED"
)

const defaultNotifyTimeout = 10 * time.Second

// Outcome is the result of evaluating one strategy for one ticker.
type Outcome struct {
	StrategyID int64
	Ticker     string
	State      State
	Score      decimal.Decimal
	Action     *domain.Action
	Matched    []string
	Missing    []string
	Err        error
}

type ActionStore interface {
	// InsertIfAbsent persists the action unless one with the same dedupe key
	// exists, in which case it returns domain.ErrDuplicateAction.
	InsertIfAbsent(ctx context.Context, action domain.Action) (domain.Action, error)
}

type Notifier interface {
	Send(ctx context.Context, action domain.Action) error
}

type Dispatcher struct {
	store         ActionStore
	notifier      Notifier
	metrics       *metrics.Recorder
	log           *logger.Logger
	notifyTimeout time.Duration

	wg sync.WaitGroup
}

func New(store ActionStore, notifier Notifier, rec *metrics.Recorder, log *logger.Logger, notifyTimeout time.Duration) *Dispatcher {
	if log == nil {
		log = logger.L()
	}
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &Dispatcher{
		store:         store,
		notifier:      notifier,
		metrics:       rec,
		log:           log.With(logger.String("component", "dispatcher")),
		notifyTimeout: notifyTimeout,
	}
}

// Dispatch records an action for a satisfied result and notifies about it.
// Unsatisfied results are a no-op. A second dispatch of the same logical
// event is suppressed by the store's dedupe key.
func (d *Dispatcher) Dispatch(ctx context.Context, s domain.Strategy, ticker string, res rules.Result, score decimal.Decimal, now time.Time) (Outcome, error) {
	out := Outcome{
		StrategyID: s.ID,
		Ticker:     ticker,
		State:      StateUnmatched,
		Score:      score,
		Matched:    res.MatchedNames(),
		Missing:    res.Missing,
	}
	if !res.Satisfied {
		return out, nil
	}

	kind, err := s.ActionKind()
	if err != nil {
		out.State = StateFailed
		out.Err = err
		return out, err
	}

	triggeredAt := res.TriggeredAt()
	action := domain.Action{
		StrategyID:    s.ID,
		StrategyName:  s.Name,
		Ticker:        ticker,
		Kind:          kind,
		Score:         score,
		Timestamp:     now.UTC(),
		TriggeredAt:   triggeredAt,
		MatchedAlerts: out.Matched,
		MissingAlerts: nonNil(res.Missing),
		DedupeKey:     DedupeKey(s.ID, ticker, out.Matched, triggeredAt),
	}

	saved, err := d.store.InsertIfAbsent(ctx, action)
	if errors.Is(err, domain.ErrDuplicateAction) {
		out.State = StateSuppressedDuplicate
		d.log.Info("duplicate action suppressed",
			logger.Int64("strategy_id", s.ID),
			logger.String("ticker", ticker),
			logger.String("dedupe_key", action.DedupeKey),
		)
		return out, nil
	}
	if err != nil {
		out.State = StateFailed
		out.Err = fmt.Errorf("record action: %w", err)
		return out, out.Err
	}

	out.State = StateActionRecorded
	out.Action = &saved
	d.metrics.RecordAction(string(saved.Kind))
	d.log.Info("action recorded",
		logger.Int64("strategy_id", s.ID),
		logger.String("ticker", ticker),
		logger.String("action", string(saved.Kind)),
		logger.String("score", saved.Score.String()),
	)
	d.notify(saved)
	return out, nil
}

// notify sends in the background; the recorded action is never rolled back.
func (d *Dispatcher) notify(action domain.Action) {
	if d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.notifyTimeout)
		defer cancel()
		if err := d.notifier.Send(ctx, action); err != nil {
			if !countsOwnFailures(d.notifier) {
				d.metrics.RecordNotifyError(notifierName(d.notifier))
			}
			d.log.Warn("action notification failed",
				logger.Int64("action_id", action.ID),
				logger.Int64("strategy_id", action.StrategyID),
				logger.Error(err),
			)
		}
	}()
}

// Wait blocks until pending notifications finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// DedupeKey identifies one logical triggering event: the same strategy and
// ticker matched by the same alert names with the same latest timestamp.
func DedupeKey(strategyID int64, ticker string, matched []string, triggeredAt time.Time) string {
	names := append([]string(nil), matched...)
	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(strategyID, 10)))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.ToUpper(ticker)))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.Join(names, "\x1f")))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatInt(triggeredAt.UnixMilli(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}

type namer interface {
	Name() string
}

func notifierName(n Notifier) string {
	if nn, ok := n.(namer); ok {
		return nn.Name()
	}
	return "notifier"
}

// countsOwnFailures reports whether the notifier records per-channel
// failures itself, as a fan-out does.
func countsOwnFailures(n Notifier) bool {
	rf, ok := n.(interface{ RecordsFailures() bool })
	return ok && rf.RecordsFailures()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
