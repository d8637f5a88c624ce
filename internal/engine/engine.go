package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"alert-strategist/internal/catalog"
	"alert-strategist/internal/dispatch"
	"alert-strategist/internal/domain"
	"alert-strategist/internal/metrics"
	"alert-strategist/internal/normalizer"
	"alert-strategist/internal/rules"
	"alert-strategist/pkg/logger"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type AlertStore interface {
	Insert(ctx context.Context, alert domain.Alert) (domain.Alert, error)
	// QueryWindow returns non-test alerts for ticker at or after since. A zero
	// since means no lower bound.
	QueryWindow(ctx context.Context, ticker string, since time.Time) ([]domain.Alert, error)
}

type StrategyStore interface {
	ListEnabled(ctx context.Context) ([]domain.Strategy, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, s domain.Strategy, ticker string, res rules.Result, score decimal.Decimal, now time.Time) (dispatch.Outcome, error)
	Wait()
}

type CatalogProvider interface {
	Snapshot() *catalog.Snapshot
}

type Config struct {
	EvalTimeout  time.Duration
	StoreTimeout time.Duration
	Concurrency  int
}

func (c Config) withDefaults() Config {
	if c.EvalTimeout <= 0 {
		c.EvalTimeout = 10 * time.Second
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	return c
}

// Engine ingests alerts and evaluates every applicable strategy for the
// alert's ticker. Strategies are isolated from each other: a failure,
// timeout or panic in one is recorded in its outcome only.
type Engine struct {
	tracer     trace.Tracer
	alerts     AlertStore
	strategies StrategyStore
	dispatcher Dispatcher
	catalog    CatalogProvider
	locker     Locker
	metrics    *metrics.Recorder
	log        *logger.Logger
	cfg        Config
	now        func() time.Time

	wg sync.WaitGroup
}

type Option func(*Engine)

func WithLocker(l Locker) Option {
	return func(e *Engine) {
		if l != nil {
			e.locker = l
		}
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(
	tracer trace.Tracer,
	alerts AlertStore,
	strategies StrategyStore,
	dispatcher Dispatcher,
	cat CatalogProvider,
	cfg Config,
	opts ...Option,
) *Engine {
	e := &Engine{
		tracer:     tracer,
		alerts:     alerts,
		strategies: strategies,
		dispatcher: dispatcher,
		catalog:    cat,
		locker:     NewKeyedLocker(),
		log:        logger.L(),
		cfg:        cfg.withDefaults(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(logger.String("component", "engine"))
	return e
}

// Ingest normalises and stores a webhook payload, then starts evaluation in
// the background. It returns once the alert is persisted; cancelling ctx
// afterwards does not stop the evaluation.
func (e *Engine) Ingest(ctx context.Context, raw string) (domain.Alert, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ingest")
	defer span.End()

	receivedAt := e.now()
	alert, err := normalizer.Parse(raw, receivedAt, e.catalog.Snapshot())
	if err != nil {
		e.metrics.RecordAlert("rejected")
		span.SetStatus(codes.Error, err.Error())
		return domain.Alert{}, err
	}

	insertCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()
	saved, err := e.alerts.Insert(insertCtx, alert)
	if err != nil {
		e.metrics.RecordAlert("failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert alert")
		return domain.Alert{}, fmt.Errorf("insert alert: %w", err)
	}
	e.metrics.RecordAlert("accepted")
	span.SetAttributes(
		attribute.String("alert.ticker", saved.Ticker),
		attribute.String("alert.indicator", saved.Indicator),
		attribute.Bool("alert.test", saved.Test),
	)

	if saved.Test {
		e.log.Info("test alert stored",
			logger.Int64("alert_id", saved.ID),
			logger.String("ticker", saved.Ticker),
		)
		return saved, nil
	}

	evalAt := receivedAt.UTC()
	if saved.Timestamp.After(evalAt) {
		evalAt = saved.Timestamp
	}
	bg := context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		prior, err := e.replayOf(bg, saved, evalAt)
		if err != nil {
			e.log.Warn("replay check failed",
				logger.Int64("alert_id", saved.ID),
				logger.Error(err),
			)
		}
		if prior != nil {
			e.log.Info("replayed alert not evaluated",
				logger.Int64("alert_id", saved.ID),
				logger.Int64("first_alert_id", prior.ID),
				logger.String("ticker", saved.Ticker),
			)
			return
		}
		if _, err := e.EvaluateTicker(bg, saved.Ticker, evalAt); err != nil {
			e.log.Error("ticker evaluation failed",
				logger.String("ticker", saved.Ticker),
				logger.Error(err),
			)
		}
	}()
	return saved, nil
}

// EvaluateTicker runs every enabled strategy that applies to ticker against
// the alerts visible at now.
func (e *Engine) EvaluateTicker(ctx context.Context, ticker string, now time.Time) ([]dispatch.Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "engine.evaluate-ticker", trace.WithAttributes(attribute.String("ticker", ticker)))
	defer span.End()

	strategies, err := e.applicable(ctx, ticker)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	snap := e.catalog.Snapshot()
	outcomes := make([]dispatch.Outcome, len(strategies))
	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)
	for i, s := range strategies {
		i, s := i, s
		g.Go(func() error {
			outcomes[i] = e.evaluateStrategy(ctx, s, ticker, now, snap)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, nil
}

func (e *Engine) evaluateStrategy(ctx context.Context, s domain.Strategy, ticker string, now time.Time, snap *catalog.Snapshot) (out dispatch.Outcome) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "engine.evaluate-strategy", trace.WithAttributes(
		attribute.Int64("strategy.id", s.ID),
		attribute.String("ticker", ticker),
	))
	defer span.End()

	out = dispatch.Outcome{StrategyID: s.ID, Ticker: ticker, State: dispatch.StateFailed}
	defer func() {
		if r := recover(); r != nil {
			out = dispatch.Outcome{StrategyID: s.ID, Ticker: ticker, State: dispatch.StateFailed, Err: fmt.Errorf("panic: %v", r)}
		}
		if out.Err != nil {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, "strategy evaluation failed")
			e.log.Error("strategy evaluation failed",
				logger.Int64("strategy_id", s.ID),
				logger.String("ticker", ticker),
				logger.Error(out.Err),
			)
		}
		span.SetAttributes(attribute.String("outcome", string(out.State)))
		e.metrics.RecordEvaluation(string(out.State), time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.EvalTimeout)
	defer cancel()

	unlock, err := e.locker.Lock(ctx, LockKey(s.ID, ticker))
	if err != nil {
		out.Err = fmt.Errorf("lock %d/%s: %w", s.ID, ticker, err)
		return out
	}
	defer unlock()

	res, score, err := e.match(ctx, s, ticker, now, snap)
	if err != nil {
		out.Err = err
		return out
	}

	// a decided action is persisted even if the evaluation deadline passes
	dctx, dcancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.StoreTimeout)
	defer dcancel()
	out, err = e.dispatcher.Dispatch(dctx, s, ticker, res, score, now)
	if err != nil && out.Err == nil {
		out.Err = err
	}
	return out
}

func (e *Engine) match(ctx context.Context, s domain.Strategy, ticker string, now time.Time, snap *catalog.Snapshot) (rules.Result, decimal.Decimal, error) {
	window, err := e.alerts.QueryWindow(ctx, ticker, s.WindowStart(now))
	if err != nil {
		return rules.Result{}, decimal.Zero, fmt.Errorf("query window: %w", err)
	}
	res, err := rules.Match(s, rules.FilterWindow(window, s, now), snap)
	if err != nil {
		return rules.Result{}, decimal.Zero, err
	}
	return res, rules.Aggregate(res), nil
}

// Preview evaluates applicable strategies for ticker without locking or
// dispatching. Per-strategy failures are reported in the snapshot.
func (e *Engine) Preview(ctx context.Context, ticker string, now time.Time) ([]domain.ScoreSnapshot, error) {
	ctx, span := e.tracer.Start(ctx, "engine.preview", trace.WithAttributes(attribute.String("ticker", ticker)))
	defer span.End()

	strategies, err := e.applicable(ctx, ticker)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	snap := e.catalog.Snapshot()
	out := make([]domain.ScoreSnapshot, len(strategies))
	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)
	for i, s := range strategies {
		i, s := i, s
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, e.cfg.EvalTimeout)
			defer cancel()
			ss := domain.ScoreSnapshot{
				StrategyID:   s.ID,
				StrategyName: s.Name,
				Ticker:       ticker,
				Score:        decimal.Zero,
				Matched:      []string{},
				Missing:      []string{},
				EvaluatedAt:  now.UTC(),
			}
			res, score, err := e.match(sctx, s, ticker, now, snap)
			if err != nil {
				ss.Error = err.Error()
			} else {
				ss.Score = score
				ss.Satisfied = res.Satisfied
				ss.Matched = res.MatchedNames()
				if res.Missing != nil {
					ss.Missing = res.Missing
				}
			}
			out[i] = ss
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func (e *Engine) applicable(ctx context.Context, ticker string) ([]domain.Strategy, error) {
	lctx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()
	all, err := e.strategies.ListEnabled(lctx)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	out := make([]domain.Strategy, 0, len(all))
	for _, s := range all {
		if s.Enabled && s.AppliesTo(ticker) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Wait blocks until background evaluations and notifications finish.
func (e *Engine) Wait() {
	e.wg.Wait()
	e.dispatcher.Wait()
}

// replayOf returns an earlier stored alert carrying the same payload for the
// same canonical pair, looking back over the widest window of the ticker's
// strategies. Replays without an explicit TIME get a fresh timestamp, so the
// action dedupe key alone cannot catch them.
func (e *Engine) replayOf(ctx context.Context, saved domain.Alert, now time.Time) (*domain.Alert, error) {
	if saved.ID == 0 {
		return nil, nil
	}
	ctx, span := e.tracer.Start(ctx, "engine.replay-check")
	defer span.End()

	strategies, err := e.applicable(ctx, saved.Ticker)
	if err != nil || len(strategies) == 0 {
		return nil, err
	}
	since := now
	for _, s := range strategies {
		start := s.WindowStart(now)
		if start.IsZero() {
			since = time.Time{}
			break
		}
		if start.Before(since) {
			since = start
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()
	alerts, err := e.alerts.QueryWindow(queryCtx, saved.Ticker, since)
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}
	snap := e.catalog.Snapshot()
	for i := range alerts {
		a := alerts[i]
		// the lowest id wins so concurrent copies never all skip
		if a.Test || a.ID == 0 || a.ID >= saved.ID {
			continue
		}
		if a.Raw == saved.Raw && a.HTF == saved.HTF &&
			snap.SamePair(a.Indicator, a.Trigger, saved.Indicator, saved.Trigger) {
			return &a, nil
		}
	}
	return nil, nil
}

// IsParseError reports whether err came from a malformed payload.
func IsParseError(err error) bool {
	var pe *normalizer.ParseError
	return errors.As(err, &pe)
}
