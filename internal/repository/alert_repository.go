package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alert-strategist/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const alertColumns = `id, ticker, indicator, trigger, weight::text, ts, timeframe,
       price::text, htf, readings::text, is_test, raw, created_at`

// readings is the JSONB shape of the optional embedded sub-indicators.
type readings struct {
	Momentum      *domain.SubReading    `json:"momentum,omitempty"`
	TrendStrength *domain.SubReading    `json:"trend_strength,omitempty"`
	Volume        *domain.VolumeReading `json:"volume,omitempty"`
}

type AlertRepository struct {
	pool   Pool
	tracer trace.Tracer
}

func NewAlertRepository(pool Pool, tracer trace.Tracer) *AlertRepository {
	return &AlertRepository{pool: pool, tracer: tracer}
}

func (r *AlertRepository) Insert(ctx context.Context, a domain.Alert) (domain.Alert, error) {
	ctx, span := r.tracer.Start(ctx, "alert-repo.insert")
	defer span.End()

	payload, err := json.Marshal(readings{Momentum: a.Momentum, TrendStrength: a.TrendStrength, Volume: a.Volume})
	if err != nil {
		return domain.Alert{}, fmt.Errorf("marshal readings: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO alerts (
    ticker, indicator, trigger, weight, ts, timeframe,
    price, htf, readings, is_test, raw
) VALUES (
    $1, $2, $3, $4::numeric, $5, $6,
    $7::numeric, $8, $9::jsonb, $10, $11
)
RETURNING `+alertColumns,
		a.Ticker,
		a.Indicator,
		a.Trigger,
		a.Weight.String(),
		a.Timestamp.UTC(),
		a.Timeframe,
		nullNumericArg(a.Price),
		a.HTF,
		string(payload),
		a.Test,
		a.Raw,
	)
	return scanAlert(row)
}

// QueryWindow returns the non-test alerts for ticker with ts >= since, newest
// first. A zero since reads the whole history.
func (r *AlertRepository) QueryWindow(ctx context.Context, ticker string, since time.Time) ([]domain.Alert, error) {
	ctx, span := r.tracer.Start(ctx, "alert-repo.query-window", trace.WithAttributes(attribute.String("ticker", ticker)))
	defer span.End()

	if since.IsZero() {
		return r.query(ctx, `
SELECT `+alertColumns+`
FROM alerts
WHERE ticker = $1 AND NOT is_test
ORDER BY ts DESC, id DESC`, ticker)
	}
	return r.query(ctx, `
SELECT `+alertColumns+`
FROM alerts
WHERE ticker = $1 AND NOT is_test AND ts >= $2
ORDER BY ts DESC, id DESC`, ticker, since.UTC())
}

// List returns recent alerts, optionally for one ticker. Test alerts are
// included so the dashboard can show them.
func (r *AlertRepository) List(ctx context.Context, f domain.AlertFilter) ([]domain.Alert, error) {
	ctx, span := r.tracer.Start(ctx, "alert-repo.list")
	defer span.End()

	return r.query(ctx, `
SELECT `+alertColumns+`
FROM alerts
WHERE ($1 = '' OR ticker = $1)
ORDER BY ts DESC, id DESC
LIMIT $2`, f.Ticker, clampLimit(f.Limit))
}

func (r *AlertRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Alert, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func scanAlert(row rowScanner) (domain.Alert, error) {
	var (
		a        domain.Alert
		weight   string
		price    *string
		readJSON *string
	)
	if err := row.Scan(
		&a.ID, &a.Ticker, &a.Indicator, &a.Trigger, &weight, &a.Timestamp, &a.Timeframe,
		&price, &a.HTF, &readJSON, &a.Test, &a.Raw, &a.CreatedAt,
	); err != nil {
		return domain.Alert{}, err
	}

	var err error
	if a.Weight, err = parseNumeric("weight", weight); err != nil {
		return domain.Alert{}, err
	}
	if a.Price, err = parseNullNumeric("price", price); err != nil {
		return domain.Alert{}, err
	}
	if readJSON != nil && *readJSON != "" {
		var rd readings
		if err := json.Unmarshal([]byte(*readJSON), &rd); err != nil {
			return domain.Alert{}, fmt.Errorf("decode readings for alert %d: %w", a.ID, err)
		}
		a.Momentum, a.TrendStrength, a.Volume = rd.Momentum, rd.TrendStrength, rd.Volume
	}
	a.Timestamp = a.Timestamp.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}
