package repository

import (
	"context"
	"errors"

	"alert-strategist/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const actionColumns = `id, strategy_id, strategy_name, ticker, action, score::text, ts,
       triggered_at, matched_alerts, missing_alerts, dedupe_key`

type ActionRepository struct {
	pool   Pool
	tracer trace.Tracer
}

func NewActionRepository(pool Pool, tracer trace.Tracer) *ActionRepository {
	return &ActionRepository{pool: pool, tracer: tracer}
}

// InsertIfAbsent relies on the unique dedupe_key constraint: when the insert
// is skipped it returns domain.ErrDuplicateAction.
func (r *ActionRepository) InsertIfAbsent(ctx context.Context, a domain.Action) (domain.Action, error) {
	ctx, span := r.tracer.Start(ctx, "action-repo.insert-if-absent")
	defer span.End()

	row := r.pool.QueryRow(ctx, `
INSERT INTO actions (
    strategy_id, strategy_name, ticker, action, score, ts,
    triggered_at, matched_alerts, missing_alerts, dedupe_key
) VALUES (
    $1, $2, $3, $4, $5::numeric, $6,
    $7, $8, $9, $10
)
ON CONFLICT (dedupe_key) DO NOTHING
RETURNING `+actionColumns,
		a.StrategyID,
		a.StrategyName,
		a.Ticker,
		string(a.Kind),
		a.Score.String(),
		a.Timestamp.UTC(),
		a.TriggeredAt.UTC(),
		nonNilStrings(a.MatchedAlerts),
		nonNilStrings(a.MissingAlerts),
		a.DedupeKey,
	)
	out, err := scanAction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Action{}, domain.ErrDuplicateAction
	}
	return out, err
}

func (r *ActionRepository) List(ctx context.Context, f domain.ActionFilter) ([]domain.Action, error) {
	ctx, span := r.tracer.Start(ctx, "action-repo.list")
	defer span.End()

	rows, err := r.pool.Query(ctx, `
SELECT `+actionColumns+`
FROM actions
WHERE ($1 = '' OR ticker = $1)
  AND ($2 = 0 OR strategy_id = $2)
ORDER BY ts DESC, id DESC
LIMIT $3`, f.Ticker, f.StrategyID, clampLimit(f.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAction(row rowScanner) (domain.Action, error) {
	var (
		a     domain.Action
		kind  string
		score string
	)
	if err := row.Scan(
		&a.ID, &a.StrategyID, &a.StrategyName, &a.Ticker, &kind, &score, &a.Timestamp,
		&a.TriggeredAt, &a.MatchedAlerts, &a.MissingAlerts, &a.DedupeKey,
	); err != nil {
		return domain.Action{}, err
	}
	a.Kind = domain.ActionKind(kind)
	var err error
	if a.Score, err = parseNumeric("score", score); err != nil {
		return domain.Action{}, err
	}
	a.Timestamp = a.Timestamp.UTC()
	a.TriggeredAt = a.TriggeredAt.UTC()
	a.MatchedAlerts = nonNilStrings(a.MatchedAlerts)
	a.MissingAlerts = nonNilStrings(a.MissingAlerts)
	return a, nil
}
