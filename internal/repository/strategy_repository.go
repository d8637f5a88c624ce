package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"alert-strategist/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const strategyColumns = `id, name, timeframe_minutes, threshold::text, enabled, tickers,
       group_operator, rule_groups::text, created_at, updated_at`

type StrategyRepository struct {
	pool   Pool
	tracer trace.Tracer
}

func NewStrategyRepository(pool Pool, tracer trace.Tracer) *StrategyRepository {
	return &StrategyRepository{pool: pool, tracer: tracer}
}

func (r *StrategyRepository) ListEnabled(ctx context.Context) ([]domain.Strategy, error) {
	ctx, span := r.tracer.Start(ctx, "strategy-repo.list-enabled")
	defer span.End()

	return r.query(ctx, `SELECT `+strategyColumns+` FROM strategies WHERE enabled ORDER BY id`)
}

func (r *StrategyRepository) List(ctx context.Context) ([]domain.Strategy, error) {
	ctx, span := r.tracer.Start(ctx, "strategy-repo.list")
	defer span.End()

	return r.query(ctx, `SELECT `+strategyColumns+` FROM strategies ORDER BY id`)
}

func (r *StrategyRepository) Get(ctx context.Context, id int64) (domain.Strategy, error) {
	ctx, span := r.tracer.Start(ctx, "strategy-repo.get")
	defer span.End()

	row := r.pool.QueryRow(ctx, `SELECT `+strategyColumns+` FROM strategies WHERE id = $1`, id)
	s, err := scanStrategy(row)
	if err != nil {
		return domain.Strategy{}, notFound(err)
	}
	return s, nil
}

func (r *StrategyRepository) Create(ctx context.Context, s domain.Strategy) (domain.Strategy, error) {
	ctx, span := r.tracer.Start(ctx, "strategy-repo.create")
	defer span.End()

	groups, err := json.Marshal(s.RuleGroups)
	if err != nil {
		return domain.Strategy{}, fmt.Errorf("marshal rule groups: %w", err)
	}
	row := r.pool.QueryRow(ctx, `
INSERT INTO strategies (
    name, timeframe_minutes, threshold, enabled, tickers, group_operator, rule_groups
) VALUES (
    $1, $2, $3::numeric, $4, $5, $6, $7::jsonb
)
RETURNING `+strategyColumns,
		s.Name,
		s.Timeframe,
		s.Threshold.String(),
		s.Enabled,
		nonNilStrings(s.Tickers),
		string(s.GroupOperator),
		string(groups),
	)
	return scanStrategy(row)
}

func (r *StrategyRepository) Update(ctx context.Context, s domain.Strategy) (domain.Strategy, error) {
	ctx, span := r.tracer.Start(ctx, "strategy-repo.update")
	defer span.End()

	groups, err := json.Marshal(s.RuleGroups)
	if err != nil {
		return domain.Strategy{}, fmt.Errorf("marshal rule groups: %w", err)
	}
	row := r.pool.QueryRow(ctx, `
UPDATE strategies SET
    name = $2,
    timeframe_minutes = $3,
    threshold = $4::numeric,
    enabled = $5,
    tickers = $6,
    group_operator = $7,
    rule_groups = $8::jsonb,
    updated_at = now()
WHERE id = $1
RETURNING `+strategyColumns,
		s.ID,
		s.Name,
		s.Timeframe,
		s.Threshold.String(),
		s.Enabled,
		nonNilStrings(s.Tickers),
		string(s.GroupOperator),
		string(groups),
	)
	out, err := scanStrategy(row)
	if err != nil {
		return domain.Strategy{}, notFound(err)
	}
	return out, nil
}

func (r *StrategyRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "strategy-repo.delete")
	defer span.End()

	tag, err := r.pool.Exec(ctx, `DELETE FROM strategies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StrategyRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Strategy, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Strategy
	for rows.Next() {
		s, err := scanStrategy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanStrategy(row rowScanner) (domain.Strategy, error) {
	var (
		s         domain.Strategy
		threshold string
		op        string
		groups    string
	)
	if err := row.Scan(
		&s.ID, &s.Name, &s.Timeframe, &threshold, &s.Enabled, &s.Tickers,
		&op, &groups, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return domain.Strategy{}, err
	}

	var err error
	if s.Threshold, err = parseNumeric("threshold", threshold); err != nil {
		return domain.Strategy{}, err
	}
	s.GroupOperator = domain.Operator(op)
	if groups != "" {
		if err := json.Unmarshal([]byte(groups), &s.RuleGroups); err != nil {
			return domain.Strategy{}, fmt.Errorf("decode rule groups for strategy %d: %w", s.ID, err)
		}
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
