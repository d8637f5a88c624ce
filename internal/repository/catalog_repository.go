package repository

import (
	"context"

	"alert-strategist/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// CatalogRepository reads the indicator alias and weight tables.
type CatalogRepository struct {
	pool   Pool
	tracer trace.Tracer
}

func NewCatalogRepository(pool Pool, tracer trace.Tracer) *CatalogRepository {
	return &CatalogRepository{pool: pool, tracer: tracer}
}

func (r *CatalogRepository) ListAliases(ctx context.Context) ([]domain.IndicatorAlias, error) {
	ctx, span := r.tracer.Start(ctx, "catalog-repo.list-aliases")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT alias, canonical FROM indicator_aliases ORDER BY alias`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.IndicatorAlias
	for rows.Next() {
		var a domain.IndicatorAlias
		if err := rows.Scan(&a.Alias, &a.Canonical); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) ListWeights(ctx context.Context) ([]domain.IndicatorWeight, error) {
	ctx, span := r.tracer.Start(ctx, "catalog-repo.list-weights")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT indicator, trigger, weight::text FROM indicator_weights ORDER BY indicator, trigger`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.IndicatorWeight
	for rows.Next() {
		var (
			w      domain.IndicatorWeight
			weight string
		)
		if err := rows.Scan(&w.Indicator, &w.Trigger, &weight); err != nil {
			return nil, err
		}
		if w.Weight, err = parseNumeric("weight", weight); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UpsertWeight sets the live weight for an indicator/trigger pair.
func (r *CatalogRepository) UpsertWeight(ctx context.Context, w domain.IndicatorWeight) error {
	ctx, span := r.tracer.Start(ctx, "catalog-repo.upsert-weight")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
INSERT INTO indicator_weights (indicator, trigger, weight)
VALUES ($1, $2, $3::numeric)
ON CONFLICT (indicator, trigger) DO UPDATE SET weight = EXCLUDED.weight, updated_at = now()`,
		w.Indicator, w.Trigger, w.Weight.String(),
	)
	return err
}
