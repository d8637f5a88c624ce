package service

import (
	"context"
	"fmt"
	"strings"

	"alert-strategist/internal/catalog"
	"alert-strategist/internal/domain"
	"alert-strategist/pkg/logger"

	"go.opentelemetry.io/otel/trace"
)

type WeightStore interface {
	ListWeights(ctx context.Context) ([]domain.IndicatorWeight, error)
	UpsertWeight(ctx context.Context, w domain.IndicatorWeight) error
}

type CatalogRefresher interface {
	Snapshot() *catalog.Snapshot
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// CatalogService edits the live indicator weights. A successful write
// refreshes the in-memory catalog so the next evaluation sees it.
type CatalogService struct {
	tracer  trace.Tracer
	store   WeightStore
	catalog CatalogRefresher
	log     *logger.Logger
}

func NewCatalogService(tracer trace.Tracer, store WeightStore, cat CatalogRefresher, log *logger.Logger) *CatalogService {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogService{tracer: tracer, store: store, catalog: cat, log: log}
}

func (s *CatalogService) ListWeights(ctx context.Context) ([]domain.IndicatorWeight, error) {
	ctx, span := s.tracer.Start(ctx, "catalog-service.list-weights")
	defer span.End()

	out, err := s.store.ListWeights(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.IndicatorWeight{}
	}
	return out, nil
}

func (s *CatalogService) SetWeight(ctx context.Context, w domain.IndicatorWeight) (domain.IndicatorWeight, error) {
	ctx, span := s.tracer.Start(ctx, "catalog-service.set-weight")
	defer span.End()

	var snap *catalog.Snapshot
	if s.catalog != nil {
		snap = s.catalog.Snapshot()
	}
	w.Indicator = snap.Canonical(w.Indicator)
	w.Trigger = strings.TrimSpace(w.Trigger)
	if w.Indicator == "" || w.Trigger == "" {
		return domain.IndicatorWeight{}, fmt.Errorf("%w: indicator and trigger are required", domain.ErrInvalidWeight)
	}

	if err := s.store.UpsertWeight(ctx, w); err != nil {
		return domain.IndicatorWeight{}, err
	}
	if s.catalog != nil {
		if _, err := s.catalog.Refresh(ctx); err != nil {
			s.log.Warn("catalog refresh after weight update failed", logger.Error(err))
		}
	}
	return w, nil
}
