package service

import (
	"context"
	"errors"
	"testing"

	"alert-strategist/internal/catalog"
	"alert-strategist/internal/domain"

	"github.com/shopspring/decimal"
)

type memWeights struct {
	weights []domain.IndicatorWeight
	err     error
}

func (m *memWeights) ListAliases(ctx context.Context) ([]domain.IndicatorAlias, error) {
	return nil, nil
}

func (m *memWeights) ListWeights(ctx context.Context) ([]domain.IndicatorWeight, error) {
	return m.weights, nil
}

func (m *memWeights) UpsertWeight(ctx context.Context, w domain.IndicatorWeight) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.weights {
		if m.weights[i].Indicator == w.Indicator && m.weights[i].Trigger == w.Trigger {
			m.weights[i] = w
			return nil
		}
	}
	m.weights = append(m.weights, w)
	return nil
}

func TestCatalogService_SetWeightRefreshesCatalog(t *testing.T) {
	t.Parallel()

	store := &memWeights{}
	cat := catalog.New(store)
	svc := NewCatalogService(testTracer, store, cat, nil)

	got, err := svc.SetWeight(context.Background(), domain.IndicatorWeight{
		Indicator: "osc", Trigger: " Bullish Divergence ", Weight: decimal.RequireFromString("2"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Indicator != catalog.Oscillator || got.Trigger != "Bullish Divergence" {
		t.Fatalf("expected canonical pair, got %+v", got)
	}
	w, ok := cat.Snapshot().Weight(catalog.Oscillator, "bullish divergence")
	if !ok || !w.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected refreshed weight 2, got %s (%v)", w, ok)
	}

	list, err := svc.ListWeights(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected list: %+v, %v", list, err)
	}
}

func TestCatalogService_SetWeightRejects(t *testing.T) {
	t.Parallel()

	store := &memWeights{}
	svc := NewCatalogService(testTracer, store, nil, nil)

	_, err := svc.SetWeight(context.Background(), domain.IndicatorWeight{Indicator: "osc"})
	if !errors.Is(err, domain.ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight, got %v", err)
	}

	store.err = errors.New("db down")
	_, err = svc.SetWeight(context.Background(), domain.IndicatorWeight{Indicator: "osc", Trigger: "x"})
	if err == nil || errors.Is(err, domain.ErrInvalidWeight) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestCatalogService_ListWeightsNeverNil(t *testing.T) {
	t.Parallel()

	svc := NewCatalogService(testTracer, &memWeights{}, nil, nil)
	list, err := svc.ListWeights(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil {
		t.Fatal("expected empty slice")
	}
}
