package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"alert-strategist/internal/catalog"
	"alert-strategist/internal/domain"

	"github.com/shopspring/decimal"
)

type staticCatalog struct {
	snap *catalog.Snapshot
}

func (s staticCatalog) Snapshot() *catalog.Snapshot { return s.snap }

func validInput() StrategyInput {
	return StrategyInput{
		Name:      "EZ confluence",
		Timeframe: 60,
		Threshold: decimal.RequireFromString("3"),
		Tickers:   []string{" btcusdt "},
		RuleGroups: []domain.RuleGroup{{
			Operator: "and",
			Leaves: []domain.Leaf{
				{Indicator: "ez", Trigger: " Bullish Reversal "},
				{Indicator: "Oscillator", Trigger: "Bullish Divergence"},
			},
		}},
	}
}

func TestStrategyService_CreateCanonicalizes(t *testing.T) {
	t.Parallel()

	snap := catalog.NewSnapshot(nil, []domain.IndicatorWeight{
		{Indicator: catalog.ExtremeZones, Trigger: "Bullish Reversal", Weight: decimal.RequireFromString("1.5")},
	}, time.Now())
	repo := &mockStrategyRepo{}
	svc := NewStrategyService(testTracer, repo, staticCatalog{snap: snap})

	got, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 1 || len(repo.created) != 1 {
		t.Fatalf("expected one created strategy, got %+v", repo.created)
	}
	if got.GroupOperator != domain.OperatorAnd {
		t.Fatalf("expected default AND group operator, got %q", got.GroupOperator)
	}
	if !got.Enabled {
		t.Fatal("expected strategy enabled by default")
	}
	if got.Tickers[0] != "BTCUSDT" {
		t.Fatalf("expected uppercased ticker, got %q", got.Tickers[0])
	}
	g := got.RuleGroups[0]
	if g.Operator != domain.OperatorAnd {
		t.Fatalf("expected group operator AND, got %q", g.Operator)
	}
	if g.Leaves[0].Indicator != catalog.ExtremeZones || g.Leaves[0].Trigger != "Bullish Reversal" {
		t.Fatalf("unexpected first leaf: %+v", g.Leaves[0])
	}
	if !g.Leaves[0].Weight.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("expected catalog weight copied to leaf, got %s", g.Leaves[0].Weight)
	}
	if !g.Leaves[1].Weight.IsZero() {
		t.Fatalf("expected unconfigured leaf weight to stay zero, got %s", g.Leaves[1].Weight)
	}
}

func TestStrategyService_CreateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*StrategyInput)
		want   string
	}{
		{"zero threshold", func(in *StrategyInput) { in.Threshold = decimal.Zero }, "non-zero"},
		{"empty name", func(in *StrategyInput) { in.Name = "  " }, "Name"},
		{"no groups", func(in *StrategyInput) { in.RuleGroups = nil }, "RuleGroups"},
		{"empty group", func(in *StrategyInput) { in.RuleGroups[0].Leaves = nil }, "Leaves"},
		{"bad group operator", func(in *StrategyInput) { in.GroupOperator = "XOR" }, "group_operator"},
		{"bad leaf operator", func(in *StrategyInput) { in.RuleGroups[0].Operator = "NAND" }, "rule_groups[0]"},
		{"missing trigger", func(in *StrategyInput) { in.RuleGroups[0].Leaves[0].Trigger = " " }, "Trigger"},
		{"negative timeframe", func(in *StrategyInput) { in.Timeframe = -5 }, "Timeframe"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockStrategyRepo{}
			svc := NewStrategyService(testTracer, repo, nil)
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			if !errors.Is(err, domain.ErrInvalidStrategy) {
				t.Fatalf("expected ErrInvalidStrategy, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
			if len(repo.created) != 0 {
				t.Fatal("repository should not be called for invalid input")
			}
		})
	}
}

func TestStrategyService_NegativeThresholdAllowed(t *testing.T) {
	t.Parallel()

	repo := &mockStrategyRepo{}
	svc := NewStrategyService(testTracer, repo, nil)
	in := validInput()
	in.Threshold = decimal.RequireFromString("-2.5")

	got, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind, _ := got.ActionKind(); kind != domain.ActionSell {
		t.Fatalf("expected SELL strategy, got %q", kind)
	}
}

func TestStrategyService_UpdateSetsID(t *testing.T) {
	t.Parallel()

	repo := &mockStrategyRepo{}
	svc := NewStrategyService(testTracer, repo, nil)
	disabled := false
	in := validInput()
	in.Enabled = &disabled

	got, err := svc.Update(context.Background(), 42, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 42 || repo.updated[0].ID != 42 {
		t.Fatalf("expected id 42, got %+v", got)
	}
	if got.Enabled {
		t.Fatal("expected strategy disabled")
	}
}

func TestStrategyService_DelegatesReads(t *testing.T) {
	t.Parallel()

	repo := &mockStrategyRepo{items: []domain.Strategy{{ID: 7, Name: "x"}}}
	svc := NewStrategyService(testTracer, repo, nil)

	list, err := svc.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected list: %+v, %v", list, err)
	}
	if _, err := svc.Get(context.Background(), 8); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), 7); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != 7 {
		t.Fatalf("unexpected deletes: %v", repo.deleted)
	}
}

func TestStrategyService_ListNeverNil(t *testing.T) {
	t.Parallel()

	svc := NewStrategyService(testTracer, &mockStrategyRepo{}, nil)
	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil {
		t.Fatal("expected empty slice, got nil")
	}
}
