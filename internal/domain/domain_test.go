package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseOperator(t *testing.T) {
	for _, in := range []string{"and", " AND ", "And"} {
		op, err := ParseOperator(in)
		if err != nil || op != OperatorAnd {
			t.Fatalf("ParseOperator(%q) = %q, %v", in, op, err)
		}
	}
	if op, err := ParseOperator("or"); err != nil || op != OperatorOr {
		t.Fatalf("expected OR, got %q %v", op, err)
	}
	if _, err := ParseOperator("XOR"); err != ErrUnknownOperator {
		t.Fatalf("expected ErrUnknownOperator, got %v", err)
	}
}

func TestStrategyActionKind(t *testing.T) {
	cases := []struct {
		threshold string
		want      ActionKind
		err       error
	}{
		{"3", ActionBuy, nil},
		{"-0.5", ActionSell, nil},
		{"0", "", ErrZeroThreshold},
	}
	for _, tc := range cases {
		s := Strategy{Threshold: decimal.RequireFromString(tc.threshold)}
		got, err := s.ActionKind()
		if got != tc.want || err != tc.err {
			t.Errorf("threshold %s: got %q %v, want %q %v", tc.threshold, got, err, tc.want, tc.err)
		}
	}
}

func TestStrategyAppliesTo(t *testing.T) {
	if !(Strategy{}).AppliesTo("BTCUSDT") {
		t.Fatal("empty filter should match every ticker")
	}
	if !(Strategy{Tickers: []string{"*"}}).AppliesTo("ETHUSDT") {
		t.Fatal("wildcard should match every ticker")
	}
	s := Strategy{Tickers: []string{"btcusdt", "SOLUSDT"}}
	if !s.AppliesTo("BTCUSDT") || s.AppliesTo("ETHUSDT") {
		t.Fatalf("unexpected filter result for %+v", s.Tickers)
	}
}

func TestStrategyWindowStart(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := (Strategy{Timeframe: 15}).WindowStart(now); !got.Equal(now.Add(-15 * time.Minute)) {
		t.Fatalf("unexpected window start %v", got)
	}
	if got := (Strategy{}).WindowStart(now); !got.IsZero() {
		t.Fatalf("unbounded strategy should return zero time, got %v", got)
	}
}
