package normalizer

import (
	"errors"
	"testing"
	"time"

	"alert-strategist/internal/catalog"
	"alert-strategist/internal/domain"

	"github.com/shopspring/decimal"
)

var receivedAt = time.Date(2026, 3, 4, 10, 15, 30, 987_000_000, time.UTC)

func testSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot(nil, []domain.IndicatorWeight{
		{Indicator: catalog.ExtremeZones, Trigger: "Discount Zone", Weight: decimal.RequireFromString("2.3")},
	}, time.Time{})
}

func TestParseDelimitedFourFields(t *testing.T) {
	raw := "btcusdt|15|EZ|Discount Zone"
	a, err := Parse(raw, receivedAt, testSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Ticker != "BTCUSDT" || a.Timeframe != "15" || a.Indicator != catalog.ExtremeZones || a.Trigger != "Discount Zone" {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if !a.Timestamp.Equal(receivedAt.Truncate(time.Second)) {
		t.Fatalf("expected receipt time truncated to second, got %v", a.Timestamp)
	}
	if !a.Weight.Equal(decimal.RequireFromString("2.3")) {
		t.Fatalf("expected catalog weight, got %s", a.Weight)
	}
	if a.Raw != raw || a.Test {
		t.Fatalf("unexpected raw/test: %+v", a)
	}
}

func TestParseDelimitedWithTime(t *testing.T) {
	a, err := Parse("ETHUSDT|15m|osc|Normal Bullish Divergence|2026-03-04T10:00:00Z", receivedAt, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	if !a.Timestamp.Equal(want) || a.HTF != "" {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if a.Indicator != catalog.Oscillator {
		t.Fatalf("expected alias resolution, got %q", a.Indicator)
	}
	if !a.Weight.IsZero() {
		t.Fatalf("expected zero weight without catalog entry, got %s", a.Weight)
	}
}

func TestParseDelimitedHTFAndTime(t *testing.T) {
	a, err := Parse("SOLUSDT|1h|TrendSignals|Bullish|4H Uptrend|2026-03-04 09:30:00", receivedAt, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.HTF != "4H Uptrend" {
		t.Fatalf("expected HTF, got %q", a.HTF)
	}
	if !a.Timestamp.Equal(time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %v", a.Timestamp)
	}
}

func TestParseTrailingTestFlag(t *testing.T) {
	a, err := Parse("BTCUSDT|15|Oscillator|Bullish Cross|1772618400|test", receivedAt, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Test {
		t.Fatal("expected test flag")
	}
	if a.Timestamp.Unix() != 1772618400 {
		t.Fatalf("expected unix seconds timestamp, got %v", a.Timestamp)
	}
}

func TestParseExtremeZonesRejoinsHTF(t *testing.T) {
	a, err := Parse("BTCUSDT|15|Extreme Zones|Premium Zone|4H: Premium|1D: Equilibrium|TEST", receivedAt, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.HTF != "4H: Premium|1D: Equilibrium" {
		t.Fatalf("expected rejoined HTF, got %q", a.HTF)
	}
	if !a.Test {
		t.Fatal("expected test flag to be consumed first")
	}
}

func TestParseExtremeZonesKeepsTrailingTime(t *testing.T) {
	a, err := Parse("BTCUSDT|15|EZ|Discount Zone|4H: Discount|1D: Premium|2026-03-04T10:00:00Z", receivedAt, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.HTF != "4H: Discount|1D: Premium" {
		t.Fatalf("unexpected HTF %q", a.HTF)
	}
	if !a.Timestamp.Equal(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %v", a.Timestamp)
	}
}

func TestParseTooManyFieldsForOtherIndicators(t *testing.T) {
	_, err := Parse("BTCUSDT|15|Oscillator|Bullish|a|b|c", receivedAt, nil)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParsePricePrefixed(t *testing.T) {
	a, err := Parse("BTCUSDT|64250.5|15m|SmartMoney|BOS Bullish|1772618400000", receivedAt, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Price.Valid || !a.Price.Decimal.Equal(decimal.RequireFromString("64250.5")) {
		t.Fatalf("expected price, got %+v", a.Price)
	}
	if a.Timeframe != "15m" || a.Indicator != catalog.SmartMoney || a.Trigger != "BOS Bullish" {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if a.Timestamp.UnixMilli() != 1772618400000 {
		t.Fatalf("expected unix millis timestamp, got %v", a.Timestamp)
	}
}

func TestParseNumericTimeframeIsNotPrice(t *testing.T) {
	a, err := Parse("BTCUSDT|15|Oscillator|Bullish", receivedAt, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Price.Valid || a.Timeframe != "15" {
		t.Fatalf("four-field payload must not be price-prefixed: %+v", a)
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"empty":         "   ",
		"too few":       "BTCUSDT|15|Oscillator",
		"empty ticker":  " |15|Oscillator|Bullish",
		"long ticker":   "ABCDEFGHIJKLMNOPQRSTUVWXYZABCDEFGHIJ|15|Oscillator|Bullish",
		"empty trigger": "BTCUSDT|15|Oscillator| ",
		"bad time":      "BTCUSDT|15|Oscillator|Bullish|yesterday",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw, receivedAt, nil)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if pe.Raw != raw {
				t.Fatalf("expected raw body preserved, got %q", pe.Raw)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	raw := `{"ticker":"ethusdt","indicator":"ez","trigger":"Discount Zone","time":"2026-03-04T10:00:00Z","htf":"Momentum: 63.2 (Bullish)","price":3120.25,"timeframe":15,"test":false}`
	a, err := Parse(raw, receivedAt, testSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Ticker != "ETHUSDT" || a.Indicator != catalog.ExtremeZones || a.Timeframe != "15" {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if !a.Price.Valid || !a.Price.Decimal.Equal(decimal.RequireFromString("3120.25")) {
		t.Fatalf("unexpected price %+v", a.Price)
	}
	if a.Momentum == nil || a.Momentum.Status != "Bullish" {
		t.Fatalf("expected momentum from htf, got %+v", a.Momentum)
	}
	if !a.Weight.Equal(decimal.RequireFromString("2.3")) {
		t.Fatalf("expected catalog weight, got %s", a.Weight)
	}
}

func TestParseJSONTypeErrors(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"ticker":`,
		"array":           `[1,2]`,
		"numeric ticker":  `{"ticker":123,"indicator":"EZ","trigger":"Discount Zone"}`,
		"missing trigger": `{"ticker":"BTC","indicator":"EZ"}`,
		"object htf":      `{"ticker":"BTC","indicator":"EZ","trigger":"x","htf":{}}`,
		"bool time":       `{"ticker":"BTC","indicator":"EZ","trigger":"x","time":true}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw, receivedAt, nil)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestParseReplayIsStable(t *testing.T) {
	raw := "BTCUSDT|15|EZ|Discount Zone"
	first, err := Parse(raw, receivedAt, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Parse(raw, receivedAt.Add(10*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Timestamp.Equal(second.Timestamp) {
		t.Fatalf("replays within a second should share a timestamp: %v vs %v", first.Timestamp, second.Timestamp)
	}
}

func TestExtractSubFields(t *testing.T) {
	a := domain.Alert{
		Trigger: "Bullish Cross Momentum: 63.2 (Bullish)",
		HTF:     "ADX: 28.1 (Strong) Volume: 1.2M Volume Change: +35% Volume Level: High",
	}
	extractSubFields(&a)

	if a.Momentum == nil || !a.Momentum.Value.Equal(decimal.RequireFromString("63.2")) || a.Momentum.Status != "Bullish" {
		t.Fatalf("unexpected momentum %+v", a.Momentum)
	}
	if a.TrendStrength == nil || !a.TrendStrength.Value.Equal(decimal.RequireFromString("28.1")) || a.TrendStrength.Status != "Strong" {
		t.Fatalf("unexpected trend strength %+v", a.TrendStrength)
	}
	if a.Volume == nil {
		t.Fatal("expected volume reading")
	}
	if !a.Volume.Amount.Valid || !a.Volume.Amount.Decimal.Equal(decimal.NewFromInt(1_200_000)) {
		t.Fatalf("unexpected volume amount %+v", a.Volume.Amount)
	}
	if !a.Volume.ChangePct.Valid || !a.Volume.ChangePct.Decimal.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("unexpected volume change %+v", a.Volume.ChangePct)
	}
	if a.Volume.Level != "High" {
		t.Fatalf("unexpected volume level %q", a.Volume.Level)
	}
}

func TestExtractSubFieldsAbsent(t *testing.T) {
	a := domain.Alert{Trigger: "Discount Zone"}
	extractSubFields(&a)
	if a.Momentum != nil || a.TrendStrength != nil || a.Volume != nil {
		t.Fatalf("expected no readings, got %+v", a)
	}
}
