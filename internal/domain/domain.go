package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateAction = errors.New("duplicate action suppressed")
	ErrInvalidStrategy = errors.New("invalid strategy")
	ErrMalformedRule   = errors.New("malformed rule tree")
	ErrZeroThreshold   = errors.New("strategy threshold must be non-zero")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrInvalidWeight   = errors.New("invalid indicator weight")
)

const MaxTickerLength = 32

type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

// ParseOperator accepts AND/OR in any case.
func ParseOperator(s string) (Operator, error) {
	switch Operator(strings.ToUpper(strings.TrimSpace(s))) {
	case OperatorAnd:
		return OperatorAnd, nil
	case OperatorOr:
		return OperatorOr, nil
	}
	return "", ErrUnknownOperator
}

func (o Operator) Valid() bool {
	return o == OperatorAnd || o == OperatorOr
}

type ActionKind string

const (
	ActionBuy  ActionKind = "BUY"
	ActionSell ActionKind = "SELL"
)

// SubReading is an embedded value+status pair such as "Momentum: 63.2 (Bullish)".
type SubReading struct {
	Value  decimal.Decimal `json:"value"`
	Status string          `json:"status,omitempty"`
}

type VolumeReading struct {
	Amount    decimal.NullDecimal `json:"amount"`
	ChangePct decimal.NullDecimal `json:"change_pct"`
	Level     string              `json:"level,omitempty"`
}

func (v *VolumeReading) Empty() bool {
	return v == nil || (!v.Amount.Valid && !v.ChangePct.Valid && v.Level == "")
}

type Alert struct {
	ID            int64               `json:"id"`
	Ticker        string              `json:"ticker"`
	Indicator     string              `json:"indicator"`
	Trigger       string              `json:"trigger"`
	Weight        decimal.Decimal     `json:"weight"`
	Timestamp     time.Time           `json:"timestamp"`
	Timeframe     string              `json:"timeframe,omitempty"`
	Price         decimal.NullDecimal `json:"price"`
	HTF           string              `json:"htf,omitempty"`
	Momentum      *SubReading         `json:"momentum,omitempty"`
	TrendStrength *SubReading         `json:"trend_strength,omitempty"`
	Volume        *VolumeReading      `json:"volume,omitempty"`
	Test          bool                `json:"test,omitempty"`
	Raw           string              `json:"raw,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Name is the display name used in action diagnostics.
func (a Alert) Name() string {
	return a.Trigger
}

type Leaf struct {
	Indicator string          `json:"indicator" validate:"required,max=64"`
	Trigger   string          `json:"trigger" validate:"required,max=256"`
	Weight    decimal.Decimal `json:"weight"`
}

func (l Leaf) Name() string {
	return l.Trigger
}

type RuleGroup struct {
	Operator Operator `json:"operator" validate:"required,oneof=AND OR"`
	Leaves   []Leaf   `json:"leaves" validate:"required,min=1,dive"`
}

type Strategy struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Timeframe     int             `json:"timeframe"`
	Threshold     decimal.Decimal `json:"threshold"`
	Enabled       bool            `json:"enabled"`
	Tickers       []string        `json:"tickers"`
	GroupOperator Operator        `json:"group_operator"`
	RuleGroups    []RuleGroup     `json:"rule_groups"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AppliesTo reports whether the strategy's ticker filter admits ticker.
// An empty filter or a "*" entry matches every ticker.
func (s Strategy) AppliesTo(ticker string) bool {
	if len(s.Tickers) == 0 {
		return true
	}
	for _, t := range s.Tickers {
		if t == "*" || strings.EqualFold(strings.TrimSpace(t), ticker) {
			return true
		}
	}
	return false
}

// Window returns the strategy's lookback; zero means unbounded.
func (s Strategy) Window() time.Duration {
	if s.Timeframe <= 0 {
		return 0
	}
	return time.Duration(s.Timeframe) * time.Minute
}

// WindowStart is the inclusive lower bound of the window ending at now.
// The zero time is returned for unbounded strategies.
func (s Strategy) WindowStart(now time.Time) time.Time {
	w := s.Window()
	if w == 0 {
		return time.Time{}
	}
	return now.Add(-w)
}

// ActionKind derives BUY/SELL from the threshold sign.
func (s Strategy) ActionKind() (ActionKind, error) {
	switch s.Threshold.Sign() {
	case 1:
		return ActionBuy, nil
	case -1:
		return ActionSell, nil
	}
	return "", ErrZeroThreshold
}

type Action struct {
	ID            int64           `json:"id"`
	StrategyID    int64           `json:"strategy_id"`
	StrategyName  string          `json:"strategy_name"`
	Ticker        string          `json:"ticker"`
	Kind          ActionKind      `json:"action"`
	Score         decimal.Decimal `json:"score"`
	Timestamp     time.Time       `json:"timestamp"`
	TriggeredAt   time.Time       `json:"triggered_at"`
	MatchedAlerts []string        `json:"matched_alerts"`
	MissingAlerts []string        `json:"missing_alerts"`
	DedupeKey     string          `json:"-"`
}

type AlertFilter struct {
	Ticker string
	Limit  int
}

type ActionFilter struct {
	Ticker     string
	StrategyID int64
	Limit      int
}

// ScoreSnapshot is the dashboard view of one strategy evaluated for a ticker.
type ScoreSnapshot struct {
	StrategyID   int64           `json:"strategy_id"`
	StrategyName string          `json:"strategy_name"`
	Ticker       string          `json:"ticker"`
	Score        decimal.Decimal `json:"score"`
	Satisfied    bool            `json:"satisfied"`
	Matched      []string        `json:"matched"`
	Missing      []string        `json:"missing"`
	EvaluatedAt  time.Time       `json:"evaluated_at"`
	Error        string          `json:"error,omitempty"`
}

// IndicatorWeight is one configured weight for an indicator+trigger pair.
type IndicatorWeight struct {
	Indicator string          `json:"indicator"`
	Trigger   string          `json:"trigger"`
	Weight    decimal.Decimal `json:"weight"`
}

// IndicatorAlias maps a short code or spelling variant to a canonical name.
type IndicatorAlias struct {
	Alias     string `json:"alias"`
	Canonical string `json:"canonical"`
}
