package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"alert-strategist/internal/domain"

	"github.com/shopspring/decimal"
)

// Canonical indicator names shared by ingestion and matching.
const (
	ExtremeZones    = "ExtremeZones"
	Oscillator      = "Oscillator"
	SmartMoney      = "SmartMoney"
	TrendSignals    = "TrendSignals"
	MomentumMatrix  = "MomentumMatrix"
	VolumeProfile   = "VolumeProfile"
	MarketStructure = "MarketStructure"
)

// defaultAliases seeds the alias table; rows in indicator_aliases override them.
var defaultAliases = map[string]string{
	"ez":               ExtremeZones,
	"extreme zones":    ExtremeZones,
	"extreme zone":     ExtremeZones,
	"extremezones":     ExtremeZones,
	"extreme_zones":    ExtremeZones,
	"osc":              Oscillator,
	"oscillator":       Oscillator,
	"smc":              SmartMoney,
	"smart money":      SmartMoney,
	"smartmoney":       SmartMoney,
	"ts":               TrendSignals,
	"trend signals":    TrendSignals,
	"trendsignals":     TrendSignals,
	"mm":               MomentumMatrix,
	"momentum matrix":  MomentumMatrix,
	"momentummatrix":   MomentumMatrix,
	"vp":               VolumeProfile,
	"volume profile":   VolumeProfile,
	"volumeprofile":    VolumeProfile,
	"ms":               MarketStructure,
	"market structure": MarketStructure,
	"marketstructure":  MarketStructure,
}

// Snapshot is an immutable alias/weight table. The zero value is usable and
// resolves only the built-in aliases.
type Snapshot struct {
	aliases  map[string]string
	weights  map[pairKey]decimal.Decimal
	loadedAt time.Time
}

type pairKey struct {
	indicator string
	trigger   string
}

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// NewSnapshot builds a snapshot from configured aliases and weights layered
// over the built-in alias table.
func NewSnapshot(aliases []domain.IndicatorAlias, weights []domain.IndicatorWeight, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		aliases:  make(map[string]string, len(defaultAliases)+len(aliases)),
		weights:  make(map[pairKey]decimal.Decimal, len(weights)),
		loadedAt: loadedAt,
	}
	for k, v := range defaultAliases {
		s.aliases[k] = v
	}
	for _, a := range aliases {
		alias := foldKey(a.Alias)
		canonical := strings.TrimSpace(a.Canonical)
		if alias == "" || canonical == "" {
			continue
		}
		s.aliases[alias] = canonical
	}
	for _, w := range weights {
		key := pairKey{indicator: foldKey(s.Canonical(w.Indicator)), trigger: foldKey(w.Trigger)}
		s.weights[key] = w.Weight
	}
	return s
}

// Canonical resolves an indicator name through the alias table. Names that
// are not aliases are returned trimmed, unchanged otherwise.
func (s *Snapshot) Canonical(indicator string) string {
	name := strings.TrimSpace(indicator)
	key := foldKey(name)
	if s != nil && s.aliases != nil {
		if c, ok := s.aliases[key]; ok {
			return c
		}
		return name
	}
	if c, ok := defaultAliases[key]; ok {
		return c
	}
	return name
}

// SamePair reports whether two (indicator, trigger) pairs are equal after
// canonicalisation, ignoring case and repeated whitespace.
func (s *Snapshot) SamePair(indicatorA, triggerA, indicatorB, triggerB string) bool {
	return foldKey(s.Canonical(indicatorA)) == foldKey(s.Canonical(indicatorB)) &&
		foldKey(triggerA) == foldKey(triggerB)
}

// Weight returns the configured weight for the pair, if any.
func (s *Snapshot) Weight(indicator, trigger string) (decimal.Decimal, bool) {
	if s == nil || s.weights == nil {
		return decimal.Zero, false
	}
	w, ok := s.weights[pairKey{indicator: foldKey(s.Canonical(indicator)), trigger: foldKey(trigger)}]
	return w, ok
}

func (s *Snapshot) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}

func (s *Snapshot) Size() (aliases, weights int) {
	if s == nil {
		return len(defaultAliases), 0
	}
	return len(s.aliases), len(s.weights)
}

// Source supplies the persisted catalog rows.
type Source interface {
	ListAliases(ctx context.Context) ([]domain.IndicatorAlias, error)
	ListWeights(ctx context.Context) ([]domain.IndicatorWeight, error)
}

// Catalog holds the current snapshot. Readers never block; Refresh swaps in a
// new snapshot atomically.
type Catalog struct {
	source  Source
	current atomic.Pointer[Snapshot]
	now     func() time.Time
}

func New(source Source) *Catalog {
	c := &Catalog{source: source, now: time.Now}
	c.current.Store(NewSnapshot(nil, nil, time.Time{}))
	return c
}

// Snapshot returns the current immutable snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Refresh reloads aliases and weights from the source. The previous snapshot
// stays in place when loading fails.
func (c *Catalog) Refresh(ctx context.Context) (*Snapshot, error) {
	if c.source == nil {
		return c.Snapshot(), nil
	}
	aliases, err := c.source.ListAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	weights, err := c.source.ListWeights(ctx)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	snap := NewSnapshot(aliases, weights, c.now().UTC())
	c.current.Store(snap)
	return snap, nil
}
