// Package rules evaluates strategy rule trees against a window of alerts.
//
// A strategy is a list of groups joined by one inter-group operator. Groups
// are folded strictly left to right: (g1 op g2) op g3 ... with no operator
// precedence.
package rules

import (
	"fmt"
	"sort"
	"time"

	"alert-strategist/internal/catalog"
	"alert-strategist/internal/domain"

	"github.com/shopspring/decimal"
)

// LeafMatch is one leaf of the tree and the alert that satisfied it, if any.
type LeafMatch struct {
	Leaf   domain.Leaf
	Alert  *domain.Alert
	Weight decimal.Decimal
}

func (m LeafMatch) Matched() bool {
	return m.Alert != nil
}

type GroupResult struct {
	Operator  domain.Operator
	Satisfied bool
	Leaves    []LeafMatch
}

type Result struct {
	Satisfied bool
	Groups    []GroupResult
	Missing   []string
}

// Contributing returns the matched leaves of satisfied groups, in tree order.
func (r Result) Contributing() []LeafMatch {
	var out []LeafMatch
	for _, g := range r.Groups {
		if !g.Satisfied {
			continue
		}
		for _, l := range g.Leaves {
			if l.Matched() {
				out = append(out, l)
			}
		}
	}
	return out
}

// MatchedNames returns the sorted names of contributing leaves.
func (r Result) MatchedNames() []string {
	contributing := r.Contributing()
	names := make([]string, 0, len(contributing))
	for _, l := range contributing {
		names = append(names, l.Leaf.Name())
	}
	sort.Strings(names)
	return names
}

// TriggeredAt is the most recent timestamp among contributing alerts.
func (r Result) TriggeredAt() time.Time {
	var latest time.Time
	for _, l := range r.Contributing() {
		if l.Alert.Timestamp.After(latest) {
			latest = l.Alert.Timestamp
		}
	}
	return latest
}

// WithinWindow reports whether the alert falls in [now - timeframe, now].
// A zero timeframe has no lower bound.
func WithinWindow(a domain.Alert, s domain.Strategy, now time.Time) bool {
	if a.Timestamp.After(now) {
		return false
	}
	start := s.WindowStart(now)
	return start.IsZero() || !a.Timestamp.Before(start)
}

// FilterWindow keeps the non-test alerts inside the strategy window.
func FilterWindow(alerts []domain.Alert, s domain.Strategy, now time.Time) []domain.Alert {
	out := make([]domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.Test || !WithinWindow(a, s, now) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Match evaluates the strategy tree against window. Each leaf binds to the
// most recent alert with the same canonical indicator and trigger. Leaf
// weights are resolved from snap, falling back to the weight recorded on the
// alert at ingestion.
func Match(s domain.Strategy, window []domain.Alert, snap *catalog.Snapshot) (Result, error) {
	var res Result
	if len(s.RuleGroups) == 0 {
		return res, nil
	}

	var interOp domain.Operator
	if len(s.RuleGroups) > 1 {
		op, err := domain.ParseOperator(string(s.GroupOperator))
		if err != nil {
			return Result{}, fmt.Errorf("%w: group operator %q", domain.ErrMalformedRule, s.GroupOperator)
		}
		interOp = op
	}

	res.Groups = make([]GroupResult, 0, len(s.RuleGroups))
	for i, g := range s.RuleGroups {
		op, err := domain.ParseOperator(string(g.Operator))
		if err != nil {
			return Result{}, fmt.Errorf("%w: group %d operator %q", domain.ErrMalformedRule, i, g.Operator)
		}
		gr := GroupResult{Operator: op, Leaves: make([]LeafMatch, 0, len(g.Leaves))}
		matched := 0
		for _, leaf := range g.Leaves {
			lm := LeafMatch{Leaf: leaf}
			if a := latestMatch(window, leaf, snap); a != nil {
				lm.Alert = a
				lm.Weight = liveWeight(a, snap)
				matched++
			} else {
				res.Missing = append(res.Missing, leaf.Name())
			}
			gr.Leaves = append(gr.Leaves, lm)
		}

		switch op {
		case domain.OperatorAnd:
			gr.Satisfied = len(g.Leaves) > 0 && matched == len(g.Leaves)
		case domain.OperatorOr:
			gr.Satisfied = matched > 0
		}
		res.Groups = append(res.Groups, gr)

		if i == 0 {
			res.Satisfied = gr.Satisfied
			continue
		}
		if interOp == domain.OperatorAnd {
			res.Satisfied = res.Satisfied && gr.Satisfied
		} else {
			res.Satisfied = res.Satisfied || gr.Satisfied
		}
	}
	return res, nil
}

// Aggregate sums the weights of the leaves that contributed to the result.
func Aggregate(r Result) decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Contributing() {
		total = total.Add(l.Weight)
	}
	return total
}

func latestMatch(window []domain.Alert, leaf domain.Leaf, snap *catalog.Snapshot) *domain.Alert {
	var best *domain.Alert
	for i := range window {
		a := &window[i]
		if !snap.SamePair(a.Indicator, a.Trigger, leaf.Indicator, leaf.Trigger) {
			continue
		}
		if best == nil || a.Timestamp.After(best.Timestamp) ||
			(a.Timestamp.Equal(best.Timestamp) && a.ID > best.ID) {
			best = a
		}
	}
	return best
}

func liveWeight(a *domain.Alert, snap *catalog.Snapshot) decimal.Decimal {
	if w, ok := snap.Weight(a.Indicator, a.Trigger); ok {
		return w
	}
	return a.Weight
}
