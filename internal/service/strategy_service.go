package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alert-strategist/internal/catalog"
	"alert-strategist/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

type StrategyRepository interface {
	List(ctx context.Context) ([]domain.Strategy, error)
	Get(ctx context.Context, id int64) (domain.Strategy, error)
	Create(ctx context.Context, s domain.Strategy) (domain.Strategy, error)
	Update(ctx context.Context, s domain.Strategy) (domain.Strategy, error)
	Delete(ctx context.Context, id int64) error
}

type CatalogProvider interface {
	Snapshot() *catalog.Snapshot
}

// StrategyInput is the create/update payload for a strategy.
type StrategyInput struct {
	Name          string             `json:"name" validate:"required,max=128"`
	Timeframe     int                `json:"timeframe" validate:"gte=0,lte=525600"`
	Threshold     decimal.Decimal    `json:"threshold"`
	Enabled       *bool              `json:"enabled"`
	Tickers       []string           `json:"tickers" validate:"omitempty,dive,required,max=32"`
	GroupOperator domain.Operator    `json:"group_operator" validate:"omitempty,oneof=AND OR"`
	RuleGroups    []domain.RuleGroup `json:"rule_groups" validate:"required,min=1,dive"`
}

type StrategyService struct {
	tracer   trace.Tracer
	repo     StrategyRepository
	catalog  CatalogProvider
	validate *validator.Validate
}

func NewStrategyService(tracer trace.Tracer, repo StrategyRepository, cat CatalogProvider) *StrategyService {
	return &StrategyService{
		tracer:   tracer,
		repo:     repo,
		catalog:  cat,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *StrategyService) List(ctx context.Context) ([]domain.Strategy, error) {
	ctx, span := s.tracer.Start(ctx, "strategy-service.list")
	defer span.End()

	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Strategy{}
	}
	return out, nil
}

func (s *StrategyService) Get(ctx context.Context, id int64) (domain.Strategy, error) {
	ctx, span := s.tracer.Start(ctx, "strategy-service.get")
	defer span.End()

	return s.repo.Get(ctx, id)
}

func (s *StrategyService) Create(ctx context.Context, in StrategyInput) (domain.Strategy, error) {
	ctx, span := s.tracer.Start(ctx, "strategy-service.create")
	defer span.End()

	st, err := s.build(in)
	if err != nil {
		return domain.Strategy{}, err
	}
	return s.repo.Create(ctx, st)
}

func (s *StrategyService) Update(ctx context.Context, id int64, in StrategyInput) (domain.Strategy, error) {
	ctx, span := s.tracer.Start(ctx, "strategy-service.update")
	defer span.End()

	st, err := s.build(in)
	if err != nil {
		return domain.Strategy{}, err
	}
	st.ID = id
	return s.repo.Update(ctx, st)
}

func (s *StrategyService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "strategy-service.delete")
	defer span.End()

	return s.repo.Delete(ctx, id)
}

// build canonicalises and validates the input. Zero thresholds are refused
// here so evaluation never sees one.
func (s *StrategyService) build(in StrategyInput) (domain.Strategy, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.GroupOperator == "" {
		in.GroupOperator = domain.OperatorAnd
	}
	op, err := domain.ParseOperator(string(in.GroupOperator))
	if err != nil {
		return domain.Strategy{}, invalid(fmt.Errorf("group_operator %q: %w", in.GroupOperator, err))
	}
	in.GroupOperator = op

	tickers := make([]string, 0, len(in.Tickers))
	for _, t := range in.Tickers {
		tickers = append(tickers, strings.ToUpper(strings.TrimSpace(t)))
	}
	in.Tickers = tickers

	var snap *catalog.Snapshot
	if s.catalog != nil {
		snap = s.catalog.Snapshot()
	}
	groups := make([]domain.RuleGroup, 0, len(in.RuleGroups))
	for i, g := range in.RuleGroups {
		gop, err := domain.ParseOperator(string(g.Operator))
		if err != nil {
			return domain.Strategy{}, invalid(fmt.Errorf("rule_groups[%d].operator %q: %w", i, g.Operator, err))
		}
		leaves := make([]domain.Leaf, 0, len(g.Leaves))
		for _, l := range g.Leaves {
			l.Indicator = snap.Canonical(l.Indicator)
			l.Trigger = strings.TrimSpace(l.Trigger)
			// leaf weight is a display copy of the configured weight
			if l.Weight.IsZero() {
				if w, ok := snap.Weight(l.Indicator, l.Trigger); ok {
					l.Weight = w
				}
			}
			leaves = append(leaves, l)
		}
		groups = append(groups, domain.RuleGroup{Operator: gop, Leaves: leaves})
	}
	in.RuleGroups = groups

	if err := s.validate.Struct(in); err != nil {
		return domain.Strategy{}, invalid(describeValidation(err))
	}
	if in.Threshold.IsZero() {
		return domain.Strategy{}, invalid(domain.ErrZeroThreshold)
	}

	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	return domain.Strategy{
		Name:          in.Name,
		Timeframe:     in.Timeframe,
		Threshold:     in.Threshold,
		Enabled:       enabled,
		Tickers:       in.Tickers,
		GroupOperator: in.GroupOperator,
		RuleGroups:    in.RuleGroups,
	}, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrInvalidStrategy, err)
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}
