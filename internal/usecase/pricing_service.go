package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/pricing"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/riskibarqy/grid-manager/internal/platform/resilience"
)

type PoolPricing struct {
	Kind     entrant.Kind
	Repriced int
	MinPrice int64
	MaxPrice int64
}

type PricingResult struct {
	Policy pricing.PolicyName
	Pools  []PoolPricing
}

type PricingService struct {
	entrants entrant.Repository
	cfg      pricing.Config
	flight   resilience.SingleFlight[PricingResult]
	logger   *logging.Logger
}

func NewPricingService(entrants entrant.Repository, cfg pricing.Config, logger *logging.Logger) *PricingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PricingService{
		entrants: entrants,
		cfg:      cfg,
		logger:   logger,
	}
}

// RunPricingPass recomputes the price of every driver and constructor from accumulated points.
func (s *PricingService) RunPricingPass(ctx context.Context) (PricingResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PricingService.RunPricingPass")
	defer span.End()

	if err := s.cfg.Validate(); err != nil {
		return PricingResult{}, errors.Mark(errors.Wrap(err, "pricing config"), ErrConfigInvalid)
	}

	result, err, _ := s.flight.Do("pricing:pass", func() (PricingResult, error) {
		result := PricingResult{Policy: s.cfg.Policy}
		for _, kind := range entrant.AllKinds {
			poolResult, poolErr := s.repricePool(ctx, kind)
			if poolErr != nil {
				return PricingResult{}, poolErr
			}
			result.Pools = append(result.Pools, poolResult)
		}
		return result, nil
	})
	if err != nil {
		return PricingResult{}, err
	}

	s.logger.InfoContext(ctx, "pricing pass finished", "policy", result.Policy, "pools", len(result.Pools))
	return result, nil
}

func (s *PricingService) repricePool(ctx context.Context, kind entrant.Kind) (PoolPricing, error) {
	pool := s.cfg.Driver
	if kind == entrant.KindConstructor {
		pool = s.cfg.Constructor
	}

	items, err := s.entrants.ListByKind(ctx, kind, s.cfg.HistoryWindow)
	if err != nil {
		return PoolPricing{}, errors.Wrapf(err, "list %s entrants for pricing", kind)
	}

	candidates := make([]pricing.Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, pricing.Candidate{
			ID:     item.ID,
			Points: item.Points,
			Recent: item.RecentPoints(s.cfg.HistoryWindow),
		})
	}

	prices := s.cfg.Reprice(pool, candidates)
	if err := s.entrants.UpdatePrices(ctx, kind, prices); err != nil {
		return PoolPricing{}, errors.Mark(errors.Wrapf(err, "update %s prices", kind), ErrStoreWriteFailed)
	}

	out := PoolPricing{Kind: kind, Repriced: len(prices)}
	for _, price := range prices {
		if out.MinPrice == 0 || price < out.MinPrice {
			out.MinPrice = price
		}
		if price > out.MaxPrice {
			out.MaxPrice = price
		}
	}
	return out, nil
}
