package usecase

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/pricing"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingService_RunPricingPass_EqualScoresTakeMidpoint(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	svc := NewPricingService(f.entrants, pricing.DefaultConfig(), logging.NewNop())

	result, err := svc.RunPricingPass(t.Context())
	require.NoError(t, err)
	assert.Equal(t, pricing.PolicyNormalized, result.Policy)
	require.Len(t, result.Pools, 2)

	// No points yet: drivers round(29/2)=15, constructors round(45/2)=23.
	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, int64(15), f.entrant(t, entrant.KindDriver, id).Price, id)
	}
	assert.Equal(t, int64(23), f.entrant(t, entrant.KindConstructor, "red").Price)
	assert.Equal(t, PoolPricing{Kind: entrant.KindDriver, Repriced: 3, MinPrice: 15, MaxPrice: 15}, result.Pools[0])
}

func TestPricingService_RunPricingPass_ScaleTable(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.sessions[session.TypeRace] = raceAt(2025, 3)
	_, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)

	cfg := pricing.DefaultConfig()
	cfg.Policy = pricing.PolicyScaleTable
	_, err = NewPricingService(f.entrants, cfg, logging.NewNop()).RunPricingPass(t.Context())
	require.NoError(t, err)

	assert.Equal(t, int64(35), f.entrant(t, entrant.KindDriver, "a").Price)
	assert.Equal(t, int64(33), f.entrant(t, entrant.KindDriver, "b").Price)
	assert.Equal(t, int64(31), f.entrant(t, entrant.KindDriver, "c").Price)
	assert.Equal(t, int64(40), f.entrant(t, entrant.KindConstructor, "red").Price)
	assert.Equal(t, int64(37), f.entrant(t, entrant.KindConstructor, "blue").Price)
}

func TestPricingService_RunPricingPass_InvalidConfig(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	cfg := pricing.DefaultConfig()
	cfg.Driver.MinPrice = 30

	_, err := NewPricingService(f.entrants, cfg, logging.NewNop()).RunPricingPass(t.Context())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigInvalid))
	assert.Equal(t, int64(20), f.entrant(t, entrant.KindDriver, "a").Price)
}
