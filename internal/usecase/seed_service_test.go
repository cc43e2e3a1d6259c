package usecase

import (
	"testing"

	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/pricing"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedService_SeedEntrants_InsertsMissingByStandingsRank(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.standings[entrant.KindDriver] = []StandingRow{
		{Position: 1, EntrantID: "a", Name: "Driver A"},
		{Position: 2, EntrantID: "d", Name: "Driver D", Code: "DDD", ConstructorID: "green"},
	}
	feed.standings[entrant.KindConstructor] = []StandingRow{
		{Position: 1, EntrantID: "green", Name: "Green"},
	}

	result, err := NewSeedService(feed, f.entrants, pricing.DefaultConfig(), logging.NewNop()).SeedEntrants(t.Context())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Drivers: 2, Constructors: 1, Inserted: 2}, result)

	// Existing entrants keep their price; new ones take the table price of their rank.
	assert.Equal(t, int64(20), f.entrant(t, entrant.KindDriver, "a").Price)
	d := f.entrant(t, entrant.KindDriver, "d")
	assert.Equal(t, int64(33), d.Price)
	assert.Equal(t, "green", d.ConstructorID)
	assert.Equal(t, int64(40), f.entrant(t, entrant.KindConstructor, "green").Price)
}

func TestSeedService_SeedEntrants_BeyondTableUsesDefault(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	cfg := pricing.DefaultConfig()
	cfg.Constructor.Table = []int64{40}
	feed.standings[entrant.KindConstructor] = []StandingRow{
		{EntrantID: "green"},
		{EntrantID: "yellow"},
	}

	_, err := NewSeedService(feed, f.entrants, cfg, logging.NewNop()).SeedEntrants(t.Context())
	require.NoError(t, err)
	assert.Equal(t, cfg.Constructor.DefaultPrice, f.entrant(t, entrant.KindConstructor, "yellow").Price)
}
