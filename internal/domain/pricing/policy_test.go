package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleTable(t *testing.T) {
	t.Parallel()

	pool := PoolConfig{Table: []int64{40, 37, 34}, DefaultPrice: 10, MinPrice: 10, MaxPrice: 40}
	candidates := []Candidate{
		{ID: "sauber", Points: 4},
		{ID: "mclaren", Points: 600},
		{ID: "ferrari", Points: 400},
		{ID: "williams", Points: 50},
		{ID: "mercedes", Points: 400},
	}

	got := ScaleTable(pool, candidates)

	assert.Equal(t, int64(40), got["mclaren"])
	// ties break by id
	assert.Equal(t, int64(37), got["ferrari"])
	assert.Equal(t, int64(34), got["mercedes"])
	assert.Equal(t, int64(10), got["williams"])
	assert.Equal(t, int64(10), got["sauber"])
}

func TestNormalized_RescalesIntoBounds(t *testing.T) {
	t.Parallel()

	pool := PoolConfig{MinPrice: 4, MaxPrice: 25}
	candidates := []Candidate{
		{ID: "top", Points: 100, Recent: []int{20, 20, 20, 20, 20}},
		{ID: "mid", Points: 50, Recent: []int{10, 10, 10, 10, 10}},
		{ID: "low", Points: 0},
	}

	got := Normalized(pool, candidates, 5, 0.85, 0.15)

	assert.Equal(t, int64(25), got["top"])
	assert.Equal(t, int64(4), got["low"])
	// mid score 44, top 88, low 0 -> 4 + 0.5*21 = 14.5 -> 15
	assert.Equal(t, int64(15), got["mid"])
	for id, price := range got {
		assert.GreaterOrEqual(t, price, pool.MinPrice, id)
		assert.LessOrEqual(t, price, pool.MaxPrice, id)
	}
}

func TestNormalized_ShortHistoryDividesByWindow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2.0, recentAverage([]int{10}, 5))
	assert.Equal(t, 4.0, recentAverage([]int{100, 2, 4, 6, 4, 4}, 5))
}

func TestNormalized_DegenerateUsesMidpoint(t *testing.T) {
	t.Parallel()

	pool := PoolConfig{MinPrice: 4, MaxPrice: 25}
	candidates := []Candidate{{ID: "a", Points: 10}, {ID: "b", Points: 10}}

	got := Normalized(pool, candidates, 5, 0.85, 0.15)

	assert.Equal(t, int64(15), got["a"])
	assert.Equal(t, int64(15), got["b"])

	single := Normalized(PoolConfig{MinPrice: 10, MaxPrice: 35}, []Candidate{{ID: "only", Points: 3}}, 5, 0.85, 0.15)
	assert.Equal(t, int64(23), single["only"])
}

func TestConfigReprice_SelectsPolicy(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	candidates := []Candidate{{ID: "a", Points: 10}, {ID: "b", Points: 5}}

	cfg.Policy = PolicyScaleTable
	assert.Equal(t, map[string]int64{"a": 35, "b": 33}, cfg.Reprice(cfg.Driver, candidates))

	cfg.Policy = PolicyNormalized
	assert.Equal(t, map[string]int64{"a": 25, "b": 4}, cfg.Reprice(cfg.Driver, candidates))
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	broken := []func(*Config){
		func(c *Config) { c.Policy = "auction" },
		func(c *Config) { c.Driver.MinPrice = 0 },
		func(c *Config) { c.Constructor.MaxPrice = 5 },
		func(c *Config) { c.Driver.DefaultPrice = 0 },
		func(c *Config) { c.Constructor.Table = []int64{10, -1} },
		func(c *Config) { c.HistoryWindow = 0 },
		func(c *Config) { c.TotalWeight, c.RecentWeight = 0, 0 },
	}
	for i, mutate := range broken {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	got, err := ParsePolicy(" Scale-Table ")
	require.NoError(t, err)
	assert.Equal(t, PolicyScaleTable, got)

	_, err = ParsePolicy("random")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
