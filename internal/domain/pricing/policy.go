package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var ErrInvalidConfig = errors.New("invalid pricing config")

type PolicyName string

const (
	PolicyScaleTable PolicyName = "scale-table"
	PolicyNormalized PolicyName = "normalized"
)

func ParsePolicy(raw string) (PolicyName, error) {
	switch PolicyName(strings.ToLower(strings.TrimSpace(raw))) {
	case PolicyScaleTable:
		return PolicyScaleTable, nil
	case PolicyNormalized:
		return PolicyNormalized, nil
	default:
		return "", fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, raw)
	}
}

// PoolConfig bounds the prices of one entrant kind.
type PoolConfig struct {
	MinPrice     int64
	MaxPrice     int64
	Table        []int64
	DefaultPrice int64
}

type Config struct {
	Policy        PolicyName
	Driver        PoolConfig
	Constructor   PoolConfig
	HistoryWindow int
	TotalWeight   float64
	RecentWeight  float64
}

func DefaultConfig() Config {
	return Config{
		Policy: PolicyNormalized,
		Driver: PoolConfig{
			MinPrice:     4,
			MaxPrice:     25,
			Table:        []int64{35, 33, 31, 29, 27, 24, 22, 20, 18, 16, 14, 12, 11, 10, 9, 8, 7, 6, 5, 4},
			DefaultPrice: 4,
		},
		Constructor: PoolConfig{
			MinPrice:     10,
			MaxPrice:     35,
			Table:        []int64{40, 37, 34, 30, 27, 24, 21, 18, 15, 12},
			DefaultPrice: 10,
		},
		HistoryWindow: 5,
		TotalWeight:   0.85,
		RecentWeight:  0.15,
	}
}

func (c Config) Validate() error {
	if c.Policy != PolicyScaleTable && c.Policy != PolicyNormalized {
		return fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, c.Policy)
	}
	for name, pool := range map[string]PoolConfig{"driver": c.Driver, "constructor": c.Constructor} {
		if pool.MinPrice <= 0 || pool.MaxPrice < pool.MinPrice {
			return fmt.Errorf("%w: %s bounds must satisfy 0 < min <= max", ErrInvalidConfig, name)
		}
		if pool.DefaultPrice <= 0 {
			return fmt.Errorf("%w: %s default price must be > 0", ErrInvalidConfig, name)
		}
		for _, price := range pool.Table {
			if price <= 0 {
				return fmt.Errorf("%w: %s table prices must be > 0", ErrInvalidConfig, name)
			}
		}
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("%w: history window must be > 0", ErrInvalidConfig)
	}
	if c.TotalWeight < 0 || c.RecentWeight < 0 || c.TotalWeight+c.RecentWeight == 0 {
		return fmt.Errorf("%w: weights must be >= 0 and not both zero", ErrInvalidConfig)
	}
	return nil
}

// Candidate is an entrant as seen by the pricing engine.
type Candidate struct {
	ID     string
	Points int
	// Recent holds the latest session deltas, oldest first.
	Recent []int
}

// Reprice assigns a price to every candidate of one pool.
func (c Config) Reprice(pool PoolConfig, candidates []Candidate) map[string]int64 {
	if c.Policy == PolicyScaleTable {
		return ScaleTable(pool, candidates)
	}
	return Normalized(pool, candidates, c.HistoryWindow, c.TotalWeight, c.RecentWeight)
}

// ScaleTable ranks candidates by career points and prices them from the table,
// falling back to the default price beyond the table.
func ScaleTable(pool PoolConfig, candidates []Candidate) map[string]int64 {
	ranked := append([]Candidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return ranked[i].ID < ranked[j].ID
	})

	out := make(map[string]int64, len(ranked))
	for rank, candidate := range ranked {
		out[candidate.ID] = pool.TablePrice(rank)
	}
	return out
}

// TablePrice returns the table price for a zero-based rank.
func (p PoolConfig) TablePrice(rank int) int64 {
	if rank >= 0 && rank < len(p.Table) {
		return p.Table[rank]
	}
	return p.DefaultPrice
}

// Normalized blends career total with recent form and rescales into [min, max].
// The recent average always divides by window, so short histories weigh less.
func Normalized(pool PoolConfig, candidates []Candidate, window int, totalWeight, recentWeight float64) map[string]int64 {
	out := make(map[string]int64, len(candidates))
	if len(candidates) == 0 {
		return out
	}

	scores := make([]float64, len(candidates))
	minScore, maxScore := math.Inf(1), math.Inf(-1)
	for i, candidate := range candidates {
		score := totalWeight*float64(candidate.Points) + recentWeight*recentAverage(candidate.Recent, window)
		scores[i] = score
		minScore = math.Min(minScore, score)
		maxScore = math.Max(maxScore, score)
	}

	span := float64(pool.MaxPrice - pool.MinPrice)
	for i, candidate := range candidates {
		if maxScore == minScore {
			out[candidate.ID] = int64(math.Round(float64(pool.MinPrice+pool.MaxPrice) / 2))
			continue
		}
		ratio := (scores[i] - minScore) / (maxScore - minScore)
		out[candidate.ID] = int64(math.Round(float64(pool.MinPrice) + ratio*span))
	}
	return out
}

func recentAverage(recent []int, window int) float64 {
	if window <= 0 {
		return 0
	}
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	sum := 0
	for _, v := range recent {
		sum += v
	}
	return float64(sum) / float64(window)
}
