package entrant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/grid-manager/internal/domain/session"
)

var ErrUnknownKind = errors.New("unknown entrant kind")

// Kind separates drivers and constructors; each kind is its own pool.
type Kind string

const (
	KindDriver      Kind = "driver"
	KindConstructor Kind = "constructor"
)

var AllKinds = []Kind{KindDriver, KindConstructor}

func (k Kind) Validate() error {
	switch k {
	case KindDriver, KindConstructor:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// Ref identifies an entrant together with the display name the feed reported for it.
type Ref struct {
	Kind Kind
	ID   string
	Name string
}

func (r Ref) Key() string {
	return string(r.Kind) + ":" + r.ID
}

// HistoryEntry is one session's point delta credited to an entrant or line item.
type HistoryEntry struct {
	Season   int
	Round    int
	RaceName string
	Session  session.Type
	Points   int
}

// Entrant is a selectable driver or constructor.
type Entrant struct {
	ID            string
	Kind          Kind
	Name          string
	Code          string
	Nationality   string
	ConstructorID string
	Points        int
	PointsHistory []HistoryEntry
	Price         int64
	ChosenCount   int
	// ChosenPercentage is derived from ChosenCount and the team count at read time.
	ChosenPercentage float64
}

// RecentPoints returns up to n latest history deltas, oldest first.
func (e Entrant) RecentPoints(n int) []int {
	if n <= 0 || len(e.PointsHistory) == 0 {
		return nil
	}
	start := len(e.PointsHistory) - n
	if start < 0 {
		start = 0
	}
	out := make([]int, 0, len(e.PointsHistory)-start)
	for _, entry := range e.PointsHistory[start:] {
		out = append(out, entry.Points)
	}
	return out
}

// ChosenPercentage returns the share of teams holding an entrant, in percent with two decimals.
func ChosenPercentage(chosenCount, teamCount int) float64 {
	if teamCount <= 0 || chosenCount <= 0 {
		return 0
	}
	pct := float64(chosenCount) * 100 / float64(teamCount)
	return float64(int64(pct*100+0.5)) / 100
}

// NormalizeIDs trims ids and drops blanks and duplicates, keeping first-seen order.
func NormalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
