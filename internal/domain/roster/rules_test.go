package roster

import (
	"errors"
	"testing"
)

func picks(prices ...int64) []Pick {
	out := make([]Pick, 0, len(prices))
	for i, price := range prices {
		out = append(out, Pick{EntrantID: string(rune('a' + i)), Price: price})
	}
	return out
}

func TestValidatePicks(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()

	if err := ValidatePicks(picks(20, 15, 10, 8, 7), picks(25, 15), rules); err != nil {
		t.Fatalf("expected valid roster, got %v", err)
	}

	if err := ValidatePicks(picks(20, 15, 10, 8), picks(25, 15), rules); !errors.Is(err, ErrInvalidRosterSize) {
		t.Fatalf("expected ErrInvalidRosterSize, got %v", err)
	}

	if err := ValidatePicks(picks(25, 25, 20, 10, 10), picks(35, 30), rules); !errors.Is(err, ErrExceededBudget) {
		t.Fatalf("expected ErrExceededBudget, got %v", err)
	}

	dup := []Pick{{EntrantID: "a", Price: 5}, {EntrantID: "a", Price: 5}, {EntrantID: "b", Price: 5}, {EntrantID: "c", Price: 5}, {EntrantID: "d", Price: 5}}
	if err := ValidatePicks(dup, picks(10, 10), rules); !errors.Is(err, ErrDuplicateEntrant) {
		t.Fatalf("expected ErrDuplicateEntrant, got %v", err)
	}

	if err := ValidatePicks(picks(5, 5, 5, 5, 0), picks(10, 10), rules); !errors.Is(err, ErrInvalidEntrantPrice) {
		t.Fatalf("expected ErrInvalidEntrantPrice, got %v", err)
	}
}
