package roster

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRosterSize   = errors.New("invalid roster size")
	ErrExceededBudget      = errors.New("budget cap exceeded")
	ErrDuplicateEntrant    = errors.New("duplicate entrant in roster")
	ErrInvalidEntrantPrice = errors.New("entrant price must be greater than zero")
)

// Rules stores roster validation parameters.
type Rules struct {
	DriverSlots      int
	ConstructorSlots int
	BudgetCap        int64
	FreeChangeLimit  int
	ChangeCost       int
}

func DefaultRules() Rules {
	return Rules{
		DriverSlots:      5,
		ConstructorSlots: 2,
		BudgetCap:        100,
		FreeChangeLimit:  2,
		ChangeCost:       25,
	}
}

// Pick is one selected entrant priced for the budget check.
type Pick struct {
	EntrantID string
	Price     int64
}

func ValidatePicks(drivers, constructors []Pick, rules Rules) error {
	if len(drivers) != rules.DriverSlots {
		return fmt.Errorf("%w: expected %d drivers, got %d", ErrInvalidRosterSize, rules.DriverSlots, len(drivers))
	}
	if len(constructors) != rules.ConstructorSlots {
		return fmt.Errorf("%w: expected %d constructors, got %d", ErrInvalidRosterSize, rules.ConstructorSlots, len(constructors))
	}

	var total int64
	for _, group := range [][]Pick{drivers, constructors} {
		seen := make(map[string]struct{}, len(group))
		for _, pick := range group {
			if pick.EntrantID == "" {
				return fmt.Errorf("entrant id is required")
			}
			if _, ok := seen[pick.EntrantID]; ok {
				return fmt.Errorf("%w: %s", ErrDuplicateEntrant, pick.EntrantID)
			}
			seen[pick.EntrantID] = struct{}{}
			if pick.Price <= 0 {
				return fmt.Errorf("%w: %s", ErrInvalidEntrantPrice, pick.EntrantID)
			}
			total += pick.Price
		}
	}

	if total > rules.BudgetCap {
		return fmt.Errorf("%w: cap=%d used=%d", ErrExceededBudget, rules.BudgetCap, total)
	}
	return nil
}
