package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/riskibarqy/grid-manager/internal/domain/session"
)

var ErrInvalidFormula = errors.New("invalid scoring formula")

const DefaultFormulaVersion = "2025.1"

// Formula holds the versioned constants used to convert results into fantasy points.
type Formula struct {
	Version          string
	KRace            float64
	KQualifying      float64
	KSprint          float64
	ConstructorShare float64
	GridDeltaWeight  float64
}

func DefaultFormula() Formula {
	return Formula{
		Version:          DefaultFormulaVersion,
		KRace:            1.25,
		KQualifying:      1.3,
		KSprint:          1.5,
		ConstructorShare: 0.75,
		GridDeltaWeight:  0.6,
	}
}

func (f Formula) Validate() error {
	if strings.TrimSpace(f.Version) == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidFormula)
	}
	if f.KRace <= 0 || f.KQualifying <= 0 || f.KSprint <= 0 {
		return fmt.Errorf("%w: K constants must be > 0", ErrInvalidFormula)
	}
	if f.ConstructorShare < 0 || f.ConstructorShare > 1 {
		return fmt.Errorf("%w: constructor share must be within [0,1]", ErrInvalidFormula)
	}
	if f.GridDeltaWeight < 0 {
		return fmt.Errorf("%w: grid delta weight must be >= 0", ErrInvalidFormula)
	}
	return nil
}

// Result is one classified row of a session, in finishing order.
type Result struct {
	DriverID        string
	DriverName      string
	ConstructorID   string
	ConstructorName string
	// Points is the feed's championship points; zero when absent.
	Points float64
	// Grid and Position are zero when the feed did not report them.
	Grid     int
	Position int
}

// Deltas holds the points earned per entrant id for one session.
type Deltas struct {
	Drivers      map[string]int
	Constructors map[string]int
}

func (d Deltas) Empty() bool {
	return len(d.Drivers) == 0 && len(d.Constructors) == 0
}

// Total sums every driver and constructor delta.
func (d Deltas) Total() int {
	total := 0
	for _, v := range d.Drivers {
		total += v
	}
	for _, v := range d.Constructors {
		total += v
	}
	return total
}

// Calculate converts ordered session results into per-entrant deltas.
// The function is pure: same inputs always yield the same deltas.
func (f Formula) Calculate(sessionType session.Type, results []Result) Deltas {
	out := Deltas{
		Drivers:      make(map[string]int, len(results)),
		Constructors: make(map[string]int, len(results)/2+1),
	}

	n := len(results)
	for index, row := range results {
		delta := f.driverDelta(sessionType, n, index, row)

		if row.DriverID != "" {
			out.Drivers[row.DriverID] += delta
		}
		if row.ConstructorID != "" {
			out.Constructors[row.ConstructorID] += round(float64(delta) * f.ConstructorShare)
		}
	}

	return out
}

func (f Formula) driverDelta(sessionType session.Type, n, index int, row Result) int {
	switch sessionType {
	case session.TypeQualifying:
		return round(float64(n-index) / f.KQualifying)
	case session.TypeSprint:
		return f.classifiedDelta(f.KSprint, n, index, row)
	default:
		return f.classifiedDelta(f.KRace, n, index, row)
	}
}

func (f Formula) classifiedDelta(k float64, n, index int, row Result) int {
	delta := round(row.Points) + round(float64(n-index)/k)
	if row.Grid > 0 && row.Position > 0 {
		delta += round(float64(row.Grid-row.Position) * f.GridDeltaWeight)
	}
	return delta
}

// round is half away from zero.
func round(v float64) int {
	return int(math.Round(v))
}
