package session

import (
	"fmt"
	"strings"
	"time"
)

// Type identifies a scored session of a race weekend.
type Type string

const (
	TypeSprint     Type = "Sprint"
	TypeQualifying Type = "Qualifying"
	TypeRace       Type = "Race"
)

// ProcessingOrder is the order session types are scored within one pass.
var ProcessingOrder = []Type{TypeSprint, TypeQualifying, TypeRace}

func ParseType(raw string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sprint":
		return TypeSprint, nil
	case "qualifying", "quali":
		return TypeQualifying, nil
	case "race":
		return TypeRace, nil
	default:
		return "", fmt.Errorf("unknown session type %q", raw)
	}
}

func (t Type) Valid() bool {
	switch t {
	case TypeSprint, TypeQualifying, TypeRace:
		return true
	default:
		return false
	}
}

// Watermark records the last session applied for a session type.
type Watermark struct {
	Session        Type
	Season         int
	Round          int
	RaceName       string
	FormulaVersion string
	UpdatedAt      time.Time
}

// Identity is the (season, round) pair the feed reports for its latest session.
type Identity struct {
	Season   int
	Round    int
	RaceName string
}

// ShouldProcess reports whether the session identified by id has not been applied yet.
// A session is new when either season or round differs from the stored watermark.
func ShouldProcess(current Watermark, exists bool, id Identity) bool {
	if !exists {
		return true
	}
	return current.Season != id.Season || current.Round != id.Round
}

// Advance returns the watermark that marks id as applied.
func Advance(sessionType Type, id Identity, formulaVersion string, now time.Time) Watermark {
	return Watermark{
		Session:        sessionType,
		Season:         id.Season,
		Round:          id.Round,
		RaceName:       id.RaceName,
		FormulaVersion: formulaVersion,
		UpdatedAt:      now,
	}
}
