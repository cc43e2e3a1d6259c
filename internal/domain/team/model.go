package team

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
)

var (
	ErrTeamNotFound = errors.New("team not found")
	ErrTeamExists   = errors.New("team already exists")
)

// Team is a user's fantasy roster and its accumulated score.
type Team struct {
	ID       string
	UserID   string
	LeagueID string
	Name     string
	Score    int
	// FreeChangeLimit is the remaining free edits this cycle; negative means unlimited.
	FreeChangeLimit int
	DriverIDs       []string
	ConstructorIDs  []string
	LineItems       []LineItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.UserID == "" {
		return fmt.Errorf("team user id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// RosterIDs returns the roster of kind.
func (t Team) RosterIDs(kind entrant.Kind) []string {
	if kind == entrant.KindConstructor {
		return t.ConstructorIDs
	}
	return t.DriverIDs
}

// LineItem is one entrant held by a team, with the points it earned for that team.
type LineItem struct {
	TeamID            string
	Kind              entrant.Kind
	EntrantID         string
	Name              string
	Price             int64
	PointsForTeam     int
	TeamPointsHistory []entrant.HistoryEntry
}

func (l LineItem) Key() string {
	return string(l.Kind) + ":" + l.EntrantID
}

// RosterChange is the atomic update produced by a roster edit.
type RosterChange struct {
	DriverIDs       []string
	ConstructorIDs  []string
	Added           []LineItem
	Removed         []LineItem
	ScoreDelta      int
	FreeChangeLimit int
}
