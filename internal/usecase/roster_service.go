package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/league"
	"github.com/riskibarqy/grid-manager/internal/domain/roster"
	"github.com/riskibarqy/grid-manager/internal/domain/team"
	idgen "github.com/riskibarqy/grid-manager/internal/platform/id"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
)

type RosterEditInput struct {
	TeamID         string
	DriverIDs      []string
	ConstructorIDs []string
}

type RosterEditResult struct {
	Team                 team.Team
	Changes              int
	ScoreAdjustment      int
	RemainingFreeChanges int
}

type CreateTeamInput struct {
	UserID         string
	LeagueID       string
	Name           string
	DriverIDs      []string
	ConstructorIDs []string
}

type RosterService struct {
	teams    team.Repository
	entrants entrant.Repository
	leagues  league.Repository
	rules    roster.Rules
	ids      idgen.Generator
	logger   *logging.Logger
}

func NewRosterService(
	teams team.Repository,
	entrants entrant.Repository,
	leagues league.Repository,
	rules roster.Rules,
	ids idgen.Generator,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterService{
		teams:    teams,
		entrants: entrants,
		leagues:  leagues,
		rules:    rules,
		ids:      ids,
		logger:   logger,
	}
}

// ApplyRosterEdit replaces a team's roster, spending free changes and charging
// the change cost for every change beyond them.
func (s *RosterService) ApplyRosterEdit(ctx context.Context, input RosterEditInput) (RosterEditResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ApplyRosterEdit")
	defer span.End()

	teamID := strings.TrimSpace(input.TeamID)
	if teamID == "" {
		return RosterEditResult{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	driverIDs, constructorIDs, err := normalizeRoster(input.DriverIDs, input.ConstructorIDs)
	if err != nil {
		return RosterEditResult{}, err
	}

	market, err := s.marketEntrants(ctx, driverIDs, constructorIDs)
	if err != nil {
		return RosterEditResult{}, err
	}

	var outcome roster.Outcome
	updated, err := s.teams.EditRoster(ctx, teamID, func(current team.Team) (team.RosterChange, error) {
		held := make(map[string]team.LineItem, len(current.LineItems))
		for _, item := range current.LineItems {
			held[item.Key()] = item
		}

		var change team.RosterChange
		driverPicks, added := buildPicks(entrant.KindDriver, driverIDs, held, market)
		change.Added = append(change.Added, added...)
		constructorPicks, added := buildPicks(entrant.KindConstructor, constructorIDs, held, market)
		change.Added = append(change.Added, added...)

		if err := roster.ValidatePicks(driverPicks, constructorPicks, s.rules); err != nil {
			return team.RosterChange{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		kept := make(map[string]struct{}, len(driverIDs)+len(constructorIDs))
		for _, id := range driverIDs {
			kept[entrant.Ref{Kind: entrant.KindDriver, ID: id}.Key()] = struct{}{}
		}
		for _, id := range constructorIDs {
			kept[entrant.Ref{Kind: entrant.KindConstructor, ID: id}.Key()] = struct{}{}
		}
		for _, item := range current.LineItems {
			if _, ok := kept[item.Key()]; !ok {
				change.Removed = append(change.Removed, item)
			}
		}

		changes := roster.CountChanges(current.DriverIDs, driverIDs) + roster.CountChanges(current.ConstructorIDs, constructorIDs)
		outcome = roster.ApplyEdit(current.FreeChangeLimit, changes, s.rules.ChangeCost)

		change.DriverIDs = driverIDs
		change.ConstructorIDs = constructorIDs
		change.ScoreDelta = -outcome.Penalty
		change.FreeChangeLimit = outcome.RemainingFreeChanges
		return change, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, team.ErrTeamNotFound):
			return RosterEditResult{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
		case errors.Is(err, ErrInvalidInput):
			return RosterEditResult{}, err
		default:
			return RosterEditResult{}, errors.Mark(errors.Wrapf(err, "edit roster team=%s", teamID), ErrStoreWriteFailed)
		}
	}

	s.logger.InfoContext(ctx, "roster edited",
		"team_id", teamID,
		"changes", outcome.Changes,
		"penalty", outcome.Penalty,
		"remaining_free_changes", outcome.RemainingFreeChanges,
	)

	return RosterEditResult{
		Team:                 updated,
		Changes:              outcome.Changes,
		ScoreAdjustment:      -outcome.Penalty,
		RemainingFreeChanges: outcome.RemainingFreeChanges,
	}, nil
}

func (s *RosterService) CreateTeam(ctx context.Context, input CreateTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.CreateTeam")
	defer span.End()

	userID := strings.TrimSpace(input.UserID)
	name := strings.TrimSpace(input.Name)
	leagueID := strings.TrimSpace(input.LeagueID)
	if userID == "" || name == "" {
		return team.Team{}, fmt.Errorf("%w: user id and name are required", ErrInvalidInput)
	}
	if leagueID != "" {
		_, exists, err := s.leagues.GetByID(ctx, leagueID)
		if err != nil {
			return team.Team{}, fmt.Errorf("get league: %w", err)
		}
		if !exists {
			return team.Team{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
		}
	}

	driverIDs, constructorIDs, err := normalizeRoster(input.DriverIDs, input.ConstructorIDs)
	if err != nil {
		return team.Team{}, err
	}
	market, err := s.marketEntrants(ctx, driverIDs, constructorIDs)
	if err != nil {
		return team.Team{}, err
	}

	driverPicks, driverItems := buildPicks(entrant.KindDriver, driverIDs, nil, market)
	constructorPicks, constructorItems := buildPicks(entrant.KindConstructor, constructorIDs, nil, market)
	if err := roster.ValidatePicks(driverPicks, constructorPicks, s.rules); err != nil {
		return team.Team{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	teamID, err := s.ids.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	created := team.Team{
		ID:              teamID,
		UserID:          userID,
		LeagueID:        leagueID,
		Name:            name,
		FreeChangeLimit: s.rules.FreeChangeLimit,
		DriverIDs:       driverIDs,
		ConstructorIDs:  constructorIDs,
		LineItems:       append(driverItems, constructorItems...),
	}
	if err := created.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.teams.Create(ctx, created); err != nil {
		return team.Team{}, errors.Mark(errors.Wrap(err, "create team"), ErrStoreWriteFailed)
	}

	s.logger.InfoContext(ctx, "team created", "team_id", teamID, "user_id", userID, "league_id", leagueID)
	return created, nil
}

func (s *RosterService) DeleteTeam(ctx context.Context, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.DeleteTeam")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	deleted, err := s.teams.Delete(ctx, teamID)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "delete team=%s", teamID), ErrStoreWriteFailed)
	}
	if !deleted {
		return fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	return nil
}

// marketEntrants loads the requested entrants keyed by entrant.Ref key and
// rejects ids that are not known entrants.
func (s *RosterService) marketEntrants(ctx context.Context, driverIDs, constructorIDs []string) (map[string]entrant.Entrant, error) {
	out := make(map[string]entrant.Entrant, len(driverIDs)+len(constructorIDs))
	for kind, ids := range map[entrant.Kind][]string{
		entrant.KindDriver:      driverIDs,
		entrant.KindConstructor: constructorIDs,
	} {
		if len(ids) == 0 {
			continue
		}
		items, err := s.entrants.GetByIDs(ctx, kind, ids)
		if err != nil {
			return nil, fmt.Errorf("get %s entrants: %w", kind, err)
		}
		for _, item := range items {
			out[entrant.Ref{Kind: kind, ID: item.ID}.Key()] = item
		}
		for _, id := range ids {
			if _, ok := out[entrant.Ref{Kind: kind, ID: id}.Key()]; !ok {
				return nil, fmt.Errorf("%w: %s=%s", ErrNotFound, kind, id)
			}
		}
	}
	return out, nil
}

// buildPicks prices each id with the held line item price when kept, else the market price,
// and returns line items for ids not held yet.
func buildPicks(kind entrant.Kind, ids []string, held map[string]team.LineItem, market map[string]entrant.Entrant) ([]roster.Pick, []team.LineItem) {
	picks := make([]roster.Pick, 0, len(ids))
	var added []team.LineItem
	for _, id := range ids {
		key := entrant.Ref{Kind: kind, ID: id}.Key()
		if item, ok := held[key]; ok {
			picks = append(picks, roster.Pick{EntrantID: id, Price: item.Price})
			continue
		}
		current := market[key]
		picks = append(picks, roster.Pick{EntrantID: id, Price: current.Price})
		added = append(added, team.LineItem{
			Kind:      kind,
			EntrantID: id,
			Name:      current.Name,
			Price:     current.Price,
		})
	}
	return picks, added
}

func normalizeRoster(driverIDs, constructorIDs []string) ([]string, []string, error) {
	drivers := entrant.NormalizeIDs(driverIDs)
	constructors := entrant.NormalizeIDs(constructorIDs)
	if countNonBlank(driverIDs) != len(drivers) || countNonBlank(constructorIDs) != len(constructors) {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, roster.ErrDuplicateEntrant)
	}
	return drivers, constructors, nil
}

func countNonBlank(ids []string) int {
	n := 0
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			n++
		}
	}
	return n
}
