package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/team"
)

type TeamRepository struct {
	store *Store
	now   func() time.Time
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	var (
		t  team.Team
		ok bool
	)
	r.store.read(func(data *snapshot) {
		t, ok = data.teams[teamID]
		if ok {
			t = cloneTeam(t)
		}
	})
	return t, ok, nil
}

func (r *TeamRepository) Count(_ context.Context) (int, error) {
	count := 0
	r.store.read(func(data *snapshot) {
		count = len(data.teams)
	})
	return count, nil
}

func (r *TeamRepository) Create(_ context.Context, t team.Team) error {
	return r.store.mutate(func(data *snapshot) error {
		if _, exists := data.teams[t.ID]; exists {
			return fmt.Errorf("%w: %s", team.ErrTeamExists, t.ID)
		}

		now := r.now()
		created := cloneTeam(t)
		created.CreatedAt = now
		created.UpdatedAt = now
		for i := range created.LineItems {
			created.LineItems[i].TeamID = created.ID
			adjustChosen(data, created.LineItems[i].Kind, created.LineItems[i].EntrantID, 1)
		}
		data.teams[created.ID] = created
		adjustLeagueTeams(data, created.LeagueID, 1)
		return nil
	})
}

func (r *TeamRepository) Delete(_ context.Context, teamID string) (bool, error) {
	deleted := false
	err := r.store.mutate(func(data *snapshot) error {
		t, ok := data.teams[teamID]
		if !ok {
			return nil
		}
		for _, item := range t.LineItems {
			adjustChosen(data, item.Kind, item.EntrantID, -1)
		}
		adjustLeagueTeams(data, t.LeagueID, -1)
		delete(data.teams, teamID)
		deleted = true
		return nil
	})
	return deleted, err
}

func (r *TeamRepository) EditRoster(_ context.Context, teamID string, decide func(current team.Team) (team.RosterChange, error)) (team.Team, error) {
	var updated team.Team
	err := r.store.mutate(func(data *snapshot) error {
		current, ok := data.teams[teamID]
		if !ok {
			return fmt.Errorf("%w: %s", team.ErrTeamNotFound, teamID)
		}

		change, err := decide(cloneTeam(current))
		if err != nil {
			return err
		}

		removed := make(map[string]struct{}, len(change.Removed))
		for _, item := range change.Removed {
			removed[item.Key()] = struct{}{}
			adjustChosen(data, item.Kind, item.EntrantID, -1)
		}
		items := make([]team.LineItem, 0, len(current.LineItems)+len(change.Added))
		for _, item := range current.LineItems {
			if _, drop := removed[item.Key()]; drop {
				continue
			}
			items = append(items, item)
		}
		for _, item := range change.Added {
			item.TeamID = teamID
			items = append(items, item)
			adjustChosen(data, item.Kind, item.EntrantID, 1)
		}

		current.LineItems = items
		current.DriverIDs = append([]string(nil), change.DriverIDs...)
		current.ConstructorIDs = append([]string(nil), change.ConstructorIDs...)
		current.Score += change.ScoreDelta
		current.FreeChangeLimit = change.FreeChangeLimit
		current.UpdatedAt = r.now()
		data.teams[teamID] = current
		updated = cloneTeam(current)
		return nil
	})
	return updated, err
}

func adjustChosen(data *snapshot, kind entrant.Kind, entrantID string, delta int) {
	key := entrantKey(kind, entrantID)
	e, ok := data.entrants[key]
	if !ok {
		return
	}
	e.ChosenCount += delta
	if e.ChosenCount < 0 {
		e.ChosenCount = 0
	}
	data.entrants[key] = e
}

func adjustLeagueTeams(data *snapshot, leagueID string, delta int) {
	if leagueID == "" {
		return
	}
	l, ok := data.leagues[leagueID]
	if !ok {
		return
	}
	l.NumberOfTeams += delta
	if l.NumberOfTeams < 0 {
		l.NumberOfTeams = 0
	}
	data.leagues[leagueID] = l
}
