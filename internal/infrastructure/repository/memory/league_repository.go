package memory

import (
	"context"

	"github.com/riskibarqy/grid-manager/internal/domain/league"
)

type LeagueRepository struct {
	store *Store
}

func NewLeagueRepository(store *Store) *LeagueRepository {
	return &LeagueRepository{store: store}
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	var (
		l  league.League
		ok bool
	)
	r.store.read(func(data *snapshot) {
		l, ok = data.leagues[leagueID]
	})
	return l, ok, nil
}
