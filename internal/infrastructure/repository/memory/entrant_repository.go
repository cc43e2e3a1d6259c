package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
)

type EntrantRepository struct {
	store *Store
}

func NewEntrantRepository(store *Store) *EntrantRepository {
	return &EntrantRepository{store: store}
}

func (r *EntrantRepository) ListByKind(_ context.Context, kind entrant.Kind, historyLimit int) ([]entrant.Entrant, error) {
	var out []entrant.Entrant
	r.store.read(func(data *snapshot) {
		out = make([]entrant.Entrant, 0, len(data.entrants))
		for _, e := range data.entrants {
			if e.Kind != kind {
				continue
			}
			out = append(out, withView(e, historyLimit, len(data.teams)))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *EntrantRepository) GetByIDs(_ context.Context, kind entrant.Kind, ids []string) ([]entrant.Entrant, error) {
	out := make([]entrant.Entrant, 0, len(ids))
	r.store.read(func(data *snapshot) {
		for _, id := range ids {
			e, ok := data.entrants[entrantKey(kind, id)]
			if !ok {
				continue
			}
			out = append(out, withView(e, 0, len(data.teams)))
		}
	})
	return out, nil
}

func (r *EntrantRepository) UpdatePrices(_ context.Context, kind entrant.Kind, prices map[string]int64) error {
	return r.store.mutate(func(data *snapshot) error {
		for id, price := range prices {
			key := entrantKey(kind, id)
			e, ok := data.entrants[key]
			if !ok {
				continue
			}
			e.Price = price
			data.entrants[key] = e
		}
		return nil
	})
}

func (r *EntrantRepository) InsertMissing(_ context.Context, items []entrant.Entrant) (int, error) {
	inserted := 0
	err := r.store.mutate(func(data *snapshot) error {
		for _, item := range items {
			key := entrantKey(item.Kind, item.ID)
			if _, ok := data.entrants[key]; ok {
				continue
			}
			data.entrants[key] = cloneEntrant(item)
			inserted++
		}
		return nil
	})
	return inserted, err
}

func withView(e entrant.Entrant, historyLimit, teamCount int) entrant.Entrant {
	out := cloneEntrant(e)
	if historyLimit <= 0 {
		out.PointsHistory = nil
	} else if len(out.PointsHistory) > historyLimit {
		out.PointsHistory = out.PointsHistory[len(out.PointsHistory)-historyLimit:]
	}
	out.ChosenPercentage = entrant.ChosenPercentage(out.ChosenCount, teamCount)
	return out
}
