package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/scoring"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
)

type ScoringRepository struct {
	store *Store
}

func NewScoringRepository(store *Store) *ScoringRepository {
	return &ScoringRepository{store: store}
}

func (r *ScoringRepository) GetWatermark(_ context.Context, sessionType session.Type) (session.Watermark, bool, error) {
	var (
		w  session.Watermark
		ok bool
	)
	r.store.read(func(data *snapshot) {
		w, ok = data.watermarks[sessionType]
	})
	return w, ok, nil
}

func (r *ScoringRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx scoring.Tx) error) error {
	return r.store.mutate(func(data *snapshot) error {
		return fn(ctx, &scoringTx{data: data})
	})
}

// scoringTx serializes fan-out workers over the working snapshot.
type scoringTx struct {
	mu   sync.Mutex
	data *snapshot
}

func (tx *scoringTx) LockSession(_ context.Context, sessionType session.Type) (session.Watermark, bool, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	w, ok := tx.data.watermarks[sessionType]
	return w, ok, nil
}

func (tx *scoringTx) IncrementTeamScores(_ context.Context, kind entrant.Kind, entrantID string, delta int) (int64, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	var affected int64
	for id, t := range tx.data.teams {
		if !containsID(t.RosterIDs(kind), entrantID) {
			continue
		}
		t.Score += delta
		tx.data.teams[id] = t
		affected++
	}
	return affected, nil
}

func (tx *scoringTx) IncrementLineItems(_ context.Context, kind entrant.Kind, entrantID string, delta int, entry entrant.HistoryEntry) (int64, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	var affected int64
	for id, t := range tx.data.teams {
		changed := false
		for i := range t.LineItems {
			item := &t.LineItems[i]
			if item.Kind != kind || item.EntrantID != entrantID {
				continue
			}
			item.PointsForTeam += delta
			item.TeamPointsHistory = append(item.TeamPointsHistory, entry)
			changed = true
			affected++
		}
		if changed {
			tx.data.teams[id] = t
		}
	}
	return affected, nil
}

func (tx *scoringTx) IncrementEntrant(_ context.Context, ref entrant.Ref, delta int, entry entrant.HistoryEntry) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	key := entrantKey(ref.Kind, ref.ID)
	e, ok := tx.data.entrants[key]
	if !ok {
		e = entrant.Entrant{ID: ref.ID, Kind: ref.Kind, Name: ref.Name}
	}
	e.Points += delta
	e.PointsHistory = append(e.PointsHistory, entry)
	tx.data.entrants[key] = e
	return nil
}

func (tx *scoringTx) ResetFreeChanges(_ context.Context, limit int) (int64, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	var affected int64
	for id, t := range tx.data.teams {
		if t.FreeChangeLimit < 0 {
			continue
		}
		t.FreeChangeLimit = limit
		tx.data.teams[id] = t
		affected++
	}
	return affected, nil
}

func (tx *scoringTx) AdvanceWatermark(_ context.Context, watermark session.Watermark) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	tx.data.watermarks[watermark.Session] = watermark
	return nil
}
