package memory

import (
	"sync"

	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/league"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
	"github.com/riskibarqy/grid-manager/internal/domain/team"
)

// Store is the shared in-memory state behind every memory repository.
// Writes that must be atomic run against a cloned snapshot which replaces the state on success.
type Store struct {
	mu   sync.Mutex
	data *snapshot
}

type snapshot struct {
	entrants   map[string]entrant.Entrant
	teams      map[string]team.Team
	leagues    map[string]league.League
	watermarks map[session.Type]session.Watermark
}

func NewStore() *Store {
	return &Store{data: &snapshot{
		entrants:   make(map[string]entrant.Entrant),
		teams:      make(map[string]team.Team),
		leagues:    make(map[string]league.League),
		watermarks: make(map[session.Type]session.Watermark),
	}}
}

// Seed loads entrants and leagues, replacing rows with the same key.
func (s *Store) Seed(entrants []entrant.Entrant, leagues []league.League) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entrants {
		s.data.entrants[entrantKey(e.Kind, e.ID)] = cloneEntrant(e)
	}
	for _, l := range leagues {
		s.data.leagues[l.ID] = l
	}
	return s
}

// mutate applies fn to a clone of the state and commits it only when fn succeeds.
func (s *Store) mutate(fn func(data *snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(working); err != nil {
		return err
	}
	s.data = working
	return nil
}

func (s *Store) read(fn func(data *snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

func (d *snapshot) clone() *snapshot {
	out := &snapshot{
		entrants:   make(map[string]entrant.Entrant, len(d.entrants)),
		teams:      make(map[string]team.Team, len(d.teams)),
		leagues:    make(map[string]league.League, len(d.leagues)),
		watermarks: make(map[session.Type]session.Watermark, len(d.watermarks)),
	}
	for k, v := range d.entrants {
		out.entrants[k] = cloneEntrant(v)
	}
	for k, v := range d.teams {
		out.teams[k] = cloneTeam(v)
	}
	for k, v := range d.leagues {
		out.leagues[k] = v
	}
	for k, v := range d.watermarks {
		out.watermarks[k] = v
	}
	return out
}

func entrantKey(kind entrant.Kind, id string) string {
	return string(kind) + ":" + id
}

func cloneEntrant(e entrant.Entrant) entrant.Entrant {
	copied := e
	copied.PointsHistory = append([]entrant.HistoryEntry(nil), e.PointsHistory...)
	return copied
}

func cloneTeam(t team.Team) team.Team {
	copied := t
	copied.DriverIDs = append([]string(nil), t.DriverIDs...)
	copied.ConstructorIDs = append([]string(nil), t.ConstructorIDs...)
	copied.LineItems = make([]team.LineItem, 0, len(t.LineItems))
	for _, item := range t.LineItems {
		itemCopy := item
		itemCopy.TeamPointsHistory = append([]entrant.HistoryEntry(nil), item.TeamPointsHistory...)
		copied.LineItems = append(copied.LineItems, itemCopy)
	}
	return copied
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
