package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/league"
	"github.com/riskibarqy/grid-manager/internal/domain/scoring"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
	"github.com/riskibarqy/grid-manager/internal/domain/team"
	"github.com/riskibarqy/grid-manager/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

const testLeagueID = "league-test"

type fakeFeed struct {
	mu        sync.Mutex
	sessions  map[session.Type]SessionResults
	errs      map[session.Type]error
	standings map[entrant.Kind][]StandingRow
	calls     map[session.Type]int
	// gate, when set, blocks Race fetches until closed.
	gate    chan struct{}
	entered chan struct{}
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		sessions:  make(map[session.Type]SessionResults),
		errs:      make(map[session.Type]error),
		standings: make(map[entrant.Kind][]StandingRow),
		calls:     make(map[session.Type]int),
	}
}

func (f *fakeFeed) FetchLatestSession(_ context.Context, sessionType session.Type) (SessionResults, error) {
	f.mu.Lock()
	f.calls[sessionType]++
	gate, entered := f.gate, f.entered
	result, ok := f.sessions[sessionType]
	err := f.errs[sessionType]
	f.mu.Unlock()

	if sessionType == session.TypeRace && gate != nil {
		if entered != nil {
			close(entered)
		}
		<-gate
	}
	if err != nil {
		return SessionResults{}, err
	}
	if !ok {
		return SessionResults{Session: sessionType}, nil
	}
	return result, nil
}

func (f *fakeFeed) FetchStandings(_ context.Context, kind entrant.Kind) ([]StandingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.standings[kind], nil
}

func (f *fakeFeed) callCount(sessionType session.Type) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sessionType]
}

func raceAt(season, round int) SessionResults {
	return SessionResults{
		Session:    session.TypeRace,
		Identity:   session.Identity{Season: season, Round: round, RaceName: "Miami Grand Prix"},
		HasResults: true,
		Results: []scoring.Result{
			{DriverID: "a", DriverName: "Driver A", ConstructorID: "red", ConstructorName: "Red", Points: 25, Grid: 1, Position: 1},
			{DriverID: "b", DriverName: "Driver B", ConstructorID: "red", ConstructorName: "Red", Points: 18, Grid: 3, Position: 2},
			{DriverID: "c", DriverName: "Driver C", ConstructorID: "blue", ConstructorName: "Blue", Points: 15, Grid: 2, Position: 3},
		},
	}
}

type scoringFixture struct {
	store    *memory.Store
	scoring  *memory.ScoringRepository
	entrants *memory.EntrantRepository
	teams    *memory.TeamRepository
	leagues  *memory.LeagueRepository
}

// newScoringFixture seeds drivers a, b, c and constructors red, blue, with
// team-1 holding a, b and red (limited) and team-2 holding c and blue (unlimited).
func newScoringFixture(t *testing.T) scoringFixture {
	t.Helper()

	store := memory.NewStore().Seed([]entrant.Entrant{
		{ID: "a", Kind: entrant.KindDriver, Name: "Driver A", ConstructorID: "red", Price: 20},
		{ID: "b", Kind: entrant.KindDriver, Name: "Driver B", ConstructorID: "red", Price: 15},
		{ID: "c", Kind: entrant.KindDriver, Name: "Driver C", ConstructorID: "blue", Price: 10},
		{ID: "red", Kind: entrant.KindConstructor, Name: "Red", Price: 30},
		{ID: "blue", Kind: entrant.KindConstructor, Name: "Blue", Price: 20},
	}, []league.League{{ID: testLeagueID, OwnerUserID: "owner", Name: "Test League"}})

	f := scoringFixture{
		store:    store,
		scoring:  memory.NewScoringRepository(store),
		entrants: memory.NewEntrantRepository(store),
		teams:    memory.NewTeamRepository(store),
		leagues:  memory.NewLeagueRepository(store),
	}

	require.NoError(t, f.teams.Create(t.Context(), team.Team{
		ID: "team-1", UserID: "user-1", LeagueID: testLeagueID, Name: "One",
		DriverIDs: []string{"a", "b"}, ConstructorIDs: []string{"red"},
		LineItems: []team.LineItem{
			{Kind: entrant.KindDriver, EntrantID: "a", Price: 20},
			{Kind: entrant.KindDriver, EntrantID: "b", Price: 15},
			{Kind: entrant.KindConstructor, EntrantID: "red", Price: 30},
		},
	}))
	require.NoError(t, f.teams.Create(t.Context(), team.Team{
		ID: "team-2", UserID: "user-2", LeagueID: testLeagueID, Name: "Two",
		FreeChangeLimit: -1,
		DriverIDs:       []string{"c"}, ConstructorIDs: []string{"blue"},
		LineItems: []team.LineItem{
			{Kind: entrant.KindDriver, EntrantID: "c", Price: 10},
			{Kind: entrant.KindConstructor, EntrantID: "blue", Price: 20},
		},
	}))
	return f
}

func (f scoringFixture) scoringService(repo scoring.Repository, feed ResultsFeed, pricer PricingRunner) *ScoringService {
	if repo == nil {
		repo = f.scoring
	}
	propagator := NewScorePropagator(repo, ScorePropagatorConfig{
		FanOutWorkers:   4,
		FreeChangeLimit: 2,
		Logger:          logging.NewNop(),
	})
	return NewScoringService(feed, repo, propagator, pricer, ScoringServiceConfig{
		Formula: scoring.DefaultFormula(),
		Logger:  logging.NewNop(),
	})
}

func (f scoringFixture) team(t *testing.T, id string) team.Team {
	t.Helper()
	got, ok, err := f.teams.GetByID(t.Context(), id)
	require.NoError(t, err)
	require.True(t, ok, "team %s not found", id)
	return got
}

func (f scoringFixture) entrant(t *testing.T, kind entrant.Kind, id string) entrant.Entrant {
	t.Helper()
	items, err := f.entrants.ListByKind(t.Context(), kind, 100)
	require.NoError(t, err)
	for _, item := range items {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("entrant %s:%s not found", kind, id)
	return entrant.Entrant{}
}

// crashingScoringRepo fails the watermark write of the first n transactions,
// leaving every earlier write of those transactions uncommitted.
type crashingScoringRepo struct {
	scoring.Repository
	remaining atomic.Int32
}

func newCrashingScoringRepo(inner scoring.Repository, n int32) *crashingScoringRepo {
	r := &crashingScoringRepo{Repository: inner}
	r.remaining.Store(n)
	return r
}

func (r *crashingScoringRepo) WithinTx(ctx context.Context, fn func(ctx context.Context, tx scoring.Tx) error) error {
	return r.Repository.WithinTx(ctx, func(ctx context.Context, tx scoring.Tx) error {
		return fn(ctx, &crashingTx{Tx: tx, repo: r})
	})
}

type crashingTx struct {
	scoring.Tx
	repo *crashingScoringRepo
}

func (tx *crashingTx) AdvanceWatermark(ctx context.Context, w session.Watermark) error {
	if tx.repo.remaining.Add(-1) >= 0 {
		return errors.New("simulated crash before commit")
	}
	return tx.Tx.AdvanceWatermark(ctx, w)
}
