package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/pricing"
	"github.com/riskibarqy/grid-manager/internal/domain/scoring"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoringService_RunScoringPass_AppliesRace(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.sessions[session.TypeRace] = raceAt(2025, 6)

	result, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []session.Type{session.TypeRace}, result.SessionsProcessed)
	require.Len(t, result.Sessions, 3)
	assert.Equal(t, SessionStatusNoData, result.Sessions[0].Status)
	assert.Equal(t, SessionStatusNoData, result.Sessions[1].Status)
	assert.Equal(t, SessionStatusApplied, result.Sessions[2].Status)

	// a 27 + b 21 + red 36
	one := f.team(t, "team-1")
	assert.Equal(t, 84, one.Score)
	// c 15 + blue 11
	two := f.team(t, "team-2")
	assert.Equal(t, 26, two.Score)

	a := f.entrant(t, entrant.KindDriver, "a")
	assert.Equal(t, 27, a.Points)
	require.Len(t, a.PointsHistory, 1)
	assert.Equal(t, entrant.HistoryEntry{Season: 2025, Round: 6, RaceName: "Miami Grand Prix", Session: session.TypeRace, Points: 27}, a.PointsHistory[0])
	assert.Equal(t, 36, f.entrant(t, entrant.KindConstructor, "red").Points)

	watermark, ok, err := f.scoring.GetWatermark(t.Context(), session.TypeRace)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2025, watermark.Season)
	assert.Equal(t, 6, watermark.Round)
	assert.Equal(t, scoring.DefaultFormula().Version, watermark.FormulaVersion)
}

func TestScoringService_RunScoringPass_TeamScoreMatchesLineItems(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.sessions[session.TypeRace] = raceAt(2025, 6)
	feed.sessions[session.TypeQualifying] = SessionResults{
		Session:    session.TypeQualifying,
		Identity:   session.Identity{Season: 2025, Round: 6},
		HasResults: true,
		Results:    raceAt(2025, 6).Results,
	}

	_, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)

	for _, id := range []string{"team-1", "team-2"} {
		got := f.team(t, id)
		sum := 0
		for _, item := range got.LineItems {
			sum += item.PointsForTeam
			assert.Len(t, item.TeamPointsHistory, 2, "team=%s entrant=%s", id, item.EntrantID)
		}
		assert.Equal(t, got.Score, sum, "team=%s", id)
	}
	// race 84 + qualifying a 2, b 2, red 4
	assert.Equal(t, 92, f.team(t, "team-1").Score)
}

func TestScoringService_RunScoringPass_IsIdempotent(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.sessions[session.TypeRace] = raceAt(2025, 6)

	_, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)

	// A fresh service has no debounce entry, so only the watermark prevents reapplying.
	second, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)
	assert.Empty(t, second.SessionsProcessed)
	assert.Equal(t, SessionStatusAlreadyApplied, second.Sessions[2].Status)
	assert.Equal(t, 84, f.team(t, "team-1").Score)
	assert.Len(t, f.entrant(t, entrant.KindDriver, "a").PointsHistory, 1)
}

func TestScoringService_RunScoringPass_NewRoundSameSeasonIsApplied(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.sessions[session.TypeRace] = raceAt(2025, 6)
	_, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)

	feed.mu.Lock()
	feed.sessions[session.TypeRace] = raceAt(2025, 7)
	feed.mu.Unlock()

	result, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []session.Type{session.TypeRace}, result.SessionsProcessed)
	assert.Equal(t, 168, f.team(t, "team-1").Score)
}

func TestScoringService_RunScoringPass_CrashBeforeCommitLeavesNoWrites(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.sessions[session.TypeRace] = raceAt(2025, 6)
	repo := newCrashingScoringRepo(f.scoring, 1)

	first, err := f.scoringService(repo, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err, "sessions without data are not failures")
	assert.Empty(t, first.SessionsProcessed)
	assert.Equal(t, SessionStatusStoreFailed, first.Sessions[2].Status)

	assert.Equal(t, 0, f.team(t, "team-1").Score)
	assert.Equal(t, 0, f.entrant(t, entrant.KindDriver, "a").Points)
	_, ok, err := f.scoring.GetWatermark(t.Context(), session.TypeRace)
	require.NoError(t, err)
	assert.False(t, ok)

	retry, err := f.scoringService(repo, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []session.Type{session.TypeRace}, retry.SessionsProcessed)
	assert.Equal(t, 84, f.team(t, "team-1").Score)
	assert.Len(t, f.entrant(t, entrant.KindDriver, "a").PointsHistory, 1)
}

func TestScoringService_RunScoringPass_ResetsFreeChangesOnRace(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.sessions[session.TypeRace] = raceAt(2025, 6)

	_, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 2, f.team(t, "team-1").FreeChangeLimit)
	assert.Equal(t, -1, f.team(t, "team-2").FreeChangeLimit)
}

func TestScoringService_RunScoringPass_FeedFailureIsolated(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.errs[session.TypeSprint] = errors.Mark(errors.New("connection refused"), ErrFeedUnavailable)
	feed.sessions[session.TypeRace] = raceAt(2025, 6)

	result, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)
	assert.Equal(t, SessionStatusFeedUnavailable, result.Sessions[0].Status)
	assert.NotEmpty(t, result.Sessions[0].Error)
	assert.Equal(t, []session.Type{session.TypeRace}, result.SessionsProcessed)

	_, ok, err := f.scoring.GetWatermark(t.Context(), session.TypeSprint)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScoringService_RunScoringPass_AllSessionsFailed(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	for _, sessionType := range session.ProcessingOrder {
		feed.errs[sessionType] = errors.Mark(errors.Newf("%s timeout", sessionType), ErrFeedUnavailable)
	}

	_, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFeedUnavailable))
}

func TestScoringService_RunScoringPass_MalformedResultsSkipped(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	race := raceAt(2025, 6)
	race.Results = append(race.Results, race.Results[0])
	feed.sessions[session.TypeRace] = race

	result, err := f.scoringService(nil, feed, nil).RunScoringPass(t.Context())
	require.NoError(t, err)
	assert.Equal(t, SessionStatusMalformed, result.Sessions[2].Status)
	assert.Equal(t, 0, f.team(t, "team-1").Score)
}

func TestScoringService_RunScoringPass_InvalidFormula(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	formula := scoring.DefaultFormula()
	formula.KRace = 0
	svc := NewScoringService(feed, f.scoring, NewScorePropagator(f.scoring, ScorePropagatorConfig{}), nil, ScoringServiceConfig{
		Formula: formula,
		Logger:  logging.NewNop(),
	})

	_, err := svc.RunScoringPass(t.Context())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigInvalid))
	assert.Zero(t, feed.callCount(session.TypeRace))
}

func TestScoringService_RunScoringPass_DebouncedAfterApply(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.sessions[session.TypeRace] = raceAt(2025, 6)
	svc := f.scoringService(nil, feed, nil)

	_, err := svc.RunScoringPass(t.Context())
	require.NoError(t, err)

	again, err := svc.RunScoringPass(t.Context())
	require.NoError(t, err)
	assert.True(t, again.Debounced)
	assert.Equal(t, 1, feed.callCount(session.TypeRace))
}

func TestScoringService_RunScoringPass_NoDataIsNotDebounced(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	svc := f.scoringService(nil, feed, nil)

	_, err := svc.RunScoringPass(t.Context())
	require.NoError(t, err)
	_, err = svc.RunScoringPass(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, feed.callCount(session.TypeRace))
}

func TestScoringService_RunScoringPass_ConcurrentCallersShareOnePass(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.sessions[session.TypeRace] = raceAt(2025, 6)
	feed.gate = make(chan struct{})
	feed.entered = make(chan struct{})
	svc := f.scoringService(nil, feed, nil)

	var wg sync.WaitGroup
	results := make([]PassResult, 2)
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = svc.RunScoringPass(context.Background())
	}()
	<-feed.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = svc.RunScoringPass(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)
	close(feed.gate)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 1, feed.callCount(session.TypeRace))
	assert.Equal(t, 84, f.team(t, "team-1").Score)
}

func TestScoringService_RunScoringPass_RepricesAfterApply(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	feed := newFakeFeed()
	feed.sessions[session.TypeRace] = raceAt(2025, 6)
	pricer := NewPricingService(f.entrants, pricing.DefaultConfig(), logging.NewNop())

	result, err := f.scoringService(nil, feed, pricer).RunScoringPass(t.Context())
	require.NoError(t, err)
	require.NotNil(t, result.Pricing)
	assert.Empty(t, result.PricingError)

	// a has the most driver points, c the fewest.
	assert.Equal(t, int64(25), f.entrant(t, entrant.KindDriver, "a").Price)
	assert.Equal(t, int64(4), f.entrant(t, entrant.KindDriver, "c").Price)
	assert.Equal(t, int64(35), f.entrant(t, entrant.KindConstructor, "red").Price)
	assert.Equal(t, int64(10), f.entrant(t, entrant.KindConstructor, "blue").Price)
}
