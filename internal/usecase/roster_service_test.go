package usecase

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/roster"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequenceIDs struct {
	next int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("team-new-%d", g.next), nil
}

func testRosterRules() roster.Rules {
	return roster.Rules{
		DriverSlots:      2,
		ConstructorSlots: 1,
		BudgetCap:        70,
		FreeChangeLimit:  1,
		ChangeCost:       25,
	}
}

func newTestRosterService(f scoringFixture) *RosterService {
	return NewRosterService(f.teams, f.entrants, f.leagues, testRosterRules(), &sequenceIDs{}, logging.NewNop())
}

func TestRosterService_ApplyRosterEdit_ChargesBeyondFreeChanges(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	svc := newTestRosterService(f)

	result, err := svc.ApplyRosterEdit(t.Context(), RosterEditInput{
		TeamID:         "team-1",
		DriverIDs:      []string{"a", "c"},
		ConstructorIDs: []string{"red"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Changes)
	assert.Equal(t, -25, result.ScoreAdjustment)
	assert.Equal(t, 0, result.RemainingFreeChanges)
	assert.Equal(t, -25, result.Team.Score)
	assert.Equal(t, []string{"a", "c"}, result.Team.DriverIDs)

	assert.Equal(t, 0, f.entrant(t, entrant.KindDriver, "b").ChosenCount)
	assert.Equal(t, 2, f.entrant(t, entrant.KindDriver, "c").ChosenCount)
}

func TestRosterService_ApplyRosterEdit_UnlimitedTeamIsNeverCharged(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	svc := newTestRosterService(f)

	result, err := svc.ApplyRosterEdit(t.Context(), RosterEditInput{
		TeamID:         "team-2",
		DriverIDs:      []string{"a", "b"},
		ConstructorIDs: []string{"red"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Changes)
	assert.Zero(t, result.ScoreAdjustment)
	assert.Equal(t, roster.Unlimited, result.RemainingFreeChanges)
}

func TestRosterService_ApplyRosterEdit_SpendsFreeChangeFirst(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	svc := newTestRosterService(f)

	created, err := svc.CreateTeam(t.Context(), CreateTeamInput{
		UserID:         "user-3",
		LeagueID:       testLeagueID,
		Name:           "Three",
		DriverIDs:      []string{"a", "c"},
		ConstructorIDs: []string{"blue"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.FreeChangeLimit)

	first, err := svc.ApplyRosterEdit(t.Context(), RosterEditInput{
		TeamID:         created.ID,
		DriverIDs:      []string{"a", "b"},
		ConstructorIDs: []string{"blue"},
	})
	require.NoError(t, err)
	assert.Zero(t, first.ScoreAdjustment)
	assert.Equal(t, 0, first.RemainingFreeChanges)

	second, err := svc.ApplyRosterEdit(t.Context(), RosterEditInput{
		TeamID:         created.ID,
		DriverIDs:      []string{"a", "c"},
		ConstructorIDs: []string{"blue"},
	})
	require.NoError(t, err)
	assert.Equal(t, -25, second.ScoreAdjustment)
	assert.Equal(t, -25, second.Team.Score)
}

func TestRosterService_ApplyRosterEdit_NoChangeIsFree(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	result, err := newTestRosterService(f).ApplyRosterEdit(t.Context(), RosterEditInput{
		TeamID:         "team-1",
		DriverIDs:      []string{"b", "a"},
		ConstructorIDs: []string{"red"},
	})
	require.NoError(t, err)
	assert.Zero(t, result.Changes)
	assert.Zero(t, result.ScoreAdjustment)
}

func TestRosterService_ApplyRosterEdit_KeptItemsKeepSelectionPrice(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	require.NoError(t, f.entrants.UpdatePrices(t.Context(), entrant.KindDriver, map[string]int64{"a": 60}))
	svc := newTestRosterService(f)

	// a stays at its selection price of 20: 20 + 10 + 30 fits the cap.
	result, err := svc.ApplyRosterEdit(t.Context(), RosterEditInput{
		TeamID:         "team-1",
		DriverIDs:      []string{"a", "c"},
		ConstructorIDs: []string{"red"},
	})
	require.NoError(t, err)
	for _, item := range result.Team.LineItems {
		if item.EntrantID == "a" {
			assert.Equal(t, int64(20), item.Price)
		}
	}

	// A new team pays the market price of 60 and breaks the cap.
	_, err = svc.CreateTeam(t.Context(), CreateTeamInput{
		UserID:         "user-9",
		Name:           "Nine",
		DriverIDs:      []string{"a", "c"},
		ConstructorIDs: []string{"blue"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(err, roster.ErrExceededBudget))
}

func TestRosterService_ApplyRosterEdit_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input RosterEditInput
		want  error
	}{
		{
			name:  "unknown entrant",
			input: RosterEditInput{TeamID: "team-1", DriverIDs: []string{"a", "zz"}, ConstructorIDs: []string{"red"}},
			want:  ErrNotFound,
		},
		{
			name:  "duplicate entrant",
			input: RosterEditInput{TeamID: "team-1", DriverIDs: []string{"a", "a"}, ConstructorIDs: []string{"red"}},
			want:  ErrInvalidInput,
		},
		{
			name:  "wrong slot count",
			input: RosterEditInput{TeamID: "team-1", DriverIDs: []string{"a", "b", "c"}, ConstructorIDs: []string{"red"}},
			want:  ErrInvalidInput,
		},
		{
			name:  "unknown team",
			input: RosterEditInput{TeamID: "missing", DriverIDs: []string{"a", "b"}, ConstructorIDs: []string{"red"}},
			want:  ErrNotFound,
		},
		{
			name:  "blank team",
			input: RosterEditInput{DriverIDs: []string{"a", "b"}, ConstructorIDs: []string{"red"}},
			want:  ErrInvalidInput,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newScoringFixture(t)
			_, err := newTestRosterService(f).ApplyRosterEdit(t.Context(), tc.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, []string{"a", "b"}, f.team(t, "team-1").DriverIDs)
		})
	}
}

func TestRosterService_CreateAndDeleteTeam_MaintainCounters(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	svc := newTestRosterService(f)

	created, err := svc.CreateTeam(t.Context(), CreateTeamInput{
		UserID:         "user-3",
		LeagueID:       testLeagueID,
		Name:           "Three",
		DriverIDs:      []string{"b", "c"},
		ConstructorIDs: []string{"blue"},
	})
	require.NoError(t, err)
	assert.Len(t, created.LineItems, 3)

	l, _, err := f.leagues.GetByID(t.Context(), testLeagueID)
	require.NoError(t, err)
	assert.Equal(t, 3, l.NumberOfTeams)
	blue := f.entrant(t, entrant.KindConstructor, "blue")
	assert.Equal(t, 2, blue.ChosenCount)
	assert.InDelta(t, 66.67, blue.ChosenPercentage, 0.001)

	require.NoError(t, svc.DeleteTeam(t.Context(), created.ID))
	l, _, err = f.leagues.GetByID(t.Context(), testLeagueID)
	require.NoError(t, err)
	assert.Equal(t, 2, l.NumberOfTeams)
	assert.Equal(t, 1, f.entrant(t, entrant.KindConstructor, "blue").ChosenCount)

	err = svc.DeleteTeam(t.Context(), created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRosterService_CreateTeam_UnknownLeague(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(t)
	_, err := newTestRosterService(f).CreateTeam(t.Context(), CreateTeamInput{
		UserID:         "user-3",
		LeagueID:       "nope",
		Name:           "Three",
		DriverIDs:      []string{"b", "c"},
		ConstructorIDs: []string{"blue"},
	})
	assert.True(t, errors.Is(err, ErrNotFound))
}
