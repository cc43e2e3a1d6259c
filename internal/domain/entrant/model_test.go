package entrant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecentPoints(t *testing.T) {
	t.Parallel()

	e := Entrant{PointsHistory: []HistoryEntry{
		{Points: 1}, {Points: 2}, {Points: 3}, {Points: 4}, {Points: 5}, {Points: 6},
	}}

	assert.Equal(t, []int{2, 3, 4, 5, 6}, e.RecentPoints(5))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, e.RecentPoints(10))
	assert.Nil(t, e.RecentPoints(0))
	assert.Nil(t, Entrant{}.RecentPoints(5))
}

func TestChosenPercentage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, ChosenPercentage(3, 0))
	assert.Equal(t, 0.0, ChosenPercentage(0, 10))
	assert.Equal(t, 50.0, ChosenPercentage(2, 4))
	assert.Equal(t, 33.33, ChosenPercentage(1, 3))
}

func TestNormalizeIDs(t *testing.T) {
	t.Parallel()

	got := NormalizeIDs([]string{" max_verstappen", "", "norris", "max_verstappen "})
	assert.Equal(t, []string{"max_verstappen", "norris"}, got)
}

func TestKindValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, KindDriver.Validate())
	assert.NoError(t, KindConstructor.Validate())
	assert.True(t, errors.Is(Kind("team").Validate(), ErrUnknownKind))
}
