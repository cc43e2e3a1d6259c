package ergast

import (
	"bytes"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// feedValue holds a numeric field that the Ergast schema encodes as a string.
// Mirrors sometimes send bare numbers or null; both decode, and anything else
// decodes to empty so the field reads as 0.
type feedValue string

func (v *feedValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = ""
	case data[0] == '"':
		var text string
		if err := sonic.Unmarshal(data, &text); err != nil {
			return err
		}
		*v = feedValue(text)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*v = feedValue(data)
	default:
		*v = ""
	}
	return nil
}

func (v feedValue) trimmed() string {
	return strings.TrimSpace(string(v))
}

type raceEnvelope struct {
	MRData struct {
		RaceTable raceTable `json:"RaceTable"`
	} `json:"MRData"`
}

type raceTable struct {
	Season feedValue `json:"season"`
	Round  feedValue `json:"round"`
	Races  []race    `json:"Races"`
}

type race struct {
	Season            feedValue      `json:"season"`
	Round             feedValue      `json:"round"`
	RaceName          string         `json:"raceName"`
	Results           []resultItem   `json:"Results"`
	SprintResults     []resultItem   `json:"SprintResults"`
	QualifyingResults []qualiResults `json:"QualifyingResults"`
}

type resultItem struct {
	Position    feedValue   `json:"position"`
	Points      feedValue   `json:"points"`
	Grid        feedValue   `json:"grid"`
	Status      string      `json:"status"`
	Driver      driver      `json:"Driver"`
	Constructor constructor `json:"Constructor"`
}

type qualiResults struct {
	Position    feedValue   `json:"position"`
	Driver      driver      `json:"Driver"`
	Constructor constructor `json:"Constructor"`
}

type driver struct {
	DriverID    string `json:"driverId"`
	Code        string `json:"code"`
	GivenName   string `json:"givenName"`
	FamilyName  string `json:"familyName"`
	Nationality string `json:"nationality"`
}

type constructor struct {
	ConstructorID string `json:"constructorId"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

type standingsEnvelope struct {
	MRData struct {
		StandingsTable struct {
			Season         feedValue       `json:"season"`
			StandingsLists []standingsList `json:"StandingsLists"`
		} `json:"StandingsTable"`
	} `json:"MRData"`
}

type standingsList struct {
	Season               feedValue             `json:"season"`
	Round                feedValue             `json:"round"`
	DriverStandings      []driverStanding      `json:"DriverStandings"`
	ConstructorStandings []constructorStanding `json:"ConstructorStandings"`
}

type driverStanding struct {
	Position     feedValue     `json:"position"`
	Points       feedValue     `json:"points"`
	Driver       driver        `json:"Driver"`
	Constructors []constructor `json:"Constructors"`
}

type constructorStanding struct {
	Position    feedValue   `json:"position"`
	Points      feedValue   `json:"points"`
	Constructor constructor `json:"Constructor"`
}
