package httpapi

import (
	"time"

	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/team"
	"github.com/riskibarqy/grid-manager/internal/usecase"
)

type historyEntryDTO struct {
	Season   int    `json:"season"`
	Round    int    `json:"round"`
	RaceName string `json:"race_name"`
	Session  string `json:"session"`
	Points   int    `json:"points"`
}

type lineItemDTO struct {
	Kind              string            `json:"kind"`
	EntrantID         string            `json:"entrant_id"`
	Name              string            `json:"name"`
	Price             int64             `json:"price"`
	PointsForTeam     int               `json:"points_for_team"`
	TeamPointsHistory []historyEntryDTO `json:"team_points_history"`
}

type teamDTO struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	LeagueID        string        `json:"league_id,omitempty"`
	Name            string        `json:"name"`
	Score           int           `json:"score"`
	FreeChangeLimit int           `json:"free_change_limit"`
	DriverIDs       []string      `json:"driver_ids"`
	ConstructorIDs  []string      `json:"constructor_ids"`
	LineItems       []lineItemDTO `json:"line_items"`
}

type rosterEditDTO struct {
	Team                 teamDTO `json:"team"`
	Changes              int     `json:"changes"`
	ScoreAdjustment      int     `json:"score_adjustment"`
	RemainingFreeChanges int     `json:"remaining_free_changes"`
}

type sessionOutcomeDTO struct {
	Session         string `json:"session"`
	Status          string `json:"status"`
	Season          int    `json:"season,omitempty"`
	Round           int    `json:"round,omitempty"`
	RaceName        string `json:"race_name,omitempty"`
	EntrantsUpdated int    `json:"entrants_updated"`
	TeamsUpdated    int64  `json:"teams_updated"`
	Error           string `json:"error,omitempty"`
}

type poolPricingDTO struct {
	Kind     string `json:"kind"`
	Repriced int    `json:"repriced"`
	MinPrice int64  `json:"min_price"`
	MaxPrice int64  `json:"max_price"`
}

type pricingResultDTO struct {
	Policy string           `json:"policy"`
	Pools  []poolPricingDTO `json:"pools"`
}

type passResultDTO struct {
	SessionsProcessed []string            `json:"sessions_processed"`
	Sessions          []sessionOutcomeDTO `json:"sessions"`
	Pricing           *pricingResultDTO   `json:"pricing,omitempty"`
	PricingError      string              `json:"pricing_error,omitempty"`
	Debounced         bool                `json:"debounced"`
	StartedAt         time.Time           `json:"started_at"`
	FinishedAt        time.Time           `json:"finished_at"`
}

func historyToDTO(items []entrant.HistoryEntry) []historyEntryDTO {
	out := make([]historyEntryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, historyEntryDTO{
			Season:   item.Season,
			Round:    item.Round,
			RaceName: item.RaceName,
			Session:  string(item.Session),
			Points:   item.Points,
		})
	}
	return out
}

func teamToDTO(t team.Team) teamDTO {
	items := make([]lineItemDTO, 0, len(t.LineItems))
	for _, item := range t.LineItems {
		items = append(items, lineItemDTO{
			Kind:              string(item.Kind),
			EntrantID:         item.EntrantID,
			Name:              item.Name,
			Price:             item.Price,
			PointsForTeam:     item.PointsForTeam,
			TeamPointsHistory: historyToDTO(item.TeamPointsHistory),
		})
	}
	return teamDTO{
		ID:              t.ID,
		UserID:          t.UserID,
		LeagueID:        t.LeagueID,
		Name:            t.Name,
		Score:           t.Score,
		FreeChangeLimit: t.FreeChangeLimit,
		DriverIDs:       append([]string{}, t.DriverIDs...),
		ConstructorIDs:  append([]string{}, t.ConstructorIDs...),
		LineItems:       items,
	}
}

func pricingResultToDTO(result usecase.PricingResult) pricingResultDTO {
	pools := make([]poolPricingDTO, 0, len(result.Pools))
	for _, pool := range result.Pools {
		pools = append(pools, poolPricingDTO{
			Kind:     string(pool.Kind),
			Repriced: pool.Repriced,
			MinPrice: pool.MinPrice,
			MaxPrice: pool.MaxPrice,
		})
	}
	return pricingResultDTO{Policy: string(result.Policy), Pools: pools}
}

func passResultToDTO(result usecase.PassResult) passResultDTO {
	processed := make([]string, 0, len(result.SessionsProcessed))
	for _, s := range result.SessionsProcessed {
		processed = append(processed, string(s))
	}
	sessions := make([]sessionOutcomeDTO, 0, len(result.Sessions))
	for _, s := range result.Sessions {
		sessions = append(sessions, sessionOutcomeDTO{
			Session:         string(s.Session),
			Status:          string(s.Status),
			Season:          s.Season,
			Round:           s.Round,
			RaceName:        s.RaceName,
			EntrantsUpdated: s.EntrantsUpdated,
			TeamsUpdated:    s.TeamsUpdated,
			Error:           s.Error,
		})
	}

	out := passResultDTO{
		SessionsProcessed: processed,
		Sessions:          sessions,
		PricingError:      result.PricingError,
		Debounced:         result.Debounced,
		StartedAt:         result.StartedAt,
		FinishedAt:        result.FinishedAt,
	}
	if result.Pricing != nil {
		p := pricingResultToDTO(*result.Pricing)
		out.Pricing = &p
	}
	return out
}
