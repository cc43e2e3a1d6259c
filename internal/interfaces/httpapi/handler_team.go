package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/grid-manager/internal/usecase"
)

type createTeamRequest struct {
	UserID         string   `json:"user_id" validate:"required"`
	LeagueID       string   `json:"league_id"`
	Name           string   `json:"name" validate:"required,max=100"`
	DriverIDs      []string `json:"driver_ids" validate:"required,dive,required"`
	ConstructorIDs []string `json:"constructor_ids" validate:"required,dive,required"`
}

type rosterEditRequest struct {
	DriverIDs      []string `json:"driver_ids" validate:"required,dive,required"`
	ConstructorIDs []string `json:"constructor_ids" validate:"required,dive,required"`
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	if h.rosterService == nil {
		writeError(ctx, w, fmt.Errorf("%w: roster service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req createTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.rosterService.CreateTeam(ctx, usecase.CreateTeamInput{
		UserID:         req.UserID,
		LeagueID:       req.LeagueID,
		Name:           req.Name,
		DriverIDs:      req.DriverIDs,
		ConstructorIDs: req.ConstructorIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed", "user_id", req.UserID, "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(created))
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTeam")
	defer span.End()

	if h.rosterService == nil {
		writeError(ctx, w, fmt.Errorf("%w: roster service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	if err := h.rosterService.DeleteTeam(ctx, teamID); err != nil {
		h.logger.WarnContext(ctx, "delete team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"team_id": teamID, "status": "deleted"})
}

func (h *Handler) ApplyRosterEdit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplyRosterEdit")
	defer span.End()

	if h.rosterService == nil {
		writeError(ctx, w, fmt.Errorf("%w: roster service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req rosterEditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	result, err := h.rosterService.ApplyRosterEdit(ctx, usecase.RosterEditInput{
		TeamID:         teamID,
		DriverIDs:      req.DriverIDs,
		ConstructorIDs: req.ConstructorIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "apply roster edit failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterEditDTO{
		Team:                 teamToDTO(result.Team),
		Changes:              result.Changes,
		ScoreAdjustment:      result.ScoreAdjustment,
		RemainingFreeChanges: result.RemainingFreeChanges,
	})
}
