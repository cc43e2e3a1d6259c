package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/grid-manager/internal/usecase"
)

func (h *Handler) RunUpdateScoresJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunUpdateScoresJob")
	defer span.End()

	if h.scoringService == nil {
		writeError(ctx, w, fmt.Errorf("%w: scoring service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.scoringService.RunScoringPass(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run update scores job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, passResultToDTO(result))
}

func (h *Handler) RunUpdatePricesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunUpdatePricesJob")
	defer span.End()

	if h.pricingService == nil {
		writeError(ctx, w, fmt.Errorf("%w: pricing service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.pricingService.RunPricingPass(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run update prices job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pricingResultToDTO(result))
}

func (h *Handler) RunSeedEntrantsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSeedEntrantsJob")
	defer span.End()

	if h.seedService == nil {
		writeError(ctx, w, fmt.Errorf("%w: seed service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.seedService.SeedEntrants(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run seed entrants job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
