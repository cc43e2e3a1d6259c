package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/grid-manager/internal/domain/team"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/riskibarqy/grid-manager/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type ScoringRunner interface {
	RunScoringPass(ctx context.Context) (usecase.PassResult, error)
}

type PricingRunner interface {
	RunPricingPass(ctx context.Context) (usecase.PricingResult, error)
}

type EntrantSeeder interface {
	SeedEntrants(ctx context.Context) (usecase.SeedResult, error)
}

type RosterEditor interface {
	ApplyRosterEdit(ctx context.Context, input usecase.RosterEditInput) (usecase.RosterEditResult, error)
	CreateTeam(ctx context.Context, input usecase.CreateTeamInput) (team.Team, error)
	DeleteTeam(ctx context.Context, teamID string) error
}

type Handler struct {
	scoringService ScoringRunner
	pricingService PricingRunner
	seedService    EntrantSeeder
	rosterService  RosterEditor
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	scoringService ScoringRunner,
	pricingService PricingRunner,
	seedService EntrantSeeder,
	rosterService RosterEditor,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scoringService: scoringService,
		pricingService: pricingService,
		seedService:    seedService,
		rosterService:  rosterService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON decodes a bounded request body; an empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
