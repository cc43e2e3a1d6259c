package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/scoring"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
	"github.com/riskibarqy/grid-manager/internal/platform/cache"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
)

const (
	scoringPassKey               = "scoring:pass"
	defaultScoringDebounceWindow = 3 * time.Hour
)

type SessionStatus string

const (
	SessionStatusApplied         SessionStatus = "applied"
	SessionStatusAlreadyApplied  SessionStatus = "already_applied"
	SessionStatusNoData          SessionStatus = "no_data"
	SessionStatusFeedUnavailable SessionStatus = "feed_unavailable"
	SessionStatusMalformed       SessionStatus = "malformed"
	SessionStatusStoreFailed     SessionStatus = "store_failed"
)

func (s SessionStatus) failed() bool {
	switch s {
	case SessionStatusFeedUnavailable, SessionStatusMalformed, SessionStatusStoreFailed:
		return true
	default:
		return false
	}
}

type SessionOutcome struct {
	Session         session.Type
	Status          SessionStatus
	Season          int
	Round           int
	RaceName        string
	EntrantsUpdated int
	TeamsUpdated    int64
	Error           string
}

type PassResult struct {
	SessionsProcessed []session.Type
	Sessions          []SessionOutcome
	Pricing           *PricingResult
	PricingError      string
	Debounced         bool
	StartedAt         time.Time
	FinishedAt        time.Time
}

// PricingRunner re-derives prices after points change.
type PricingRunner interface {
	RunPricingPass(ctx context.Context) (PricingResult, error)
}

type ScoringServiceConfig struct {
	Formula        scoring.Formula
	DebounceWindow time.Duration
	Logger         *logging.Logger
	Now            func() time.Time
}

type ScoringService struct {
	feed       ResultsFeed
	repo       scoring.Repository
	propagator *ScorePropagator
	pricer     PricingRunner
	formula    scoring.Formula
	debounce   *cache.Store[PassResult]
	logger     *logging.Logger
	now        func() time.Time
}

func NewScoringService(
	feed ResultsFeed,
	repo scoring.Repository,
	propagator *ScorePropagator,
	pricer PricingRunner,
	cfg ScoringServiceConfig,
) *ScoringService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	window := cfg.DebounceWindow
	if window <= 0 {
		window = defaultScoringDebounceWindow
	}

	return &ScoringService{
		feed:       feed,
		repo:       repo,
		propagator: propagator,
		pricer:     pricer,
		formula:    cfg.Formula,
		debounce:   cache.NewStore[PassResult](window, now),
		logger:     logger,
		now:        now,
	}
}

// RunScoringPass fetches the latest Sprint, Qualifying and Race results and applies
// every session not yet recorded by its watermark. Concurrent callers share one pass;
// a pass that applied something suppresses further passes for the debounce window.
func (s *ScoringService) RunScoringPass(ctx context.Context) (PassResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RunScoringPass")
	defer span.End()

	if err := s.formula.Validate(); err != nil {
		return PassResult{}, errors.Mark(errors.Wrap(err, "scoring formula"), ErrConfigInvalid)
	}

	result, debounced, err := s.debounce.GetOrLoad(ctx, scoringPassKey, s.runPass, func(r PassResult) bool {
		return len(r.SessionsProcessed) > 0
	})
	if debounced {
		result.Debounced = true
		s.logger.DebugContext(ctx, "scoring pass debounced", "started_at", result.StartedAt)
	}
	return result, err
}

type fetchedSession struct {
	results SessionResults
	err     error
}

func (s *ScoringService) runPass(ctx context.Context) (PassResult, error) {
	result := PassResult{StartedAt: s.now()}

	fetched, err := s.prefetch(ctx)
	if err != nil {
		return PassResult{}, err
	}

	var failures []error
	for i, sessionType := range session.ProcessingOrder {
		outcome, applyErr := s.processSession(ctx, sessionType, fetched[i])
		result.Sessions = append(result.Sessions, outcome)
		if outcome.Status == SessionStatusApplied {
			result.SessionsProcessed = append(result.SessionsProcessed, sessionType)
		}
		if applyErr != nil {
			failures = append(failures, applyErr)
		}
	}

	if len(result.SessionsProcessed) > 0 && s.pricer != nil {
		pricingResult, pricingErr := s.pricer.RunPricingPass(ctx)
		if pricingErr != nil {
			s.logger.WarnContext(ctx, "pricing after scoring failed", "error", pricingErr)
			result.PricingError = pricingErr.Error()
		} else {
			result.Pricing = &pricingResult
		}
	}
	result.FinishedAt = s.now()

	if len(failures) == len(session.ProcessingOrder) {
		return result, errors.Wrapf(failures[0], "scoring pass failed for every session type: %s", joinErrors(failures))
	}

	s.logger.InfoContext(ctx, "scoring pass finished",
		"sessions_processed", len(result.SessionsProcessed),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	)
	return result, nil
}

// prefetch fetches every session type concurrently; processing order stays fixed.
func (s *ScoringService) prefetch(ctx context.Context) ([]fetchedSession, error) {
	out := make([]fetchedSession, len(session.ProcessingOrder))

	workerPool, err := ants.NewPool(len(session.ProcessingOrder))
	if err != nil {
		return nil, fmt.Errorf("create feed worker pool: %w", err)
	}
	defer workerPool.Release()

	var wg sync.WaitGroup
	for i, sessionType := range session.ProcessingOrder {
		wg.Add(1)
		submitErr := workerPool.Submit(func() {
			defer wg.Done()
			results, fetchErr := s.feed.FetchLatestSession(ctx, sessionType)
			out[i] = fetchedSession{results: results, err: fetchErr}
		})
		if submitErr != nil {
			wg.Done()
			out[i] = fetchedSession{err: errors.Mark(errors.Wrap(submitErr, "submit feed fetch"), ErrFeedUnavailable)}
		}
	}
	wg.Wait()

	return out, nil
}

func (s *ScoringService) processSession(ctx context.Context, sessionType session.Type, fetched fetchedSession) (SessionOutcome, error) {
	outcome := SessionOutcome{Session: sessionType}

	if fetched.err != nil {
		outcome.Status = SessionStatusFeedUnavailable
		if errors.Is(fetched.err, ErrFeedDataMalformed) {
			outcome.Status = SessionStatusMalformed
		}
		outcome.Error = fetched.err.Error()
		s.logger.WarnContext(ctx, "skip session: feed fetch failed", "session", sessionType, "status", outcome.Status, "error", fetched.err)
		return outcome, fetched.err
	}

	feedResults := fetched.results
	if !feedResults.HasResults {
		outcome.Status = SessionStatusNoData
		return outcome, nil
	}

	outcome.Season = feedResults.Identity.Season
	outcome.Round = feedResults.Identity.Round
	outcome.RaceName = feedResults.Identity.RaceName

	if err := validateSessionResults(feedResults); err != nil {
		outcome.Status = SessionStatusMalformed
		outcome.Error = err.Error()
		s.logger.WarnContext(ctx, "skip session: malformed results", "session", sessionType, "error", err)
		return outcome, err
	}

	current, exists, err := s.repo.GetWatermark(ctx, sessionType)
	if err != nil {
		err = errors.Mark(errors.Wrapf(err, "get %s watermark", sessionType), ErrStoreWriteFailed)
		outcome.Status = SessionStatusStoreFailed
		outcome.Error = err.Error()
		s.logger.ErrorContext(ctx, "skip session: watermark read failed", "session", sessionType, "error", err)
		return outcome, err
	}
	if !session.ShouldProcess(current, exists, feedResults.Identity) {
		outcome.Status = SessionStatusAlreadyApplied
		return outcome, nil
	}

	propagated, err := s.propagator.Propagate(ctx, Application{
		Session:        sessionType,
		Identity:       feedResults.Identity,
		FormulaVersion: s.formula.Version,
		Deltas:         s.formula.Calculate(sessionType, feedResults.Results),
		Names:          entrantNames(feedResults.Results),
	})
	if err != nil {
		outcome.Status = SessionStatusStoreFailed
		outcome.Error = err.Error()
		s.logger.ErrorContext(ctx, "session propagation rolled back", "session", sessionType, "season", outcome.Season, "round", outcome.Round, "error", err)
		return outcome, err
	}
	if !propagated.Applied {
		outcome.Status = SessionStatusAlreadyApplied
		return outcome, nil
	}

	outcome.Status = SessionStatusApplied
	outcome.EntrantsUpdated = propagated.EntrantsUpdated
	outcome.TeamsUpdated = propagated.TeamsUpdated
	return outcome, nil
}

func validateSessionResults(in SessionResults) error {
	if in.Identity.Season <= 0 || in.Identity.Round <= 0 {
		return errors.Mark(
			errors.Newf("%s results carry invalid season=%d round=%d", in.Session, in.Identity.Season, in.Identity.Round),
			ErrFeedDataMalformed,
		)
	}
	seen := make(map[string]struct{}, len(in.Results))
	for _, row := range in.Results {
		if row.DriverID == "" {
			continue
		}
		if _, dup := seen[row.DriverID]; dup {
			return errors.Mark(errors.Newf("%s results list driver %q twice", in.Session, row.DriverID), ErrFeedDataMalformed)
		}
		seen[row.DriverID] = struct{}{}
	}
	return nil
}

func entrantNames(results []scoring.Result) map[string]string {
	out := make(map[string]string, len(results)*2)
	for _, row := range results {
		if row.DriverID != "" && row.DriverName != "" {
			out[entrant.Ref{Kind: entrant.KindDriver, ID: row.DriverID}.Key()] = row.DriverName
		}
		if row.ConstructorID != "" && row.ConstructorName != "" {
			out[entrant.Ref{Kind: entrant.KindConstructor, ID: row.ConstructorID}.Key()] = row.ConstructorName
		}
	}
	return out
}

func joinErrors(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
