package usecase

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/scoring"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const defaultFanOutWorkers = 8

// Application is one computed session ready to be written.
type Application struct {
	Session        session.Type
	Identity       session.Identity
	FormulaVersion string
	Deltas         scoring.Deltas
	// Names maps entrant.Ref keys to display names reported by the feed.
	Names map[string]string
}

type PropagationResult struct {
	Applied          bool
	EntrantsUpdated  int
	TeamsUpdated     int64
	LineItemsUpdated int64
	FreeChangesReset int64
}

type ScorePropagatorConfig struct {
	FanOutWorkers   int
	FreeChangeLimit int
	Logger          *logging.Logger
	Now             func() time.Time
}

// ScorePropagator writes session deltas to teams, line items and entrants together
// with the session watermark, all inside one store transaction.
type ScorePropagator struct {
	repo            scoring.Repository
	workers         int
	freeChangeLimit int
	logger          *logging.Logger
	now             func() time.Time
}

func NewScorePropagator(repo scoring.Repository, cfg ScorePropagatorConfig) *ScorePropagator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	workers := cfg.FanOutWorkers
	if workers < 1 {
		workers = defaultFanOutWorkers
	}

	return &ScorePropagator{
		repo:            repo,
		workers:         workers,
		freeChangeLimit: cfg.FreeChangeLimit,
		logger:          logger,
		now:             now,
	}
}

type entrantDelta struct {
	ref   entrant.Ref
	delta int
}

func (p *ScorePropagator) Propagate(ctx context.Context, app Application) (PropagationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScorePropagator.Propagate")
	defer span.End()

	items := flattenDeltas(app)
	entry := entrant.HistoryEntry{
		Season:   app.Identity.Season,
		Round:    app.Identity.Round,
		RaceName: app.Identity.RaceName,
		Session:  app.Session,
	}

	var result PropagationResult
	err := p.repo.WithinTx(ctx, func(ctx context.Context, tx scoring.Tx) error {
		current, exists, err := tx.LockSession(ctx, app.Session)
		if err != nil {
			return errors.Wrapf(err, "lock %s session", app.Session)
		}
		if !session.ShouldProcess(current, exists, app.Identity) {
			return nil
		}

		var teams, lineItems atomic.Int64
		workers := pool.New().
			WithMaxGoroutines(p.workers).
			WithContext(ctx).
			WithCancelOnError().
			WithFirstError()
		for _, item := range items {
			workers.Go(func(ctx context.Context) error {
				itemEntry := entry
				itemEntry.Points = item.delta

				affected, err := tx.IncrementTeamScores(ctx, item.ref.Kind, item.ref.ID, item.delta)
				if err != nil {
					return errors.Wrapf(err, "increment team scores for %s", item.ref.Key())
				}
				teams.Add(affected)

				affected, err = tx.IncrementLineItems(ctx, item.ref.Kind, item.ref.ID, item.delta, itemEntry)
				if err != nil {
					return errors.Wrapf(err, "increment line items for %s", item.ref.Key())
				}
				lineItems.Add(affected)

				if err := tx.IncrementEntrant(ctx, item.ref, item.delta, itemEntry); err != nil {
					return errors.Wrapf(err, "increment entrant %s", item.ref.Key())
				}
				return nil
			})
		}
		if err := workers.Wait(); err != nil {
			return err
		}

		if app.Session == session.TypeRace {
			reset, err := tx.ResetFreeChanges(ctx, p.freeChangeLimit)
			if err != nil {
				return errors.Wrap(err, "reset free changes")
			}
			result.FreeChangesReset = reset
		}

		if err := tx.AdvanceWatermark(ctx, session.Advance(app.Session, app.Identity, app.FormulaVersion, p.now())); err != nil {
			return errors.Wrapf(err, "advance %s watermark", app.Session)
		}

		result.Applied = true
		result.EntrantsUpdated = len(items)
		result.TeamsUpdated = teams.Load()
		result.LineItemsUpdated = lineItems.Load()
		return nil
	})
	if err != nil {
		return PropagationResult{}, errors.Mark(
			errors.Wrapf(err, "apply %s season=%d round=%d", app.Session, app.Identity.Season, app.Identity.Round),
			ErrStoreWriteFailed,
		)
	}

	if result.Applied {
		p.logger.InfoContext(ctx, "session points propagated",
			"session", app.Session,
			"season", app.Identity.Season,
			"round", app.Identity.Round,
			"formula_version", app.FormulaVersion,
			"entrants", result.EntrantsUpdated,
			"teams", result.TeamsUpdated,
			"line_items", result.LineItemsUpdated,
		)
	}
	return result, nil
}

func flattenDeltas(app Application) []entrantDelta {
	out := make([]entrantDelta, 0, len(app.Deltas.Drivers)+len(app.Deltas.Constructors))
	appendKind := func(kind entrant.Kind, deltas map[string]int) {
		for id, delta := range deltas {
			ref := entrant.Ref{Kind: kind, ID: id}
			ref.Name = app.Names[ref.Key()]
			out = append(out, entrantDelta{ref: ref, delta: delta})
		}
	}
	appendKind(entrant.KindDriver, app.Deltas.Drivers)
	appendKind(entrant.KindConstructor, app.Deltas.Constructors)

	sort.Slice(out, func(i, j int) bool { return out[i].ref.Key() < out[j].ref.Key() })
	return out
}
