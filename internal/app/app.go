package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/grid-manager/external/ergast"
	"github.com/riskibarqy/grid-manager/internal/config"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/league"
	"github.com/riskibarqy/grid-manager/internal/domain/scoring"
	"github.com/riskibarqy/grid-manager/internal/domain/team"
	"github.com/riskibarqy/grid-manager/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/grid-manager/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/grid-manager/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/grid-manager/internal/platform/id"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/riskibarqy/grid-manager/internal/platform/resilience"
	"github.com/riskibarqy/grid-manager/internal/usecase"
)

// App holds the wired HTTP server, the optional in-process scheduler and the
// resources that must be released on shutdown.
type App struct {
	Server    *http.Server
	JobRunner *usecase.JobRunner
	closers   []func() error
}

type repositories struct {
	entrants entrant.Repository
	teams    team.Repository
	leagues  league.Repository
	scoring  scoring.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	app := &App{}
	repos, err := app.buildRepositories(ctx, cfg, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	feed := ergast.NewClient(ergast.ClientConfig{
		BaseURL:    cfg.Feed.BaseURL,
		Timeout:    cfg.Feed.Timeout,
		MaxRetries: cfg.Feed.MaxRetries,
		Logger:     logger.Named("ergast"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.Feed.CircuitEnabled,
			FailureThreshold: cfg.Feed.CircuitFailureCount,
			OpenTimeout:      cfg.Feed.CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.Feed.CircuitHalfOpenMaxReq,
		},
	})

	pricingCfg := cfg.Pricing.Domain()
	rules := cfg.Roster.Rules()

	pricingSvc := usecase.NewPricingService(repos.entrants, pricingCfg, logger)
	propagator := usecase.NewScorePropagator(repos.scoring, usecase.ScorePropagatorConfig{
		FanOutWorkers:   cfg.Scoring.FanOutWorkers,
		FreeChangeLimit: rules.FreeChangeLimit,
		Logger:          logger,
	})
	scoringSvc := usecase.NewScoringService(feed, repos.scoring, propagator, pricingSvc, usecase.ScoringServiceConfig{
		Formula:        cfg.Scoring.Formula(),
		DebounceWindow: cfg.Scoring.DebounceWindow,
		Logger:         logger,
	})
	seedSvc := usecase.NewSeedService(feed, repos.entrants, pricingCfg, logger)
	rosterSvc := usecase.NewRosterService(repos.teams, repos.entrants, repos.leagues, rules, idgen.NewUUIDGenerator(), logger)

	handler := httpapi.NewHandler(scoringSvc, pricingSvc, seedSvc, rosterSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken)

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if cfg.JobScheduleEnabled {
		app.JobRunner = usecase.NewJobRunner(scoringSvc, cfg.JobScheduleInterval, logger)
	}

	return app, nil
}

func (a *App) buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore().Seed(memory.SeedEntrants(cfg.Pricing.Domain()), memory.SeedLeagues())
		logger.Info("using in-memory store")
		return repositories{
			entrants: memory.NewEntrantRepository(store),
			teams:    memory.NewTeamRepository(store),
			leagues:  memory.NewLeagueRepository(store),
			scoring:  memory.NewScoringRepository(store),
		}, nil
	case config.StoreDriverPostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		a.closers = append(a.closers, db.Close)

		if cfg.BootstrapSeed {
			if err := postgres.BootstrapSeed(ctx, db, cfg.Pricing.Domain()); err != nil {
				return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
			}
			logger.Info("postgres bootstrap seed checked")
		}

		logger.Info("using postgres store", "db", redactDBURL(cfg.DBURL))
		return repositories{
			entrants: postgres.NewEntrantRepository(db),
			teams:    postgres.NewTeamRepository(db),
			leagues:  postgres.NewLeagueRepository(db),
			scoring:  postgres.NewScoringRepository(db),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// Close releases store connections in reverse order of acquisition.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
