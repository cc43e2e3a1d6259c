package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/pricing"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
)

type SeedResult struct {
	Drivers      int `json:"drivers"`
	Constructors int `json:"constructors"`
	Inserted     int `json:"inserted"`
}

// SeedService registers the season's entrants from the championship standings.
type SeedService struct {
	feed     ResultsFeed
	entrants entrant.Repository
	cfg      pricing.Config
	logger   *logging.Logger
}

func NewSeedService(feed ResultsFeed, entrants entrant.Repository, cfg pricing.Config, logger *logging.Logger) *SeedService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeedService{
		feed:     feed,
		entrants: entrants,
		cfg:      cfg,
		logger:   logger,
	}
}

// SeedEntrants inserts entrants missing from the store, priced by standings rank.
// Existing entrants keep their points and price.
func (s *SeedService) SeedEntrants(ctx context.Context) (SeedResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeedService.SeedEntrants")
	defer span.End()

	if err := s.cfg.Validate(); err != nil {
		return SeedResult{}, errors.Mark(errors.Wrap(err, "pricing config"), ErrConfigInvalid)
	}

	var (
		result SeedResult
		items  []entrant.Entrant
	)
	for _, kind := range entrant.AllKinds {
		rows, err := s.feed.FetchStandings(ctx, kind)
		if err != nil {
			return SeedResult{}, errors.Wrapf(err, "fetch %s standings", kind)
		}

		pool := s.cfg.Driver
		if kind == entrant.KindConstructor {
			pool = s.cfg.Constructor
		}
		seen := make(map[string]struct{}, len(rows))
		for rank, row := range rows {
			id := strings.TrimSpace(row.EntrantID)
			if id == "" {
				return SeedResult{}, errors.Mark(errors.Newf("%s standings row %d has no id", kind, rank+1), ErrFeedDataMalformed)
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			items = append(items, entrant.Entrant{
				ID:            id,
				Kind:          kind,
				Name:          row.Name,
				Code:          row.Code,
				Nationality:   row.Nationality,
				ConstructorID: row.ConstructorID,
				Price:         pool.TablePrice(rank),
			})
		}

		if kind == entrant.KindDriver {
			result.Drivers = len(seen)
		} else {
			result.Constructors = len(seen)
		}
	}

	inserted, err := s.entrants.InsertMissing(ctx, items)
	if err != nil {
		return SeedResult{}, errors.Mark(errors.Wrap(err, "insert seeded entrants"), ErrStoreWriteFailed)
	}
	result.Inserted = inserted

	s.logger.InfoContext(ctx, "entrants seeded",
		"drivers", result.Drivers,
		"constructors", result.Constructors,
		"inserted", result.Inserted,
	)
	return result, nil
}
