package usecase

import (
	"context"

	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/scoring"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
)

// ResultsFeed is the external source of classified session results.
// Implementations mark transport failures with ErrFeedUnavailable and
// undecodable payloads with ErrFeedDataMalformed.
type ResultsFeed interface {
	FetchLatestSession(ctx context.Context, sessionType session.Type) (SessionResults, error)
	FetchStandings(ctx context.Context, kind entrant.Kind) ([]StandingRow, error)
}

// SessionResults is the latest completed session of one type.
// HasResults is false when the feed has no classified results yet.
type SessionResults struct {
	Session    session.Type
	Identity   session.Identity
	HasResults bool
	Results    []scoring.Result
}

// StandingRow is one championship standings entry, in standings order.
type StandingRow struct {
	Position      int
	Points        float64
	EntrantID     string
	Name          string
	Code          string
	Nationality   string
	ConstructorID string
}
