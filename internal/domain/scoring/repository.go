package scoring

import (
	"context"

	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
)

type Repository interface {
	GetWatermark(ctx context.Context, sessionType session.Type) (session.Watermark, bool, error)
	// WithinTx runs fn in one atomic unit; any error rolls back every write made through tx.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the write surface available while applying one session.
// Implementations must be safe for concurrent use by the fan-out workers.
type Tx interface {
	// LockSession serializes appliers of the same session type and returns the current watermark.
	LockSession(ctx context.Context, sessionType session.Type) (session.Watermark, bool, error)
	IncrementTeamScores(ctx context.Context, kind entrant.Kind, entrantID string, delta int) (int64, error)
	IncrementLineItems(ctx context.Context, kind entrant.Kind, entrantID string, delta int, entry entrant.HistoryEntry) (int64, error)
	IncrementEntrant(ctx context.Context, ref entrant.Ref, delta int, entry entrant.HistoryEntry) error
	ResetFreeChanges(ctx context.Context, limit int) (int64, error)
	AdvanceWatermark(ctx context.Context, watermark session.Watermark) error
}
