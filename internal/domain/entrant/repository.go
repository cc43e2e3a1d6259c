package entrant

import "context"

type Repository interface {
	// ListByKind returns every entrant of kind with at most historyLimit latest
	// history entries each; historyLimit <= 0 loads no history.
	ListByKind(ctx context.Context, kind Kind, historyLimit int) ([]Entrant, error)
	GetByIDs(ctx context.Context, kind Kind, ids []string) ([]Entrant, error)
	UpdatePrices(ctx context.Context, kind Kind, prices map[string]int64) error
	// InsertMissing creates entrants that do not exist yet and returns how many were created.
	InsertMissing(ctx context.Context, items []Entrant) (int, error)
}
