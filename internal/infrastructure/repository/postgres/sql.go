package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// withTx runs fn in a transaction that commits only when fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, name string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx %s: %w", name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx %s: %w", name, err)
	}
	return nil
}

// rosterColumn is the teams array column holding entrants of kind.
func rosterColumn(kind entrant.Kind) string {
	if kind == entrant.KindConstructor {
		return "constructor_ids"
	}
	return "driver_ids"
}

func stringsToAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func nullStringValue(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func nullableString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
