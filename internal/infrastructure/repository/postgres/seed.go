package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/grid-manager/internal/domain/pricing"
	"github.com/riskibarqy/grid-manager/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the built-in grid and leagues into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, cfg pricing.Config) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM entrants`); err != nil {
		return fmt.Errorf("count entrants for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	return withTx(ctx, db, "bootstrap seed", func(tx *sqlx.Tx) error {
		for _, l := range memory.SeedLeagues() {
			sqlQuery, args, err := sqlx.Named(`
INSERT INTO leagues (public_id, owner_user_id, name)
VALUES (:public_id, :owner_user_id, :name)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
				"public_id":     l.ID,
				"owner_user_id": l.OwnerUserID,
				"name":          l.Name,
			})
			if err != nil {
				return fmt.Errorf("bind seed league %s query: %w", l.ID, err)
			}
			sqlQuery = tx.Rebind(sqlQuery)
			if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
				return fmt.Errorf("seed league %s: %w", l.ID, err)
			}
		}

		for _, e := range memory.SeedEntrants(cfg) {
			sqlQuery, args, err := sqlx.Named(`
INSERT INTO entrants (kind, public_id, name, code, nationality, constructor_public_id, price)
VALUES (:kind, :public_id, :name, :code, :nationality, :constructor_public_id, :price)
ON CONFLICT (kind, public_id) DO NOTHING`, map[string]any{
				"kind":                  string(e.Kind),
				"public_id":             e.ID,
				"name":                  e.Name,
				"code":                  e.Code,
				"nationality":           e.Nationality,
				"constructor_public_id": e.ConstructorID,
				"price":                 e.Price,
			})
			if err != nil {
				return fmt.Errorf("bind seed entrant %s query: %w", e.ID, err)
			}
			sqlQuery = tx.Rebind(sqlQuery)
			if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
				return fmt.Errorf("seed entrant %s:%s: %w", e.Kind, e.ID, err)
			}
		}
		return nil
	})
}
