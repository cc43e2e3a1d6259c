package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
	qb "github.com/riskibarqy/grid-manager/internal/platform/querybuilder"
)

type EntrantRepository struct {
	db *sqlx.DB
}

func NewEntrantRepository(db *sqlx.DB) *EntrantRepository {
	return &EntrantRepository{db: db}
}

func (r *EntrantRepository) ListByKind(ctx context.Context, kind entrant.Kind, historyLimit int) ([]entrant.Entrant, error) {
	query, args, err := qb.Select("*").
		From("entrants").
		Where(qb.Eq("kind", string(kind))).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list entrants query: %w", err)
	}

	var rows []entrantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list entrants kind=%s: %w", kind, err)
	}

	teamCount, err := countActiveTeams(ctx, r.db)
	if err != nil {
		return nil, err
	}

	history := map[string][]entrant.HistoryEntry{}
	if historyLimit > 0 {
		history, err = r.latestHistory(ctx, kind, historyLimit)
		if err != nil {
			return nil, err
		}
	}

	out := make([]entrant.Entrant, 0, len(rows))
	for _, row := range rows {
		item := entrantFromRow(row, teamCount)
		item.PointsHistory = history[row.PublicID]
		out = append(out, item)
	}
	return out, nil
}

func (r *EntrantRepository) GetByIDs(ctx context.Context, kind entrant.Kind, ids []string) ([]entrant.Entrant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").
		From("entrants").
		Where(
			qb.Eq("kind", string(kind)),
			qb.In("public_id", stringsToAny(ids)),
		).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get entrants by ids query: %w", err)
	}

	var rows []entrantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get entrants by ids: %w", err)
	}

	teamCount, err := countActiveTeams(ctx, r.db)
	if err != nil {
		return nil, err
	}

	out := make([]entrant.Entrant, 0, len(rows))
	for _, row := range rows {
		out = append(out, entrantFromRow(row, teamCount))
	}
	return out, nil
}

func (r *EntrantRepository) UpdatePrices(ctx context.Context, kind entrant.Kind, prices map[string]int64) error {
	if len(prices) == 0 {
		return nil
	}

	return withTx(ctx, r.db, "update entrant prices", func(tx *sqlx.Tx) error {
		for id, price := range prices {
			query, args, err := qb.Update("entrants").
				Set("price", price).
				SetExpr("updated_at", "NOW()").
				Where(
					qb.Eq("kind", string(kind)),
					qb.Eq("public_id", id),
				).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build update entrant price query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("update price %s:%s: %w", kind, id, err)
			}
		}
		return nil
	})
}

func (r *EntrantRepository) InsertMissing(ctx context.Context, items []entrant.Entrant) (int, error) {
	inserted := 0
	err := withTx(ctx, r.db, "insert missing entrants", func(tx *sqlx.Tx) error {
		for _, item := range items {
			query, args, err := qb.InsertModel("entrants", entrantInsertModel{
				Kind:                string(item.Kind),
				PublicID:            item.ID,
				Name:                item.Name,
				Code:                item.Code,
				Nationality:         item.Nationality,
				ConstructorPublicID: item.ConstructorID,
				Price:               item.Price,
			}, "ON CONFLICT (kind, public_id) DO NOTHING")
			if err != nil {
				return fmt.Errorf("build insert entrant query: %w", err)
			}
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("insert entrant %s:%s: %w", item.Kind, item.ID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected insert entrant: %w", err)
			}
			inserted += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// latestHistory returns at most limit latest history entries per entrant, oldest first.
func (r *EntrantRepository) latestHistory(ctx context.Context, kind entrant.Kind, limit int) (map[string][]entrant.HistoryEntry, error) {
	const query = `
SELECT id, entrant_public_id AS owner_id, season, round, race_name, session, points
FROM (
    SELECT h.*, ROW_NUMBER() OVER (PARTITION BY h.entrant_public_id ORDER BY h.id DESC) AS rn
    FROM entrant_points_history h
    WHERE h.entrant_kind = $1
) ranked
WHERE rn <= $2
ORDER BY owner_id, id`

	var rows []pointsHistoryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, string(kind), limit); err != nil {
		return nil, fmt.Errorf("list entrant history kind=%s: %w", kind, err)
	}

	out := make(map[string][]entrant.HistoryEntry)
	for _, row := range rows {
		out[row.OwnerID] = append(out[row.OwnerID], historyFromRow(row))
	}
	return out, nil
}

func countActiveTeams(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, q, &count, `SELECT COUNT(1) FROM teams WHERE deleted_at IS NULL`); err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return count, nil
}

func entrantFromRow(row entrantTableModel, teamCount int) entrant.Entrant {
	return entrant.Entrant{
		ID:               row.PublicID,
		Kind:             entrant.Kind(row.Kind),
		Name:             row.Name,
		Code:             row.Code,
		Nationality:      row.Nationality,
		ConstructorID:    row.ConstructorPublicID,
		Points:           row.Points,
		Price:            row.Price,
		ChosenCount:      row.ChosenCount,
		ChosenPercentage: entrant.ChosenPercentage(row.ChosenCount, teamCount),
	}
}

func historyFromRow(row pointsHistoryTableModel) entrant.HistoryEntry {
	return entrant.HistoryEntry{
		Season:   row.Season,
		Round:    row.Round,
		RaceName: row.RaceName,
		Session:  session.Type(row.Session),
		Points:   row.Points,
	}
}

func adjustChosenCount(ctx context.Context, tx *sqlx.Tx, kind entrant.Kind, ids []string, delta int) error {
	if len(ids) == 0 || delta == 0 {
		return nil
	}
	query, args, err := qb.Update("entrants").
		SetExpr("chosen_count", "GREATEST(chosen_count + ?, 0)", delta).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("kind", string(kind)),
			qb.Expr("public_id = ANY(?)", pq.Array(ids)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build adjust chosen count query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("adjust chosen count %s: %w", kind, err)
	}
	return nil
}
