package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/scoring"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
	qb "github.com/riskibarqy/grid-manager/internal/platform/querybuilder"
)

type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) GetWatermark(ctx context.Context, sessionType session.Type) (session.Watermark, bool, error) {
	return getWatermark(ctx, r.db, sessionType, false)
}

func (r *ScoringRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx scoring.Tx) error) error {
	return withTx(ctx, r.db, "apply session", func(tx *sqlx.Tx) error {
		return fn(ctx, &scoringTx{tx: tx})
	})
}

// scoringTx funnels fan-out workers through one connection; statements run one at a time.
type scoringTx struct {
	mu sync.Mutex
	tx *sqlx.Tx
}

func (s *scoringTx) LockSession(ctx context.Context, sessionType session.Type) (session.Watermark, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(sessionType)); err != nil {
		return session.Watermark{}, false, fmt.Errorf("lock session %s: %w", sessionType, err)
	}
	return getWatermark(ctx, s.tx, sessionType, true)
}

func (s *scoringTx) IncrementTeamScores(ctx context.Context, kind entrant.Kind, entrantID string, delta int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := qb.Update("teams").
		SetExpr("score", "score + ?", delta).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.ArrayContains(rosterColumn(kind), entrantID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build increment team scores query: %w", err)
	}

	res, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("increment team scores %s:%s: %w", kind, entrantID, err)
	}
	return res.RowsAffected()
}

func (s *scoringTx) IncrementLineItems(ctx context.Context, kind entrant.Kind, entrantID string, delta int, entry entrant.HistoryEntry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
WITH updated AS (
    UPDATE team_entrants te
    SET points_for_team = te.points_for_team + $3, updated_at = NOW()
    FROM teams t
    WHERE te.team_id = t.id
      AND t.deleted_at IS NULL
      AND te.entrant_kind = $1
      AND te.entrant_public_id = $2
    RETURNING te.id
)
INSERT INTO team_entrant_points_history (team_entrant_id, season, round, race_name, session, points)
SELECT id, $4, $5, $6, $7, $3 FROM updated`

	res, err := s.tx.ExecContext(ctx, query,
		string(kind), entrantID, delta,
		entry.Season, entry.Round, entry.RaceName, string(entry.Session),
	)
	if err != nil {
		return 0, fmt.Errorf("increment line items %s:%s: %w", kind, entrantID, err)
	}
	return res.RowsAffected()
}

func (s *scoringTx) IncrementEntrant(ctx context.Context, ref entrant.Ref, delta int, entry entrant.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const upsert = `
INSERT INTO entrants (kind, public_id, name, points)
VALUES ($1, $2, $3, $4)
ON CONFLICT (kind, public_id) DO UPDATE
SET points = entrants.points + EXCLUDED.points, updated_at = NOW()`
	if _, err := s.tx.ExecContext(ctx, upsert, string(ref.Kind), ref.ID, ref.Name, delta); err != nil {
		return fmt.Errorf("upsert entrant %s: %w", ref.Key(), err)
	}

	query, args, err := qb.InsertModel("entrant_points_history", entrantHistoryInsertModel{
		EntrantKind:     string(ref.Kind),
		EntrantPublicID: ref.ID,
		Season:          entry.Season,
		Round:           entry.Round,
		RaceName:        entry.RaceName,
		Session:         string(entry.Session),
		Points:          entry.Points,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert entrant history query: %w", err)
	}
	if _, err := s.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert entrant history %s: %w", ref.Key(), err)
	}
	return nil
}

func (s *scoringTx) ResetFreeChanges(ctx context.Context, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := qb.Update("teams").
		Set("free_change_limit", limit).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Expr("free_change_limit >= 0"),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build reset free changes query: %w", err)
	}

	res, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset free changes: %w", err)
	}
	return res.RowsAffected()
}

func (s *scoringTx) AdvanceWatermark(ctx context.Context, watermark session.Watermark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := qb.InsertModel("session_watermarks", sessionWatermarkTableModel{
		Session:        string(watermark.Session),
		Season:         watermark.Season,
		Round:          watermark.Round,
		RaceName:       watermark.RaceName,
		FormulaVersion: watermark.FormulaVersion,
		UpdatedAt:      watermark.UpdatedAt.UTC(),
	}, `ON CONFLICT (session) DO UPDATE SET
    season = EXCLUDED.season,
    round = EXCLUDED.round,
    race_name = EXCLUDED.race_name,
    formula_version = EXCLUDED.formula_version,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build advance watermark query: %w", err)
	}
	if _, err := s.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("advance watermark %s: %w", watermark.Session, err)
	}
	return nil
}

func getWatermark(ctx context.Context, q sqlx.QueryerContext, sessionType session.Type, forUpdate bool) (session.Watermark, bool, error) {
	query, args, err := qb.Select("*").
		From("session_watermarks").
		Where(qb.Eq("session", string(sessionType))).
		Limit(1).
		ToSQL()
	if err != nil {
		return session.Watermark{}, false, fmt.Errorf("build get watermark query: %w", err)
	}
	if forUpdate {
		query += " FOR UPDATE"
	}

	var row sessionWatermarkTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return session.Watermark{}, false, nil
		}
		return session.Watermark{}, false, fmt.Errorf("get watermark %s: %w", sessionType, err)
	}

	return session.Watermark{
		Session:        session.Type(row.Session),
		Season:         row.Season,
		Round:          row.Round,
		RaceName:       row.RaceName,
		FormulaVersion: row.FormulaVersion,
		UpdatedAt:      row.UpdatedAt,
	}, true, nil
}
