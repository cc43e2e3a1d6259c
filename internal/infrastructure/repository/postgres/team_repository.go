package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/team"
	qb "github.com/riskibarqy/grid-manager/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	row, ok, err := getTeamRow(ctx, r.db, teamID, false)
	if err != nil || !ok {
		return team.Team{}, ok, err
	}

	items, err := loadLineItems(ctx, r.db, row)
	if err != nil {
		return team.Team{}, false, err
	}

	out := teamFromRow(row)
	out.LineItems = items
	return out, true, nil
}

func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	return countActiveTeams(ctx, r.db)
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) error {
	return withTx(ctx, r.db, "create team", func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM teams WHERE public_id = $1 AND deleted_at IS NULL)`, t.ID); err != nil {
			return fmt.Errorf("check team exists: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %s", team.ErrTeamExists, t.ID)
		}

		query, args, err := qb.InsertModel("teams", teamInsertModel{
			PublicID:        t.ID,
			UserID:          t.UserID,
			LeagueID:        nullableString(t.LeagueID),
			Name:            t.Name,
			Score:           t.Score,
			FreeChangeLimit: t.FreeChangeLimit,
			DriverIDs:       pq.StringArray(t.DriverIDs),
			ConstructorIDs:  pq.StringArray(t.ConstructorIDs),
		}, "RETURNING id")
		if err != nil {
			return fmt.Errorf("build insert team query: %w", err)
		}

		var internalID int64
		if err := tx.GetContext(ctx, &internalID, query, args...); err != nil {
			return fmt.Errorf("insert team %s: %w", t.ID, err)
		}

		if err := insertLineItems(ctx, tx, internalID, t.LineItems); err != nil {
			return err
		}
		for _, kind := range entrant.AllKinds {
			if err := adjustChosenCount(ctx, tx, kind, t.RosterIDs(kind), 1); err != nil {
				return err
			}
		}
		return adjustLeagueTeamCount(ctx, tx, t.LeagueID, 1)
	})
}

func (r *TeamRepository) Delete(ctx context.Context, teamID string) (bool, error) {
	deleted := false
	err := withTx(ctx, r.db, "delete team", func(tx *sqlx.Tx) error {
		row, ok, err := getTeamRow(ctx, tx, teamID, true)
		if err != nil || !ok {
			return err
		}

		query, args, err := qb.Update("teams").
			SetExpr("deleted_at", "NOW()").
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", row.ID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build delete team query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete team %s: %w", teamID, err)
		}

		if err := adjustChosenCount(ctx, tx, entrant.KindDriver, row.DriverIDs, -1); err != nil {
			return err
		}
		if err := adjustChosenCount(ctx, tx, entrant.KindConstructor, row.ConstructorIDs, -1); err != nil {
			return err
		}
		if err := adjustLeagueTeamCount(ctx, tx, nullStringValue(row.LeagueID), -1); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *TeamRepository) EditRoster(ctx context.Context, teamID string, decide func(current team.Team) (team.RosterChange, error)) (team.Team, error) {
	var updated team.Team
	err := withTx(ctx, r.db, "edit roster", func(tx *sqlx.Tx) error {
		row, ok, err := getTeamRow(ctx, tx, teamID, true)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", team.ErrTeamNotFound, teamID)
		}

		items, err := loadLineItems(ctx, tx, row)
		if err != nil {
			return err
		}
		current := teamFromRow(row)
		current.LineItems = items

		change, err := decide(current)
		if err != nil {
			return err
		}

		for _, item := range change.Removed {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM team_entrants WHERE team_id = $1 AND entrant_kind = $2 AND entrant_public_id = $3`,
				row.ID, string(item.Kind), item.EntrantID); err != nil {
				return fmt.Errorf("remove line item %s: %w", item.Key(), err)
			}
			if err := adjustChosenCount(ctx, tx, item.Kind, []string{item.EntrantID}, -1); err != nil {
				return err
			}
		}
		if err := insertLineItems(ctx, tx, row.ID, change.Added); err != nil {
			return err
		}
		for _, item := range change.Added {
			if err := adjustChosenCount(ctx, tx, item.Kind, []string{item.EntrantID}, 1); err != nil {
				return err
			}
		}

		query, args, err := qb.Update("teams").
			Set("driver_ids", pq.StringArray(change.DriverIDs)).
			Set("constructor_ids", pq.StringArray(change.ConstructorIDs)).
			SetExpr("score", "score + ?", change.ScoreDelta).
			Set("free_change_limit", change.FreeChangeLimit).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", row.ID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update roster query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update roster %s: %w", teamID, err)
		}

		row, _, err = getTeamRow(ctx, tx, teamID, false)
		if err != nil {
			return err
		}
		items, err = loadLineItems(ctx, tx, row)
		if err != nil {
			return err
		}
		updated = teamFromRow(row)
		updated.LineItems = items
		return nil
	})
	if err != nil {
		return team.Team{}, err
	}
	return updated, nil
}

func getTeamRow(ctx context.Context, q sqlx.QueryerContext, teamID string, forUpdate bool) (teamTableModel, bool, error) {
	query, args, err := qb.Select("*").
		From("teams").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return teamTableModel{}, false, fmt.Errorf("build get team query: %w", err)
	}
	if forUpdate {
		query += " FOR UPDATE"
	}

	var row teamTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return teamTableModel{}, false, nil
		}
		return teamTableModel{}, false, fmt.Errorf("get team %s: %w", teamID, err)
	}
	return row, true, nil
}

func loadLineItems(ctx context.Context, q sqlx.QueryerContext, row teamTableModel) ([]team.LineItem, error) {
	query, args, err := qb.Select("*").
		From("team_entrants").
		Where(qb.Eq("team_id", row.ID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list line items query: %w", err)
	}

	var rows []teamEntrantTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list line items team=%s: %w", row.PublicID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	const historyQuery = `
SELECT h.id, h.team_entrant_id::text AS owner_id, h.season, h.round, h.race_name, h.session, h.points
FROM team_entrant_points_history h
JOIN team_entrants te ON te.id = h.team_entrant_id
WHERE te.team_id = $1
ORDER BY h.team_entrant_id, h.id`

	var historyRows []pointsHistoryTableModel
	if err := sqlx.SelectContext(ctx, q, &historyRows, historyQuery, row.ID); err != nil {
		return nil, fmt.Errorf("list line item history team=%s: %w", row.PublicID, err)
	}
	history := make(map[string][]entrant.HistoryEntry)
	for _, h := range historyRows {
		history[h.OwnerID] = append(history[h.OwnerID], historyFromRow(h))
	}

	out := make([]team.LineItem, 0, len(rows))
	for _, item := range rows {
		out = append(out, team.LineItem{
			TeamID:            row.PublicID,
			Kind:              entrant.Kind(item.EntrantKind),
			EntrantID:         item.EntrantPublicID,
			Name:              item.Name,
			Price:             item.Price,
			PointsForTeam:     item.PointsForTeam,
			TeamPointsHistory: history[fmt.Sprint(item.ID)],
		})
	}
	return out, nil
}

func insertLineItems(ctx context.Context, tx *sqlx.Tx, teamInternalID int64, items []team.LineItem) error {
	for _, item := range items {
		query, args, err := qb.InsertModel("team_entrants", teamEntrantInsertModel{
			TeamID:          teamInternalID,
			EntrantKind:     string(item.Kind),
			EntrantPublicID: item.EntrantID,
			Name:            item.Name,
			Price:           item.Price,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert line item query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert line item %s: %w", item.Key(), err)
		}
	}
	return nil
}

func adjustLeagueTeamCount(ctx context.Context, tx *sqlx.Tx, leagueID string, delta int) error {
	if leagueID == "" {
		return nil
	}
	query, args, err := qb.Update("leagues").
		SetExpr("number_of_teams", "GREATEST(number_of_teams + ?, 0)", delta).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build adjust league team count query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("adjust league team count %s: %w", leagueID, err)
	}
	return nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:              row.PublicID,
		UserID:          row.UserID,
		LeagueID:        nullStringValue(row.LeagueID),
		Name:            row.Name,
		Score:           row.Score,
		FreeChangeLimit: row.FreeChangeLimit,
		DriverIDs:       []string(row.DriverIDs),
		ConstructorIDs:  []string(row.ConstructorIDs),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
