package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type teamTableModel struct {
	ID              int64          `db:"id"`
	PublicID        string         `db:"public_id"`
	UserID          string         `db:"user_id"`
	LeagueID        sql.NullString `db:"league_public_id"`
	Name            string         `db:"name"`
	Score           int            `db:"score"`
	FreeChangeLimit int            `db:"free_change_limit"`
	DriverIDs       pq.StringArray `db:"driver_ids"`
	ConstructorIDs  pq.StringArray `db:"constructor_ids"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	DeletedAt       *time.Time     `db:"deleted_at"`
}

type teamInsertModel struct {
	PublicID        string         `db:"public_id"`
	UserID          string         `db:"user_id"`
	LeagueID        sql.NullString `db:"league_public_id"`
	Name            string         `db:"name"`
	Score           int            `db:"score"`
	FreeChangeLimit int            `db:"free_change_limit"`
	DriverIDs       pq.StringArray `db:"driver_ids"`
	ConstructorIDs  pq.StringArray `db:"constructor_ids"`
}

type teamEntrantTableModel struct {
	ID              int64     `db:"id"`
	TeamID          int64     `db:"team_id"`
	EntrantKind     string    `db:"entrant_kind"`
	EntrantPublicID string    `db:"entrant_public_id"`
	Name            string    `db:"name"`
	Price           int64     `db:"price"`
	PointsForTeam   int       `db:"points_for_team"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type teamEntrantInsertModel struct {
	TeamID          int64  `db:"team_id"`
	EntrantKind     string `db:"entrant_kind"`
	EntrantPublicID string `db:"entrant_public_id"`
	Name            string `db:"name"`
	Price           int64  `db:"price"`
}
