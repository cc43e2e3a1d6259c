package postgres

import "time"

type leagueTableModel struct {
	ID            int64      `db:"id"`
	PublicID      string     `db:"public_id"`
	OwnerUserID   string     `db:"owner_user_id"`
	Name          string     `db:"name"`
	NumberOfTeams int        `db:"number_of_teams"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}
