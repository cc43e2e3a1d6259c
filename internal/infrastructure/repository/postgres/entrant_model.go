package postgres

import "time"

type entrantTableModel struct {
	ID                  int64     `db:"id"`
	Kind                string    `db:"kind"`
	PublicID            string    `db:"public_id"`
	Name                string    `db:"name"`
	Code                string    `db:"code"`
	Nationality         string    `db:"nationality"`
	ConstructorPublicID string    `db:"constructor_public_id"`
	Points              int       `db:"points"`
	Price               int64     `db:"price"`
	ChosenCount         int       `db:"chosen_count"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

type entrantInsertModel struct {
	Kind                string `db:"kind"`
	PublicID            string `db:"public_id"`
	Name                string `db:"name"`
	Code                string `db:"code"`
	Nationality         string `db:"nationality"`
	ConstructorPublicID string `db:"constructor_public_id"`
	Price               int64  `db:"price"`
}

type pointsHistoryTableModel struct {
	ID       int64  `db:"id"`
	OwnerID  string `db:"owner_id"`
	Season   int    `db:"season"`
	Round    int    `db:"round"`
	RaceName string `db:"race_name"`
	Session  string `db:"session"`
	Points   int    `db:"points"`
}

type entrantHistoryInsertModel struct {
	EntrantKind     string `db:"entrant_kind"`
	EntrantPublicID string `db:"entrant_public_id"`
	Season          int    `db:"season"`
	Round           int    `db:"round"`
	RaceName        string `db:"race_name"`
	Session         string `db:"session"`
	Points          int    `db:"points"`
}
