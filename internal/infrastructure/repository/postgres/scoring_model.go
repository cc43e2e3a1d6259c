package postgres

import "time"

type sessionWatermarkTableModel struct {
	Session        string    `db:"session"`
	Season         int       `db:"season"`
	Round          int       `db:"round"`
	RaceName       string    `db:"race_name"`
	FormulaVersion string    `db:"formula_version"`
	UpdatedAt      time.Time `db:"updated_at"`
}
