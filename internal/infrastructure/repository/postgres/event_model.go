package postgres

import (
	"database/sql"
	"time"
)

type eventTableModel struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Status       string         `db:"status"`
	TournamentID sql.NullString `db:"tournament_id"`
	StartsAt     sql.NullTime   `db:"starts_at"`
	CompletedAt  sql.NullTime   `db:"completed_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type roundTableModel struct {
	ID          string    `db:"id"`
	EventID     string    `db:"event_id"`
	Number      int       `db:"round_number"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type roundInsertModel struct {
	ID          string    `db:"id"`
	EventID     string    `db:"event_id"`
	Number      int       `db:"round_number"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type registrationTableModel struct {
	ID string `db:"id"`
	participantColumns
	DisplayName  string    `db:"display_name"`
	RegisteredAt time.Time `db:"registered_at"`
}

type teamMemberTableModel struct {
	TeamID      string `db:"team_id"`
	UserID      string `db:"user_id"`
	DisplayName string `db:"display_name"`
}

func nullTimeToTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	out := value.Time
	return &out
}
