package postgres

import (
	"database/sql"
	"time"
)

type progressTableModel struct {
	ID      string `db:"id"`
	EventID string `db:"event_id"`
	participantColumns
	RoundID      sql.NullString `db:"round_id"`
	Eliminated   bool           `db:"eliminated"`
	EliminatedAt sql.NullTime   `db:"eliminated_at"`
	MovedAt      time.Time      `db:"moved_at"`
}

type progressInsertModel struct {
	ID              string     `db:"id"`
	EventID         string     `db:"event_id"`
	ParticipantKind string     `db:"participant_kind"`
	ParticipantID   string     `db:"participant_id"`
	RoundID         *string    `db:"round_id"`
	Eliminated      bool       `db:"eliminated"`
	EliminatedAt    *time.Time `db:"eliminated_at"`
	MovedAt         time.Time  `db:"moved_at"`
}

type winnerTableModel struct {
	EventID  string `db:"event_id"`
	Position int    `db:"position"`
	participantColumns
	PointsAwarded sql.NullInt64 `db:"points_awarded"`
	Prize         string        `db:"prize"`
	CreatedAt     time.Time     `db:"created_at"`
}

type winnerInsertModel struct {
	EventID         string    `db:"event_id"`
	Position        int       `db:"position"`
	ParticipantKind string    `db:"participant_kind"`
	ParticipantID   string    `db:"participant_id"`
	PointsAwarded   *int      `db:"points_awarded"`
	Prize           string    `db:"prize"`
	CreatedAt       time.Time `db:"created_at"`
}

type pointsTableModel struct {
	ID      string `db:"id"`
	EventID string `db:"event_id"`
	participantColumns
	Points        int       `db:"points"`
	Reason        string    `db:"reason"`
	MatchesPlayed int       `db:"matches_played"`
	Wins          int       `db:"wins"`
	Losses        int       `db:"losses"`
	Draws         int       `db:"draws"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type pointsInsertModel struct {
	ID              string    `db:"id"`
	EventID         string    `db:"event_id"`
	ParticipantKind string    `db:"participant_kind"`
	ParticipantID   string    `db:"participant_id"`
	Points          int       `db:"points"`
	Reason          string    `db:"reason"`
	MatchesPlayed   int       `db:"matches_played"`
	Wins            int       `db:"wins"`
	Losses          int       `db:"losses"`
	Draws           int       `db:"draws"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
