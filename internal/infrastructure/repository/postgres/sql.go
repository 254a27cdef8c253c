package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-events/internal/domain/participant"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// execer is satisfied by both *sqlx.DB and *sqlx.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execAffected(ctx context.Context, db execer, query string, args []any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// inTx runs fn in a transaction and commits when it returns nil.
func inTx(ctx context.Context, db *sqlx.DB, name string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx %s: %w", name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s tx: %w", name, err)
	}
	return nil
}

// participantColumns embeds into row models keyed by participant.
type participantColumns struct {
	ParticipantKind string `db:"participant_kind"`
	ParticipantID   string `db:"participant_id"`
}

func newParticipantColumns(ref participant.Ref) participantColumns {
	return participantColumns{ParticipantKind: string(ref.Kind()), ParticipantID: ref.ID()}
}

func (c participantColumns) ref() (participant.Ref, error) {
	ref, err := participant.ParseRef(c.ParticipantKind, c.ParticipantID)
	if err != nil {
		return participant.Ref{}, fmt.Errorf("decode participant: %w", err)
	}
	return ref, nil
}
