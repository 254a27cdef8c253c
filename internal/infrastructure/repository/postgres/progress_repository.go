package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/progress"
	qb "github.com/riskibarqy/club-events/internal/platform/querybuilder"
)

// moveConflictClause swaps the live entry for the incoming one unless the
// participant already sits active in the same round.
const moveConflictClause = `ON CONFLICT (event_id, participant_kind, participant_id)
DO UPDATE SET
    id = EXCLUDED.id,
    round_id = EXCLUDED.round_id,
    eliminated = FALSE,
    eliminated_at = NULL,
    moved_at = EXCLUDED.moved_at
WHERE progress_entries.round_id IS DISTINCT FROM EXCLUDED.round_id
   OR progress_entries.eliminated`

type ProgressRepository struct {
	db *sqlx.DB
}

func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) ListByEvent(ctx context.Context, eventID string) ([]progress.Entry, error) {
	query, args, err := qb.Select("*").From("progress_entries").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("moved_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list progress query: %w", err)
	}

	var rows []progressTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list progress event=%s: %w", eventID, err)
	}

	out := make([]progress.Entry, 0, len(rows))
	for _, row := range rows {
		ref, err := row.ref()
		if err != nil {
			return nil, fmt.Errorf("progress entry id=%s: %w", row.ID, err)
		}
		out = append(out, progress.Entry{
			ID:           row.ID,
			EventID:      row.EventID,
			Participant:  ref,
			RoundID:      row.RoundID.String,
			Eliminated:   row.Eliminated,
			EliminatedAt: nullTimeToTimePtr(row.EliminatedAt),
			MovedAt:      row.MovedAt,
		})
	}
	return out, nil
}

func (r *ProgressRepository) Move(ctx context.Context, entry progress.Entry) (bool, error) {
	insertModel := progressInsertModel{
		ID:              entry.ID,
		EventID:         entry.EventID,
		ParticipantKind: string(entry.Participant.Kind()),
		ParticipantID:   entry.Participant.ID(),
		Eliminated:      false,
		MovedAt:         entry.MovedAt,
	}
	if entry.RoundID != "" {
		roundID := entry.RoundID
		insertModel.RoundID = &roundID
	}

	query, args, err := qb.InsertModel("progress_entries", insertModel, moveConflictClause)
	if err != nil {
		return false, fmt.Errorf("build move progress query: %w", err)
	}

	affected, err := execAffected(ctx, r.db, query, args)
	if err != nil {
		return false, fmt.Errorf("move participant=%s event=%s round=%s: %w", entry.Participant, entry.EventID, entry.RoundID, err)
	}
	return affected == 1, nil
}

func (r *ProgressRepository) Eliminate(ctx context.Context, eventID string, ref participant.Ref, roundID string, at time.Time) (bool, error) {
	query, args, err := qb.Update("progress_entries").
		Set("eliminated", true).
		Set("eliminated_at", at).
		Where(
			qb.Eq("event_id", eventID),
			qb.Eq("participant_kind", string(ref.Kind())),
			qb.Eq("participant_id", ref.ID()),
			qb.Eq("round_id", roundID),
			qb.IsFalse("eliminated"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build eliminate query: %w", err)
	}

	affected, err := execAffected(ctx, r.db, query, args)
	if err != nil {
		return false, fmt.Errorf("eliminate participant=%s event=%s round=%s: %w", ref, eventID, roundID, err)
	}
	return affected > 0, nil
}
