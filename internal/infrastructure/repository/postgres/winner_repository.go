package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-events/internal/domain/winner"
	qb "github.com/riskibarqy/club-events/internal/platform/querybuilder"
)

type WinnerRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewWinnerRepository(db *sqlx.DB) *WinnerRepository {
	return &WinnerRepository{db: db, now: time.Now}
}

func (r *WinnerRepository) ListByEvent(ctx context.Context, eventID string) ([]winner.Winner, error) {
	query, args, err := qb.Select("*").From("event_winners").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list winners query: %w", err)
	}

	var rows []winnerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list winners event=%s: %w", eventID, err)
	}

	out := make([]winner.Winner, 0, len(rows))
	for _, row := range rows {
		ref, err := row.ref()
		if err != nil {
			return nil, fmt.Errorf("winner event=%s position=%d: %w", row.EventID, row.Position, err)
		}
		item := winner.Winner{
			EventID:     row.EventID,
			Position:    row.Position,
			Participant: ref,
			Prize:       row.Prize,
			CreatedAt:   row.CreatedAt,
		}
		if row.PointsAwarded.Valid {
			value := int(row.PointsAwarded.Int64)
			item.PointsAwarded = &value
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *WinnerRepository) Replace(ctx context.Context, eventID string, winners []winner.Winner) error {
	return inTx(ctx, r.db, "replace winners", func(tx *sqlx.Tx) error {
		clearQuery, clearArgs, err := qb.DeleteFrom("event_winners").Where(qb.Eq("event_id", eventID)).ToSQL()
		if err != nil {
			return fmt.Errorf("build clear winners query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
			return fmt.Errorf("clear winners event=%s: %w", eventID, err)
		}
		if len(winners) == 0 {
			return nil
		}

		models := make([]winnerInsertModel, 0, len(winners))
		for _, item := range winners {
			createdAt := item.CreatedAt
			if createdAt.IsZero() {
				createdAt = r.now().UTC()
			}
			models = append(models, winnerInsertModel{
				EventID:         eventID,
				Position:        item.Position,
				ParticipantKind: string(item.Participant.Kind()),
				ParticipantID:   item.Participant.ID(),
				PointsAwarded:   item.PointsAwarded,
				Prize:           item.Prize,
				CreatedAt:       createdAt,
			})
		}

		query, args, err := qb.InsertModels("event_winners", qb.ModelSlice(models), "")
		if err != nil {
			return fmt.Errorf("build insert winners query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert winners event=%s: %w", eventID, err)
		}
		return nil
	})
}
