package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-events/internal/domain/event"
	qb "github.com/riskibarqy/club-events/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByID(ctx context.Context, eventID string) (event.Event, bool, error) {
	query, args, err := qb.Select("*").From("events").
		Where(qb.Eq("id", eventID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build get event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("get event id=%s: %w", eventID, err)
	}

	return event.Event{
		ID:           row.ID,
		Title:        row.Title,
		Status:       event.Status(row.Status),
		TournamentID: row.TournamentID.String,
		StartsAt:     nullTimeToTimePtr(row.StartsAt),
		CompletedAt:  nullTimeToTimePtr(row.CompletedAt),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, true, nil
}

func (r *EventRepository) TransitionStatus(ctx context.Context, eventID string, from, to event.Status, at time.Time) (bool, error) {
	query, args, err := qb.Update("events").
		Set("status", string(to)).
		Set("updated_at", at).
		Where(
			qb.Eq("id", eventID),
			qb.Eq("status", string(from)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build transition event query: %w", err)
	}

	affected, err := execAffected(ctx, r.db, query, args)
	if err != nil {
		return false, fmt.Errorf("transition event id=%s %s->%s: %w", eventID, from, to, err)
	}
	return affected == 1, nil
}

func (r *EventRepository) MarkCompleted(ctx context.Context, eventID string, at time.Time) (bool, error) {
	query, args, err := qb.Update("events").
		Set("status", string(event.StatusCompleted)).
		Set("completed_at", at).
		Set("updated_at", at).
		Where(
			qb.Eq("id", eventID),
			qb.NotEq("status", string(event.StatusCompleted)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build complete event query: %w", err)
	}

	affected, err := execAffected(ctx, r.db, query, args)
	if err != nil {
		return false, fmt.Errorf("complete event id=%s: %w", eventID, err)
	}
	return affected == 1, nil
}

func (r *EventRepository) ResetProgress(ctx context.Context, eventID string, at time.Time) error {
	return inTx(ctx, r.db, "reset event progress", func(tx *sqlx.Tx) error {
		for _, table := range []string{"progress_entries", "event_winners", "points_entries"} {
			query, args, err := qb.DeleteFrom(table).Where(qb.Eq("event_id", eventID)).ToSQL()
			if err != nil {
				return fmt.Errorf("build clear %s query: %w", table, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("clear %s event=%s: %w", table, eventID, err)
			}
		}

		query, args, err := qb.Update("events").
			Set("status", string(event.StatusOngoing)).
			SetExpr("completed_at", "NULL").
			Set("updated_at", at).
			Where(qb.Eq("id", eventID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build reopen event query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("reopen event id=%s: %w", eventID, err)
		}
		return nil
	})
}
