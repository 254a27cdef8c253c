package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/points"
	qb "github.com/riskibarqy/club-events/internal/platform/querybuilder"
)

const pointsConflictClause = `ON CONFLICT (event_id, participant_kind, participant_id)
DO UPDATE SET
    points = points_entries.points + EXCLUDED.points,
    reason = EXCLUDED.reason,
    matches_played = points_entries.matches_played + EXCLUDED.matches_played,
    wins = points_entries.wins + EXCLUDED.wins,
    losses = points_entries.losses + EXCLUDED.losses,
    draws = points_entries.draws + EXCLUDED.draws,
    updated_at = EXCLUDED.updated_at`

type PointsRepository struct {
	db *sqlx.DB
}

func NewPointsRepository(db *sqlx.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

func (r *PointsRepository) ListByEvent(ctx context.Context, eventID string) ([]points.Entry, error) {
	query, args, err := qb.Select("*").From("points_entries").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("points DESC", "participant_kind", "participant_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list points query: %w", err)
	}

	var rows []pointsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list points event=%s: %w", eventID, err)
	}

	out := make([]points.Entry, 0, len(rows))
	for _, row := range rows {
		item, err := pointsFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *PointsRepository) GetByParticipant(ctx context.Context, eventID string, ref participant.Ref) (points.Entry, bool, error) {
	query, args, err := qb.Select("*").From("points_entries").
		Where(
			qb.Eq("event_id", eventID),
			qb.Eq("participant_kind", string(ref.Kind())),
			qb.Eq("participant_id", ref.ID()),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return points.Entry{}, false, fmt.Errorf("build get points query: %w", err)
	}

	var row pointsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return points.Entry{}, false, nil
		}
		return points.Entry{}, false, fmt.Errorf("get points event=%s participant=%s: %w", eventID, ref, err)
	}

	item, err := pointsFromRow(row)
	if err != nil {
		return points.Entry{}, false, err
	}
	return item, true, nil
}

// Add writes all entries in one statement. Entries of the same participant
// are folded first since a single upsert cannot touch a row twice.
func (r *PointsRepository) Add(ctx context.Context, entries []points.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	models := make([]pointsInsertModel, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, item := range entries {
		key := item.EventID + "/" + item.Participant.Key()
		if i, ok := index[key]; ok {
			models[i].Points += item.Points
			models[i].Reason = item.Reason
			models[i].MatchesPlayed += item.MatchesPlayed
			models[i].Wins += item.Wins
			models[i].Losses += item.Losses
			models[i].Draws += item.Draws
			models[i].UpdatedAt = item.UpdatedAt
			continue
		}
		index[key] = len(models)
		models = append(models, pointsInsertModel{
			ID:              item.ID,
			EventID:         item.EventID,
			ParticipantKind: string(item.Participant.Kind()),
			ParticipantID:   item.Participant.ID(),
			Points:          item.Points,
			Reason:          item.Reason,
			MatchesPlayed:   item.MatchesPlayed,
			Wins:            item.Wins,
			Losses:          item.Losses,
			Draws:           item.Draws,
			CreatedAt:       item.CreatedAt,
			UpdatedAt:       item.UpdatedAt,
		})
	}

	query, args, err := qb.InsertModels("points_entries", qb.ModelSlice(models), pointsConflictClause)
	if err != nil {
		return fmt.Errorf("build insert points query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert points event=%s rows=%d: %w", entries[0].EventID, len(models), err)
	}
	return nil
}

func pointsFromRow(row pointsTableModel) (points.Entry, error) {
	ref, err := row.ref()
	if err != nil {
		return points.Entry{}, fmt.Errorf("points entry id=%s: %w", row.ID, err)
	}
	return points.Entry{
		ID:            row.ID,
		EventID:       row.EventID,
		Participant:   ref,
		Points:        row.Points,
		Reason:        row.Reason,
		MatchesPlayed: row.MatchesPlayed,
		Wins:          row.Wins,
		Losses:        row.Losses,
		Draws:         row.Draws,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}
