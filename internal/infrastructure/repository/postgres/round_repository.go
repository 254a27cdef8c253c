package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-events/internal/domain/round"
	qb "github.com/riskibarqy/club-events/internal/platform/querybuilder"
)

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) ListByEvent(ctx context.Context, eventID string) ([]round.Round, error) {
	query, args, err := qb.Select("*").From("event_rounds").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("round_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rounds query: %w", err)
	}

	var rows []roundTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rounds event=%s: %w", eventID, err)
	}

	out := make([]round.Round, 0, len(rows))
	for _, row := range rows {
		out = append(out, roundFromRow(row))
	}
	return out, nil
}

func (r *RoundRepository) GetByID(ctx context.Context, eventID, roundID string) (round.Round, bool, error) {
	query, args, err := qb.Select("*").From("event_rounds").
		Where(
			qb.Eq("event_id", eventID),
			qb.Eq("id", roundID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return round.Round{}, false, fmt.Errorf("build get round query: %w", err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("get round event=%s id=%s: %w", eventID, roundID, err)
	}
	return roundFromRow(row), true, nil
}

func (r *RoundRepository) InsertIfAbsent(ctx context.Context, rounds []round.Round) (int, error) {
	if len(rounds) == 0 {
		return 0, nil
	}

	models := make([]roundInsertModel, 0, len(rounds))
	for _, item := range rounds {
		models = append(models, roundInsertModel{
			ID:          item.ID,
			EventID:     item.EventID,
			Number:      item.Number,
			Title:       item.Title,
			Description: item.Description,
			CreatedAt:   item.CreatedAt,
		})
	}

	query, args, err := qb.InsertModels("event_rounds", qb.ModelSlice(models), `ON CONFLICT (event_id, round_number) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("build insert rounds query: %w", err)
	}

	affected, err := execAffected(ctx, r.db, query, args)
	if err != nil {
		return 0, fmt.Errorf("insert rounds event=%s: %w", rounds[0].EventID, err)
	}
	return int(affected), nil
}

func roundFromRow(row roundTableModel) round.Round {
	return round.Round{
		ID:          row.ID,
		EventID:     row.EventID,
		Number:      row.Number,
		Title:       row.Title,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}
