package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/points"
)

type PointsRepository struct {
	db *Database
}

func NewPointsRepository(db *Database) *PointsRepository {
	return &PointsRepository{db: db}
}

func (r *PointsRepository) ListByEvent(_ context.Context, eventID string) ([]points.Entry, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rows := r.db.points[eventID]
	out := make([]points.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Participant.Key() < out[j].Participant.Key()
	})
	return out, nil
}

func (r *PointsRepository) GetByParticipant(_ context.Context, eventID string, ref participant.Ref) (points.Entry, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.points[eventID][ref.Key()]
	return row, ok, nil
}

func (r *PointsRepository) Add(_ context.Context, entries []points.Entry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, entry := range entries {
		rows := r.db.points[entry.EventID]
		if rows == nil {
			rows = make(map[string]points.Entry)
			r.db.points[entry.EventID] = rows
		}

		key := entry.Participant.Key()
		current, ok := rows[key]
		if !ok {
			rows[key] = entry
			continue
		}
		current.Points += entry.Points
		current.MatchesPlayed += entry.MatchesPlayed
		current.Wins += entry.Wins
		current.Losses += entry.Losses
		current.Draws += entry.Draws
		current.Reason = entry.Reason
		current.UpdatedAt = entry.UpdatedAt
		rows[key] = current
	}
	return nil
}
