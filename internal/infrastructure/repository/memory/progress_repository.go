package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/progress"
)

type ProgressRepository struct {
	db *Database
}

func NewProgressRepository(db *Database) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) ListByEvent(_ context.Context, eventID string) ([]progress.Entry, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	entries := r.db.progress[eventID]
	out := make([]progress.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MovedAt.Equal(out[j].MovedAt) {
			return out[i].MovedAt.Before(out[j].MovedAt)
		}
		return out[i].Participant.Key() < out[j].Participant.Key()
	})
	return out, nil
}

func (r *ProgressRepository) Move(_ context.Context, entry progress.Entry) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	entries := r.db.progress[entry.EventID]
	if entries == nil {
		entries = make(map[string]progress.Entry)
		r.db.progress[entry.EventID] = entries
	}

	key := entry.Participant.Key()
	if current, ok := entries[key]; ok && current.RoundID == entry.RoundID && !current.Eliminated {
		return false, nil
	}
	entries[key] = cloneEntry(entry)
	return true, nil
}

func (r *ProgressRepository) Eliminate(_ context.Context, eventID string, ref participant.Ref, roundID string, at time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	key := ref.Key()
	current, ok := r.db.progress[eventID][key]
	if !ok || current.RoundID != roundID || current.Eliminated {
		return false, nil
	}
	current.Eliminated = true
	current.EliminatedAt = &at
	r.db.progress[eventID][key] = current
	return true, nil
}
