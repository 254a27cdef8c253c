package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/club-events/internal/domain/round"
)

type RoundRepository struct {
	db *Database
}

func NewRoundRepository(db *Database) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) ListByEvent(_ context.Context, eventID string) ([]round.Round, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return append([]round.Round(nil), r.db.rounds[eventID]...), nil
}

func (r *RoundRepository) GetByID(_ context.Context, eventID, roundID string) (round.Round, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, item := range r.db.rounds[eventID] {
		if item.ID == roundID {
			return item, true, nil
		}
	}
	return round.Round{}, false, nil
}

func (r *RoundRepository) InsertIfAbsent(_ context.Context, rounds []round.Round) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	added := 0
	touched := make(map[string]struct{})
	for _, item := range rounds {
		if r.numberTaken(item.EventID, item.Number) {
			continue
		}
		r.db.rounds[item.EventID] = append(r.db.rounds[item.EventID], item)
		touched[item.EventID] = struct{}{}
		added++
	}

	for eventID := range touched {
		items := r.db.rounds[eventID]
		sort.Slice(items, func(i, j int) bool { return items[i].Number < items[j].Number })
	}
	return added, nil
}

func (r *RoundRepository) numberTaken(eventID string, number int) bool {
	for _, existing := range r.db.rounds[eventID] {
		if existing.Number == number {
			return true
		}
	}
	return false
}
