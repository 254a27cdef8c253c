package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/club-events/internal/domain/winner"
)

type WinnerRepository struct {
	db *Database
}

func NewWinnerRepository(db *Database) *WinnerRepository {
	return &WinnerRepository{db: db}
}

func (r *WinnerRepository) ListByEvent(_ context.Context, eventID string) ([]winner.Winner, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	items := r.db.winners[eventID]
	out := make([]winner.Winner, 0, len(items))
	for _, w := range items {
		out = append(out, cloneWinner(w))
	}
	return out, nil
}

func (r *WinnerRepository) Replace(_ context.Context, eventID string, winners []winner.Winner) error {
	items := make([]winner.Winner, 0, len(winners))
	for _, w := range winners {
		w.EventID = eventID
		items = append(items, cloneWinner(w))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	r.db.mu.Lock()
	r.db.winners[eventID] = items
	r.db.mu.Unlock()
	return nil
}
