package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/event"
)

type EventRepository struct {
	db *Database
}

func NewEventRepository(db *Database) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByID(_ context.Context, eventID string) (event.Event, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	ev, ok := r.db.events[eventID]
	if !ok {
		return event.Event{}, false, nil
	}
	return cloneEvent(ev), true, nil
}

func (r *EventRepository) TransitionStatus(_ context.Context, eventID string, from, to event.Status, at time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ev, ok := r.db.events[eventID]
	if !ok || ev.Status != from {
		return false, nil
	}
	ev.Status = to
	ev.UpdatedAt = at
	r.db.events[eventID] = ev
	return true, nil
}

func (r *EventRepository) MarkCompleted(_ context.Context, eventID string, at time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ev, ok := r.db.events[eventID]
	if !ok || ev.Status == event.StatusCompleted {
		return false, nil
	}
	ev.Status = event.StatusCompleted
	ev.CompletedAt = &at
	ev.UpdatedAt = at
	r.db.events[eventID] = ev
	return true, nil
}

func (r *EventRepository) ResetProgress(_ context.Context, eventID string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.progress, eventID)
	delete(r.db.winners, eventID)
	delete(r.db.points, eventID)

	if ev, ok := r.db.events[eventID]; ok {
		ev.Status = event.StatusOngoing
		ev.CompletedAt = nil
		ev.UpdatedAt = at
		r.db.events[eventID] = ev
	}
	return nil
}
