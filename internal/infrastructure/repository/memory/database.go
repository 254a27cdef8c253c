package memory

import (
	"sync"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/points"
	"github.com/riskibarqy/club-events/internal/domain/progress"
	"github.com/riskibarqy/club-events/internal/domain/round"
	"github.com/riskibarqy/club-events/internal/domain/winner"
)

// Database holds every event table behind one lock so multi-table writes such
// as a reset are atomic for readers.
type Database struct {
	mu            sync.RWMutex
	events        map[string]event.Event
	rounds        map[string][]round.Round
	registrations map[string][]participant.Participant
	progress      map[string]map[string]progress.Entry
	winners       map[string][]winner.Winner
	points        map[string]map[string]points.Entry
}

func NewDatabase() *Database {
	return &Database{
		events:        make(map[string]event.Event),
		rounds:        make(map[string][]round.Round),
		registrations: make(map[string][]participant.Participant),
		progress:      make(map[string]map[string]progress.Entry),
		winners:       make(map[string][]winner.Winner),
		points:        make(map[string]map[string]points.Entry),
	}
}

// PutEvent stores an event header together with its registrations.
func (db *Database) PutEvent(ev event.Event, participants ...participant.Participant) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.events[ev.ID] = cloneEvent(ev)
	regs := make([]participant.Participant, 0, len(participants))
	for _, p := range participants {
		regs = append(regs, cloneParticipant(p))
	}
	db.registrations[ev.ID] = regs
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneEvent(ev event.Event) event.Event {
	ev.StartsAt = cloneTime(ev.StartsAt)
	ev.CompletedAt = cloneTime(ev.CompletedAt)
	return ev
}

func cloneParticipant(p participant.Participant) participant.Participant {
	p.Members = append([]participant.Member(nil), p.Members...)
	return p
}

func cloneEntry(e progress.Entry) progress.Entry {
	e.EliminatedAt = cloneTime(e.EliminatedAt)
	return e
}

func cloneWinner(w winner.Winner) winner.Winner {
	if w.PointsAwarded != nil {
		v := *w.PointsAwarded
		w.PointsAwarded = &v
	}
	return w
}
