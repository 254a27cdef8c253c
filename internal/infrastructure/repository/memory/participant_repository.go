package memory

import (
	"context"

	"github.com/riskibarqy/club-events/internal/domain/participant"
)

type ParticipantRepository struct {
	db *Database
}

func NewParticipantRepository(db *Database) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) ListByEvent(_ context.Context, eventID string) ([]participant.Participant, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	regs := r.db.registrations[eventID]
	out := make([]participant.Participant, 0, len(regs))
	for _, p := range regs {
		out = append(out, cloneParticipant(p))
	}
	return out, nil
}

func (r *ParticipantRepository) GetByEvent(_ context.Context, eventID string, ref participant.Ref) (participant.Participant, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.registrations[eventID] {
		if p.Ref.Matches(ref) {
			return cloneParticipant(p), true, nil
		}
	}
	return participant.Participant{}, false, nil
}
