package points

import (
	"context"

	"github.com/riskibarqy/club-events/internal/domain/participant"
)

type Repository interface {
	// ListByEvent returns the points table ordered by points descending.
	ListByEvent(ctx context.Context, eventID string) ([]Entry, error)
	GetByParticipant(ctx context.Context, eventID string, ref participant.Ref) (Entry, bool, error)
	// Add stores every entry in one batch. Points and match counters are added
	// to an existing row of the same participant.
	Add(ctx context.Context, entries []Entry) error
}
