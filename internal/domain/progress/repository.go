package progress

import (
	"context"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/participant"
)

type Repository interface {
	ListByEvent(ctx context.Context, eventID string) ([]Entry, error)
	// Move replaces the participant's live entry with the given one. It
	// reports false when the participant already sits, not eliminated, in the
	// target round.
	Move(ctx context.Context, entry Entry) (bool, error)
	// Eliminate marks the participant's non-eliminated entry in the round as
	// eliminated. It reports false when no entry matched.
	Eliminate(ctx context.Context, eventID string, ref participant.Ref, roundID string, at time.Time) (bool, error)
}
