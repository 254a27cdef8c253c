package participant

import "context"

// Repository is the read-only participant directory for an event.
type Repository interface {
	ListByEvent(ctx context.Context, eventID string) ([]Participant, error)
	GetByEvent(ctx context.Context, eventID string, ref Ref) (Participant, bool, error)
}
