package round

import "context"

type Repository interface {
	// ListByEvent returns the event rounds ordered by number.
	ListByEvent(ctx context.Context, eventID string) ([]Round, error)
	GetByID(ctx context.Context, eventID, roundID string) (Round, bool, error)
	// InsertIfAbsent stores rounds whose number is not taken yet and returns
	// how many were added.
	InsertIfAbsent(ctx context.Context, rounds []Round) (int, error)
}
