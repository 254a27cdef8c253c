package event

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, eventID string) (Event, bool, error)
	// TransitionStatus moves the event from one status to another. It reports
	// false when the stored status was not `from`.
	TransitionStatus(ctx context.Context, eventID string, from, to Status, at time.Time) (bool, error)
	// MarkCompleted flips a non-completed event to completed. Only one of
	// several concurrent callers observes true.
	MarkCompleted(ctx context.Context, eventID string, at time.Time) (bool, error)
	// ResetProgress deletes progress, winners and points of the event and puts
	// it back to ongoing in a single unit of work.
	ResetProgress(ctx context.Context, eventID string, at time.Time) error
}
