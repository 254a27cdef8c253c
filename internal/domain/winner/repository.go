package winner

import "context"

type Repository interface {
	// ListByEvent returns winners ordered by position.
	ListByEvent(ctx context.Context, eventID string) ([]Winner, error)
	// Replace drops every winner of the event and stores the given set.
	Replace(ctx context.Context, eventID string, winners []Winner) error
}
