package round

import (
	"fmt"
	"time"
)

// Round is one stage of an event. Rounds are ordered by Number, which starts
// at 1 and is unique within the event.
type Round struct {
	ID          string
	EventID     string
	Number      int
	Title       string
	Description string
	CreatedAt   time.Time
}

func (r Round) Validate() error {
	if r.EventID == "" {
		return fmt.Errorf("round event id is required")
	}
	if r.Number < 1 {
		return fmt.Errorf("round number must be >= 1, got %d", r.Number)
	}
	if r.Title == "" {
		return fmt.Errorf("round title is required")
	}

	return nil
}
