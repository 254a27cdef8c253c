package progress

import (
	"time"

	"github.com/riskibarqy/club-events/internal/domain/participant"
)

// Entry is the live placement of one participant in an event. An empty
// RoundID means the participant has not been placed yet.
type Entry struct {
	ID           string
	EventID      string
	Participant  participant.Ref
	RoundID      string
	Eliminated   bool
	EliminatedAt *time.Time
	MovedAt      time.Time
}

// ActiveIn reports whether the entry is a non-eliminated placement in the round.
func (e Entry) ActiveIn(roundID string) bool {
	return roundID != "" && e.RoundID == roundID && !e.Eliminated
}

func (e Entry) IsPlaced() bool {
	return e.RoundID != ""
}
