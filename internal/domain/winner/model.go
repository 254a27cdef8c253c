package winner

import (
	"fmt"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/participant"
)

type Winner struct {
	EventID       string
	Position      int
	Participant   participant.Ref
	PointsAwarded *int
	Prize         string
	CreatedAt     time.Time
}

func (w Winner) Validate() error {
	if w.Position < 1 {
		return fmt.Errorf("winner position must be >= 1, got %d", w.Position)
	}
	if w.Participant.IsZero() {
		return fmt.Errorf("winner at position %d has no participant", w.Position)
	}

	return nil
}
