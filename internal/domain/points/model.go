package points

import (
	"time"

	"github.com/riskibarqy/club-events/internal/domain/participant"
)

// Entry is the accumulated tournament points of one participant in an event.
type Entry struct {
	ID            string
	EventID       string
	Participant   participant.Ref
	Points        int
	Reason        string
	MatchesPlayed int
	Wins          int
	Losses        int
	Draws         int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Table of points awarded by final position and by the furthest round reached.
var (
	PositionPoints = map[int]int{1: 100, 2: 75, 3: 50}
	RoundPoints    = map[int]int{1: 10, 2: 20, 3: 30, 4: 40}
)

const (
	DefaultPositionPoints = 25
	DefaultRoundPoints    = 5
)

func ForPosition(position int) int {
	if value, ok := PositionPoints[position]; ok {
		return value
	}
	return DefaultPositionPoints
}

// ForRound returns round points by round number; unknown or missing numbers
// fall back to the default.
func ForRound(number int) int {
	if value, ok := RoundPoints[number]; ok {
		return value
	}
	return DefaultRoundPoints
}
