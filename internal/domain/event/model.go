package event

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusUpcoming         Status = "upcoming"
	StatusRegistrationOpen Status = "registration_open"
	StatusOngoing          Status = "ongoing"
	StatusCompleted        Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusRegistrationOpen, StatusOngoing, StatusCompleted:
		return true
	default:
		return false
	}
}

// Event is the header of a club event. Events linked to a tournament earn
// points when they complete.
type Event struct {
	ID           string
	Title        string
	Status       Status
	TournamentID string
	StartsAt     *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e Event) IsTournament() bool {
	return e.TournamentID != ""
}

func (e Event) IsCompleted() bool {
	return e.Status == StatusCompleted
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if e.Title == "" {
		return fmt.Errorf("event title is required")
	}
	if !e.Status.Valid() {
		return fmt.Errorf("event status %q is invalid", e.Status)
	}

	return nil
}

var transitions = map[Status][]Status{
	StatusUpcoming:         {StatusRegistrationOpen, StatusOngoing, StatusCompleted},
	StatusRegistrationOpen: {StatusOngoing, StatusCompleted},
	StatusOngoing:          {StatusCompleted},
	StatusCompleted:        {StatusOngoing},
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another. completed -> ongoing is only reachable through a reset.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
