package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrInvalidRound          = errors.New("round does not belong to event")
	ErrNoWinnersProvided     = errors.New("no winners provided")
	ErrEventAlreadyCompleted = errors.New("event already completed")
	ErrEventNotLive          = errors.New("event is not live")
	ErrInvalidTransition     = errors.New("invalid event status transition")
	ErrNotTournament         = errors.New("event is not linked to a tournament")
)
