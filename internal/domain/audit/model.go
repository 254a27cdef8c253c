package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionMoveToRound      Action = "event.progress.move"
	ActionEliminate        Action = "event.progress.eliminate"
	ActionSetWinners       Action = "event.winners.set"
	ActionCompleteEvent    Action = "event.complete"
	ActionResetProgress    Action = "event.reset"
	ActionAddRounds        Action = "event.rounds.add"
	ActionAdjustPoints     Action = "event.points.adjust"
	ActionOpenRegistration Action = "event.registration.open"
	ActionStartEvent       Action = "event.start"
)

// Record describes one applied staff action.
type Record struct {
	Action     Action         `json:"action"`
	ActorID    string         `json:"actorId"`
	EventID    string         `json:"eventId"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Recorder accepts audit records. Delivery is best effort; implementations
// must not block the caller on slow sinks.
type Recorder interface {
	Record(ctx context.Context, record Record)
}

// Sink writes a record to durable storage or a stream.
type Sink interface {
	Write(ctx context.Context, record Record) error
}
