package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/audit"
	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/platform/metrics"
	"go.opentelemetry.io/otel/trace"
)

// Result is returned by every mutating operation. Applied is false for
// accepted no-ops such as repeating a move.
type Result struct {
	Applied bool
	Message string
}

// LiveViewInvalidator is told that the live view of an event is stale.
type LiveViewInvalidator interface {
	InvalidateLiveView(ctx context.Context, eventID string)
}

// mutationEffects runs the follow-ups of an applied mutation. Neither step can
// fail the mutation.
type mutationEffects struct {
	audit       audit.Recorder
	invalidator LiveViewInvalidator
}

func (e mutationEffects) applied(ctx context.Context, action audit.Action, actorID, eventID string, at time.Time, metadata map[string]any) {
	if e.invalidator != nil {
		e.invalidator.InvalidateLiveView(ctx, eventID)
	}
	if e.audit != nil {
		e.audit.Record(ctx, audit.Record{
			Action:     action,
			ActorID:    actorID,
			EventID:    eventID,
			Metadata:   metadata,
			OccurredAt: at,
		})
	}
}

func finishOperation(span trace.Span, operation string, started time.Time, result *Result, err *error) {
	endUsecaseSpan(span, *err)
	metrics.ObserveOperation(operation, started, result.Applied, *err)
}

func loadEvent(ctx context.Context, repo event.Repository, eventID string) (event.Event, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return event.Event{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	ev, exists, err := repo.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return event.Event{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	return ev, nil
}
