package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/audit"
	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/points"
	idgen "github.com/riskibarqy/club-events/internal/platform/id"
	"go.opentelemetry.io/otel/attribute"
)

// AdjustPointsInput adds Delta (negative for penalties) and the match
// counters to the participant's points row.
type AdjustPointsInput struct {
	EventID       string
	ActorID       string
	Participant   participant.Ref
	Delta         int
	Reason        string
	MatchesPlayed int
	Wins          int
	Losses        int
	Draws         int
}

type AdjustPointsResult struct {
	Result
	Entry points.Entry
}

type PointsService struct {
	eventRepo       event.Repository
	participantRepo participant.Repository
	pointsRepo      points.Repository
	effects         mutationEffects
	idGen           idgen.Generator
	now             func() time.Time
}

func NewPointsService(
	eventRepo event.Repository,
	participantRepo participant.Repository,
	pointsRepo points.Repository,
	recorder audit.Recorder,
	invalidator LiveViewInvalidator,
	idGen idgen.Generator,
) *PointsService {
	return &PointsService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		pointsRepo:      pointsRepo,
		effects:         mutationEffects{audit: recorder, invalidator: invalidator},
		idGen:           idGen,
		now:             time.Now,
	}
}

func (s *PointsService) ListPoints(ctx context.Context, eventID string) ([]points.Entry, error) {
	ev, err := s.tournamentEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pointsRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	return rows, nil
}

func (s *PointsService) AdjustPoints(ctx context.Context, input AdjustPointsInput) (out AdjustPointsResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.AdjustPoints", attribute.String("event.id", input.EventID))
	defer finishOperation(span, "adjust_points", time.Now(), &out.Result, &err)

	input.Reason = strings.TrimSpace(input.Reason)
	if input.Participant.IsZero() {
		return AdjustPointsResult{}, fmt.Errorf("%w: participant is required", ErrInvalidInput)
	}
	if input.Reason == "" {
		return AdjustPointsResult{}, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if input.MatchesPlayed < 0 || input.Wins < 0 || input.Losses < 0 || input.Draws < 0 {
		return AdjustPointsResult{}, fmt.Errorf("%w: match counters cannot be negative", ErrInvalidInput)
	}
	if input.Wins+input.Losses+input.Draws > input.MatchesPlayed {
		return AdjustPointsResult{}, fmt.Errorf("%w: wins, losses and draws exceed matches played", ErrInvalidInput)
	}
	if input.Delta == 0 && input.MatchesPlayed == 0 {
		return AdjustPointsResult{}, fmt.Errorf("%w: adjustment changes nothing", ErrInvalidInput)
	}

	ev, err := s.tournamentEvent(ctx, input.EventID)
	if err != nil {
		return AdjustPointsResult{}, err
	}
	if _, registered, err := s.participantRepo.GetByEvent(ctx, ev.ID, input.Participant); err != nil {
		return AdjustPointsResult{}, fmt.Errorf("get participant: %w", err)
	} else if !registered {
		return AdjustPointsResult{}, fmt.Errorf("%w: participant %s is not registered for event=%s", ErrNotFound, input.Participant, ev.ID)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return AdjustPointsResult{}, fmt.Errorf("generate points id: %w", err)
	}
	now := s.now().UTC()
	if err := s.pointsRepo.Add(ctx, []points.Entry{{
		ID:            id,
		EventID:       ev.ID,
		Participant:   input.Participant,
		Points:        input.Delta,
		Reason:        input.Reason,
		MatchesPlayed: input.MatchesPlayed,
		Wins:          input.Wins,
		Losses:        input.Losses,
		Draws:         input.Draws,
		CreatedAt:     now,
		UpdatedAt:     now,
	}}); err != nil {
		return AdjustPointsResult{}, fmt.Errorf("adjust points: %w", err)
	}

	entry, found, err := s.pointsRepo.GetByParticipant(ctx, ev.ID, input.Participant)
	if err != nil {
		return AdjustPointsResult{}, fmt.Errorf("get adjusted points: %w", err)
	}
	if !found {
		return AdjustPointsResult{}, fmt.Errorf("adjusted points row for %s disappeared", input.Participant)
	}

	s.effects.applied(ctx, audit.ActionAdjustPoints, input.ActorID, ev.ID, now, map[string]any{
		"participant": input.Participant.String(),
		"delta":       input.Delta,
		"reason":      input.Reason,
	})
	return AdjustPointsResult{
		Result: Result{Applied: true, Message: fmt.Sprintf("%s now has %d points", input.Participant, entry.Points)},
		Entry:  entry,
	}, nil
}

func (s *PointsService) tournamentEvent(ctx context.Context, eventID string) (event.Event, error) {
	ev, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return event.Event{}, err
	}
	if !ev.IsTournament() {
		return event.Event{}, fmt.Errorf("%w: event=%s", ErrNotTournament, ev.ID)
	}
	return ev, nil
}
