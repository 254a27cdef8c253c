package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/audit"
	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/progress"
	"github.com/riskibarqy/club-events/internal/domain/round"
	"github.com/riskibarqy/club-events/internal/domain/winner"
	idgen "github.com/riskibarqy/club-events/internal/platform/id"
	"github.com/riskibarqy/club-events/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type MoveToRoundInput struct {
	EventID     string
	ActorID     string
	Participant participant.Ref
	// FromRoundID is empty when the participant comes from unplaced.
	FromRoundID string
	ToRoundID   string
}

type EliminateInput struct {
	EventID     string
	ActorID     string
	Participant participant.Ref
	RoundID     string
}

// WinnerInput carries the raw team/user keys; entries that reference neither
// are dropped.
type WinnerInput struct {
	Position      int
	TeamID        string
	UserID        string
	PointsAwarded *int
	Prize         string
}

type SetWinnersInput struct {
	EventID string
	ActorID string
	Winners []WinnerInput
}

type EventInput struct {
	EventID string
	ActorID string
}

type CompletionResult struct {
	Result
	PointsRows int
	// ScoringError is set when the event completed but scoring failed. The
	// completion is kept; scoring can be retried after a reset.
	ScoringError string
}

// ProgressionService is the only writer of the progress ledger and winner
// board of live events.
type ProgressionService struct {
	eventRepo       event.Repository
	roundRepo       round.Repository
	participantRepo participant.Repository
	progressRepo    progress.Repository
	winnerRepo      winner.Repository
	scoring         *ScoringService
	live            *LiveStateService
	effects         mutationEffects
	idGen           idgen.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewProgressionService(
	eventRepo event.Repository,
	roundRepo round.Repository,
	participantRepo participant.Repository,
	progressRepo progress.Repository,
	winnerRepo winner.Repository,
	scoring *ScoringService,
	live *LiveStateService,
	recorder audit.Recorder,
	invalidator LiveViewInvalidator,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ProgressionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ProgressionService{
		eventRepo:       eventRepo,
		roundRepo:       roundRepo,
		participantRepo: participantRepo,
		progressRepo:    progressRepo,
		winnerRepo:      winnerRepo,
		scoring:         scoring,
		live:            live,
		effects:         mutationEffects{audit: recorder, invalidator: invalidator},
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *ProgressionService) MoveToRound(ctx context.Context, input MoveToRoundInput) (result Result, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProgressionService.MoveToRound", attribute.String("event.id", input.EventID))
	defer finishOperation(span, "move_to_round", time.Now(), &result, &err)

	input.FromRoundID = strings.TrimSpace(input.FromRoundID)
	input.ToRoundID = strings.TrimSpace(input.ToRoundID)
	if input.Participant.IsZero() {
		return Result{}, fmt.Errorf("%w: participant is required", ErrInvalidInput)
	}
	if input.ToRoundID == "" {
		return Result{}, fmt.Errorf("%w: target round id is required", ErrInvalidInput)
	}

	ev, err := s.liveEvent(ctx, input.EventID)
	if err != nil {
		return Result{}, err
	}

	target, err := s.eventRound(ctx, ev.ID, input.ToRoundID)
	if err != nil {
		return Result{}, err
	}
	if input.FromRoundID == input.ToRoundID {
		return Result{Message: fmt.Sprintf("%s already in round %d", input.Participant, target.Number)}, nil
	}
	if input.FromRoundID != "" {
		if _, err := s.eventRound(ctx, ev.ID, input.FromRoundID); err != nil {
			return Result{}, err
		}
	}

	if _, registered, err := s.participantRepo.GetByEvent(ctx, ev.ID, input.Participant); err != nil {
		return Result{}, fmt.Errorf("get participant: %w", err)
	} else if !registered {
		return Result{}, fmt.Errorf("%w: participant %s is not registered for event=%s", ErrNotFound, input.Participant, ev.ID)
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("generate progress id: %w", err)
	}
	now := s.now().UTC()
	applied, err := s.progressRepo.Move(ctx, progress.Entry{
		ID:          entryID,
		EventID:     ev.ID,
		Participant: input.Participant,
		RoundID:     target.ID,
		MovedAt:     now,
	})
	if err != nil {
		return Result{}, fmt.Errorf("move participant: %w", err)
	}
	if !applied {
		return Result{Message: fmt.Sprintf("%s already in round %d", input.Participant, target.Number)}, nil
	}

	s.effects.applied(ctx, audit.ActionMoveToRound, input.ActorID, ev.ID, now, map[string]any{
		"participant":   input.Participant.String(),
		"fromRoundId":   input.FromRoundID,
		"toRoundId":     target.ID,
		"toRoundNumber": target.Number,
	})
	return Result{Applied: true, Message: fmt.Sprintf("%s moved to round %d", input.Participant, target.Number)}, nil
}

func (s *ProgressionService) Eliminate(ctx context.Context, input EliminateInput) (result Result, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProgressionService.Eliminate", attribute.String("event.id", input.EventID))
	defer finishOperation(span, "eliminate", time.Now(), &result, &err)

	input.RoundID = strings.TrimSpace(input.RoundID)
	if input.Participant.IsZero() {
		return Result{}, fmt.Errorf("%w: participant is required", ErrInvalidInput)
	}
	if input.RoundID == "" {
		return Result{}, fmt.Errorf("%w: round id is required", ErrInvalidInput)
	}

	ev, err := s.liveEvent(ctx, input.EventID)
	if err != nil {
		return Result{}, err
	}
	r, err := s.eventRound(ctx, ev.ID, input.RoundID)
	if err != nil {
		return Result{}, err
	}

	now := s.now().UTC()
	applied, err := s.progressRepo.Eliminate(ctx, ev.ID, input.Participant, r.ID, now)
	if err != nil {
		return Result{}, fmt.Errorf("eliminate participant: %w", err)
	}
	if !applied {
		return Result{Message: fmt.Sprintf("no active entry for %s in round %d", input.Participant, r.Number)}, nil
	}

	s.effects.applied(ctx, audit.ActionEliminate, input.ActorID, ev.ID, now, map[string]any{
		"participant": input.Participant.String(),
		"roundId":     r.ID,
	})
	return Result{Applied: true, Message: fmt.Sprintf("%s eliminated in round %d", input.Participant, r.Number)}, nil
}

func (s *ProgressionService) SetWinners(ctx context.Context, input SetWinnersInput) (result Result, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProgressionService.SetWinners", attribute.String("event.id", input.EventID))
	defer finishOperation(span, "set_winners", time.Now(), &result, &err)

	ev, err := loadEvent(ctx, s.eventRepo, input.EventID)
	if err != nil {
		return Result{}, err
	}
	if ev.Status != event.StatusOngoing && ev.Status != event.StatusCompleted {
		return Result{}, fmt.Errorf("%w: event=%s status=%s", ErrEventNotLive, ev.ID, ev.Status)
	}

	winners, err := resolveWinners(ev.ID, input.Winners, s.now().UTC())
	if err != nil {
		return Result{}, err
	}

	if err := s.winnerRepo.Replace(ctx, ev.ID, winners); err != nil {
		return Result{}, fmt.Errorf("replace winners: %w", err)
	}

	positions := make([]int, 0, len(winners))
	for _, w := range winners {
		positions = append(positions, w.Position)
	}
	s.effects.applied(ctx, audit.ActionSetWinners, input.ActorID, ev.ID, s.now().UTC(), map[string]any{
		"positions": positions,
	})
	return Result{Applied: true, Message: fmt.Sprintf("%d winners set", len(winners))}, nil
}

// resolveWinners drops entries without a participant and rejects duplicate
// positions or participants.
func resolveWinners(eventID string, inputs []WinnerInput, now time.Time) ([]winner.Winner, error) {
	out := make([]winner.Winner, 0, len(inputs))
	positions := make(map[int]struct{}, len(inputs))
	participants := make(map[string]struct{}, len(inputs))

	for _, in := range inputs {
		if strings.TrimSpace(in.TeamID) == "" && strings.TrimSpace(in.UserID) == "" {
			continue
		}
		ref, err := participant.RefFromKeys(in.TeamID, in.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: winner position %d: %v", ErrInvalidInput, in.Position, err)
		}

		w := winner.Winner{
			EventID:       eventID,
			Position:      in.Position,
			Participant:   ref,
			PointsAwarded: in.PointsAwarded,
			Prize:         strings.TrimSpace(in.Prize),
			CreatedAt:     now,
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, dup := positions[w.Position]; dup {
			return nil, fmt.Errorf("%w: duplicate winner position %d", ErrInvalidInput, w.Position)
		}
		if _, dup := participants[ref.Key()]; dup {
			return nil, fmt.Errorf("%w: %s listed at more than one position", ErrInvalidInput, ref)
		}
		positions[w.Position] = struct{}{}
		participants[ref.Key()] = struct{}{}
		out = append(out, w)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: event=%s", ErrNoWinnersProvided, eventID)
	}
	return out, nil
}

// CompleteEvent marks the event completed and, for tournament events, awards
// points. Only the caller whose status change wins runs scoring. A scoring
// failure is reported in the result and does not undo the completion.
func (s *ProgressionService) CompleteEvent(ctx context.Context, input EventInput) (completion CompletionResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProgressionService.CompleteEvent", attribute.String("event.id", input.EventID))
	defer finishOperation(span, "complete_event", time.Now(), &completion.Result, &err)

	ev, err := loadEvent(ctx, s.eventRepo, input.EventID)
	if err != nil {
		return CompletionResult{}, err
	}
	if ev.IsCompleted() {
		return CompletionResult{}, fmt.Errorf("%w: event=%s", ErrEventAlreadyCompleted, ev.ID)
	}

	now := s.now().UTC()
	won, err := s.eventRepo.MarkCompleted(ctx, ev.ID, now)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("mark event completed: %w", err)
	}
	if !won {
		return CompletionResult{}, fmt.Errorf("%w: event=%s", ErrEventAlreadyCompleted, ev.ID)
	}

	completion.Applied = true
	completion.Message = "event completed"
	metadata := map[string]any{"tournament": ev.IsTournament()}

	if ev.IsTournament() && s.scoring != nil {
		rows, scoreErr := s.scoring.ScoreEvent(ctx, ev.ID)
		if scoreErr != nil {
			s.logger.ErrorContext(ctx, "scoring failed after completion", "event_id", ev.ID, "error", scoreErr)
			completion.ScoringError = scoreErr.Error()
			completion.Message = "event completed; scoring failed"
			metadata["scoringError"] = scoreErr.Error()
		} else {
			completion.PointsRows = len(rows)
			completion.Message = fmt.Sprintf("event completed; %d points rows awarded", len(rows))
			metadata["pointsRows"] = len(rows)
		}
	}

	s.effects.applied(ctx, audit.ActionCompleteEvent, input.ActorID, ev.ID, now, metadata)
	return completion, nil
}

// ResetProgress discards progress, winners and points and reopens the event.
// Events that have not started yet are rejected.
func (s *ProgressionService) ResetProgress(ctx context.Context, input EventInput) (result Result, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProgressionService.ResetProgress", attribute.String("event.id", input.EventID))
	defer finishOperation(span, "reset_progress", time.Now(), &result, &err)

	ev, err := loadEvent(ctx, s.eventRepo, input.EventID)
	if err != nil {
		return Result{}, err
	}
	if ev.Status != event.StatusOngoing && ev.Status != event.StatusCompleted {
		return Result{}, fmt.Errorf("%w: reset requires an ongoing or completed event, status=%s", ErrInvalidTransition, ev.Status)
	}

	now := s.now().UTC()
	if err := s.eventRepo.ResetProgress(ctx, ev.ID, now); err != nil {
		return Result{}, fmt.Errorf("reset event progress: %w", err)
	}

	s.effects.applied(ctx, audit.ActionResetProgress, input.ActorID, ev.ID, now, map[string]any{
		"previousStatus": string(ev.Status),
	})
	return Result{Applied: true, Message: "event progress reset"}, nil
}

func (s *ProgressionService) OpenRegistration(ctx context.Context, input EventInput) (result Result, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProgressionService.OpenRegistration", attribute.String("event.id", input.EventID))
	defer finishOperation(span, "open_registration", time.Now(), &result, &err)

	return s.transition(ctx, input, event.StatusRegistrationOpen, audit.ActionOpenRegistration)
}

func (s *ProgressionService) StartEvent(ctx context.Context, input EventInput) (result Result, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProgressionService.StartEvent", attribute.String("event.id", input.EventID))
	defer finishOperation(span, "start_event", time.Now(), &result, &err)

	return s.transition(ctx, input, event.StatusOngoing, audit.ActionStartEvent)
}

func (s *ProgressionService) transition(ctx context.Context, input EventInput, to event.Status, action audit.Action) (Result, error) {
	ev, err := loadEvent(ctx, s.eventRepo, input.EventID)
	if err != nil {
		return Result{}, err
	}
	if ev.Status == to {
		return Result{Message: fmt.Sprintf("event already %s", to)}, nil
	}
	if !event.CanTransition(ev.Status, to) || ev.Status == event.StatusCompleted {
		return Result{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ev.Status, to)
	}

	now := s.now().UTC()
	changed, err := s.eventRepo.TransitionStatus(ctx, ev.ID, ev.Status, to, now)
	if err != nil {
		return Result{}, fmt.Errorf("transition event status: %w", err)
	}
	if !changed {
		return Result{}, fmt.Errorf("%w: event=%s changed concurrently", ErrInvalidTransition, ev.ID)
	}

	s.effects.applied(ctx, action, input.ActorID, ev.ID, now, map[string]any{
		"from": string(ev.Status),
		"to":   string(to),
	})
	return Result{Applied: true, Message: fmt.Sprintf("event %s", to)}, nil
}

func (s *ProgressionService) GetLiveState(ctx context.Context, eventID string) (LiveState, error) {
	return s.live.GetLiveState(ctx, eventID)
}

func (s *ProgressionService) liveEvent(ctx context.Context, eventID string) (event.Event, error) {
	ev, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return event.Event{}, err
	}
	if ev.Status != event.StatusOngoing {
		return event.Event{}, fmt.Errorf("%w: event=%s status=%s", ErrEventNotLive, ev.ID, ev.Status)
	}
	return ev, nil
}

func (s *ProgressionService) eventRound(ctx context.Context, eventID, roundID string) (round.Round, error) {
	r, exists, err := s.roundRepo.GetByID(ctx, eventID, roundID)
	if err != nil {
		return round.Round{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: round=%s event=%s", ErrInvalidRound, roundID, eventID)
	}
	return r, nil
}
