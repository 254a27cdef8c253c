package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/audit"
	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/domain/round"
	idgen "github.com/riskibarqy/club-events/internal/platform/id"
	"go.opentelemetry.io/otel/attribute"
)

type RoundInput struct {
	Number      int
	Title       string
	Description string
}

type AddRoundsInput struct {
	EventID string
	ActorID string
	Rounds  []RoundInput
}

type AddRoundsResult struct {
	Result
	Added int
}

type RoundService struct {
	eventRepo event.Repository
	roundRepo round.Repository
	effects   mutationEffects
	idGen     idgen.Generator
	now       func() time.Time
}

func NewRoundService(
	eventRepo event.Repository,
	roundRepo round.Repository,
	recorder audit.Recorder,
	invalidator LiveViewInvalidator,
	idGen idgen.Generator,
) *RoundService {
	return &RoundService{
		eventRepo: eventRepo,
		roundRepo: roundRepo,
		effects:   mutationEffects{audit: recorder, invalidator: invalidator},
		idGen:     idGen,
		now:       time.Now,
	}
}

func (s *RoundService) ListRounds(ctx context.Context, eventID string) ([]round.Round, error) {
	ev, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}

	rounds, err := s.roundRepo.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	return rounds, nil
}

// AddRounds appends rounds to an event. Numbers already used by the event, or
// repeated within the batch, are skipped so the call can be re-run.
func (s *RoundService) AddRounds(ctx context.Context, input AddRoundsInput) (out AddRoundsResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.AddRounds", attribute.String("event.id", input.EventID))
	defer finishOperation(span, "add_rounds", time.Now(), &out.Result, &err)

	if len(input.Rounds) == 0 {
		return AddRoundsResult{}, fmt.Errorf("%w: at least one round is required", ErrInvalidInput)
	}
	ev, err := loadEvent(ctx, s.eventRepo, input.EventID)
	if err != nil {
		return AddRoundsResult{}, err
	}

	now := s.now().UTC()
	seen := make(map[int]struct{}, len(input.Rounds))
	rounds := make([]round.Round, 0, len(input.Rounds))
	for _, in := range input.Rounds {
		if _, dup := seen[in.Number]; dup {
			continue
		}
		seen[in.Number] = struct{}{}

		r := round.Round{
			EventID:     ev.ID,
			Number:      in.Number,
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			CreatedAt:   now,
		}
		if err := r.Validate(); err != nil {
			return AddRoundsResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if r.ID, err = s.idGen.NewID(); err != nil {
			return AddRoundsResult{}, fmt.Errorf("generate round id: %w", err)
		}
		rounds = append(rounds, r)
	}

	added, err := s.roundRepo.InsertIfAbsent(ctx, rounds)
	if err != nil {
		return AddRoundsResult{}, fmt.Errorf("insert rounds: %w", err)
	}

	out.Added = added
	out.Message = fmt.Sprintf("%d rounds added", added)
	if added == 0 {
		return out, nil
	}

	out.Applied = true
	s.effects.applied(ctx, audit.ActionAddRounds, input.ActorID, ev.ID, now, map[string]any{
		"requested": len(input.Rounds),
		"added":     added,
	})
	return out, nil
}
