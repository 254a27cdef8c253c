package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/points"
	"github.com/riskibarqy/club-events/internal/domain/progress"
	"github.com/riskibarqy/club-events/internal/domain/round"
	"github.com/riskibarqy/club-events/internal/domain/winner"
	"github.com/riskibarqy/club-events/internal/platform/cache"
	"github.com/riskibarqy/club-events/internal/platform/metrics"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const liveStateCachePrefix = "live:"

func LiveStateCacheKey(eventID string) string {
	return liveStateCachePrefix + eventID
}

// LiveState is everything needed to render a running event. The derived views
// are computed from the stored rows only.
type LiveState struct {
	Event        event.Event
	Rounds       []round.Round
	Participants []participant.Participant
	Progress     []progress.Entry
	Winners      []winner.Winner
	Points       []points.Entry

	ActiveByRound []RoundParticipants
	Eliminated    []EliminatedParticipant
	Unassigned    []participant.Participant
}

type RoundParticipants struct {
	Round        round.Round
	Participants []participant.Participant
}

type EliminatedParticipant struct {
	Participant  participant.Participant
	RoundID      string
	RoundNumber  int
	EliminatedAt *time.Time
}

type LiveStateService struct {
	eventRepo       event.Repository
	roundRepo       round.Repository
	participantRepo participant.Repository
	progressRepo    progress.Repository
	winnerRepo      winner.Repository
	pointsRepo      points.Repository
	cache           *cache.Store
}

// NewLiveStateService caches assembled views in store; a nil store disables caching.
func NewLiveStateService(
	eventRepo event.Repository,
	roundRepo round.Repository,
	participantRepo participant.Repository,
	progressRepo progress.Repository,
	winnerRepo winner.Repository,
	pointsRepo points.Repository,
	store *cache.Store,
) *LiveStateService {
	return &LiveStateService{
		eventRepo:       eventRepo,
		roundRepo:       roundRepo,
		participantRepo: participantRepo,
		progressRepo:    progressRepo,
		winnerRepo:      winnerRepo,
		pointsRepo:      pointsRepo,
		cache:           store,
	}
}

func (s *LiveStateService) GetLiveState(ctx context.Context, eventID string) (state LiveState, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveStateService.GetLiveState", attribute.String("event.id", eventID))
	defer func() { endUsecaseSpan(span, err) }()

	if s.cache == nil {
		return s.load(ctx, eventID)
	}

	key := LiveStateCacheKey(eventID)
	if cached, ok := s.cache.Get(ctx, key); ok {
		if state, ok := cached.(LiveState); ok {
			metrics.LiveStateCacheTotal.WithLabelValues("hit").Inc()
			return state, nil
		}
	}
	metrics.LiveStateCacheTotal.WithLabelValues("miss").Inc()
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) (LiveState, error) {
		return s.load(ctx, eventID)
	})
}

func (s *LiveStateService) load(ctx context.Context, eventID string) (LiveState, error) {
	ev, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return LiveState{}, err
	}

	state := LiveState{Event: ev}
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		rounds, err := s.roundRepo.ListByEvent(ctx, ev.ID)
		if err != nil {
			return fmt.Errorf("list rounds: %w", err)
		}
		state.Rounds = rounds
		return nil
	})
	p.Go(func(ctx context.Context) error {
		participants, err := s.participantRepo.ListByEvent(ctx, ev.ID)
		if err != nil {
			return fmt.Errorf("list participants: %w", err)
		}
		state.Participants = participants
		return nil
	})
	p.Go(func(ctx context.Context) error {
		entries, err := s.progressRepo.ListByEvent(ctx, ev.ID)
		if err != nil {
			return fmt.Errorf("list progress: %w", err)
		}
		state.Progress = entries
		return nil
	})
	p.Go(func(ctx context.Context) error {
		winners, err := s.winnerRepo.ListByEvent(ctx, ev.ID)
		if err != nil {
			return fmt.Errorf("list winners: %w", err)
		}
		state.Winners = winners
		return nil
	})
	if ev.IsTournament() {
		p.Go(func(ctx context.Context) error {
			rows, err := s.pointsRepo.ListByEvent(ctx, ev.ID)
			if err != nil {
				return fmt.Errorf("list points: %w", err)
			}
			state.Points = rows
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return LiveState{}, err
	}

	deriveViews(&state)
	return state, nil
}

// deriveViews groups the ledger into per-round active lists, the eliminated
// list and registrations that were never placed. Ledger rows without a
// registration are still shown, under their bare reference.
func deriveViews(state *LiveState) {
	byKey := make(map[string]participant.Participant, len(state.Participants))
	for _, p := range state.Participants {
		byKey[p.Ref.Key()] = p
	}
	resolve := func(ref participant.Ref) participant.Participant {
		if p, ok := byKey[ref.Key()]; ok {
			return p
		}
		return participant.Participant{Ref: ref, DisplayName: ref.ID()}
	}

	roundIndex := make(map[string]int, len(state.Rounds))
	state.ActiveByRound = make([]RoundParticipants, 0, len(state.Rounds))
	for i, r := range state.Rounds {
		roundIndex[r.ID] = i
		state.ActiveByRound = append(state.ActiveByRound, RoundParticipants{Round: r, Participants: []participant.Participant{}})
	}

	placed := make(map[string]struct{}, len(state.Progress))
	state.Eliminated = []EliminatedParticipant{}
	for _, entry := range state.Progress {
		if !entry.IsPlaced() {
			continue
		}
		placed[entry.Participant.Key()] = struct{}{}

		idx, known := roundIndex[entry.RoundID]
		if entry.Eliminated {
			eliminated := EliminatedParticipant{
				Participant:  resolve(entry.Participant),
				RoundID:      entry.RoundID,
				EliminatedAt: entry.EliminatedAt,
			}
			if known {
				eliminated.RoundNumber = state.Rounds[idx].Number
			}
			state.Eliminated = append(state.Eliminated, eliminated)
			continue
		}
		if known {
			state.ActiveByRound[idx].Participants = append(state.ActiveByRound[idx].Participants, resolve(entry.Participant))
		}
	}

	state.Unassigned = []participant.Participant{}
	for _, p := range state.Participants {
		if _, ok := placed[p.Ref.Key()]; !ok {
			state.Unassigned = append(state.Unassigned, p)
		}
	}
}
