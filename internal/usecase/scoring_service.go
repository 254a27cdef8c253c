package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/points"
	"github.com/riskibarqy/club-events/internal/domain/progress"
	"github.com/riskibarqy/club-events/internal/domain/round"
	"github.com/riskibarqy/club-events/internal/domain/winner"
	idgen "github.com/riskibarqy/club-events/internal/platform/id"
	"github.com/riskibarqy/club-events/internal/platform/logging"
	"github.com/riskibarqy/club-events/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
)

const (
	AwardSourcePosition = "position"
	AwardSourceRound    = "round"
)

// Award is the points one participant earns when an event completes.
type Award struct {
	Participant participant.Ref
	Points      int
	Reason      string
	Source      string
}

// ComputeAwards derives completion points. Winners earn position points;
// remaining non-eliminated placements earn points for the round they reached.
// A participant is awarded at most once, and unplaced participants get nothing.
func ComputeAwards(winners []winner.Winner, entries []progress.Entry, rounds []round.Round) []Award {
	awarded := make(map[string]struct{}, len(winners)+len(entries))
	out := make([]Award, 0, len(winners)+len(entries))

	for _, w := range winners {
		if w.Participant.IsZero() {
			continue
		}
		key := w.Participant.Key()
		if _, seen := awarded[key]; seen {
			continue
		}
		awarded[key] = struct{}{}
		out = append(out, Award{
			Participant: w.Participant,
			Points:      points.ForPosition(w.Position),
			Reason:      fmt.Sprintf("Position %d", w.Position),
			Source:      AwardSourcePosition,
		})
	}

	numberByRoundID := make(map[string]int, len(rounds))
	for _, r := range rounds {
		numberByRoundID[r.ID] = r.Number
	}

	for _, e := range entries {
		if e.Eliminated || !e.IsPlaced() || e.Participant.IsZero() {
			continue
		}
		key := e.Participant.Key()
		if _, seen := awarded[key]; seen {
			continue
		}
		awarded[key] = struct{}{}

		// zero when the round is gone
		number := numberByRoundID[e.RoundID]
		out = append(out, Award{
			Participant: e.Participant,
			Points:      points.ForRound(number),
			Reason:      fmt.Sprintf("Reached Round %d", number),
			Source:      AwardSourceRound,
		})
	}

	return out
}

type ScoringService struct {
	winnerRepo   winner.Repository
	progressRepo progress.Repository
	roundRepo    round.Repository
	pointsRepo   points.Repository
	idGen        idgen.Generator
	logger       *logging.Logger
	now          func() time.Time
}

func NewScoringService(
	winnerRepo winner.Repository,
	progressRepo progress.Repository,
	roundRepo round.Repository,
	pointsRepo points.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoringService{
		winnerRepo:   winnerRepo,
		progressRepo: progressRepo,
		roundRepo:    roundRepo,
		pointsRepo:   pointsRepo,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

// ScoreEvent computes and stores completion points in one batch. The caller
// guarantees it runs once per completion.
func (s *ScoringService) ScoreEvent(ctx context.Context, eventID string) (entries []points.Entry, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreEvent", attribute.String("event.id", eventID))
	defer func() { endUsecaseSpan(span, err) }()

	winners, err := s.winnerRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list winners: %w", err)
	}
	progressEntries, err := s.progressRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	rounds, err := s.roundRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	awards := ComputeAwards(winners, progressEntries, rounds)
	if len(awards) == 0 {
		s.logger.InfoContext(ctx, "no points to award", "event_id", eventID)
		return nil, nil
	}

	now := s.now().UTC()
	entries = make([]points.Entry, 0, len(awards))
	for _, award := range awards {
		id, err := s.idGen.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate points id: %w", err)
		}
		entries = append(entries, points.Entry{
			ID:          id,
			EventID:     eventID,
			Participant: award.Participant,
			Points:      award.Points,
			Reason:      award.Reason,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.pointsRepo.Add(ctx, entries); err != nil {
		return nil, fmt.Errorf("insert points batch: %w", err)
	}

	for _, award := range awards {
		metrics.PointsAwardedTotal.WithLabelValues(award.Source).Add(float64(award.Points))
	}
	s.logger.InfoContext(ctx, "event points awarded", "event_id", eventID, "rows", len(entries))
	return entries, nil
}
