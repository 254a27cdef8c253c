package cache

import (
	"context"

	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/round"
	basecache "github.com/riskibarqy/club-events/internal/platform/cache"
)

// RoundRepository caches the round list of each event. Lookups that miss the
// cached list go to the store so rounds added elsewhere are still found.
type RoundRepository struct {
	next  round.Repository
	cache *basecache.Store
}

func NewRoundRepository(next round.Repository, cache *basecache.Store) *RoundRepository {
	return &RoundRepository{next: next, cache: cache}
}

func roundListKey(eventID string) string {
	return "round:list:" + eventID
}

func (r *RoundRepository) ListByEvent(ctx context.Context, eventID string) ([]round.Round, error) {
	items, err := basecache.Load(ctx, r.cache, roundListKey(eventID), func(ctx context.Context) ([]round.Round, error) {
		items, err := r.next.ListByEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		return append([]round.Round(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	return append([]round.Round(nil), items...), nil
}

func (r *RoundRepository) GetByID(ctx context.Context, eventID, roundID string) (round.Round, bool, error) {
	items, err := r.ListByEvent(ctx, eventID)
	if err != nil {
		return round.Round{}, false, err
	}
	for _, item := range items {
		if item.ID == roundID {
			return item, true, nil
		}
	}

	return r.next.GetByID(ctx, eventID, roundID)
}

func (r *RoundRepository) InsertIfAbsent(ctx context.Context, rounds []round.Round) (int, error) {
	added, err := r.next.InsertIfAbsent(ctx, rounds)

	seen := make(map[string]struct{}, 1)
	for _, item := range rounds {
		if _, ok := seen[item.EventID]; ok {
			continue
		}
		seen[item.EventID] = struct{}{}
		r.cache.Delete(ctx, roundListKey(item.EventID))
	}

	return added, err
}

// ParticipantRepository caches the registrations of each event. Registrations
// are written by the portal, so entries only live for the store TTL.
type ParticipantRepository struct {
	next  participant.Repository
	cache *basecache.Store
}

func NewParticipantRepository(next participant.Repository, cache *basecache.Store) *ParticipantRepository {
	return &ParticipantRepository{next: next, cache: cache}
}

func (r *ParticipantRepository) ListByEvent(ctx context.Context, eventID string) ([]participant.Participant, error) {
	items, err := basecache.Load(ctx, r.cache, "participant:list:"+eventID, func(ctx context.Context) ([]participant.Participant, error) {
		items, err := r.next.ListByEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		return append([]participant.Participant(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	return append([]participant.Participant(nil), items...), nil
}

func (r *ParticipantRepository) GetByEvent(ctx context.Context, eventID string, ref participant.Ref) (participant.Participant, bool, error) {
	items, err := r.ListByEvent(ctx, eventID)
	if err != nil {
		return participant.Participant{}, false, err
	}
	for _, item := range items {
		if item.Ref.Matches(ref) {
			return item, true, nil
		}
	}

	return r.next.GetByEvent(ctx, eventID, ref)
}
