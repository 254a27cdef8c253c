package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/audit"
	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/progress"
	"github.com/riskibarqy/club-events/internal/domain/round"
	"github.com/riskibarqy/club-events/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/club-events/internal/platform/cache"
	"github.com/riskibarqy/club-events/internal/platform/logging"
)

type sequenceIDGenerator struct {
	prefix string
	next   atomic.Int64
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	return fmt.Sprintf("%s-%03d", g.prefix, g.next.Add(1)), nil
}

type recordingAudit struct {
	mu      sync.Mutex
	records []audit.Record
}

func (r *recordingAudit) Record(_ context.Context, record audit.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *recordingAudit) actions() []audit.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Action, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Action)
	}
	return out
}

// cacheInvalidator mirrors the production invalidator minus the push.
type cacheInvalidator struct {
	store *cache.Store
	calls atomic.Int32
}

func (i *cacheInvalidator) InvalidateLiveView(ctx context.Context, eventID string) {
	i.calls.Add(1)
	i.store.Delete(ctx, LiveStateCacheKey(eventID))
}

const (
	testEventID      = "evt-1"
	testTournamentID = "trn-1"
)

var (
	teamA = participant.Team("team-a")
	teamB = participant.Team("team-b")
	teamC = participant.Team("team-c")
	userD = participant.Individual("user-d")
)

type harness struct {
	db          *memory.Database
	progression *ProgressionService
	rounds      *RoundService
	points      *PointsService
	live        *LiveStateService
	dispatcher  *Dispatcher
	audit       *recordingAudit
	invalidator *cacheInvalidator
	now         time.Time
}

// newHarness seeds an ongoing event with three rounds (rnd-1..rnd-3) and
// teams A, B, C plus individual D.
func newHarness(t *testing.T, tournament bool) *harness {
	t.Helper()

	db := memory.NewDatabase()
	ev := event.Event{ID: testEventID, Title: "Spring Cup", Status: event.StatusOngoing}
	if tournament {
		ev.TournamentID = testTournamentID
	}
	db.PutEvent(ev,
		participant.Participant{Ref: teamA, DisplayName: "Alpha"},
		participant.Participant{Ref: teamB, DisplayName: "Bravo"},
		participant.Participant{Ref: teamC, DisplayName: "Charlie"},
		participant.Participant{Ref: userD, DisplayName: "Dana"},
	)

	roundRepo := memory.NewRoundRepository(db)
	if _, err := roundRepo.InsertIfAbsent(context.Background(), []round.Round{
		{ID: "rnd-1", EventID: testEventID, Number: 1, Title: "Groups"},
		{ID: "rnd-2", EventID: testEventID, Number: 2, Title: "Semi"},
		{ID: "rnd-3", EventID: testEventID, Number: 3, Title: "Final"},
	}); err != nil {
		t.Fatalf("seed rounds: %v", err)
	}

	store := cache.NewStore(time.Minute)
	recorder := &recordingAudit{}
	invalidator := &cacheInvalidator{store: store}
	ids := &sequenceIDGenerator{prefix: "id"}
	logger := logging.NewNop()

	eventRepo := memory.NewEventRepository(db)
	participantRepo := memory.NewParticipantRepository(db)
	progressRepo := memory.NewProgressRepository(db)
	winnerRepo := memory.NewWinnerRepository(db)
	pointsRepo := memory.NewPointsRepository(db)

	live := NewLiveStateService(eventRepo, roundRepo, participantRepo, progressRepo, winnerRepo, pointsRepo, store)
	scoring := NewScoringService(winnerRepo, progressRepo, roundRepo, pointsRepo, ids, logger)
	progression := NewProgressionService(eventRepo, roundRepo, participantRepo, progressRepo, winnerRepo, scoring, live, recorder, invalidator, ids, logger)
	rounds := NewRoundService(eventRepo, roundRepo, recorder, invalidator, ids)
	pointsSvc := NewPointsService(eventRepo, participantRepo, pointsRepo, recorder, invalidator, ids)

	h := &harness{
		db:          db,
		progression: progression,
		rounds:      rounds,
		points:      pointsSvc,
		live:        live,
		dispatcher:  NewDispatcher(progression, rounds, pointsSvc, logger),
		audit:       recorder,
		invalidator: invalidator,
		now:         time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }
	progression.now = clock
	scoring.now = clock
	rounds.now = clock
	pointsSvc.now = clock
	return h
}

func (h *harness) move(t *testing.T, ref participant.Ref, from, to string) Result {
	t.Helper()
	res, err := h.progression.MoveToRound(context.Background(), MoveToRoundInput{
		EventID:     testEventID,
		ActorID:     "staff-1",
		Participant: ref,
		FromRoundID: from,
		ToRoundID:   to,
	})
	if err != nil {
		t.Fatalf("move %s %q -> %q: %v", ref, from, to, err)
	}
	return res
}

func (h *harness) state(t *testing.T) LiveState {
	t.Helper()
	state, err := h.progression.GetLiveState(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("get live state: %v", err)
	}
	return state
}

func containsRef(items []participant.Participant, ref participant.Ref) bool {
	for _, p := range items {
		if p.Ref.Matches(ref) {
			return true
		}
	}
	return false
}

func activeIn(state LiveState, roundID string) []participant.Participant {
	for _, group := range state.ActiveByRound {
		if group.Round.ID == roundID {
			return group.Participants
		}
	}
	return nil
}

func progressEntry(ref participant.Ref, roundID string, at time.Time) progress.Entry {
	return progress.Entry{ID: "direct-" + ref.ID(), EventID: testEventID, Participant: ref, RoundID: roundID, MovedAt: at}
}
