package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/audit"
	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/infrastructure/repository/memory"
)

func TestProgressionService_MoveFromUnplacedShowsInRound(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	before := h.state(t)
	if !containsRef(before.Unassigned, teamA) {
		t.Fatalf("expected team A unassigned before move")
	}

	res := h.move(t, teamA, "", "rnd-1")
	if !res.Applied {
		t.Fatalf("expected move to apply, got %+v", res)
	}

	state := h.state(t)
	if !containsRef(activeIn(state, "rnd-1"), teamA) {
		t.Fatalf("expected team A active in round 1")
	}
	if containsRef(state.Unassigned, teamA) {
		t.Fatalf("expected team A removed from unassigned")
	}
	if got := h.invalidator.calls.Load(); got != 1 {
		t.Fatalf("expected one invalidation, got %d", got)
	}
}

func TestProgressionService_EliminateMovesToEliminatedView(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.move(t, teamA, "", "rnd-1")

	res, err := h.progression.Eliminate(context.Background(), EliminateInput{EventID: testEventID, Participant: teamA, RoundID: "rnd-1"})
	if err != nil || !res.Applied {
		t.Fatalf("eliminate = %+v, %v", res, err)
	}

	state := h.state(t)
	if containsRef(activeIn(state, "rnd-1"), teamA) {
		t.Fatalf("eliminated team A must not be active in round 1")
	}
	if len(state.Eliminated) != 1 || !state.Eliminated[0].Participant.Ref.Matches(teamA) {
		t.Fatalf("expected team A in eliminated view, got %+v", state.Eliminated)
	}
	if state.Eliminated[0].RoundNumber != 1 {
		t.Fatalf("expected eliminated round number 1, got %d", state.Eliminated[0].RoundNumber)
	}
}

func TestProgressionService_EliminateIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.move(t, teamA, "", "rnd-1")

	first := h.now
	if _, err := h.progression.Eliminate(context.Background(), EliminateInput{EventID: testEventID, Participant: teamA, RoundID: "rnd-1"}); err != nil {
		t.Fatalf("first eliminate: %v", err)
	}
	h.now = h.now.Add(10 * time.Minute)
	res, err := h.progression.Eliminate(context.Background(), EliminateInput{EventID: testEventID, Participant: teamA, RoundID: "rnd-1"})
	if err != nil {
		t.Fatalf("second eliminate: %v", err)
	}
	if res.Applied {
		t.Fatalf("second eliminate must be a no-op")
	}

	state := h.state(t)
	if got := state.Eliminated[0].EliminatedAt; got == nil || !got.Equal(first) {
		t.Fatalf("expected eliminated_at %v unchanged, got %v", first, got)
	}
}

func TestProgressionService_EliminateWithoutEntryIsSilent(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.move(t, teamA, "", "rnd-2")

	res, err := h.progression.Eliminate(context.Background(), EliminateInput{EventID: testEventID, Participant: teamA, RoundID: "rnd-1"})
	if err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if res.Applied {
		t.Fatalf("expected no-op for participant already moved away")
	}
}

func TestProgressionService_MoveSameRoundIsNoop(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.move(t, teamA, "", "rnd-1")
	movedAt := h.now

	h.now = h.now.Add(time.Minute)
	res := h.move(t, teamA, "rnd-1", "rnd-1")
	if res.Applied {
		t.Fatalf("same-round move must be a no-op")
	}

	state := h.state(t)
	if len(state.Progress) != 1 || !state.Progress[0].MovedAt.Equal(movedAt) {
		t.Fatalf("expected one entry with moved_at %v, got %+v", movedAt, state.Progress)
	}
}

func TestProgressionService_MoveKeepsOneLiveEntry(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.move(t, teamA, "", "rnd-1")
	h.move(t, teamA, "rnd-1", "rnd-2")
	h.move(t, teamA, "rnd-2", "rnd-3")
	h.move(t, teamA, "", "rnd-2")

	state := h.state(t)
	if len(state.Progress) != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", len(state.Progress))
	}
	if state.Progress[0].RoundID != "rnd-2" {
		t.Fatalf("expected entry in rnd-2, got %s", state.Progress[0].RoundID)
	}
}

func TestProgressionService_ConcurrentIdenticalMoves(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan Result, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := h.progression.MoveToRound(context.Background(), MoveToRoundInput{
				EventID:     testEventID,
				Participant: teamB,
				ToRoundID:   "rnd-1",
			})
			if err != nil {
				t.Errorf("move: %v", err)
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	applied := 0
	for res := range results {
		if res.Applied {
			applied++
		}
	}
	if applied != 1 {
		t.Fatalf("expected exactly one effective move, got %d", applied)
	}

	entries, err := memory.NewProgressRepository(h.db).ListByEvent(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("list progress: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(entries))
	}
}

func TestProgressionService_MoveValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	ctx := context.Background()

	_, err := h.progression.MoveToRound(ctx, MoveToRoundInput{EventID: testEventID, Participant: teamA, ToRoundID: "rnd-other"})
	if !errors.Is(err, ErrInvalidRound) {
		t.Fatalf("expected ErrInvalidRound, got %v", err)
	}

	_, err = h.progression.MoveToRound(ctx, MoveToRoundInput{EventID: "missing", Participant: teamA, ToRoundID: "rnd-1"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for event, got %v", err)
	}

	_, err = h.progression.MoveToRound(ctx, MoveToRoundInput{EventID: testEventID, Participant: participant.Team("stranger"), ToRoundID: "rnd-1"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for participant, got %v", err)
	}

	_, err = h.progression.MoveToRound(ctx, MoveToRoundInput{EventID: testEventID, ToRoundID: "rnd-1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// a user ref with a team's id is a different participant
	_, err = h.progression.MoveToRound(ctx, MoveToRoundInput{EventID: testEventID, Participant: participant.Individual("team-a"), ToRoundID: "rnd-1"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for mismatched kind, got %v", err)
	}
}

func TestProgressionService_MoveRequiresOngoingEvent(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	if _, err := h.progression.CompleteEvent(context.Background(), EventInput{EventID: testEventID}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := h.progression.MoveToRound(context.Background(), MoveToRoundInput{EventID: testEventID, Participant: teamA, ToRoundID: "rnd-1"})
	if !errors.Is(err, ErrEventNotLive) {
		t.Fatalf("expected ErrEventNotLive, got %v", err)
	}
}

func TestProgressionService_SetWinnersRejectsEmpty(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.move(t, teamA, "", "rnd-1")

	for _, winners := range [][]WinnerInput{nil, {{Position: 1}, {Position: 2, TeamID: " "}}} {
		_, err := h.progression.SetWinners(context.Background(), SetWinnersInput{EventID: testEventID, Winners: winners})
		if !errors.Is(err, ErrNoWinnersProvided) {
			t.Fatalf("expected ErrNoWinnersProvided, got %v", err)
		}
	}

	state := h.state(t)
	if len(state.Progress) != 1 || len(state.Winners) != 0 {
		t.Fatalf("expected ledger untouched, got progress=%d winners=%d", len(state.Progress), len(state.Winners))
	}
	if len(h.audit.actions()) != 1 {
		t.Fatalf("rejected winners must not be audited, got %v", h.audit.actions())
	}
}

func TestProgressionService_SetWinnersReplacesWholeBoard(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	ctx := context.Background()

	_, err := h.progression.SetWinners(ctx, SetWinnersInput{EventID: testEventID, Winners: []WinnerInput{
		{Position: 1, TeamID: "team-a"},
		{Position: 2, TeamID: "team-b"},
		{Position: 3, UserID: "user-d"},
	}})
	if err != nil {
		t.Fatalf("first set winners: %v", err)
	}

	res, err := h.progression.SetWinners(ctx, SetWinnersInput{EventID: testEventID, Winners: []WinnerInput{
		{Position: 1, TeamID: "team-c", Prize: "Trophy"},
		{Position: 2},
	}})
	if err != nil || !res.Applied {
		t.Fatalf("replace winners = %+v, %v", res, err)
	}

	state := h.state(t)
	if len(state.Winners) != 1 {
		t.Fatalf("expected only the new winner to remain, got %+v", state.Winners)
	}
	if !state.Winners[0].Participant.Matches(teamC) || state.Winners[0].Prize != "Trophy" {
		t.Fatalf("unexpected winner %+v", state.Winners[0])
	}
}

func TestProgressionService_SetWinnersValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	ctx := context.Background()

	cases := map[string][]WinnerInput{
		"duplicate position":    {{Position: 1, TeamID: "team-a"}, {Position: 1, TeamID: "team-b"}},
		"non positive position": {{Position: 0, TeamID: "team-a"}},
		"both keys":             {{Position: 1, TeamID: "team-a", UserID: "user-d"}},
		"duplicate participant": {{Position: 1, TeamID: "team-a"}, {Position: 2, TeamID: "team-a"}},
	}
	for name, winners := range cases {
		_, err := h.progression.SetWinners(ctx, SetWinnersInput{EventID: testEventID, Winners: winners})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestProgressionService_CompleteTournamentAwardsPoints(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	ctx := context.Background()

	h.move(t, teamA, "", "rnd-2")
	h.move(t, teamB, "", "rnd-2")
	h.move(t, teamC, "", "rnd-2")
	h.move(t, userD, "", "rnd-1")
	if _, err := h.progression.Eliminate(ctx, EliminateInput{EventID: testEventID, Participant: userD, RoundID: "rnd-1"}); err != nil {
		t.Fatalf("eliminate: %v", err)
	}
	if _, err := h.progression.SetWinners(ctx, SetWinnersInput{EventID: testEventID, Winners: []WinnerInput{
		{Position: 1, TeamID: "team-a"},
		{Position: 2, TeamID: "team-b"},
	}}); err != nil {
		t.Fatalf("set winners: %v", err)
	}

	completion, err := h.progression.CompleteEvent(ctx, EventInput{EventID: testEventID, ActorID: "staff-1"})
	if err != nil {
		t.Fatalf("complete event: %v", err)
	}
	if !completion.Applied || completion.ScoringError != "" || completion.PointsRows != 3 {
		t.Fatalf("unexpected completion %+v", completion)
	}

	rows, err := h.points.ListPoints(ctx, testEventID)
	if err != nil {
		t.Fatalf("list points: %v", err)
	}
	got := make(map[string]string, len(rows))
	total := make(map[string]int, len(rows))
	for _, row := range rows {
		if _, dup := got[row.Participant.Key()]; dup {
			t.Fatalf("participant %s awarded twice", row.Participant)
		}
		got[row.Participant.Key()] = row.Reason
		total[row.Participant.Key()] = row.Points
	}

	want := map[participant.Ref]struct {
		points int
		reason string
	}{
		teamA: {100, "Position 1"},
		teamB: {75, "Position 2"},
		teamC: {20, "Reached Round 2"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d points rows, got %+v", len(want), rows)
	}
	for ref, w := range want {
		if total[ref.Key()] != w.points || got[ref.Key()] != w.reason {
			t.Fatalf("%s: got %d %q, want %d %q", ref, total[ref.Key()], got[ref.Key()], w.points, w.reason)
		}
	}

	state := h.state(t)
	if state.Event.Status != event.StatusCompleted || state.Event.CompletedAt == nil {
		t.Fatalf("expected completed event, got %+v", state.Event)
	}
	if len(state.Points) != 3 {
		t.Fatalf("expected points in live state, got %d", len(state.Points))
	}
}

func TestProgressionService_CompleteTwiceFails(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.move(t, teamC, "", "rnd-3")
	ctx := context.Background()

	if _, err := h.progression.CompleteEvent(ctx, EventInput{EventID: testEventID}); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	_, err := h.progression.CompleteEvent(ctx, EventInput{EventID: testEventID})
	if !errors.Is(err, ErrEventAlreadyCompleted) {
		t.Fatalf("expected ErrEventAlreadyCompleted, got %v", err)
	}

	rows, _ := h.points.ListPoints(ctx, testEventID)
	if len(rows) != 1 || rows[0].Points != 30 {
		t.Fatalf("expected a single scoring pass, got %+v", rows)
	}
}

func TestProgressionService_ConcurrentCompletionScoresOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.move(t, teamA, "", "rnd-1")

	const callers = 6
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.progression.CompleteEvent(context.Background(), EventInput{EventID: testEventID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrEventAlreadyCompleted):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || rejected != callers-1 {
		t.Fatalf("succeeded=%d rejected=%d", succeeded, rejected)
	}
	rows, _ := h.points.ListPoints(context.Background(), testEventID)
	if len(rows) != 1 || rows[0].Points != 10 {
		t.Fatalf("expected one scoring pass, got %+v", rows)
	}
}

func TestProgressionService_CompleteNonTournamentSkipsScoring(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.move(t, teamA, "", "rnd-1")

	completion, err := h.progression.CompleteEvent(context.Background(), EventInput{EventID: testEventID})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completion.PointsRows != 0 {
		t.Fatalf("expected no scoring, got %+v", completion)
	}
	if rows, _ := memory.NewPointsRepository(h.db).ListByEvent(context.Background(), testEventID); len(rows) != 0 {
		t.Fatalf("expected no points rows, got %d", len(rows))
	}
}

func TestProgressionService_ResetClearsEverything(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	ctx := context.Background()
	h.move(t, teamA, "", "rnd-1")
	h.move(t, teamB, "", "rnd-2")
	if _, err := h.progression.SetWinners(ctx, SetWinnersInput{EventID: testEventID, Winners: []WinnerInput{{Position: 1, TeamID: "team-b"}}}); err != nil {
		t.Fatalf("set winners: %v", err)
	}
	if _, err := h.progression.CompleteEvent(ctx, EventInput{EventID: testEventID}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	_ = h.state(t)

	res, err := h.progression.ResetProgress(ctx, EventInput{EventID: testEventID})
	if err != nil || !res.Applied {
		t.Fatalf("reset = %+v, %v", res, err)
	}

	state := h.state(t)
	if len(state.Progress) != 0 || len(state.Winners) != 0 || len(state.Points) != 0 {
		t.Fatalf("expected empty ledger after reset, got progress=%d winners=%d points=%d", len(state.Progress), len(state.Winners), len(state.Points))
	}
	if state.Event.Status != event.StatusOngoing || state.Event.CompletedAt != nil {
		t.Fatalf("expected ongoing event without completion time, got %+v", state.Event)
	}
	if len(state.Unassigned) != 4 {
		t.Fatalf("expected every registration unassigned, got %d", len(state.Unassigned))
	}

	// completion works again after a reset
	h.move(t, teamA, "", "rnd-1")
	if _, err := h.progression.CompleteEvent(ctx, EventInput{EventID: testEventID}); err != nil {
		t.Fatalf("complete after reset: %v", err)
	}
}

func TestProgressionService_ResetRequiresStartedEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status event.Status
	}{
		{name: "upcoming", status: event.StatusUpcoming},
		{name: "registration open", status: event.StatusRegistrationOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, false)
			ctx := context.Background()
			h.db.PutEvent(event.Event{ID: "evt-pending", Title: "Pending", Status: tt.status})

			res, err := h.progression.ResetProgress(ctx, EventInput{EventID: "evt-pending"})
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %+v, %v", res, err)
			}

			ev, ok, err := memory.NewEventRepository(h.db).GetByID(ctx, "evt-pending")
			if err != nil || !ok {
				t.Fatalf("get event: ok=%v err=%v", ok, err)
			}
			if ev.Status != tt.status {
				t.Fatalf("expected status %s to be kept, got %s", tt.status, ev.Status)
			}
			if actions := h.audit.actions(); len(actions) != 0 {
				t.Fatalf("expected no audit records, got %v", actions)
			}
		})
	}
}

func TestProgressionService_LifecycleTransitions(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	ctx := context.Background()
	h.db.PutEvent(event.Event{ID: "evt-draft", Title: "Draft", Status: event.StatusUpcoming})

	res, err := h.progression.OpenRegistration(ctx, EventInput{EventID: "evt-draft"})
	if err != nil || !res.Applied {
		t.Fatalf("open registration = %+v, %v", res, err)
	}
	res, err = h.progression.OpenRegistration(ctx, EventInput{EventID: "evt-draft"})
	if err != nil || res.Applied {
		t.Fatalf("repeat open registration = %+v, %v", res, err)
	}
	if res, err = h.progression.StartEvent(ctx, EventInput{EventID: "evt-draft"}); err != nil || !res.Applied {
		t.Fatalf("start = %+v, %v", res, err)
	}
	if _, err = h.progression.OpenRegistration(ctx, EventInput{EventID: "evt-draft"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if _, err := h.progression.CompleteEvent(ctx, EventInput{EventID: "evt-draft"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err = h.progression.StartEvent(ctx, EventInput{EventID: "evt-draft"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completed events restart only through reset, got %v", err)
	}
}

func TestProgressionService_AuditsAppliedMutationsOnly(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.move(t, teamA, "", "rnd-1")
	h.move(t, teamA, "rnd-1", "rnd-1")
	h.move(t, teamA, "", "rnd-1")

	actions := h.audit.actions()
	if len(actions) != 1 || actions[0] != audit.ActionMoveToRound {
		t.Fatalf("expected a single move audit record, got %v", actions)
	}
	h.audit.mu.Lock()
	rec := h.audit.records[0]
	h.audit.mu.Unlock()
	if rec.ActorID != "staff-1" || rec.EventID != testEventID || !rec.OccurredAt.Equal(h.now) {
		t.Fatalf("unexpected audit record %+v", rec)
	}
}

func TestLiveState_CachedUntilInvalidated(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	first := h.state(t)
	if len(first.Progress) != 0 {
		t.Fatalf("expected empty progress")
	}

	// bypass the service so the cache is not invalidated
	if _, err := memory.NewProgressRepository(h.db).Move(context.Background(), progressEntry(teamA, "rnd-1", h.now)); err != nil {
		t.Fatalf("direct move: %v", err)
	}
	if cached := h.state(t); len(cached.Progress) != 0 {
		t.Fatalf("expected cached state, got %d entries", len(cached.Progress))
	}

	h.move(t, teamB, "", "rnd-1")
	if fresh := h.state(t); len(fresh.Progress) != 2 {
		t.Fatalf("expected refreshed state with 2 entries, got %d", len(fresh.Progress))
	}
}
