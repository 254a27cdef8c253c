package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/domain/participant"
)

func TestDispatcher_ExecutesEveryCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	ctx := context.Background()

	commands := []Command{
		AddRoundsInput{EventID: testEventID, Rounds: []RoundInput{{Number: 4, Title: "Final 2"}}},
		MoveToRoundInput{EventID: testEventID, Participant: teamA, ToRoundID: "rnd-1"},
		MoveToRoundInput{EventID: testEventID, Participant: teamB, ToRoundID: "rnd-1"},
		EliminateInput{EventID: testEventID, Participant: teamB, RoundID: "rnd-1"},
		SetWinnersInput{EventID: testEventID, Winners: []WinnerInput{{Position: 1, TeamID: "team-a"}}},
		AdjustPointsInput{EventID: testEventID, Participant: teamC, Delta: 2, Reason: "Fair play"},
		CompleteEventCommand{EventInput{EventID: testEventID}},
		ResetProgressCommand{EventInput{EventID: testEventID}},
	}
	for _, cmd := range commands {
		res, err := h.dispatcher.Execute(ctx, cmd)
		if err != nil {
			t.Fatalf("%s: %v", cmd.Kind(), err)
		}
		if !res.Applied {
			t.Fatalf("%s: expected applied, got %+v", cmd.Kind(), res)
		}
	}

	state := h.state(t)
	if state.Event.Status != event.StatusOngoing || len(state.Progress) != 0 {
		t.Fatalf("expected reset state, got status=%s progress=%d", state.Event.Status, len(state.Progress))
	}
}

func TestDispatcher_PropagatesErrors(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	_, err := h.dispatcher.Execute(context.Background(), SetWinnersInput{EventID: testEventID})
	if !errors.Is(err, ErrNoWinnersProvided) {
		t.Fatalf("expected ErrNoWinnersProvided, got %v", err)
	}

	_, err = h.dispatcher.Execute(context.Background(), nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nil command, got %v", err)
	}
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.progression.participantRepo = nil

	res, err := h.dispatcher.Execute(context.Background(), MoveToRoundInput{
		EventID:     testEventID,
		Participant: participant.Team("team-a"),
		ToRoundID:   "rnd-1",
	})
	if err == nil {
		t.Fatalf("expected error from panicking command")
	}
	if res.Applied {
		t.Fatalf("panicking command must not report applied")
	}
}
