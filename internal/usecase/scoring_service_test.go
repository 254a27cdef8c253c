package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/points"
	"github.com/riskibarqy/club-events/internal/domain/progress"
	"github.com/riskibarqy/club-events/internal/domain/round"
	"github.com/riskibarqy/club-events/internal/domain/winner"
	"github.com/riskibarqy/club-events/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/club-events/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAwards(t *testing.T) {
	t.Parallel()

	rounds := []round.Round{
		{ID: "r1", Number: 1},
		{ID: "r2", Number: 2},
		{ID: "r5", Number: 5},
	}
	winners := []winner.Winner{
		{Position: 1, Participant: teamA},
		{Position: 4, Participant: teamB},
	}
	entries := []progress.Entry{
		{Participant: teamA, RoundID: "r2"},
		{Participant: teamC, RoundID: "r2"},
		{Participant: userD, RoundID: "r5"},
		{Participant: participant.Individual("user-e"), RoundID: "r1", Eliminated: true},
		{Participant: participant.Individual("user-f"), RoundID: "gone"},
		{Participant: participant.Individual("user-g")},
	}

	awards := ComputeAwards(winners, entries, rounds)

	got := make(map[string]Award, len(awards))
	for _, a := range awards {
		_, dup := got[a.Participant.Key()]
		require.False(t, dup, "participant %s awarded twice", a.Participant)
		got[a.Participant.Key()] = a
	}

	assert.Len(t, awards, 5)
	assert.Equal(t, Award{Participant: teamA, Points: 100, Reason: "Position 1", Source: AwardSourcePosition}, got[teamA.Key()])
	assert.Equal(t, 25, got[teamB.Key()].Points)
	assert.Equal(t, Award{Participant: teamC, Points: 20, Reason: "Reached Round 2", Source: AwardSourceRound}, got[teamC.Key()])
	assert.Equal(t, 5, got[userD.Key()].Points, "rounds beyond the table fall back to the default")
	assert.Equal(t, 5, got["individual:user-f"].Points, "missing round data falls back to the default")
	assert.Equal(t, "Reached Round 0", got["individual:user-f"].Reason)
	assert.NotContains(t, got, "individual:user-e")
	assert.NotContains(t, got, "individual:user-g")
}

func TestComputeAwards_TeamAndUserWithSameIDAreDistinct(t *testing.T) {
	t.Parallel()

	awards := ComputeAwards(
		[]winner.Winner{{Position: 1, Participant: participant.Team("x")}},
		[]progress.Entry{{Participant: participant.Individual("x"), RoundID: "r1"}},
		[]round.Round{{ID: "r1", Number: 1}},
	)
	assert.Len(t, awards, 2)
}

type failingPointsRepository struct {
	points.Repository
}

func (failingPointsRepository) Add(context.Context, []points.Entry) error {
	return errors.New("points table unavailable")
}

func TestScoringService_FailureKeepsCompletion(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.move(t, teamA, "", "rnd-1")

	db := h.db
	failing := NewScoringService(
		memory.NewWinnerRepository(db),
		memory.NewProgressRepository(db),
		memory.NewRoundRepository(db),
		failingPointsRepository{},
		&sequenceIDGenerator{prefix: "pts"},
		logging.NewNop(),
	)
	h.progression.scoring = failing

	completion, err := h.progression.CompleteEvent(context.Background(), EventInput{EventID: testEventID})
	require.NoError(t, err)
	assert.True(t, completion.Applied)
	assert.Contains(t, completion.ScoringError, "points table unavailable")

	state := h.state(t)
	assert.True(t, state.Event.IsCompleted(), "scoring failure must not roll back completion")
	assert.Empty(t, state.Points)
}

func TestScoringService_StampsEntries(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.move(t, teamB, "", "rnd-3")

	scoring := h.progression.scoring
	scoring.now = func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) }
	entries, err := scoring.ScoreEvent(context.Background(), testEventID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testEventID, entries[0].EventID)
	assert.Equal(t, 30, entries[0].Points)
	assert.Equal(t, "Reached Round 3", entries[0].Reason)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), entries[0].CreatedAt)
}
