package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/round"
)

const (
	DemoEventID      = "evt-spring-cup-2026"
	DemoWorkshopID   = "evt-go-workshop-2026"
	DemoTournamentID = "trn-club-season-2026"
)

// SeedDemo fills db with a tournament-linked cup and a plain workshop so the
// API is usable without postgres.
func SeedDemo(db *Database) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	db.PutEvent(event.Event{
		ID:           DemoEventID,
		Title:        "Spring Cup",
		Status:       event.StatusOngoing,
		TournamentID: DemoTournamentID,
		CreatedAt:    created,
		UpdatedAt:    created,
	},
		demoTeam("team-falcons", "Falcons", "user-ana", "user-budi"),
		demoTeam("team-otters", "Otters", "user-citra", "user-dewi"),
		demoTeam("team-lynx", "Lynx", "user-eka", "user-fajar"),
		demoTeam("team-herons", "Herons", "user-gita", "user-hadi"),
	)

	db.PutEvent(event.Event{
		ID:        DemoWorkshopID,
		Title:     "Go Workshop",
		Status:    event.StatusRegistrationOpen,
		CreatedAt: created,
		UpdatedAt: created,
	},
		participant.Participant{Ref: participant.Individual("user-ana"), RegistrationID: "reg-ws-ana", DisplayName: "Ana", RegisteredAt: created},
		participant.Participant{Ref: participant.Individual("user-eka"), RegistrationID: "reg-ws-eka", DisplayName: "Eka", RegisteredAt: created},
	)

	titles := []string{"Group stage", "Semi final", "Final"}
	rounds := make([]round.Round, 0, len(titles))
	for i, title := range titles {
		rounds = append(rounds, round.Round{
			ID:        fmt.Sprintf("rnd-spring-cup-%d", i+1),
			EventID:   DemoEventID,
			Number:    i + 1,
			Title:     title,
			CreatedAt: created,
		})
	}
	_, _ = NewRoundRepository(db).InsertIfAbsent(context.Background(), rounds)
}

func demoTeam(teamID, name string, memberIDs ...string) participant.Participant {
	members := make([]participant.Member, 0, len(memberIDs))
	for _, id := range memberIDs {
		members = append(members, participant.Member{UserID: id, DisplayName: id})
	}
	return participant.Participant{
		Ref:            participant.Team(teamID),
		RegistrationID: "reg-" + teamID,
		DisplayName:    name,
		Members:        members,
		RegisteredAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}
