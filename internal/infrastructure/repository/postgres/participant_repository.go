package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	qb "github.com/riskibarqy/club-events/internal/platform/querybuilder"
)

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) ListByEvent(ctx context.Context, eventID string) ([]participant.Participant, error) {
	query, args, err := qb.Select("*").From("event_registrations").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("registered_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list registrations query: %w", err)
	}

	var rows []registrationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list registrations event=%s: %w", eventID, err)
	}
	return r.resolve(ctx, rows)
}

func (r *ParticipantRepository) GetByEvent(ctx context.Context, eventID string, ref participant.Ref) (participant.Participant, bool, error) {
	query, args, err := qb.Select("*").From("event_registrations").
		Where(
			qb.Eq("event_id", eventID),
			qb.Eq("participant_kind", string(ref.Kind())),
			qb.Eq("participant_id", ref.ID()),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build get registration query: %w", err)
	}

	var rows []registrationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return participant.Participant{}, false, fmt.Errorf("get registration event=%s participant=%s: %w", eventID, ref, err)
	}
	if len(rows) == 0 {
		return participant.Participant{}, false, nil
	}

	resolved, err := r.resolve(ctx, rows)
	if err != nil {
		return participant.Participant{}, false, err
	}
	return resolved[0], true, nil
}

// resolve attaches team members to team registrations.
func (r *ParticipantRepository) resolve(ctx context.Context, rows []registrationTableModel) ([]participant.Participant, error) {
	teamIDs := make([]any, 0, len(rows))
	for _, row := range rows {
		if participant.Kind(row.ParticipantKind) == participant.KindTeam {
			teamIDs = append(teamIDs, row.ParticipantID)
		}
	}

	members := make(map[string][]participant.Member)
	if len(teamIDs) > 0 {
		query, args, err := qb.Select("*").From("team_members").
			Where(qb.In("team_id", teamIDs)).
			OrderBy("team_id", "display_name", "user_id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build list team members query: %w", err)
		}

		var memberRows []teamMemberTableModel
		if err := r.db.SelectContext(ctx, &memberRows, query, args...); err != nil {
			return nil, fmt.Errorf("list team members: %w", err)
		}
		for _, row := range memberRows {
			members[row.TeamID] = append(members[row.TeamID], participant.Member{
				UserID:      row.UserID,
				DisplayName: row.DisplayName,
			})
		}
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		ref, err := row.ref()
		if err != nil {
			return nil, fmt.Errorf("registration id=%s: %w", row.ID, err)
		}
		item := participant.Participant{
			Ref:            ref,
			RegistrationID: row.ID,
			DisplayName:    row.DisplayName,
			RegisteredAt:   row.RegisteredAt,
		}
		if ref.IsTeam() {
			item.Members = members[ref.ID()]
		}
		out = append(out, item)
	}
	return out, nil
}
