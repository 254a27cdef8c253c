package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/club-events/internal/usecase"
)

// commandRequest carries one staff command; Payload is decoded according to
// Kind with the same rules as the dedicated route.
type commandRequest struct {
	Kind    string          `json:"kind" validate:"required,oneof=move_to_round eliminate set_winners complete_event reset_progress add_rounds adjust_points"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (h *Handler) ExecuteCommand(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExecuteCommand")
	defer span.End()

	var req commandRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	cmd, err := h.buildCommand(ctx, eventID, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.dispatcher.Execute(ctx, cmd)
	if err != nil {
		h.logger.WarnContext(ctx, "command failed", "event_id", eventID, "command", req.Kind, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(result))
}

func (h *Handler) buildCommand(ctx context.Context, eventID string, req commandRequest) (usecase.Command, error) {
	actor := actorID(ctx)

	switch usecase.CommandKind(req.Kind) {
	case usecase.CommandMoveToRound:
		var p moveToRoundRequest
		if err := h.decodePayload(ctx, req.Payload, &p); err != nil {
			return nil, err
		}
		ref, err := p.ref()
		if err != nil {
			return nil, err
		}
		return usecase.MoveToRoundInput{
			EventID:     eventID,
			ActorID:     actor,
			Participant: ref,
			FromRoundID: strings.TrimSpace(p.FromRoundID),
			ToRoundID:   strings.TrimSpace(p.ToRoundID),
		}, nil
	case usecase.CommandEliminate:
		var p eliminateRequest
		if err := h.decodePayload(ctx, req.Payload, &p); err != nil {
			return nil, err
		}
		ref, err := p.ref()
		if err != nil {
			return nil, err
		}
		return usecase.EliminateInput{
			EventID:     eventID,
			ActorID:     actor,
			Participant: ref,
			RoundID:     strings.TrimSpace(p.RoundID),
		}, nil
	case usecase.CommandSetWinners:
		var p setWinnersRequest
		if err := h.decodePayload(ctx, req.Payload, &p); err != nil {
			return nil, err
		}
		return usecase.SetWinnersInput{EventID: eventID, ActorID: actor, Winners: p.toInputs()}, nil
	case usecase.CommandCompleteEvent:
		return usecase.CompleteEventCommand{EventInput: usecase.EventInput{EventID: eventID, ActorID: actor}}, nil
	case usecase.CommandResetProgress:
		return usecase.ResetProgressCommand{EventInput: usecase.EventInput{EventID: eventID, ActorID: actor}}, nil
	case usecase.CommandAddRounds:
		var p addRoundsRequest
		if err := h.decodePayload(ctx, req.Payload, &p); err != nil {
			return nil, err
		}
		return usecase.AddRoundsInput{EventID: eventID, ActorID: actor, Rounds: p.toInputs()}, nil
	case usecase.CommandAdjustPoints:
		var p adjustPointsRequest
		if err := h.decodePayload(ctx, req.Payload, &p); err != nil {
			return nil, err
		}
		ref, err := p.ref()
		if err != nil {
			return nil, err
		}
		return usecase.AdjustPointsInput{
			EventID:       eventID,
			ActorID:       actor,
			Participant:   ref,
			Delta:         p.Delta,
			Reason:        p.Reason,
			MatchesPlayed: p.MatchesPlayed,
			Wins:          p.Wins,
			Losses:        p.Losses,
			Draws:         p.Draws,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported command %q", usecase.ErrInvalidInput, req.Kind)
	}
}

func (h *Handler) decodePayload(ctx context.Context, payload json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: command payload is required", usecase.ErrInvalidInput)
	}
	return h.decodeRequest(ctx, bytes.NewReader(trimmed), out)
}
