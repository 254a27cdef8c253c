package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/riskibarqy/club-events/internal/usecase"
)

func (h *Handler) MoveToRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MoveToRound")
	defer span.End()

	var req moveToRoundRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	ref, err := req.ref()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	result, err := h.progressionService.MoveToRound(ctx, usecase.MoveToRoundInput{
		EventID:     eventID,
		ActorID:     actorID(ctx),
		Participant: ref,
		FromRoundID: strings.TrimSpace(req.FromRoundID),
		ToRoundID:   strings.TrimSpace(req.ToRoundID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "move to round failed",
			"event_id", eventID,
			"participant", ref.String(),
			"to_round_id", req.ToRoundID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(result))
}

func (h *Handler) Eliminate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Eliminate")
	defer span.End()

	var req eliminateRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	ref, err := req.ref()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	result, err := h.progressionService.Eliminate(ctx, usecase.EliminateInput{
		EventID:     eventID,
		ActorID:     actorID(ctx),
		Participant: ref,
		RoundID:     strings.TrimSpace(req.RoundID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "eliminate failed", "event_id", eventID, "participant", ref.String(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(result))
}

func (h *Handler) SetWinners(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetWinners")
	defer span.End()

	var req setWinnersRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	result, err := h.progressionService.SetWinners(ctx, usecase.SetWinnersInput{
		EventID: eventID,
		ActorID: actorID(ctx),
		Winners: req.toInputs(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set winners failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(result))
}

func (h *Handler) CompleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteEvent")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	completion, err := h.progressionService.CompleteEvent(ctx, usecase.EventInput{EventID: eventID, ActorID: actorID(ctx)})
	if err != nil {
		h.logger.WarnContext(ctx, "complete event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if completion.ScoringError != "" {
		h.logger.ErrorContext(ctx, "event completed without points", "event_id", eventID, "error", completion.ScoringError)
	}

	writeSuccess(ctx, w, http.StatusOK, completionDTO{
		resultDTO:    resultToDTO(completion.Result),
		PointsRows:   completion.PointsRows,
		ScoringError: completion.ScoringError,
	})
}

func (h *Handler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	h.eventTransition(w, r, "httpapi.Handler.ResetProgress", "reset progress", h.progressionService.ResetProgress)
}

func (h *Handler) OpenRegistration(w http.ResponseWriter, r *http.Request) {
	h.eventTransition(w, r, "httpapi.Handler.OpenRegistration", "open registration", h.progressionService.OpenRegistration)
}

func (h *Handler) StartEvent(w http.ResponseWriter, r *http.Request) {
	h.eventTransition(w, r, "httpapi.Handler.StartEvent", "start event", h.progressionService.StartEvent)
}

type eventOperation func(ctx context.Context, input usecase.EventInput) (usecase.Result, error)

func (h *Handler) eventTransition(w http.ResponseWriter, r *http.Request, spanName, action string, op eventOperation) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	result, err := op(ctx, usecase.EventInput{EventID: eventID, ActorID: actorID(ctx)})
	if err != nil {
		h.logger.WarnContext(ctx, action+" failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(result))
}
