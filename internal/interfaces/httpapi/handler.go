package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/club-events/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetLiveState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLiveState")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	state, err := h.progressionService.GetLiveState(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "get live state failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, liveStateToDTO(ctx, state))
}

func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRounds")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	rounds, err := h.roundService.ListRounds(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "list rounds failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundsToDTO(rounds))
}

func (h *Handler) AddRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddRounds")
	defer span.End()

	var req addRoundsRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	out, err := h.roundService.AddRounds(ctx, usecase.AddRoundsInput{
		EventID: eventID,
		ActorID: actorID(ctx),
		Rounds:  req.toInputs(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add rounds failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, addRoundsDTO{resultDTO: resultToDTO(out.Result), Added: out.Added})
}

func (h *Handler) ListPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPoints")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	items, err := h.pointsService.ListPoints(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "list points failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pointsToDTO(items))
}

func (h *Handler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdjustPoints")
	defer span.End()

	var req adjustPointsRequest
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
	out, err := h.pointsService.AdjustPoints(ctx, usecase.AdjustPointsInput{
		EventID:       eventID,
		ActorID:       actorID(ctx),
		Participant:   ref,
		Delta:         req.Delta,
		Reason:        req.Reason,
		MatchesPlayed: req.MatchesPlayed,
		Wins:          req.Wins,
		Losses:        req.Losses,
		Draws:         req.Draws,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "adjust points failed", "event_id", eventID, "participant", ref.String(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"result": resultToDTO(out.Result),
		"entry":  pointsEntryToDTO(out.Entry),
	})
}
