package httpapi

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/points"
	"github.com/riskibarqy/club-events/internal/domain/progress"
	"github.com/riskibarqy/club-events/internal/domain/round"
	"github.com/riskibarqy/club-events/internal/domain/winner"
	"github.com/riskibarqy/club-events/internal/platform/logging"
	"github.com/riskibarqy/club-events/internal/usecase"
)

type Handler struct {
	progressionService *usecase.ProgressionService
	roundService       *usecase.RoundService
	pointsService      *usecase.PointsService
	dispatcher         *usecase.Dispatcher
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	progressionService *usecase.ProgressionService,
	roundService *usecase.RoundService,
	pointsService *usecase.PointsService,
	dispatcher *usecase.Dispatcher,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		progressionService: progressionService,
		roundService:       roundService,
		pointsService:      pointsService,
		dispatcher:         dispatcher,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a strict JSON body and validates it.
func (h *Handler) decodeRequest(ctx context.Context, body io.Reader, out any) error {
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(ctx, out)
}

// actorID is empty for unauthenticated calls; every staff route sits behind
// RequireAuth so audit records carry the caller.
func actorID(ctx context.Context) string {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return ""
	}
	return principal.UserID
}

type participantRequest struct {
	TeamID string `json:"team_id" validate:"omitempty,max=64"`
	UserID string `json:"user_id" validate:"omitempty,max=64"`
}

func (p participantRequest) ref() (participant.Ref, error) {
	ref, err := participant.RefFromKeys(p.TeamID, p.UserID)
	if err != nil {
		return participant.Ref{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return ref, nil
}

type moveToRoundRequest struct {
	participantRequest
	FromRoundID string `json:"from_round_id" validate:"omitempty,max=64"`
	ToRoundID   string `json:"to_round_id" validate:"required,max=64"`
}

type eliminateRequest struct {
	participantRequest
	RoundID string `json:"round_id" validate:"required,max=64"`
}

type setWinnersRequest struct {
	Winners []winnerRequest `json:"winners" validate:"required,dive"`
}

type winnerRequest struct {
	Position      int    `json:"position" validate:"required,gt=0"`
	TeamID        string `json:"team_id"`
	UserID        string `json:"user_id"`
	PointsAwarded *int   `json:"points_awarded,omitempty"`
	Prize         string `json:"prize" validate:"max=255"`
}

type addRoundsRequest struct {
	Rounds []roundRequest `json:"rounds" validate:"required,min=1,dive"`
}

type roundRequest struct {
	Number      int    `json:"number" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

type adjustPointsRequest struct {
	participantRequest
	Delta         int    `json:"delta"`
	Reason        string `json:"reason" validate:"required,max=255"`
	MatchesPlayed int    `json:"matches_played" validate:"gte=0"`
	Wins          int    `json:"wins" validate:"gte=0"`
	Losses        int    `json:"losses" validate:"gte=0"`
	Draws         int    `json:"draws" validate:"gte=0"`
}

func (r setWinnersRequest) toInputs() []usecase.WinnerInput {
	out := make([]usecase.WinnerInput, 0, len(r.Winners))
	for _, w := range r.Winners {
		out = append(out, usecase.WinnerInput{
			Position:      w.Position,
			TeamID:        w.TeamID,
			UserID:        w.UserID,
			PointsAwarded: w.PointsAwarded,
			Prize:         strings.TrimSpace(w.Prize),
		})
	}
	return out
}

func (r addRoundsRequest) toInputs() []usecase.RoundInput {
	out := make([]usecase.RoundInput, 0, len(r.Rounds))
	for _, rr := range r.Rounds {
		out = append(out, usecase.RoundInput{
			Number:      rr.Number,
			Title:       rr.Title,
			Description: rr.Description,
		})
	}
	return out
}

type resultDTO struct {
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

type completionDTO struct {
	resultDTO
	PointsRows   int    `json:"points_rows"`
	ScoringError string `json:"scoring_error,omitempty"`
}

type addRoundsDTO struct {
	resultDTO
	Added int `json:"added"`
}

type participantRefDTO struct {
	Kind   string `json:"kind"`
	TeamID string `json:"team_id,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

type memberDTO struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type participantDTO struct {
	participantRefDTO
	RegistrationID string      `json:"registration_id"`
	DisplayName    string      `json:"display_name"`
	Members        []memberDTO `json:"members,omitempty"`
}

type eventDTO struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	TournamentID string     `json:"tournament_id,omitempty"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type roundDTO struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type progressEntryDTO struct {
	Participant  participantRefDTO `json:"participant"`
	RoundID      string            `json:"round_id,omitempty"`
	Eliminated   bool              `json:"eliminated"`
	EliminatedAt *time.Time        `json:"eliminated_at,omitempty"`
	MovedAt      time.Time         `json:"moved_at"`
}

type winnerDTO struct {
	Position      int               `json:"position"`
	Participant   participantRefDTO `json:"participant"`
	PointsAwarded *int              `json:"points_awarded,omitempty"`
	Prize         string            `json:"prize,omitempty"`
}

type pointsEntryDTO struct {
	Participant   participantRefDTO `json:"participant"`
	Points        int               `json:"points"`
	Reason        string            `json:"reason"`
	MatchesPlayed int               `json:"matches_played"`
	Wins          int               `json:"wins"`
	Losses        int               `json:"losses"`
	Draws         int               `json:"draws"`
}

type roundParticipantsDTO struct {
	Round        roundDTO         `json:"round"`
	Participants []participantDTO `json:"participants"`
}

type eliminatedDTO struct {
	Participant  participantDTO `json:"participant"`
	RoundID      string         `json:"round_id"`
	RoundNumber  int            `json:"round_number"`
	EliminatedAt *time.Time     `json:"eliminated_at,omitempty"`
}

type liveStateDTO struct {
	Event         eventDTO               `json:"event"`
	Rounds        []roundDTO             `json:"rounds"`
	Participants  []participantDTO       `json:"participants"`
	Progress      []progressEntryDTO     `json:"progress"`
	Winners       []winnerDTO            `json:"winners"`
	Points        []pointsEntryDTO       `json:"points,omitempty"`
	ActiveByRound []roundParticipantsDTO `json:"active_by_round"`
	Eliminated    []eliminatedDTO        `json:"eliminated"`
	Unassigned    []participantDTO       `json:"unassigned"`
}

func resultToDTO(v usecase.Result) resultDTO {
	return resultDTO{Applied: v.Applied, Message: v.Message}
}

func refToDTO(ref participant.Ref) participantRefDTO {
	return participantRefDTO{
		Kind:   string(ref.Kind()),
		TeamID: ref.TeamID(),
		UserID: ref.UserID(),
	}
}

func participantToDTO(p participant.Participant) participantDTO {
	members := make([]memberDTO, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, memberDTO{UserID: m.UserID, DisplayName: m.DisplayName})
	}

	return participantDTO{
		participantRefDTO: refToDTO(p.Ref),
		RegistrationID:    p.RegistrationID,
		DisplayName:       p.DisplayName,
		Members:           members,
	}
}

func participantsToDTO(items []participant.Participant) []participantDTO {
	out := make([]participantDTO, 0, len(items))
	for _, p := range items {
		out = append(out, participantToDTO(p))
	}
	return out
}

func roundToDTO(r round.Round) roundDTO {
	return roundDTO{
		ID:          r.ID,
		Number:      r.Number,
		Title:       r.Title,
		Description: r.Description,
	}
}

func roundsToDTO(items []round.Round) []roundDTO {
	out := make([]roundDTO, 0, len(items))
	for _, r := range items {
		out = append(out, roundToDTO(r))
	}
	return out
}

func pointsToDTO(items []points.Entry) []pointsEntryDTO {
	out := make([]pointsEntryDTO, 0, len(items))
	for _, e := range items {
		out = append(out, pointsEntryToDTO(e))
	}
	return out
}

func pointsEntryToDTO(e points.Entry) pointsEntryDTO {
	return pointsEntryDTO{
		Participant:   refToDTO(e.Participant),
		Points:        e.Points,
		Reason:        e.Reason,
		MatchesPlayed: e.MatchesPlayed,
		Wins:          e.Wins,
		Losses:        e.Losses,
		Draws:         e.Draws,
	}
}

func liveStateToDTO(ctx context.Context, state usecase.LiveState) liveStateDTO {
	_, span := startSpan(ctx, "httpapi.liveStateToDTO")
	defer span.End()

	progressItems := make([]progressEntryDTO, 0, len(state.Progress))
	for _, e := range state.Progress {
		progressItems = append(progressItems, progressEntryToDTO(e))
	}

	winners := make([]winnerDTO, 0, len(state.Winners))
	for _, w := range state.Winners {
		winners = append(winners, winnerToDTO(w))
	}

	active := make([]roundParticipantsDTO, 0, len(state.ActiveByRound))
	for _, group := range state.ActiveByRound {
		active = append(active, roundParticipantsDTO{
			Round:        roundToDTO(group.Round),
			Participants: participantsToDTO(group.Participants),
		})
	}

	eliminated := make([]eliminatedDTO, 0, len(state.Eliminated))
	for _, e := range state.Eliminated {
		eliminated = append(eliminated, eliminatedDTO{
			Participant:  participantToDTO(e.Participant),
			RoundID:      e.RoundID,
			RoundNumber:  e.RoundNumber,
			EliminatedAt: e.EliminatedAt,
		})
	}

	return liveStateDTO{
		Event: eventDTO{
			ID:           state.Event.ID,
			Title:        state.Event.Title,
			Status:       string(state.Event.Status),
			TournamentID: state.Event.TournamentID,
			StartsAt:     state.Event.StartsAt,
			CompletedAt:  state.Event.CompletedAt,
		},
		Rounds:        roundsToDTO(state.Rounds),
		Participants:  participantsToDTO(state.Participants),
		Progress:      progressItems,
		Winners:       winners,
		Points:        pointsToDTO(state.Points),
		ActiveByRound: active,
		Eliminated:    eliminated,
		Unassigned:    participantsToDTO(state.Unassigned),
	}
}

func progressEntryToDTO(e progress.Entry) progressEntryDTO {
	return progressEntryDTO{
		Participant:  refToDTO(e.Participant),
		RoundID:      e.RoundID,
		Eliminated:   e.Eliminated,
		EliminatedAt: e.EliminatedAt,
		MovedAt:      e.MovedAt,
	}
}

func winnerToDTO(w winner.Winner) winnerDTO {
	return winnerDTO{
		Position:      w.Position,
		Participant:   refToDTO(w.Participant),
		PointsAwarded: w.PointsAwarded,
		Prize:         w.Prize,
	}
}
