package usecase

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/riskibarqy/club-events/internal/platform/logging"
)

type CommandKind string

const (
	CommandMoveToRound   CommandKind = "move_to_round"
	CommandEliminate     CommandKind = "eliminate"
	CommandSetWinners    CommandKind = "set_winners"
	CommandCompleteEvent CommandKind = "complete_event"
	CommandResetProgress CommandKind = "reset_progress"
	CommandAddRounds     CommandKind = "add_rounds"
	CommandAdjustPoints  CommandKind = "adjust_points"
)

// Command is a staff action on a live event. The set is closed: only the
// input types of this package implement it.
type Command interface {
	Kind() CommandKind
	Target() string
	sealed()
}

type CompleteEventCommand struct{ EventInput }

type ResetProgressCommand struct{ EventInput }

func (c MoveToRoundInput) Kind() CommandKind     { return CommandMoveToRound }
func (c EliminateInput) Kind() CommandKind       { return CommandEliminate }
func (c SetWinnersInput) Kind() CommandKind      { return CommandSetWinners }
func (c CompleteEventCommand) Kind() CommandKind { return CommandCompleteEvent }
func (c ResetProgressCommand) Kind() CommandKind { return CommandResetProgress }
func (c AddRoundsInput) Kind() CommandKind       { return CommandAddRounds }
func (c AdjustPointsInput) Kind() CommandKind    { return CommandAdjustPoints }

func (c MoveToRoundInput) Target() string     { return c.EventID }
func (c EliminateInput) Target() string       { return c.EventID }
func (c SetWinnersInput) Target() string      { return c.EventID }
func (c CompleteEventCommand) Target() string { return c.EventID }
func (c ResetProgressCommand) Target() string { return c.EventID }
func (c AddRoundsInput) Target() string       { return c.EventID }
func (c AdjustPointsInput) Target() string    { return c.EventID }

func (MoveToRoundInput) sealed()     {}
func (EliminateInput) sealed()       {}
func (SetWinnersInput) sealed()      {}
func (CompleteEventCommand) sealed() {}
func (ResetProgressCommand) sealed() {}
func (AddRoundsInput) sealed()       {}
func (AdjustPointsInput) sealed()    {}

// Dispatcher routes commands to the owning service. A panic inside a command
// is turned into an error.
type Dispatcher struct {
	progression *ProgressionService
	rounds      *RoundService
	points      *PointsService
	logger      *logging.Logger
}

func NewDispatcher(progression *ProgressionService, rounds *RoundService, points *PointsService, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		progression: progression,
		rounds:      rounds,
		points:      points,
		logger:      logger,
	}
}

func (d *Dispatcher) Execute(ctx context.Context, cmd Command) (result Result, err error) {
	if cmd == nil {
		return Result{}, fmt.Errorf("%w: command is required", ErrInvalidInput)
	}

	defer func() {
		if rec := recover(); rec != nil {
			d.logger.ErrorContext(ctx, "command panicked",
				"command", string(cmd.Kind()),
				"event_id", cmd.Target(),
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			result = Result{}
			err = fmt.Errorf("command %s failed unexpectedly", cmd.Kind())
		}
	}()

	switch c := cmd.(type) {
	case MoveToRoundInput:
		return d.progression.MoveToRound(ctx, c)
	case EliminateInput:
		return d.progression.Eliminate(ctx, c)
	case SetWinnersInput:
		return d.progression.SetWinners(ctx, c)
	case CompleteEventCommand:
		completion, err := d.progression.CompleteEvent(ctx, c.EventInput)
		return completion.Result, err
	case ResetProgressCommand:
		return d.progression.ResetProgress(ctx, c.EventInput)
	case AddRoundsInput:
		added, err := d.rounds.AddRounds(ctx, c)
		return added.Result, err
	case AdjustPointsInput:
		adjusted, err := d.points.AdjustPoints(ctx, c)
		return adjusted.Result, err
	default:
		return Result{}, fmt.Errorf("%w: unsupported command %s", ErrInvalidInput, cmd.Kind())
	}
}
