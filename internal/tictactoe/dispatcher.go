package tictactoe

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
)

// Effect tells the caller what a dispatched response asks it to do next.
type Effect int

const (
	EffectIgnored Effect = iota
	EffectShowBoard
	EffectStartBotLoop
	EffectMoveApplied
	EffectGameOver
	EffectPeerError
	EffectUnknown
)

func (that Effect) String() string {
	switch that {
	case EffectShowBoard:
		return "show-board"
	case EffectStartBotLoop:
		return "start-bot-loop"
	case EffectMoveApplied:
		return "move-applied"
	case EffectGameOver:
		return "game-over"
	case EffectPeerError:
		return "peer-error"
	case EffectUnknown:
		return "unknown"
	default:
		return "ignored"
	}
}

type Outcome struct {
	Effect Effect
	// Message is the peer's error text, the unknown discriminant, or why the response was ignored.
	Message string
}

// Dispatcher applies decoded responses to a game.
type Dispatcher struct {
	logger *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger.With("component", "dispatcher"),
	}
}

// Dispatch runs the handler selected by the response type. Responses that arrive
// in a phase where they make no sense leave the game untouched.
func (that *Dispatcher) Dispatch(game *entity.Game, response protocol.Response) Outcome {
	log := that.logger.With("type", response.Discriminant(), "phase", game.Phase().String())

	switch resp := response.(type) {
	case protocol.ModeAck:
		return that.handleModeAck(log, game, resp)
	case protocol.MoveResult:
		return that.handleMoveResult(log, game, resp)
	case protocol.GameOver:
		return that.handleGameOver(log, game, resp)
	case protocol.ProtocolError:
		log.Warn("peer reported an error", "message", resp.Message)
		return Outcome{Effect: EffectPeerError, Message: resp.Message}
	case protocol.Unknown:
		log.Warn("unhandled response type")
		return Outcome{Effect: EffectUnknown, Message: resp.Type}
	default:
		log.Error("unsupported response value", "response", fmt.Sprintf("%T", response))
		return Outcome{Effect: EffectIgnored, Message: fmt.Sprintf("unsupported response %T", response)}
	}
}

func (that *Dispatcher) handleModeAck(log *slog.Logger, game *entity.Game, resp protocol.ModeAck) Outcome {
	if game.IsStarted() {
		log.Warn("mode acknowledgement for a running session", "mode", resp.Mode)
		return Outcome{Effect: EffectIgnored, Message: "session already started"}
	}

	if err := game.Reset(resp.Mode); err != nil {
		log.Error("failed to start session", "error", err)
		return Outcome{Effect: EffectIgnored, Message: err.Error()}
	}

	log.Info("session started", "mode", resp.Mode)

	if resp.Mode.IsObserved() {
		return Outcome{Effect: EffectStartBotLoop}
	}

	return Outcome{Effect: EffectShowBoard}
}

// handleMoveResult applies a move made by the other seat: the turn passes first and
// the mark of the player who now holds it goes on the board.
func (that *Dispatcher) handleMoveResult(log *slog.Logger, game *entity.Game, resp protocol.MoveResult) Outcome {
	switch game.Phase() {
	case entity.PhaseAwaitingMove, entity.PhaseBotObserving:
	default:
		log.Warn("move result outside of play", "x", resp.X, "y", resp.Y)
		return Outcome{Effect: EffectIgnored, Message: "no move expected"}
	}

	if !entity.InBounds(resp.X, resp.Y) {
		log.Warn("move result off the board", "x", resp.X, "y", resp.Y)
		return Outcome{Effect: EffectIgnored, Message: fmt.Sprintf("cell (%d, %d) is off the board", resp.X, resp.Y)}
	}

	board := game.Board()
	if board.IsEmpty(resp.X, resp.Y) {
		game.TogglePlayer()
		game.ApplyRemoteMove(game.CurrentPlayer(), resp.X, resp.Y)
		log.Debug("remote move applied", "player", game.CurrentPlayer(), "x", resp.X, "y", resp.Y)
	}

	if resp.Status.IsTerminal() {
		game.SetResult(resp.Status.Result())
		log.Info("game finished", "result", game.Result().String())
		return Outcome{Effect: EffectGameOver}
	}

	return Outcome{Effect: EffectMoveApplied}
}

func (that *Dispatcher) handleGameOver(log *slog.Logger, game *entity.Game, resp protocol.GameOver) Outcome {
	if !game.IsStarted() {
		log.Warn("game over before the session started", "status", resp.Status)
		return Outcome{Effect: EffectIgnored, Message: "no game in progress"}
	}

	if !game.SetResult(resp.Status.Result()) {
		log.Debug("result already recorded", "status", resp.Status, "result", game.Result().String())
		return Outcome{Effect: EffectGameOver}
	}

	log.Info("game finished", "result", game.Result().String())

	return Outcome{Effect: EffectGameOver}
}
