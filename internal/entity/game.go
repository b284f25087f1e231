package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
)

type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseAwaitingMove
	PhaseBotObserving
	PhaseGameOver
)

func (that Phase) String() string {
	switch that {
	case PhaseAwaitingMove:
		return "awaiting-move"
	case PhaseBotObserving:
		return "bot-observing"
	case PhaseGameOver:
		return "game-over"
	default:
		return "not-started"
	}
}

// Game is the client-side session state. The board, the current player and the
// result are only ever replaced together, by Reset or Restore.
//
// A Game is not safe for concurrent use; callers run one dispatch at a time.
type Game struct {
	board   Board
	current Mark
	result  GameResult
	mode    GameMode
	started bool
}

// NewGame returns a session that has not been started yet.
func NewGame() *Game {
	return &Game{current: PlayerX}
}

// Reset starts a fresh session in the given mode. X always moves first.
func (that *Game) Reset(mode GameMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownGameMode, mode)
	}

	*that = Game{
		current: PlayerX,
		result:  InProgress,
		mode:    mode,
		started: true,
	}

	return nil
}

func (that *Game) Board() Board {
	return that.board
}

func (that *Game) CurrentPlayer() Mark {
	return that.current
}

func (that *Game) Result() GameResult {
	return that.result
}

func (that *Game) Mode() GameMode {
	return that.mode
}

func (that *Game) IsStarted() bool {
	return that.started
}

func (that *Game) IsFinished() bool {
	return that.result.IsTerminal()
}

func (that *Game) Phase() Phase {
	switch {
	case !that.started:
		return PhaseNotStarted
	case that.result.IsTerminal():
		return PhaseGameOver
	case that.mode.IsObserved():
		return PhaseBotObserving
	default:
		return PhaseAwaitingMove
	}
}

// CheckLocalMove validates a move by the current player without changing anything.
func (that *Game) CheckLocalMove(x, y int) error {
	switch {
	case !that.started:
		return apperror.ErrGameIsNotStarted
	case that.result.IsTerminal():
		return apperror.ErrGameFinished
	case !InBounds(x, y):
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCell, x, y)
	case !that.board.IsEmpty(x, y):
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrCellOccupied, x, y)
	}

	return nil
}

// ApplyLocalMove places the current player's mark at (x, y), runs confirm, and then
// passes the turn unless the game has ended. confirm receives the game after the
// local mark is placed and may be nil.
func (that *Game) ApplyLocalMove(x, y int, confirm func(*Game)) error {
	if err := that.CheckLocalMove(x, y); err != nil {
		return err
	}

	that.board[x][y] = that.current

	if confirm != nil {
		confirm(that)
	}

	if !that.result.IsTerminal() {
		that.TogglePlayer()
	}

	return nil
}

// ApplyRemoteMove places player's mark at (x, y) if the cell is empty and the game
// is still running. It reports whether the board changed.
func (that *Game) ApplyRemoteMove(player Mark, x, y int) bool {
	if !that.started || that.result.IsTerminal() {
		return false
	}

	if !player.IsPlayer() || !InBounds(x, y) || !that.board.IsEmpty(x, y) {
		return false
	}

	that.board[x][y] = player

	return true
}

func (that *Game) TogglePlayer() {
	if that.result.IsTerminal() {
		return
	}

	that.current = that.current.Opponent()
}

// SetResult records a terminal result. The transition happens once; later calls and
// non-terminal values are ignored. A terminal result freezes the board.
func (that *Game) SetResult(result GameResult) bool {
	if !that.started || that.result.IsTerminal() || !result.IsTerminal() {
		return false
	}

	if result.Outcome == OutcomeWon && !result.Winner.IsPlayer() {
		return false
	}

	that.result = result

	return true
}
