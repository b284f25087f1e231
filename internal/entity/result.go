package entity

import (
	"errors"
	"fmt"
	"strings"
)

type Outcome int

const (
	OutcomeInProgress Outcome = iota
	OutcomeWon
	OutcomeDraw
)

// GameResult is InProgress, Won(player) or Draw. Winner is set only for OutcomeWon.
type GameResult struct {
	Outcome Outcome
	Winner  Mark
}

var (
	InProgress = GameResult{Outcome: OutcomeInProgress}
	Draw       = GameResult{Outcome: OutcomeDraw}

	ErrUnknownGameResult = errors.New("unknown game result")
)

func Won(player Mark) GameResult {
	return GameResult{Outcome: OutcomeWon, Winner: player}
}

func (that GameResult) IsTerminal() bool {
	return that.Outcome != OutcomeInProgress
}

// String renders the result the way the session file and the board caption show it.
func (that GameResult) String() string {
	switch that.Outcome {
	case OutcomeWon:
		return fmt.Sprintf("Player %s won", that.Winner)
	case OutcomeDraw:
		return "Draw"
	default:
		return " "
	}
}

func ParseGameResult(text string) (GameResult, error) {
	trimmed := strings.TrimSpace(text)

	switch trimmed {
	case "":
		return InProgress, nil
	case "Draw":
		return Draw, nil
	case "Player X won":
		return Won(PlayerX), nil
	case "Player O won":
		return Won(PlayerO), nil
	default:
		return InProgress, fmt.Errorf("%w: %q", ErrUnknownGameResult, text)
	}
}
