package entity

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
)

const snapshotCellSeparator = ","

var ErrInvalidSnapshot = errors.New("invalid session snapshot")

// Snapshot is the persisted form of a session.
type Snapshot struct {
	XMLName       xml.Name `xml:"GameState"`
	Board         []string `xml:"Board>Row"`
	CurrentPlayer string   `xml:"CurrentPlayer"`
	GameResult    string   `xml:"GameResult"`
	GameMode      string   `xml:"GameMode"`
}

func (that *Game) Snapshot() (Snapshot, error) {
	if !that.started {
		return Snapshot{}, apperror.ErrNoSession
	}

	rows := make([]string, 0, BoardSize)
	for _, row := range that.board {
		cells := make([]string, 0, BoardSize)
		for _, cell := range row {
			cells = append(cells, cell.String())
		}
		rows = append(rows, strings.Join(cells, snapshotCellSeparator))
	}

	return Snapshot{
		Board:         rows,
		CurrentPlayer: string(that.current),
		GameResult:    that.result.String(),
		GameMode:      string(that.mode),
	}, nil
}

// Restore replaces the whole session with the snapshot. Nothing changes when the
// snapshot is rejected.
func (that *Game) Restore(snapshot Snapshot) error {
	board, err := parseSnapshotBoard(snapshot.Board)
	if err != nil {
		return err
	}

	current, err := ParsePlayer(strings.TrimSpace(snapshot.CurrentPlayer))
	if err != nil {
		return fmt.Errorf("%w: current player: %w", ErrInvalidSnapshot, err)
	}

	result, err := ParseGameResult(snapshot.GameResult)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	mode, err := ParseGameMode(strings.TrimSpace(snapshot.GameMode))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	if err = checkResultAgainstBoard(&board, result); err != nil {
		return err
	}

	*that = Game{
		board:   board,
		current: current,
		result:  result,
		mode:    mode,
		started: true,
	}

	return nil
}

// checkResultAgainstBoard rejects a result the board contradicts: a line in an
// unfinished game, a draw that is not a full board without lines, or a winner
// without a line or with an opponent who also has one.
func checkResultAgainstBoard(board *Board, result GameResult) error {
	winner := board.Winner()

	switch result.Outcome {
	case OutcomeInProgress:
		if winner != EmptyCell {
			return fmt.Errorf("%w: player %s has a line but the game is in progress", ErrInvalidSnapshot, winner)
		}
	case OutcomeDraw:
		if winner != EmptyCell {
			return fmt.Errorf("%w: draw but player %s has a line", ErrInvalidSnapshot, winner)
		}
		if !board.IsFull() {
			return fmt.Errorf("%w: draw on a board that is not full", ErrInvalidSnapshot)
		}
	case OutcomeWon:
		if !board.HasLine(result.Winner) || board.HasLine(result.Winner.Opponent()) {
			return fmt.Errorf("%w: result %q does not match the board", ErrInvalidSnapshot, result)
		}
	}

	return nil
}

func parseSnapshotBoard(rows []string) (Board, error) {
	var board Board

	if len(rows) != BoardSize {
		return board, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidSnapshot, BoardSize, len(rows))
	}

	for x, row := range rows {
		cells := strings.Split(row, snapshotCellSeparator)
		if len(cells) != BoardSize {
			return board, fmt.Errorf("%w: row %d: expected %d cells, got %d", ErrInvalidSnapshot, x, BoardSize, len(cells))
		}

		for y, raw := range cells {
			cell := strings.TrimSpace(raw)
			if cell == "" {
				continue
			}

			mark, err := ParsePlayer(cell)
			if err != nil {
				return board, fmt.Errorf("%w: cell (%d, %d): %w", ErrInvalidSnapshot, x, y, err)
			}
			board[x][y] = mark
		}
	}

	return board, nil
}
