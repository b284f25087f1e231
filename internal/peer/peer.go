// Package peer emulates the game board on the other end of the serial link. It speaks
// the wire protocol in-process so the client can be played and tested without hardware.
package peer

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
)

var (
	ErrIdle   = errors.New("peer has nothing to send")
	ErrClosed = errors.New("peer is closed")
)

const (
	msgModeNotSelected = "Game mode not selected"
	msgGameOver        = "Game is over"
	msgInvalidMove     = "Invalid move"
	msgNotYourTurn     = "Not your turn"
	msgBotsPlaying     = "Bots are playing"
)

// Peer is an emulated board. It implements protocol.Transport: requests are written
// to it and responses are read back. In a bot game every read with nothing pending
// produces the next bot move.
type Peer struct {
	logger *slog.Logger
	rnd    *rand.Rand

	mu       sync.Mutex
	closed   bool
	inbox    bytes.Buffer
	outbox   bytes.Buffer
	board    entity.Board
	mode     entity.GameMode
	turn     entity.Mark
	finished bool
}

func New(logger *slog.Logger, seed int64) *Peer {
	return &Peer{
		logger: logger.With("component", "peer"),
		rnd:    rand.New(rand.NewSource(seed)), //nolint: gosec // bot moves need no crypto
	}
}

func (that *Peer) IsOpen() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return !that.closed
}

func (that *Peer) Close() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed = true

	return nil
}

// Write consumes request bytes. Every complete line is handled as one request.
func (that *Peer) Write(p []byte) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return 0, ErrClosed
	}

	that.inbox.Write(p)

	for {
		line, err := that.inbox.ReadBytes('\n')
		if err != nil {
			// keep the unterminated tail for the next write
			rest := append([]byte(nil), line...)
			that.inbox.Reset()
			that.inbox.Write(rest)

			break
		}

		that.handle(bytes.TrimSpace(line))
	}

	return len(p), nil
}

func (that *Peer) Read(p []byte) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return 0, ErrClosed
	}

	if that.outbox.Len() == 0 && that.mode == entity.ModeBotVBot && !that.finished {
		that.playBot()
	}

	if that.outbox.Len() == 0 {
		return 0, ErrIdle
	}

	return that.outbox.Read(p)
}

func (that *Peer) handle(line []byte) {
	if len(line) == 0 {
		return
	}

	request, err := protocol.DecodeRequest(protocol.Frame(line))
	if err != nil {
		that.logger.Warn("bad request", "error", err)
		that.reply(protocol.ProtocolError{Message: err.Error()})

		return
	}

	switch req := request.(type) {
	case protocol.ModeRequest:
		that.board = entity.Board{}
		that.mode = req.Mode
		that.turn = entity.PlayerX
		that.finished = false

		// the client attributes bot moves toggle-first, so the bot game opens with O
		if req.Mode == entity.ModeBotVBot {
			that.turn = entity.PlayerO
		}

		that.logger.Info("mode selected", "mode", req.Mode)
		that.reply(protocol.ModeAck{Mode: req.Mode})
	case protocol.MoveRequest:
		that.handleMove(req)
	}
}

func (that *Peer) handleMove(req protocol.MoveRequest) {
	switch {
	case that.mode == "":
		that.reply(protocol.ProtocolError{Message: msgModeNotSelected})
		return
	case that.finished:
		that.reply(protocol.ProtocolError{Message: msgGameOver})
		return
	case that.mode == entity.ModeBotVBot:
		that.reply(protocol.ProtocolError{Message: msgBotsPlaying})
		return
	case req.Player != that.turn:
		that.reply(protocol.ProtocolError{Message: msgNotYourTurn})
		return
	case !that.board.IsEmpty(req.X, req.Y):
		that.reply(protocol.ProtocolError{Message: msgInvalidMove})
		return
	}

	status := that.place(req.Player, req.X, req.Y)
	if that.mode == entity.ModePvP || status.IsTerminal() {
		that.reply(protocol.MoveResult{Status: status, X: req.X, Y: req.Y})
		return
	}

	that.playBot()
}

// playBot makes a random move for the side whose turn it is. The game is never
// finished here, so there is always a free cell.
func (that *Peer) playBot() {
	free := make([][2]int, 0, entity.BoardSize*entity.BoardSize)
	for x := 0; x < entity.BoardSize; x++ {
		for y := 0; y < entity.BoardSize; y++ {
			if that.board.IsEmpty(x, y) {
				free = append(free, [2]int{x, y})
			}
		}
	}

	cell := free[that.rnd.Intn(len(free))]
	status := that.place(that.turn, cell[0], cell[1])

	that.reply(protocol.MoveResult{Status: status, X: cell[0], Y: cell[1]})
}

func (that *Peer) place(player entity.Mark, x, y int) protocol.Status {
	that.board[x][y] = player
	that.turn = player.Opponent()

	status := protocol.StatusContinue

	switch winner := that.board.Winner(); {
	case winner == entity.PlayerX:
		status = protocol.StatusX
	case winner == entity.PlayerO:
		status = protocol.StatusO
	case that.board.IsFull():
		status = protocol.StatusDraw
	}

	if status.IsTerminal() {
		that.finished = true
		that.logger.Info("game finished", "status", status)
	}

	return status
}

func (that *Peer) reply(response protocol.Response) {
	frame, err := protocol.EncodeResponse(response)
	if err != nil {
		that.logger.Error("could not encode response", "error", err)
		return
	}

	that.logger.Debug("reply", "frame", string(frame))
	that.outbox.Write(frame)
}

// Board returns the peer's own view of the game.
func (that *Peer) Board() entity.Board {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.board
}
