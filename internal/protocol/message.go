package protocol

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// Frame is one complete message as it travels on the wire.
type Frame []byte

const (
	TypeMode     = "mode"
	TypeMove     = "move"
	TypeGameOver = "gameover"
	TypeError    = "error"

	defaultErrorMessage = "Unknown error"
)

// Request is an outbound message: ModeRequest or MoveRequest.
type Request interface {
	requestType() string
}

type ModeRequest struct {
	Mode entity.GameMode
}

type MoveRequest struct {
	Player entity.Mark
	X, Y   int
}

func (ModeRequest) requestType() string { return TypeMode }
func (MoveRequest) requestType() string { return TypeMove }

// Response is an inbound message. The set of implementations is closed:
// ModeAck, MoveResult, GameOver, ProtocolError and Unknown.
type Response interface {
	Discriminant() string
	sealed()
}

type ModeAck struct {
	Mode entity.GameMode
}

type MoveResult struct {
	Status Status
	X, Y   int
}

type GameOver struct {
	Status Status
}

type ProtocolError struct {
	Message string
}

// Unknown carries a response type this client does not handle.
type Unknown struct {
	Type string
}

func (ModeAck) Discriminant() string       { return TypeMode }
func (MoveResult) Discriminant() string    { return TypeMove }
func (GameOver) Discriminant() string      { return TypeGameOver }
func (ProtocolError) Discriminant() string { return TypeError }
func (that Unknown) Discriminant() string  { return that.Type }

func (ModeAck) sealed()       {}
func (MoveResult) sealed()    {}
func (GameOver) sealed()      {}
func (ProtocolError) sealed() {}
func (Unknown) sealed()       {}

// Status is the game status reported by the peer.
type Status string

const (
	StatusContinue Status = "Continue"
	StatusX        Status = "X"
	StatusO        Status = "O"
	StatusDraw     Status = "Draw"
)

func ParseStatus(name string) (Status, error) {
	switch status := Status(name); status {
	case StatusContinue, StatusX, StatusO, StatusDraw:
		return status, nil
	default:
		return "", fmt.Errorf("unknown status %q", name)
	}
}

// Result maps the status onto the game result it announces.
func (that Status) Result() entity.GameResult {
	switch that {
	case StatusX:
		return entity.Won(entity.PlayerX)
	case StatusO:
		return entity.Won(entity.PlayerO)
	case StatusDraw:
		return entity.Draw
	default:
		return entity.InProgress
	}
}

func (that Status) IsTerminal() bool {
	return that.Result().IsTerminal()
}
