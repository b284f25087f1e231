package entity

import (
	"errors"
	"fmt"
)

// Mark is the content of a board cell. PlayerX and PlayerO double as the two seats.
type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

var ErrUnknownPlayer = errors.New("unknown player")

func ParsePlayer(name string) (Mark, error) {
	switch Mark(name) {
	case PlayerX, PlayerO:
		return Mark(name), nil
	default:
		return EmptyCell, fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
	}
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent returns the other seat. It is only meaningful for PlayerX and PlayerO.
func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Mark) String() string {
	if that == EmptyCell {
		return " "
	}
	return string(that)
}
