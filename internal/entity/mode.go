package entity

import (
	"errors"
	"fmt"
)

// GameMode selects who sits in each seat for the lifetime of one session.
type GameMode string

const (
	ModePvP     GameMode = "pvp"
	ModePvBot   GameMode = "pvbot"
	ModeBotVBot GameMode = "botvbot"
)

var ErrUnknownGameMode = errors.New("unknown game mode")

func ParseGameMode(name string) (GameMode, error) {
	mode := GameMode(name)
	if !mode.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownGameMode, name)
	}
	return mode, nil
}

func (that GameMode) IsValid() bool {
	switch that {
	case ModePvP, ModePvBot, ModeBotVBot:
		return true
	default:
		return false
	}
}

// IsObserved reports whether neither seat is driven by local input.
func (that GameMode) IsObserved() bool {
	return that == ModeBotVBot
}
