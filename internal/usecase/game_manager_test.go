package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-client/internal/tictactoe"
)

var errLinkDown = errors.New("link down")

type fixture struct {
	link    *mockLink
	repo    *mockSessionRepo
	host    *mockHost
	manager *GameManager
	waits   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		link: &mockLink{},
		repo: &mockSessionRepo{},
		host: &mockHost{},
	}
	f.manager = NewGameManager(logger, f.link, tictactoe.NewDispatcher(logger), f.repo, f.host, time.Second)
	f.manager.wait = func(context.Context, time.Duration) error {
		f.waits++
		return nil
	}

	t.Cleanup(func() {
		f.link.AssertExpectations(t)
		f.repo.AssertExpectations(t)
		f.host.AssertExpectations(t)
	})

	return f
}

func (that *fixture) start(t *testing.T, mode entity.GameMode) {
	t.Helper()

	that.link.On("Send", protocol.ModeRequest{Mode: mode}).Return(nil).Once()
	that.link.On("Receive").Return(protocol.ModeAck{Mode: mode}, nil).Once()
	that.host.On("Refresh", mock.Anything).Once()

	_, err := that.manager.StartSession(mode)
	require.NoError(t, err)
}

func TestGameManager_StartSession(t *testing.T) {
	t.Run("Swaps in the acknowledged session", func(t *testing.T) {
		// Given: a peer that acknowledges pvbot
		f := newFixture(t)
		previous := f.manager.Game()
		f.link.On("Send", protocol.ModeRequest{Mode: entity.ModePvBot}).Return(nil).Once()
		f.link.On("Receive").Return(protocol.ModeAck{Mode: entity.ModePvBot}, nil).Once()
		f.host.On("Refresh", mock.Anything).Once()

		// When: starting a session
		outcome, err := f.manager.StartSession(entity.ModePvBot)

		// Then: a new running session replaces the old one
		require.NoError(t, err)
		assert.Equal(t, tictactoe.EffectShowBoard, outcome.Effect)
		assert.NotSame(t, previous, f.manager.Game())
		assert.Equal(t, entity.PhaseAwaitingMove, f.manager.Game().Phase())
	})

	t.Run("Keeps the old session when the peer refuses", func(t *testing.T) {
		// Given: a running pvp session and a peer that answers with an error
		f := newFixture(t)
		f.start(t, entity.ModePvP)
		running := f.manager.Game()

		f.link.On("Send", protocol.ModeRequest{Mode: entity.ModeBotVBot}).Return(nil).Once()
		f.link.On("Receive").Return(protocol.ProtocolError{Message: "busy"}, nil).Once()
		f.host.On("Notify", "busy").Once()

		// When: asking for a new mode
		outcome, err := f.manager.StartSession(entity.ModeBotVBot)

		// Then: the request is rejected and the pvp session stays
		require.ErrorIs(t, err, ErrModeRejected)
		assert.Equal(t, tictactoe.EffectPeerError, outcome.Effect)
		assert.Same(t, running, f.manager.Game())
	})

	t.Run("Rejects an unknown mode without traffic", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.manager.StartSession("chess")

		require.ErrorIs(t, err, entity.ErrUnknownGameMode)
	})

	t.Run("Surfaces transport errors", func(t *testing.T) {
		f := newFixture(t)
		f.link.On("Send", mock.Anything).Return(protocol.ErrNotConnected).Once()

		_, err := f.manager.StartSession(entity.ModePvP)

		require.ErrorIs(t, err, protocol.ErrNotConnected)
		assert.False(t, f.manager.Game().IsStarted())
	})
}

func TestGameManager_MakeTurn(t *testing.T) {
	t.Run("Places the local mark, then the bot reply", func(t *testing.T) {
		// Given: a pvbot session and a peer that answers with the bot's move
		f := newFixture(t)
		f.start(t, entity.ModePvBot)
		f.link.On("Send", protocol.MoveRequest{Player: entity.PlayerX, X: 1, Y: 1}).Return(nil).Once()
		f.link.On("Receive").Return(protocol.MoveResult{Status: protocol.StatusContinue, X: 0, Y: 0}, nil).Once()
		f.host.On("Refresh", mock.Anything).Once()

		// When: X plays the center
		outcome, err := f.manager.MakeTurn(1, 1)

		// Then: X is in the center, O in the corner and X moves again
		require.NoError(t, err)
		assert.Equal(t, tictactoe.EffectMoveApplied, outcome.Effect)
		game := f.manager.Game()
		board := game.Board()
		assert.Equal(t, entity.PlayerX, board.At(1, 1))
		assert.Equal(t, entity.PlayerO, board.At(0, 0))
		assert.Equal(t, entity.PlayerX, game.CurrentPlayer())
	})

	t.Run("Alternates players in pvp", func(t *testing.T) {
		// Given: a pvp session where the peer echoes moves
		f := newFixture(t)
		f.start(t, entity.ModePvP)
		f.host.On("Refresh", mock.Anything).Times(2)

		f.link.On("Send", protocol.MoveRequest{Player: entity.PlayerX, X: 0, Y: 0}).Return(nil).Once()
		f.link.On("Receive").Return(protocol.MoveResult{Status: protocol.StatusContinue, X: 0, Y: 0}, nil).Once()
		f.link.On("Send", protocol.MoveRequest{Player: entity.PlayerO, X: 2, Y: 2}).Return(nil).Once()
		f.link.On("Receive").Return(protocol.MoveResult{Status: protocol.StatusContinue, X: 2, Y: 2}, nil).Once()

		// When: two moves are played
		_, err := f.manager.MakeTurn(0, 0)
		require.NoError(t, err)
		_, err = f.manager.MakeTurn(2, 2)
		require.NoError(t, err)

		// Then: X and O each hold one cell and X is current again
		board := f.manager.Game().Board()
		assert.Equal(t, entity.PlayerX, board.At(0, 0))
		assert.Equal(t, entity.PlayerO, board.At(2, 2))
		assert.Equal(t, entity.PlayerX, f.manager.Game().CurrentPlayer())
	})

	t.Run("Finishes the game on a winning reply", func(t *testing.T) {
		// Given: X has two in the top row
		f := newFixture(t)
		f.start(t, entity.ModePvP)
		game := f.manager.Game()
		require.True(t, game.ApplyRemoteMove(entity.PlayerX, 0, 0))
		require.True(t, game.ApplyRemoteMove(entity.PlayerX, 0, 1))

		f.link.On("Send", protocol.MoveRequest{Player: entity.PlayerX, X: 0, Y: 2}).Return(nil).Once()
		f.link.On("Receive").Return(protocol.GameOver{Status: protocol.StatusX}, nil).Once()
		f.host.On("Refresh", mock.Anything).Once()

		// When: X completes the row
		outcome, err := f.manager.MakeTurn(0, 2)

		// Then: the mark is placed, X won and the turn does not pass
		require.NoError(t, err)
		assert.Equal(t, tictactoe.EffectGameOver, outcome.Effect)
		board := game.Board()
		assert.Equal(t, entity.PlayerX, board.At(0, 2))
		assert.Equal(t, entity.Won(entity.PlayerX), game.Result())
		assert.Equal(t, entity.PlayerX, game.CurrentPlayer())
	})

	t.Run("Rejects invalid moves before sending", func(t *testing.T) {
		f := newFixture(t)
		f.start(t, entity.ModePvP)
		require.True(t, f.manager.Game().ApplyRemoteMove(entity.PlayerO, 1, 1))

		_, err := f.manager.MakeTurn(1, 1)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)

		_, err = f.manager.MakeTurn(3, 0)
		require.ErrorIs(t, err, apperror.ErrInvalidCell)

		f.link.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("Rejects moves in a bot game", func(t *testing.T) {
		f := newFixture(t)
		f.start(t, entity.ModeBotVBot)

		_, err := f.manager.MakeTurn(0, 0)

		require.ErrorIs(t, err, apperror.ErrSessionObserved)
	})

	t.Run("Leaves the board alone on a peer error", func(t *testing.T) {
		// Given: the peer refuses the move
		f := newFixture(t)
		f.start(t, entity.ModePvP)
		f.link.On("Send", mock.Anything).Return(nil).Once()
		f.link.On("Receive").Return(protocol.ProtocolError{Message: "Invalid move"}, nil).Once()
		f.host.On("Notify", "Invalid move").Once()
		f.host.On("Refresh", mock.Anything).Once()

		// When: X plays
		outcome, err := f.manager.MakeTurn(0, 0)

		// Then: the message is surfaced and nothing is placed
		require.NoError(t, err)
		assert.Equal(t, tictactoe.EffectPeerError, outcome.Effect)
		board := f.manager.Game().Board()
		assert.True(t, board.IsEmpty(0, 0))
		assert.Equal(t, entity.PlayerX, f.manager.Game().CurrentPlayer())
	})

	t.Run("Leaves the board alone on a malformed reply", func(t *testing.T) {
		f := newFixture(t)
		f.start(t, entity.ModePvP)
		decodeErr := &protocol.BadFieldError{Field: "move.x", Value: "9"}
		f.link.On("Send", mock.Anything).Return(nil).Once()
		f.link.On("Receive").Return(nil, decodeErr).Once()
		f.host.On("Notify", mock.Anything).Once()

		_, err := f.manager.MakeTurn(0, 0)

		require.ErrorIs(t, err, protocol.ErrBadField)
		board := f.manager.Game().Board()
		assert.True(t, board.IsEmpty(0, 0))
	})
}

func TestGameManager_ObserveBots(t *testing.T) {
	t.Run("Stops on the first terminal status", func(t *testing.T) {
		// Given: a bot game whose peer reports Continue, Continue, X
		f := newFixture(t)
		f.start(t, entity.ModeBotVBot)
		f.link.On("Receive").Return(protocol.MoveResult{Status: protocol.StatusContinue, X: 0, Y: 0}, nil).Once()
		f.link.On("Receive").Return(protocol.MoveResult{Status: protocol.StatusContinue, X: 1, Y: 1}, nil).Once()
		f.link.On("Receive").Return(protocol.MoveResult{Status: protocol.StatusX, X: 2, Y: 2}, nil).Once()
		f.host.On("SetExitEnabled", false).Once()
		f.host.On("Refresh", mock.Anything).Times(3)
		f.host.On("SetExitEnabled", true).Once()

		// When: observing the bots
		err := f.manager.ObserveBots(context.Background())

		// Then: exactly three ticks ran and X won
		require.NoError(t, err)
		assert.Equal(t, 3, f.waits)
		f.link.AssertNumberOfCalls(t, "Receive", 4)
		assert.Equal(t, entity.Won(entity.PlayerX), f.manager.Game().Result())
	})

	t.Run("Drops undecodable frames and keeps polling", func(t *testing.T) {
		f := newFixture(t)
		f.start(t, entity.ModeBotVBot)
		f.link.On("Receive").Return(nil, protocol.ErrMalformed).Once()
		f.link.On("Receive").Return(protocol.GameOver{Status: protocol.StatusDraw}, nil).Once()
		f.host.On("SetExitEnabled", false).Once()
		f.host.On("Notify", mock.Anything).Once()
		f.host.On("Refresh", mock.Anything).Once()
		f.host.On("SetExitEnabled", true).Once()

		err := f.manager.ObserveBots(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, f.waits)
		assert.Equal(t, entity.Draw, f.manager.Game().Result())
	})

	t.Run("Stops on a transport failure and re-enables exit", func(t *testing.T) {
		f := newFixture(t)
		f.start(t, entity.ModeBotVBot)
		f.link.On("Receive").Return(nil, &protocol.TransportError{Op: "read", Err: errLinkDown}).Once()
		f.host.On("SetExitEnabled", false).Once()
		f.host.On("SetExitEnabled", true).Once()

		err := f.manager.ObserveBots(context.Background())

		require.ErrorIs(t, err, protocol.ErrTransport)
		require.ErrorIs(t, err, errLinkDown)
		assert.False(t, f.manager.Game().IsFinished())
	})

	t.Run("Stops between ticks when cancelled", func(t *testing.T) {
		// Given: a bot game and a context cancelled after the first tick
		f := newFixture(t)
		f.start(t, entity.ModeBotVBot)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		f.link.On("Receive").
			Return(protocol.MoveResult{Status: protocol.StatusContinue, X: 0, Y: 0}, nil).
			Run(func(mock.Arguments) { cancel() }).
			Once()
		f.host.On("SetExitEnabled", false).Once()
		f.host.On("Refresh", mock.Anything).Once()
		f.host.On("SetExitEnabled", true).Once()

		// When: observing
		err := f.manager.ObserveBots(ctx)

		// Then: the loop returns the cancellation after one tick
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, f.waits)
	})

	t.Run("Refuses sessions that are not bot games", func(t *testing.T) {
		f := newFixture(t)
		f.start(t, entity.ModePvP)

		err := f.manager.ObserveBots(context.Background())

		require.ErrorIs(t, err, ErrNotObserving)
	})
}

func TestGameManager_SaveLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves the running session", func(t *testing.T) {
		f := newFixture(t)
		f.start(t, entity.ModePvBot)
		f.repo.On("Save", ctx, mock.AnythingOfType("entity.Snapshot")).Return(nil).Once()

		require.NoError(t, f.manager.Save(ctx))
	})

	t.Run("Refuses to save without a session", func(t *testing.T) {
		f := newFixture(t)

		err := f.manager.Save(ctx)

		require.ErrorIs(t, err, apperror.ErrNoSession)
	})

	t.Run("Loads a stored session", func(t *testing.T) {
		// Given: a stored pvp game with O to move
		f := newFixture(t)
		f.repo.On("Load", ctx).Return(entity.Snapshot{
			Board:         []string{"X, , ", " , , ", " , , "},
			CurrentPlayer: "O",
			GameResult:    " ",
			GameMode:      "pvp",
		}, nil).Once()
		f.host.On("Refresh", mock.Anything).Once()

		// When: loading it
		err := f.manager.Load(ctx)

		// Then: the session resumes with O
		require.NoError(t, err)
		game := f.manager.Game()
		assert.Equal(t, entity.PlayerO, game.CurrentPlayer())
		assert.Equal(t, entity.PhaseAwaitingMove, game.Phase())
	})

	t.Run("Keeps the session when the snapshot is invalid", func(t *testing.T) {
		f := newFixture(t)
		f.start(t, entity.ModePvP)
		running := f.manager.Game()
		f.repo.On("Load", ctx).Return(entity.Snapshot{Board: []string{"X"}}, nil).Once()

		err := f.manager.Load(ctx)

		require.ErrorIs(t, err, entity.ErrInvalidSnapshot)
		assert.Same(t, running, f.manager.Game())
	})
}
