package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-client/internal/tictactoe"
)

const DefaultPollInterval = time.Second

var (
	ErrModeRejected = errors.New("mode was not accepted")
	ErrNotObserving = errors.New("session is not a bot game")
)

type link interface {
	Send(request protocol.Request) error
	Receive() (protocol.Response, error)
}

type sessionRepo interface {
	Save(ctx context.Context, snapshot entity.Snapshot) error
	Load(ctx context.Context) (entity.Snapshot, error)
}

// host is the surface the session is shown on.
type host interface {
	Refresh(game *entity.Game)
	Notify(message string)
	SetExitEnabled(enabled bool)
}

// GameManager drives one client session: mode selection, human turns and bot
// observation. It keeps at most one request in flight and is not safe for concurrent use.
type GameManager struct {
	logger     *slog.Logger
	link       link
	dispatcher *tictactoe.Dispatcher
	repo       sessionRepo
	host       host

	pollInterval time.Duration
	wait         func(ctx context.Context, d time.Duration) error

	game *entity.Game
}

func NewGameManager(
	logger *slog.Logger,
	link link,
	dispatcher *tictactoe.Dispatcher,
	repo sessionRepo,
	host host,
	pollInterval time.Duration,
) *GameManager {
	if pollInterval < 0 {
		pollInterval = DefaultPollInterval
	}

	return &GameManager{
		logger:     logger.With("component", "game-manager"),
		link:       link,
		dispatcher: dispatcher,
		repo:       repo,
		host:       host,

		pollInterval: pollInterval,
		wait:         sleep,

		game: entity.NewGame(),
	}
}

// Game returns the current session. It is never nil.
func (that *GameManager) Game() *entity.Game {
	return that.game
}

// StartSession asks the peer for a mode and replaces the current session once the
// peer acknowledges it. On any other reply the old session is kept.
func (that *GameManager) StartSession(mode entity.GameMode) (tictactoe.Outcome, error) {
	log := that.logger.With("method", "StartSession", "mode", mode)

	if !mode.IsValid() {
		return tictactoe.Outcome{}, fmt.Errorf("%w: %q", entity.ErrUnknownGameMode, mode)
	}

	if err := that.link.Send(protocol.ModeRequest{Mode: mode}); err != nil {
		return tictactoe.Outcome{}, fmt.Errorf("failed to send mode: %w", err)
	}

	response, err := that.link.Receive()
	if err != nil {
		return tictactoe.Outcome{}, fmt.Errorf("failed to receive mode acknowledgement: %w", err)
	}

	fresh := entity.NewGame()

	outcome := that.dispatcher.Dispatch(fresh, response)
	switch outcome.Effect {
	case tictactoe.EffectShowBoard, tictactoe.EffectStartBotLoop:
	case tictactoe.EffectPeerError:
		that.host.Notify(outcome.Message)
		return outcome, fmt.Errorf("%w: %s", ErrModeRejected, outcome.Message)
	default:
		return outcome, fmt.Errorf("%w: got %s response", ErrModeRejected, response.Discriminant())
	}

	that.game = fresh
	that.host.Refresh(that.game)

	log.Info("session started", "effect", outcome.Effect.String())

	return outcome, nil
}

// MakeTurn plays (x, y) for the current player. Invalid moves are rejected before
// anything is sent. The local mark is only committed when the peer answers with a
// move or game over; the reply is dispatched before the turn passes.
func (that *GameManager) MakeTurn(x, y int) (tictactoe.Outcome, error) {
	log := that.logger.With("method", "MakeTurn", "x", x, "y", y)

	game := that.game
	if game.Phase() == entity.PhaseBotObserving {
		return tictactoe.Outcome{}, apperror.ErrSessionObserved
	}

	if err := game.CheckLocalMove(x, y); err != nil {
		return tictactoe.Outcome{}, err
	}

	player := game.CurrentPlayer()
	if err := that.link.Send(protocol.MoveRequest{Player: player, X: x, Y: y}); err != nil {
		return tictactoe.Outcome{}, fmt.Errorf("failed to send move: %w", err)
	}

	response, err := that.link.Receive()
	if err != nil {
		if protocol.IsDecodeError(err) {
			that.host.Notify(err.Error())
		}

		return tictactoe.Outcome{}, fmt.Errorf("failed to receive move result: %w", err)
	}

	var outcome tictactoe.Outcome

	switch response.(type) {
	case protocol.MoveResult, protocol.GameOver:
		err = game.ApplyLocalMove(x, y, func(g *entity.Game) {
			outcome = that.dispatcher.Dispatch(g, response)
		})
		if err != nil {
			return tictactoe.Outcome{}, fmt.Errorf("failed to apply move: %w", err)
		}
	default:
		outcome = that.dispatcher.Dispatch(game, response)
	}

	if outcome.Effect == tictactoe.EffectPeerError {
		that.host.Notify(outcome.Message)
	}

	that.host.Refresh(game)

	log.Debug("turn finished", "player", player, "effect", outcome.Effect.String(), "result", game.Result().String())

	return outcome, nil
}

// ObserveBots polls the peer for bot moves until the game ends. Each tick checks ctx,
// waits for the poll interval and reads exactly one response. Frames that fail to
// decode are dropped and polling goes on; transport failures stop the loop.
// Exiting is disabled on the host while the loop runs.
func (that *GameManager) ObserveBots(ctx context.Context) error {
	log := that.logger.With("method", "ObserveBots")

	game := that.game
	if game.Phase() != entity.PhaseBotObserving {
		return ErrNotObserving
	}

	that.host.SetExitEnabled(false)
	defer that.host.SetExitEnabled(true)

	for ticks := 1; !game.IsFinished(); ticks++ {
		if err := ctx.Err(); err != nil {
			log.Info("observation cancelled", "ticks", ticks-1)
			return err
		}

		if err := that.wait(ctx, that.pollInterval); err != nil {
			log.Info("observation cancelled", "ticks", ticks-1)
			return err
		}

		response, err := that.link.Receive()
		if err != nil {
			if protocol.IsDecodeError(err) {
				log.Warn("skipping undecodable frame", "tick", ticks, "error", err)
				that.host.Notify(err.Error())

				continue
			}

			return fmt.Errorf("failed to receive bot move: %w", err)
		}

		outcome := that.dispatcher.Dispatch(game, response)
		if outcome.Effect == tictactoe.EffectPeerError {
			that.host.Notify(outcome.Message)
		}

		that.host.Refresh(game)

		log.Debug("tick", "tick", ticks, "effect", outcome.Effect.String())
	}

	log.Info("bot game finished", "result", game.Result().String())

	return nil
}

// Save stores the current session.
func (that *GameManager) Save(ctx context.Context) error {
	snapshot, err := that.game.Snapshot()
	if err != nil {
		return err
	}

	if err = that.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Load replaces the current session with the stored one. A snapshot that does not
// validate leaves the current session untouched.
func (that *GameManager) Load(ctx context.Context) error {
	snapshot, err := that.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	game := entity.NewGame()
	if err = game.Restore(snapshot); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	that.game = game
	that.host.Refresh(game)

	that.logger.Info("session loaded", "mode", game.Mode(), "phase", game.Phase().String())

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
