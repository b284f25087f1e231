package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/config"
	"github.com/rocketscienceinc/tictactoe-client/internal/console"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/peer"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-client/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/serial"
	"github.com/rocketscienceinc/tictactoe-client/internal/usecase"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type transport interface {
	protocol.Transport
	io.Closer
}

type sessionRepo interface {
	Save(ctx context.Context, snapshot entity.Snapshot) error
	Load(ctx context.Context) (entity.Snapshot, error)
}

// Options selects how a run starts. Zero values open the configured serial port and
// show the menu.
type Options struct {
	// Emulate plays against an in-process board instead of the serial port.
	Emulate bool
	// Mode starts a session in this mode right away.
	Mode entity.GameMode
	// Load resumes the saved session right away.
	Load bool

	In  io.Reader
	Out io.Writer
}

// RunApp - runs the client until the user quits or a signal arrives.
func RunApp(logger *slog.Logger, conf *config.Config, opts Options) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	conn, err := openTransport(ctx, logger, conf, opts.Emulate)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			log.Error("could not close transport", "error", closeErr)
		}
	}()

	repo, closeRepo, err := openSessionRepo(ctx, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	host := console.New(logger, io.MultiReader(strings.NewReader(startupCommands(opts)), in), out)
	dispatcher := tictactoe.NewDispatcher(logger)
	gameManager := usecase.NewGameManager(logger, protocol.NewLink(logger, conn), dispatcher, repo, host, conf.Bot.PollInterval)

	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- host.Run(ctx, gameManager)
	}()

	select {
	case err = <-runErrCh:
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func startupCommands(opts Options) string {
	switch {
	case opts.Load:
		return "load\n"
	case opts.Mode != "":
		return string(opts.Mode) + "\n"
	default:
		return ""
	}
}

func openTransport(ctx context.Context, logger *slog.Logger, conf *config.Config, emulate bool) (transport, error) {
	if emulate {
		logger.Info("playing against the emulated board")
		return peer.New(logger, time.Now().UnixNano()), nil
	}

	settings := serial.Settings{
		Port:        conf.Serial.Port,
		BaudRate:    conf.Serial.BaudRate,
		ReadTimeout: conf.Serial.ReadTimeout,
		OpenDelay:   conf.Serial.OpenDelay,
	}

	if conf.Serial.SettingsFile != "" {
		ports, err := serial.ListPorts()
		if err != nil {
			return nil, err
		}

		fromFile, err := serial.LoadSettingsFile(conf.Serial.SettingsFile, ports)
		if err != nil {
			return nil, fmt.Errorf("could not use connection settings: %w", err)
		}

		settings.Port = fromFile.Port
		settings.BaudRate = fromFile.BaudRate
	}

	port, err := serial.Open(ctx, logger, settings)
	if err != nil {
		return nil, fmt.Errorf("could not connect to the board: %w", err)
	}

	return port, nil
}

func openSessionRepo(ctx context.Context, conf *config.Config) (sessionRepo, func(), error) {
	if conf.Session.Storage != config.StorageRedis {
		return repository.NewFileSessionRepository(conf.Session.File), func() {}, nil
	}

	redisAddrString := conf.Session.Redis.GetRedisAddr()
	if conf.Session.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeRepo := func() {
		_ = redisStorage.Close()
	}

	return repository.NewRedisSessionRepository(redisStorage.Connection, conf.Session.Redis.Key), closeRepo, nil
}
