package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	bugserial "go.bug.st/serial"
)

const (
	DefaultBaudRate  = 115200
	DefaultOpenDelay = time.Second
)

// BaudRates are the rates the board firmware can be flashed with.
var BaudRates = []int{9600, 19200, 38400, 57600, 115200, 230400}

var (
	ErrPortUnavailable     = errors.New("serial port is not available")
	ErrUnsupportedBaudRate = errors.New("unsupported baud rate")
	ErrReadTimeout         = errors.New("serial read timed out")
	ErrClosed              = errors.New("serial port is closed")
)

// overridden in tests
var (
	openPort  = bugserial.Open
	listPorts = bugserial.GetPortsList
)

type Settings struct {
	Port     string
	BaudRate int
	// ReadTimeout bounds a single read. Zero blocks until data arrives.
	ReadTimeout time.Duration
	// OpenDelay is how long to wait after opening while the board reboots.
	OpenDelay time.Duration
}

func (that Settings) Validate() error {
	if that.Port == "" {
		return fmt.Errorf("%w: no port configured", ErrPortUnavailable)
	}

	if !slices.Contains(BaudRates, that.BaudRate) {
		return fmt.Errorf("%w: %d", ErrUnsupportedBaudRate, that.BaudRate)
	}

	if that.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout %s", that.ReadTimeout)
	}

	return nil
}

// Port is an 8N1 serial connection to the game board. It satisfies protocol.Transport.
type Port struct {
	logger   *slog.Logger
	settings Settings

	mu   sync.RWMutex
	port bugserial.Port
}

// Open opens the port, waits for the board to come up and drops whatever it printed
// while booting.
func Open(ctx context.Context, logger *slog.Logger, settings Settings) (*Port, error) {
	log := logger.With("component", "serial", "port", settings.Port)

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	port, err := openPort(settings.Port, &bugserial.Mode{
		BaudRate: settings.BaudRate,
		DataBits: 8,
		Parity:   bugserial.NoParity,
		StopBits: bugserial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", settings.Port, err)
	}

	timeout := bugserial.NoTimeout
	if settings.ReadTimeout > 0 {
		timeout = settings.ReadTimeout
	}

	if err = port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	if err = settle(ctx, settings.OpenDelay); err != nil {
		_ = port.Close()
		return nil, err
	}

	if err = port.ResetInputBuffer(); err != nil {
		log.Warn("could not discard boot output", "error", err)
	}

	log.Info("serial port opened", "baud-rate", settings.BaudRate, "read-timeout", settings.ReadTimeout)

	return &Port{
		logger:   log,
		settings: settings,
		port:     port,
	}, nil
}

func (that *Port) Name() string {
	return that.settings.Port
}

func (that *Port) IsOpen() bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.port != nil
}

// Read returns ErrReadTimeout when a read timeout is configured and no byte arrived in time.
func (that *Port) Read(p []byte) (int, error) {
	that.mu.RLock()
	port := that.port
	that.mu.RUnlock()

	if port == nil {
		return 0, ErrClosed
	}

	n, err := port.Read(p)
	if err != nil {
		return n, err
	}

	if n == 0 && len(p) > 0 {
		if that.settings.ReadTimeout > 0 {
			return 0, ErrReadTimeout
		}

		return 0, io.EOF
	}

	return n, nil
}

func (that *Port) Write(p []byte) (int, error) {
	that.mu.RLock()
	port := that.port
	that.mu.RUnlock()

	if port == nil {
		return 0, ErrClosed
	}

	return port.Write(p)
}

func (that *Port) Close() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.port == nil {
		return nil
	}

	err := that.port.Close()
	that.port = nil

	that.logger.Info("serial port closed")

	return err
}

// ListPorts returns the serial devices present on this machine.
func ListPorts() ([]string, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	return ports, nil
}

func settle(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
