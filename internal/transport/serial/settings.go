package serial

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

var ErrInvalidSettingsFile = errors.New("invalid connection settings file")

// LoadSettingsFile reads a two-line settings file: the port name, then the baud rate.
// The port has to be one of the available ports.
func LoadSettingsFile(path string, available []string) (Settings, error) {
	file, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to open settings file: %w", err)
	}
	defer file.Close()

	lines := make([]string, 0, 2)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() && len(lines) < 2 {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}

	if err = scanner.Err(); err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	if len(lines) < 2 || lines[0] == "" {
		return Settings{}, fmt.Errorf("%w: %s: expected a port and a baud rate", ErrInvalidSettingsFile, path)
	}

	baudRate, err := strconv.Atoi(lines[1])
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %s: baud rate %q", ErrInvalidSettingsFile, path, lines[1])
	}

	if !slices.Contains(available, lines[0]) {
		return Settings{}, fmt.Errorf("%w: %s", ErrPortUnavailable, lines[0])
	}

	settings := Settings{
		Port:      lines[0],
		BaudRate:  baudRate,
		OpenDelay: DefaultOpenDelay,
	}

	if err = settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}
