package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tictactoe-client/internal/transport/serial"
)

const (
	StorageFile  = "file"
	StorageRedis = "redis"

	sessionFileName = "game_state.xml"
)

var (
	ErrUnknownStorage  = errors.New("unknown session storage")
	ErrUnknownLogLevel = errors.New("unknown log level")
)

type Config struct {
	LogLevel string  `yaml:"log-level" env:"TICTACTOE_LOG_LEVEL" env-default:"info"`
	Serial   Serial  `yaml:"serial"`
	Session  Session `yaml:"session"`
	Bot      Bot     `yaml:"bot"`
}

type Serial struct {
	Port         string        `yaml:"port" env:"TICTACTOE_SERIAL_PORT"`
	BaudRate     int           `yaml:"baud-rate" env:"TICTACTOE_BAUD_RATE" env-default:"115200"`
	ReadTimeout  time.Duration `yaml:"read-timeout" env-default:"0s"`
	OpenDelay    time.Duration `yaml:"open-delay" env-default:"1s"`
	SettingsFile string        `yaml:"settings-file" env:"TICTACTOE_SETTINGS_FILE"`
}

type Session struct {
	Storage string `yaml:"storage" env:"TICTACTOE_SESSION_STORAGE" env-default:"file"`
	File    string `yaml:"file" env:"TICTACTOE_SESSION_FILE"`
	Redis   Redis  `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
	Key  string `yaml:"key" env-default:"tictactoe:session"`
}

type Bot struct {
	PollInterval time.Duration `yaml:"poll-interval" env-default:"1s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads path when it is given and falls back to the environment otherwise.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(config)
	} else {
		err = cleanenv.ReadConfig(path, config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if config.Session.File == "" {
		config.Session.File = DefaultSessionFile()
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, that.LogLevel)
	}

	if !slices.Contains(serial.BaudRates, that.Serial.BaudRate) {
		return fmt.Errorf("%w: %d", serial.ErrUnsupportedBaudRate, that.Serial.BaudRate)
	}

	switch that.Session.Storage {
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Session.Storage)
	}

	return nil
}

// DefaultSessionFile is the session file under the user's data directory.
func DefaultSessionFile() string {
	return filepath.Join(xdg.DataHome, "tictactoe", sessionFileName)
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
