package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-client/internal/config"
)

const defaultConfigFile = "config.yml"

type state struct {
	configPath string
	conf       *config.Config
	logger     *slog.Logger
}

// Root builds the tictactoe command tree.
func Root() *cobra.Command {
	st := &state{}

	root := &cobra.Command{
		Use:   "tictactoe",
		Short: "Play tic-tac-toe against a board on a serial port",
		Long: heredoc.Doc(`tictactoe is a client for a tic-tac-toe board that plays over
			a serial line. The board keeps the authoritative game and answers
			every request with an XML response.

			Settings are read from config.yml in the working directory unless
			--config points elsewhere; TICTACTOE_* environment variables
			override the file.`),
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.Load(resolveConfigPath(st.configPath))
			if err != nil {
				return err
			}

			st.conf = conf
			st.logger = initLogger(conf.LogLevel, cmd.ErrOrStderr())

			return nil
		},
	}

	root.PersistentFlags().StringVarP(&st.configPath, "config", "c", "", "path to the config file")

	root.AddCommand(st.play())
	root.AddCommand(st.load())
	root.AddCommand(st.ports())

	return root
}

// resolveConfigPath falls back to ./config.yml when it exists and to the
// environment alone when it does not.
func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}

	if _, err := os.Stat(defaultConfigFile); errors.Is(err, fs.ErrNotExist) {
		return ""
	}

	return defaultConfigFile
}

// initialize logger.
func initLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level

	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func unexpected(err error) error {
	return fmt.Errorf("tictactoe: %w", err)
}
