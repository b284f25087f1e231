package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	application "github.com/rocketscienceinc/tictactoe-client/internal"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// tictactoe play [mode]
func (that *state) play() *cobra.Command {
	var (
		emulate  bool
		port     string
		baudRate int
		settings string
	)

	cmd := &cobra.Command{
		Use:       "play [pvp|pvbot|botvbot]",
		Short:     "Connect to the board and play",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(entity.ModePvP), string(entity.ModePvBot), string(entity.ModeBotVBot)},
		Long: heredoc.Doc(`play connects to the board and opens the menu. Given a mode it
			starts that game right away.

			Moves are typed as "row col" with both numbers from 0 to 2. In a
			game, save stores the session, menu stores it and returns to the
			menu, and quit stores it and exits. In botvbot the board plays
			both sides and the client only watches.

			With --emulate the board is simulated in-process, so no device
			is needed.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := application.Options{
				Emulate: emulate,
				In:      cmd.InOrStdin(),
				Out:     cmd.OutOrStdout(),
			}

			if len(args) == 1 {
				mode, err := entity.ParseGameMode(args[0])
				if err != nil {
					return err
				}
				opts.Mode = mode
			}

			if cmd.Flags().Changed("port") {
				that.conf.Serial.Port = port
			}
			if cmd.Flags().Changed("baud-rate") {
				that.conf.Serial.BaudRate = baudRate
			}
			if cmd.Flags().Changed("settings") {
				that.conf.Serial.SettingsFile = settings
			}

			if err := that.conf.Validate(); err != nil {
				return err
			}

			if err := application.RunApp(that.logger, that.conf, opts); err != nil {
				return unexpected(err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&emulate, "emulate", "e", false, "play against an emulated board")
	cmd.Flags().StringVarP(&port, "port", "p", "", "serial port of the board")
	cmd.Flags().IntVarP(&baudRate, "baud-rate", "b", 0, "baud rate of the board")
	cmd.Flags().StringVarP(&settings, "settings", "s", "", "two-line connection settings file: port, then baud rate")

	return cmd
}
