package cmd

import (
	"github.com/spf13/cobra"

	application "github.com/rocketscienceinc/tictactoe-client/internal"
)

// tictactoe load
func (that *state) load() *cobra.Command {
	var emulate bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Resume the saved game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := application.RunApp(that.logger, that.conf, application.Options{
				Emulate: emulate,
				Load:    true,
				In:      cmd.InOrStdin(),
				Out:     cmd.OutOrStdout(),
			})
			if err != nil {
				return unexpected(err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&emulate, "emulate", "e", false, "play against an emulated board")

	return cmd
}
