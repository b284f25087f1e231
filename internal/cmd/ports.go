package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-client/internal/transport/serial"
)

// listPorts is replaced in tests.
var listPorts = serial.ListPorts

// tictactoe ports
func (that *state) ports() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List the serial ports the board could be on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := listPorts()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(ports) == 0 {
				fmt.Fprintln(out, "No serial ports found.")
				return nil
			}

			for i, port := range ports {
				fmt.Fprintf(out, "%d: %s\n", i+1, port)
			}

			that.logger.Debug("listed serial ports", "count", len(ports))

			return nil
		},
	}
}
