package main

import (
	"fmt"
	"os"

	"github.com/rocketscienceinc/tictactoe-client/internal/cmd"
)

// main - is the entry point of the application. It runs the command line and exits non-zero on failure.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	root := cmd.Root()
	root.SetArgs(os.Args[1:])

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
