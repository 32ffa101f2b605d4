package main

import (
	"fmt"
	"os"

	"github.com/freenote/freenote/internal/cli"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.App{
		// Detect interactive terminal for the bare command.
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	defer app.Close()

	return cli.NewRootCmd(app).Execute()
}
