package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/storyctx/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		// Commands print their own formatted output; anything surfacing
		// here without an exit code is flag or usage level.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
