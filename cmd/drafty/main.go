package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/cli"
)

func main() {
	os.Exit(run(os.Stderr))
}

// run executes the root command and returns the process exit code.
func run(stderr io.Writer) int {
	err := cli.Execute()
	if err == nil {
		return 0
	}
	return report(stderr, err)
}

func report(w io.Writer, err error) int {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	var cliErr *cli.CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Hint != "" {
			_, _ = fmt.Fprintf(w, "Hint: %s\n", cliErr.Hint)
		}
		return cliErr.ExitCode
	}
	return 1
}
