package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var errMissingCommand = errors.New("missing command")

// Run is the CLI entry point. It takes explicit in/out/err streams and an
// env map rather than reading os.Stdin/os.Environ directly, so tests can
// drive it without touching the real environment.
func Run(in io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh chan os.Signal) int {
	if len(args) < 2 {
		printUsage(errOut)
		return 1
	}

	cmd := args[1]
	rest := args[2:]

	var err error
	switch cmd {
	case "mount":
		err = runMount(out, rest)
	case "open":
		err = runOpen(in, out, errOut, rest, sigCh)
	case "stat":
		err = runStat(out, rest)
	case "-h", "--help", "help":
		printUsage(out)
		return 0
	default:
		err = fmt.Errorf("%w: %q", errMissingCommand, cmd)
	}

	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  jb mount <physical-path> <logical-prefix> [--priority N]")
	fmt.Fprintln(w, "  jb open <mounts-file>")
	fmt.Fprintln(w, "  jb stat <physical-path>")
}
