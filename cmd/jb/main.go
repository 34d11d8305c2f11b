// Command jb is a CLI front end over pkg/registry, pkg/volume and
// pkg/pagevolume: it opens and mounts storage volumes, and offers an
// interactive REPL for inspecting and modifying a single volume's
// contents. main collects the process environment and signal channel and
// delegates everything else to Run.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	os.Exit(Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env, sigCh))
}
