package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/jbstore/jbstore/internal/mountconfig"
)

// runMount registers a mount point in the project's .jb.json.
func runMount(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("mount", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	priority := fs.Int("priority", 0, "mount priority, higher wins ties")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: jb mount <physical-path> <logical-prefix> [--priority N]")
	}

	physicalPath := fs.Arg(0)
	logicalPrefix := fs.Arg(1)

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg, path, err := mountconfig.LoadDir(workDir)
	if err != nil {
		return err
	}

	cfg.AddMount(mountconfig.Mount{
		PhysicalPath:  physicalPath,
		LogicalPrefix: logicalPrefix,
		Priority:      *priority,
	})

	if err := mountconfig.Save(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "mounted %s at %s (priority %d)\n", physicalPath, logicalPrefix, *priority)
	return nil
}
