package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jbstore/jbstore/internal/mountconfig"
	"github.com/jbstore/jbstore/pkg/pagevolume"
	"github.com/jbstore/jbstore/pkg/registry"
	"github.com/jbstore/jbstore/pkg/volume"
)

// runOpen opens (creating if absent) every physical volume referenced by
// the mounts file named in args[0] and drops into a liner-backed REPL over
// the resulting virtual volume.
func runOpen(in io.Reader, out, errOut io.Writer, args []string, sigCh chan os.Signal) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: jb open <mounts-file>")
	}

	cfg, err := mountconfig.Load(args[0])
	if err != nil {
		return err
	}
	if len(cfg.Mounts) == 0 {
		return fmt.Errorf("no mounts defined in %s; use 'jb mount' first", args[0])
	}

	reg := registry.NewRegistry()
	vv := volume.NewVirtualVolume()
	physicalByPath := make(map[string]*volume.PhysicalVolume, len(cfg.Mounts))

	var handles []registry.Handle
	defer func() {
		for _, h := range handles {
			_ = reg.Close(h)
		}
	}()

	for _, m := range cfg.Mounts {
		h, err := reg.OpenPhysicalVolume(m.PhysicalPath, m.Priority, pagevolume.DefaultConfig())
		if err != nil {
			return fmt.Errorf("opening physical volume %s: %w", m.PhysicalPath, err)
		}
		handles = append(handles, h)

		pv, err := reg.Physical(h)
		if err != nil {
			return err
		}

		vv.Mount(volume.NewMountPoint(pv, "/", nil, m.LogicalPrefix))
		physicalByPath[m.PhysicalPath] = pv
	}

	repl := &jbREPL{vv: vv, physicalByPath: physicalByPath, out: out, errOut: errOut}
	return repl.run(sigCh)
}

type jbREPL struct {
	vv             *volume.VirtualVolume
	physicalByPath map[string]*volume.PhysicalVolume
	out            io.Writer
	errOut         io.Writer
	liner          *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".jb_history")
}

func (r *jbREPL) run(sigCh chan os.Signal) error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(r.out, "jb - virtual volume REPL")
	fmt.Fprintln(r.out, "Commands: get <key> | put <key> <value> | del <key> | grow <mount-path> | stat | exit")

	for {
		line, err := r.liner.Prompt("jb> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		if r.dispatch(line) {
			break
		}
	}

	r.saveHistory()
	return nil
}

// dispatch runs one REPL command, returning true if the REPL should exit.
func (r *jbREPL) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "exit", "quit", "q":
		return true
	case "get":
		r.cmdGet(args)
	case "put":
		r.cmdPut(args)
	case "del", "delete":
		r.cmdDel(args)
	case "grow":
		r.cmdGrow(args)
	case "stat":
		r.cmdStat()
	default:
		fmt.Fprintf(r.out, "unknown command: %s\n", cmd)
	}
	return false
}

func (r *jbREPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(r.out, "usage: get <key>")
		return
	}
	value, err := r.vv.Get([]byte(args[0]))
	if err != nil {
		fmt.Fprintln(r.out, "error:", err)
		return
	}
	fmt.Fprintf(r.out, "%s\n", value)
}

func (r *jbREPL) cmdPut(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(r.out, "usage: put <key> <value>")
		return
	}
	if err := r.vv.Insert([]byte(args[0]), []byte(strings.Join(args[1:], " "))); err != nil {
		fmt.Fprintln(r.out, "error:", err)
		return
	}
	fmt.Fprintln(r.out, "ok")
}

func (r *jbREPL) cmdDel(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(r.out, "usage: del <key>")
		return
	}
	if err := r.vv.Delete([]byte(args[0])); err != nil {
		fmt.Fprintln(r.out, "error:", err)
		return
	}
	fmt.Fprintln(r.out, "ok")
}

func (r *jbREPL) cmdGrow(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(r.out, "usage: grow <mount-path>")
		return
	}
	pv, ok := r.physicalByPath[args[0]]
	if !ok {
		fmt.Fprintf(r.out, "no mounted physical volume at %s\n", args[0])
		return
	}
	newSize, err := pv.Grow()
	if err != nil {
		fmt.Fprintln(r.out, "error:", err)
		return
	}
	fmt.Fprintf(r.out, "grew to %d bytes\n", newSize)
}

func (r *jbREPL) cmdStat() {
	fmt.Fprintf(r.out, "status: %s\n", r.vv.Status())
}

// completer provides tab completion for REPL commands.
func (r *jbREPL) completer(line string) []string {
	commands := []string{"get", "put", "del", "delete", "grow", "stat", "exit", "quit"}

	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *jbREPL) saveHistory() {
	path := historyFile()
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = r.liner.WriteHistory(f)
}
