package main

import (
	"fmt"
	"io"

	"github.com/jbstore/jbstore/pkg/pagevolume"
	"github.com/jbstore/jbstore/pkg/volume"
)

// runStat prints size, page_size, and cache size/used counters for a
// single physical volume without otherwise mutating it (opening it does
// auto-create and auto-grow-to-one-page a nonexistent file, matching
// pagevolume.Open's own contract).
func runStat(out io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: jb stat <physical-path>")
	}

	pv, err := volume.OpenPhysicalVolume(args[0], 0, pagevolume.DefaultConfig())
	if err != nil {
		return err
	}
	defer pv.Close()

	fmt.Fprintf(out, "path: %s\n", pv.Path())
	fmt.Fprintf(out, "size: %d\n", pv.Size())
	fmt.Fprintf(out, "page_size: %d\n", pv.PageSize())
	fmt.Fprintf(out, "cache_size: %d\n", pv.CacheSize())
	fmt.Fprintf(out, "cache_used: %d\n", pv.CacheUsed())

	return nil
}
