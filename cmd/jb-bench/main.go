// Command jb-bench drives a concurrent GetPage/Lock/Unlock workload
// against a scratch volume and reports throughput. It runs the workload
// in-process across goroutines rather than shelling out to an external
// benchmarking tool, since pagevolume.File is a library, not a CLI.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jbstore/jbstore/pkg/pagevolume"
)

// Config holds the benchmark's tunable parameters.
type Config struct {
	Path       string
	Pages      int
	Workers    int
	Duration   time.Duration
	VerifyOnly bool
}

// Result reports one benchmark run's throughput and the outcome of the
// round-trip properties it verifies alongside the throughput loop.
type Result struct {
	Ops             uint64
	Elapsed         time.Duration
	RoundTripOK     bool
	ReopenRoundTrip bool
}

func main() {
	cfg := Config{}

	flag.StringVar(&cfg.Path, "path", filepath.Join(os.TempDir(), "jb-bench.jb"), "scratch volume path")
	flag.IntVar(&cfg.Pages, "pages", 8, "number of distinct pages to contend over")
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "number of concurrent workers")
	flag.DurationVar(&cfg.Duration, "duration", 2*time.Second, "how long to run the throughput loop")
	flag.BoolVar(&cfg.VerifyOnly, "verify-only", false, "skip the throughput loop, only check round-trip properties")

	flag.Parse()

	if err := run(cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfg Config, out *os.File) error {
	_ = os.Remove(cfg.Path)
	defer os.Remove(cfg.Path)

	result, err := benchmark(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "workers: %d\n", cfg.Workers)
	fmt.Fprintf(out, "pages: %d\n", cfg.Pages)

	if !cfg.VerifyOnly {
		fmt.Fprintf(out, "ops: %d\n", result.Ops)
		fmt.Fprintf(out, "elapsed: %s\n", result.Elapsed)
		fmt.Fprintf(out, "ops/sec: %.0f\n", float64(result.Ops)/result.Elapsed.Seconds())
	}

	fmt.Fprintf(out, "round_trip_within_session: %v\n", result.RoundTripOK)
	fmt.Fprintf(out, "round_trip_across_reopen: %v\n", result.ReopenRoundTrip)

	return nil
}

// benchmark opens a scratch volume, grows it to cfg.Pages pages, then
// verifies the two round-trip properties from the testable-properties
// section (within-session and across-reopen) before optionally running
// the concurrent get/lock/unlock throughput loop.
func benchmark(cfg Config) (Result, error) {
	file, err := pagevolume.Open(cfg.Path, pagevolume.DefaultConfig())
	if err != nil {
		return Result{}, fmt.Errorf("opening scratch volume: %w", err)
	}

	pageSize := file.PageSize()

	for file.Size() < uint64(cfg.Pages)*pageSize {
		if _, err := file.Grow(); err != nil {
			file.Close()
			return Result{}, fmt.Errorf("growing scratch volume: %w", err)
		}
	}

	roundTripOK, err := verifyWithinSessionRoundTrip(file, pageSize)
	if err != nil {
		file.Close()
		return Result{}, err
	}

	if err := file.Close(); err != nil {
		return Result{}, fmt.Errorf("closing scratch volume: %w", err)
	}

	reopenOK, err := verifyReopenRoundTrip(cfg.Path, pageSize)
	if err != nil {
		return Result{}, err
	}

	result := Result{RoundTripOK: roundTripOK, ReopenRoundTrip: reopenOK}

	if cfg.VerifyOnly {
		return result, nil
	}

	file, err = pagevolume.Open(cfg.Path, pagevolume.DefaultConfig())
	if err != nil {
		return Result{}, fmt.Errorf("reopening for throughput loop: %w", err)
	}
	defer file.Close()

	ops, elapsed := runThroughputLoop(file, cfg)
	result.Ops = ops
	result.Elapsed = elapsed

	return result, nil
}

// verifyWithinSessionRoundTrip checks property 8: writing a byte pattern
// through MP.data(), unlocking, dropping, then reacquiring and rereading
// yields the same bytes.
func verifyWithinSessionRoundTrip(file *pagevolume.File, pageSize uint64) (bool, error) {
	page, err := file.GetPage(0)
	if err != nil {
		return false, fmt.Errorf("mapping page 0: %w", err)
	}

	data, err := page.Lock()
	if err != nil {
		page.Release()
		return false, fmt.Errorf("locking page 0: %w", err)
	}

	for i := range data {
		data[i] = byte(i % 256)
	}

	page.Unlock()
	page.Release()

	page, err = file.GetPage(0)
	if err != nil {
		return false, fmt.Errorf("re-mapping page 0: %w", err)
	}
	defer page.Release()

	data, err = page.Lock()
	if err != nil {
		return false, fmt.Errorf("re-locking page 0: %w", err)
	}
	defer page.Unlock()

	for i, b := range data[:min(len(data), 256*4)] {
		if b != byte(i%256) {
			return false, nil
		}
	}

	return true, nil
}

// verifyReopenRoundTrip checks property 9: reopening the file in a fresh
// File after closing reproduces the previously written contents.
func verifyReopenRoundTrip(path string, pageSize uint64) (bool, error) {
	file, err := pagevolume.Open(path, pagevolume.DefaultConfig())
	if err != nil {
		return false, fmt.Errorf("reopening scratch volume: %w", err)
	}
	defer file.Close()

	page, err := file.GetPage(0)
	if err != nil {
		return false, fmt.Errorf("mapping page 0 after reopen: %w", err)
	}
	defer page.Release()

	data, err := page.Lock()
	if err != nil {
		return false, fmt.Errorf("locking page 0 after reopen: %w", err)
	}
	defer page.Unlock()

	for i, b := range data[:min(len(data), 256*4)] {
		if b != byte(i%256) {
			return false, nil
		}
	}

	return true, nil
}

// runThroughputLoop spawns cfg.Workers goroutines, each repeatedly
// acquiring a mapped page at a pseudo-random offset within cfg.Pages,
// locking it, touching a byte, unlocking, and releasing, for cfg.Duration.
func runThroughputLoop(file *pagevolume.File, cfg Config) (uint64, time.Duration) {
	var ops uint64
	var wg sync.WaitGroup

	stop := make(chan struct{})
	start := time.Now()

	pageSize := file.PageSize()

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()

			state := uint64(seed*2654435761 + 1)

			for {
				select {
				case <-stop:
					return
				default:
				}

				state = state*6364136223846793005 + 1442695040888963407
				offset := (state % uint64(cfg.Pages)) * pageSize

				page, err := file.GetPage(offset)
				if err != nil {
					continue
				}

				data, err := page.Lock()
				if err == nil {
					data[0]++
					page.Unlock()
				}
				page.Release()

				atomic.AddUint64(&ops, 1)
			}
		}(w)
	}

	time.Sleep(cfg.Duration)
	close(stop)
	wg.Wait()

	return atomic.LoadUint64(&ops), time.Since(start)
}
