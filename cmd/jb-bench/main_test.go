package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBenchmark_VerifyOnlyChecksRoundTripProperties(t *testing.T) {
	cfg := Config{
		Path:       filepath.Join(t.TempDir(), "bench.jb"),
		Pages:      4,
		Workers:    2,
		VerifyOnly: true,
	}

	result, err := benchmark(cfg)
	if err != nil {
		t.Fatalf("benchmark: %v", err)
	}

	if !result.RoundTripOK {
		t.Error("expected within-session round trip to hold")
	}
	if !result.ReopenRoundTrip {
		t.Error("expected across-reopen round trip to hold")
	}
}

func TestBenchmark_ThroughputLoopProducesOps(t *testing.T) {
	cfg := Config{
		Path:     filepath.Join(t.TempDir(), "bench.jb"),
		Pages:    4,
		Workers:  4,
		Duration: 50 * time.Millisecond,
	}

	result, err := benchmark(cfg)
	if err != nil {
		t.Fatalf("benchmark: %v", err)
	}

	if result.Ops == 0 {
		t.Error("expected at least one op to complete")
	}
	if !result.RoundTripOK || !result.ReopenRoundTrip {
		t.Error("expected both round-trip properties to hold")
	}
}

func TestRun_WritesReportToOutput(t *testing.T) {
	cfg := Config{
		Path:       filepath.Join(t.TempDir(), "bench.jb"),
		Pages:      2,
		Workers:    1,
		VerifyOnly: true,
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	if err := run(cfg, w); err != nil {
		t.Fatalf("run: %v", err)
	}
	w.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	out := buf.String()
	if len(out) == 0 {
		t.Fatal("expected non-empty report")
	}
}
