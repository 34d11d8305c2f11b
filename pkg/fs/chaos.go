package fs

import (
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
)

// ChaosMode controls whether [Chaos] injects faults.
type ChaosMode int

const (
	// ChaosModeActive injects faults according to the configured rates.
	ChaosModeActive ChaosMode = iota
	// ChaosModeNoOp passes every call straight through to the wrapped FS.
	ChaosModeNoOp
)

// ChaosConfig controls fault injection probabilities. Each rate is a
// float64 from 0.0 (never) to 1.0 (always). The zero value disables all
// fault injection.
type ChaosConfig struct {
	// OpenFailRate controls how often Open/OpenFile fail outright.
	OpenFailRate float64

	// ReadFailRate controls how often ReadFile fails outright.
	ReadFailRate float64

	// WriteFailRate controls how often WriteFileAtomic fails outright.
	WriteFailRate float64

	// LockFailRate controls how often Lock/TryLock fail with
	// ErrWouldBlock even though no other holder exists, simulating
	// contention or an unreliable lock primitive.
	LockFailRate float64
}

// Chaos wraps an [FS] and injects faults for testing the error handling
// paths of code that takes an [FS] (such as pagevolume.OpenFS) without
// needing to reproduce real disk failures.
type Chaos struct {
	inner  FS
	cfg    ChaosConfig
	mode   atomic.Int32
	mu     sync.Mutex
	rand   *rand.Rand
	failIO error
}

// NewChaos wraps inner with fault injection governed by cfg.
func NewChaos(inner FS, cfg ChaosConfig) *Chaos {
	c := &Chaos{
		inner: inner,
		cfg:   cfg,
		rand:  rand.New(rand.NewPCG(1, 2)),
	}
	c.mode.Store(int32(ChaosModeActive))
	return c
}

// SetMode switches fault injection on or off.
func (c *Chaos) SetMode(mode ChaosMode) {
	c.mode.Store(int32(mode))
}

func (c *Chaos) active() bool {
	return ChaosMode(c.mode.Load()) == ChaosModeActive
}

func (c *Chaos) roll(rate float64) bool {
	if !c.active() || rate <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rand.Float64() < rate
}

func (c *Chaos) Open(path string) (File, error) {
	if c.roll(c.cfg.OpenFailRate) {
		return nil, os.ErrPermission
	}
	return c.inner.Open(path)
}

func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if c.roll(c.cfg.OpenFailRate) {
		return nil, os.ErrPermission
	}
	return c.inner.OpenFile(path, flag, perm)
}

func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if c.roll(c.cfg.ReadFailRate) {
		return nil, os.ErrInvalid
	}
	return c.inner.ReadFile(path)
}

func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if c.roll(c.cfg.WriteFailRate) {
		return os.ErrInvalid
	}
	return c.inner.WriteFileAtomic(path, data, perm)
}

func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	return c.inner.MkdirAll(path, perm)
}

func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	return c.inner.Stat(path)
}

func (c *Chaos) Remove(path string) error {
	return c.inner.Remove(path)
}

func (c *Chaos) Lock(path string) (Locker, error) {
	if c.roll(c.cfg.LockFailRate) {
		return nil, ErrWouldBlock
	}
	return c.inner.Lock(path)
}

func (c *Chaos) TryLock(path string) (Locker, error) {
	if c.roll(c.cfg.LockFailRate) {
		return nil, ErrWouldBlock
	}
	return c.inner.TryLock(path)
}

// Compile-time interface check.
var _ FS = (*Chaos)(nil)
