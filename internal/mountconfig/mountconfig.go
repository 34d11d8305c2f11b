// Package mountconfig loads and saves the project's mount configuration
// file (.jb.json, a HuJSON/JWCC document listing the mount points a
// virtual volume should open). Comments and trailing commas in the file
// are tolerated: hujson.Standardize strips them before the result is
// decoded with encoding/json. Load falls back to an empty configuration
// when the file does not exist, and Save rewrites it atomically.
package mountconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// FileName is the default mount configuration file name, read from and
// written to a project's working directory.
const FileName = ".jb.json"

// Mount describes one entry in the mount configuration: a physical
// volume file and the logical prefix it should be projected under.
type Mount struct {
	PhysicalPath  string `json:"physical_path"`  //nolint:tagliatelle
	LogicalPrefix string `json:"logical_prefix"` //nolint:tagliatelle
	Priority      int    `json:"priority,omitempty"`
}

// Config is the parsed contents of a .jb.json file: the set of mounts a
// `jb open <mounts-file>` invocation should assemble.
type Config struct {
	Mounts []Mount `json:"mounts"`
}

var errMountNotFound = errors.New("mountconfig: no mount with that logical prefix")

// Load reads and parses the mount configuration file at path. A missing
// file is not an error; it returns an empty Config so a fresh project
// can start from nothing.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading mount config %s: %w", path, err)
	}

	return parse(data, path)
}

// LoadDir loads FileName from dir.
func LoadDir(dir string) (Config, string, error) {
	path := filepath.Join(dir, FileName)
	cfg, err := Load(path)
	return cfg, path, err
}

func parse(data []byte, path string) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JWCC in %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	return cfg, nil
}

// AddMount appends a mount entry, replacing any existing entry with the
// same logical prefix.
func (c *Config) AddMount(m Mount) {
	for i := range c.Mounts {
		if c.Mounts[i].LogicalPrefix == m.LogicalPrefix {
			c.Mounts[i] = m
			return
		}
	}
	c.Mounts = append(c.Mounts, m)
}

// RemoveMount deletes the mount entry with the given logical prefix.
func (c *Config) RemoveMount(logicalPrefix string) error {
	for i := range c.Mounts {
		if c.Mounts[i].LogicalPrefix == logicalPrefix {
			c.Mounts = append(c.Mounts[:i], c.Mounts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", errMountNotFound, logicalPrefix)
}

// Save writes cfg to path as formatted JSON via an atomic rename, so a
// concurrent `jb open` never observes a partially written config file.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting mount config: %w", err)
	}
	data = append(data, '\n')

	return atomic.WriteFile(path, bytes.NewReader(data))
}
