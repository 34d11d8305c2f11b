package mountconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbstore/jbstore/internal/mountconfig"
)

func TestLoad_MissingFileReturnsEmptyConfig(t *testing.T) {
	t.Parallel()

	cfg, err := mountconfig.Load(filepath.Join(t.TempDir(), mountconfig.FileName))
	require.NoError(t, err)
	assert.Empty(t, cfg.Mounts)
}

func TestLoad_ParsesJWCCWithComments(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), mountconfig.FileName)
	doc := `{
		// primary data volume
		"mounts": [
			{"physical_path": "/data/a.jb", "logical_prefix": "/data/", "priority": 1},
		],
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := mountconfig.Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Mounts, 1)
	assert.Equal(t, "/data/a.jb", cfg.Mounts[0].PhysicalPath)
	assert.Equal(t, 1, cfg.Mounts[0].Priority)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), mountconfig.FileName)

	var cfg mountconfig.Config
	cfg.AddMount(mountconfig.Mount{PhysicalPath: "/a.jb", LogicalPrefix: "/x/", Priority: 2})
	cfg.AddMount(mountconfig.Mount{PhysicalPath: "/b.jb", LogicalPrefix: "/y/", Priority: 1})

	require.NoError(t, mountconfig.Save(path, cfg))

	got, err := mountconfig.Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(cfg.Mounts, got.Mounts); diff != "" {
		t.Errorf("mounts mismatch after round trip (-want +got):\n%s", diff)
	}
}

func TestConfig_AddMountReplacesSamePrefix(t *testing.T) {
	t.Parallel()

	var cfg mountconfig.Config
	cfg.AddMount(mountconfig.Mount{PhysicalPath: "/a.jb", LogicalPrefix: "/x/", Priority: 1})
	cfg.AddMount(mountconfig.Mount{PhysicalPath: "/b.jb", LogicalPrefix: "/x/", Priority: 2})

	require.Len(t, cfg.Mounts, 1)
	assert.Equal(t, "/b.jb", cfg.Mounts[0].PhysicalPath)
}

func TestConfig_RemoveMount(t *testing.T) {
	t.Parallel()

	var cfg mountconfig.Config
	cfg.AddMount(mountconfig.Mount{PhysicalPath: "/a.jb", LogicalPrefix: "/x/"})

	require.NoError(t, cfg.RemoveMount("/x/"))
	assert.Empty(t, cfg.Mounts)

	err := cfg.RemoveMount("/missing/")
	assert.Error(t, err)
}

func TestLoadDir_JoinsFileName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var cfg mountconfig.Config
	cfg.AddMount(mountconfig.Mount{PhysicalPath: "/a.jb", LogicalPrefix: "/x/"})
	require.NoError(t, mountconfig.Save(filepath.Join(dir, mountconfig.FileName), cfg))

	got, path, err := mountconfig.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, mountconfig.FileName), path)
	require.Len(t, got.Mounts, 1)
}
