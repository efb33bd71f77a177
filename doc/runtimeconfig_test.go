package doc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathStaysUnderBaseDir(t *testing.T) {
	cfg := &RuntimeConfig{AllowFS: true, BaseDir: t.TempDir()}
	full, err := cfg.resolvePath("sub/file.stof")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(full))
}

func TestResolvePathRejectsTraversal(t *testing.T) {
	cfg := &RuntimeConfig{AllowFS: true, BaseDir: t.TempDir()}
	_, err := cfg.resolvePath("../../etc/passwd")
	assert.Error(t, err)
}

func TestLoadDotenvMissingFileIsNotAnError(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	err := cfg.LoadDotenv(filepath.Join(t.TempDir(), "does-not-exist.env"))
	assert.NoError(t, err)
}

func TestLoadDotenvPopulatesEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FOO=bar\n"), 0o644))

	cfg := DefaultRuntimeConfig()
	require.NoError(t, cfg.LoadDotenv(path))
	assert.Equal(t, "bar", cfg.Env["FOO"])
}
