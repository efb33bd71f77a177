package doc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostFileReadRespectsAllowFS(t *testing.T) {
	d := New()
	d.Config.AllowFS = false
	h := &hostAdapter{d: d}
	_, err := h.FileRead("whatever.stof")
	require.NotNil(t, err)
}

func TestHostFileReadWriteRoundTrip(t *testing.T) {
	d := New()
	d.Config.BaseDir = t.TempDir()
	h := &hostAdapter{d: d}

	require.Nil(t, h.FileWrite("greeting.txt", "hello"))
	got, err := h.FileRead("greeting.txt")
	require.Nil(t, err)
	assert.Equal(t, "hello", got)
}

func TestHostFileGlobMatchesRecursive(t *testing.T) {
	d := New()
	dir := t.TempDir()
	d.Config.BaseDir = dir
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "a.stof"), []byte(""), 0o644))

	h := &hostAdapter{d: d}
	matches, err := h.FileGlob("**/*.stof")
	require.Nil(t, err)
	assert.Contains(t, matches, "nested/a.stof")
}

func TestHostImportAssumesStofExtension(t *testing.T) {
	d := New()
	dir := t.TempDir()
	d.Config.BaseDir = dir
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.stof"), []byte("// lib"), 0o644))

	h := &hostAdapter{d: d}
	src, err := h.Import("lib")
	require.NoError(t, err)
	assert.Equal(t, "// lib", src)
}

func TestHostPrintWritesToConfiguredWriter(t *testing.T) {
	d := New()
	var buf bytes.Buffer
	d.out = &buf
	h := &hostAdapter{d: d}
	h.Print("hello")
	assert.Equal(t, "hello\n", buf.String())
}
