package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifests = "kind: Pod\nmetadata:\n  name: a\n---\nkind: Pod\nmetadata:\n  name: b\n"

func TestNew_SelectsDestination(t *testing.T) {
	var buf bytes.Buffer

	assert.IsType(t, &StdoutWriter{}, New("", &buf, nil))
	assert.IsType(t, &StdoutWriter{}, New(Stdout, &buf, nil))

	fw, ok := New("out.yaml", &buf, nil).(*FileWriter)
	require.True(t, ok)
	assert.Equal(t, "out.yaml", fw.Path())
}

func TestStdoutWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewStdoutWriter(&buf)

	require.NoError(t, w.Write([]byte(manifests)))
	assert.Equal(t, manifests, buf.String())
}

func TestStdoutWriter_NilDefault(t *testing.T) {
	// When nil is passed, it defaults to os.Stdout; just verify it doesn't panic.
	w := NewStdoutWriter(nil)
	assert.NotNil(t, w)
}

func TestFileWriter_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rendered", "manifests.yaml")

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte(manifests)))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, manifests, string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileWriter_LeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifests.yaml")

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("a")))
	require.NoError(t, w.Write([]byte("b")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manifests.yaml", entries[0].Name())
}

func TestFileWriter_CustomPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")

	w := NewFileWriter(path, WithPermissions(0o600))
	require.NoError(t, w.Write([]byte("secret")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileWriter_KeepPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deduped.yaml")

	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))
	require.NoError(t, os.Chmod(path, 0o640))

	w := New(path, nil, nil)
	require.NoError(t, w.Write([]byte("new")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestKeepPermissions_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.yaml")

	w := NewFileWriter(path, KeepPermissions(path))
	require.NoError(t, w.Write([]byte("data")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileWriter_OverwriteExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.yaml")

	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644)) //nolint:gosec // test

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("new")))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestFileWriter_InvalidPath(t *testing.T) {
	w := NewFileWriter("/dev/null/impossible/path.yaml")
	assert.Error(t, w.Write([]byte("data")))
}
