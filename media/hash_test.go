package media

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	content := []byte("not really a jpeg, but content is content")
	require.NoError(t, os.WriteFile(path, content, 0644))

	want := sha256.Sum256(content)

	got, err := FileHash(path)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(want[:]), got)
}

func TestFileHashDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("same bytes"), 0644))

	first, err := FileHash(path)
	require.NoError(t, err)
	second, err := FileHash(path)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestFileHashIgnoresName(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original.jpg")
	renamed := filepath.Join(dir, "renamed.png")
	require.NoError(t, os.WriteFile(original, []byte("identical content"), 0644))

	before, err := FileHash(original)
	require.NoError(t, err)

	require.NoError(t, os.Rename(original, renamed))
	after, err := FileHash(renamed)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestFileHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("version one"), 0644))

	first, err := FileHash(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("version two"), 0644))
	second, err := FileHash(path)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestFileHashLargeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.jpg")

	// spans multiple read chunks
	content := make([]byte, 3*hashChunkSize+17)
	for i := range content {
		content[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(path, content, 0644))

	want := sha256.Sum256(content)
	got, err := FileHash(path)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(want[:]), got)
}

func TestFileHashMissingFile(t *testing.T) {
	_, err := FileHash(filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
}
