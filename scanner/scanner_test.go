package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestIsSupported(t *testing.T) {
	s := New(nil)

	require.True(t, s.IsSupported("photo.jpg"))
	require.True(t, s.IsSupported("PHOTO.JPG"))
	require.True(t, s.IsSupported("image.webp"))
	require.False(t, s.IsSupported("notes.txt"))
	require.False(t, s.IsSupported("archive.zip"))
	require.False(t, s.IsSupported("noextension"))
}

func TestNewNormalizesExtensions(t *testing.T) {
	s := New([]string{"JPG", " .Png ", ""})

	require.True(t, s.IsSupported("a.jpg"))
	require.True(t, s.IsSupported("b.png"))
	require.False(t, s.IsSupported("c.gif"))
}

func TestScanDirectoryFlat(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.jpg"))
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "nested", "c.jpg"))

	s := New(nil)
	paths, err := s.ScanDirectory(dir, false)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	require.Equal(t, filepath.Join(dir, "a.png"), paths[0])
	require.Equal(t, filepath.Join(dir, "b.jpg"), paths[1])
}

func TestScanDirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "top.jpg"))
	touch(t, filepath.Join(dir, "sub", "deep", "bottom.png"))
	touch(t, filepath.Join(dir, "sub", "skip.txt"))

	s := New(nil)
	paths, err := s.ScanDirectory(dir, true)
	require.NoError(t, err)
	require.Len(t, paths, 2)
}

func TestScanDirectoryNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"img10.jpg", "img2.jpg", "img1.jpg"} {
		touch(t, filepath.Join(dir, name))
	}

	s := New(nil)
	paths, err := s.ScanDirectory(dir, false)
	require.NoError(t, err)

	require.Equal(t, []string{
		filepath.Join(dir, "img1.jpg"),
		filepath.Join(dir, "img2.jpg"),
		filepath.Join(dir, "img10.jpg"),
	}, paths)
}

func TestScanDirectoryMissingRoot(t *testing.T) {
	s := New(nil)
	_, err := s.ScanDirectory(filepath.Join(t.TempDir(), "absent"), true)
	require.Error(t, err)
}

func TestScanDirectoryFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.jpg")
	touch(t, path)

	s := New(nil)
	_, err := s.ScanDirectory(path, false)
	require.Error(t, err)
}

func TestFindImageDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "vacation", "a.jpg"))
	touch(t, filepath.Join(dir, "vacation", "b.jpg"))
	touch(t, filepath.Join(dir, "vacation", "c.jpg"))
	touch(t, filepath.Join(dir, "misc", "one.png"))
	touch(t, filepath.Join(dir, "docs", "readme.txt"))
	touch(t, filepath.Join(dir, ".hidden", "secret.jpg"))

	s := New(nil)
	dirs, err := s.FindImageDirectories(dir, 1)
	require.NoError(t, err)

	require.Len(t, dirs, 2)
	require.Equal(t, "vacation", dirs[0].Name)
	require.Equal(t, 3, dirs[0].ImageCount)
	require.Equal(t, "misc", dirs[1].Name)

	dirs, err = s.FindImageDirectories(dir, 2)
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	require.Equal(t, "vacation", dirs[0].Name)
}
