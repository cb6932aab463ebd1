package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindAndFixMissingFilesRelocates(t *testing.T) {
	photoDir := t.TempDir()
	searchDir := t.TempDir()
	env := newTestEnv(t, func(o *Options) {
		o.SearchDirectories = []string{searchDir}
	})

	path := writeImage(t, photoDir, "beach.jpg", "beach photo content")
	result, err := env.imp.ImportPhoto(path)
	require.NoError(t, err)

	// file moves into a search directory behind the catalog's back
	newPath := filepath.Join(searchDir, "nested", "beach.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(newPath), 0755))
	require.NoError(t, os.Rename(path, newPath))

	report, err := env.imp.FindAndFixMissingFiles()
	require.NoError(t, err)

	require.Equal(t, 1, report.TotalPhotos)
	require.Equal(t, 1, report.Missing)
	require.Equal(t, 1, report.Fixed)
	require.Equal(t, 0, report.Errors)
	require.Len(t, report.FixedFiles, 1)
	require.Equal(t, newPath, report.FixedFiles[0].NewPath)

	photo, err := env.photos.GetByID(result.PhotoID)
	require.NoError(t, err)
	require.Equal(t, newPath, photo.Filepath)
}

func TestFindAndFixMissingFilesRejectsNameCollision(t *testing.T) {
	photoDir := t.TempDir()
	searchDir := t.TempDir()
	env := newTestEnv(t, func(o *Options) {
		o.SearchDirectories = []string{searchDir}
	})

	path := writeImage(t, photoDir, "portrait.jpg", "original content")
	result, err := env.imp.ImportPhoto(path)
	require.NoError(t, err)

	// same name, different bytes: must never be accepted
	writeImage(t, searchDir, "portrait.jpg", "completely different content")
	require.NoError(t, os.Remove(path))

	report, err := env.imp.FindAndFixMissingFiles()
	require.NoError(t, err)

	require.Equal(t, 1, report.Missing)
	require.Equal(t, 0, report.Fixed)
	require.Len(t, report.StillLost, 1)
	require.Equal(t, result.PhotoID, report.StillLost[0].PhotoID)

	photo, err := env.photos.GetByID(result.PhotoID)
	require.NoError(t, err)
	require.Equal(t, path, photo.Filepath)
}

func TestFindAndFixMissingFilesAllPresent(t *testing.T) {
	photoDir := t.TempDir()
	env := newTestEnv(t, nil)

	writeImage(t, photoDir, "a.jpg", "a content")
	writeImage(t, photoDir, "b.jpg", "b content")
	_, err := env.imp.ImportDirectory(photoDir, true, 0, nil)
	require.NoError(t, err)

	report, err := env.imp.FindAndFixMissingFiles()
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalPhotos)
	require.Zero(t, report.Missing)
	require.Zero(t, report.Fixed)
}

func TestFindAndFixMissingFilesPicksRightCandidate(t *testing.T) {
	photoDir := t.TempDir()
	searchDir := t.TempDir()
	env := newTestEnv(t, func(o *Options) {
		o.SearchDirectories = []string{searchDir}
	})

	path := writeImage(t, photoDir, "shot.jpg", "the real bytes")
	result, err := env.imp.ImportPhoto(path)
	require.NoError(t, err)

	// decoy with the right name but wrong content sits alongside the real file
	writeImage(t, filepath.Join(searchDir, "a"), "shot.jpg", "wrong bytes")
	realPath := writeImage(t, filepath.Join(searchDir, "b"), "shot.jpg", "the real bytes")
	require.NoError(t, os.Remove(path))

	report, err := env.imp.FindAndFixMissingFiles()
	require.NoError(t, err)
	require.Equal(t, 1, report.Fixed)

	photo, err := env.photos.GetByID(result.PhotoID)
	require.NoError(t, err)
	require.Equal(t, realPath, photo.Filepath)
}
