package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImportDirectoryBatchScenario(t *testing.T) {
	env := newTestEnv(t, nil)
	dir := t.TempDir()
	writeImage(t, dir, "a.jpg", "alpha")
	writeImage(t, dir, "b.jpg", "beta")
	writeImage(t, dir, "c.jpg", "alpha") // duplicate of a.jpg

	summary, err := env.imp.ImportDirectoryBatch(context.Background(), dir, true, 0, nil)
	require.NoError(t, err)

	require.Equal(t, 2, summary.Imported)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 0, summary.Errors)
	require.Equal(t, 3, summary.TotalProcessed)

	require.NotEmpty(t, summary.Timings.Scan)
	require.NotEmpty(t, summary.Timings.Hash)
	require.NotEmpty(t, summary.Timings.Classify)
	require.NotEmpty(t, summary.Timings.Import)
	require.NotEmpty(t, summary.Timings.Total)
}

func TestImportDirectoryBatchIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	dir := t.TempDir()
	for _, f := range []struct{ name, content string }{
		{"one.jpg", "first"},
		{"two.jpg", "second"},
		{"three.jpg", "third"},
		{"four.jpg", "fourth"},
	} {
		writeImage(t, dir, f.name, f.content)
	}

	first, err := env.imp.ImportDirectoryBatch(context.Background(), dir, true, 0, nil)
	require.NoError(t, err)
	require.Equal(t, 4, first.Imported)
	require.Equal(t, 0, first.Skipped)

	second, err := env.imp.ImportDirectoryBatch(context.Background(), dir, true, 0, nil)
	require.NoError(t, err)
	require.Equal(t, 0, second.Imported)
	require.Equal(t, 4, second.Skipped)
	require.Equal(t, 0, second.Errors)

	all, err := env.photos.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestImportDirectoryBatchUnreadableFile(t *testing.T) {
	env := newTestEnv(t, nil)
	dir := t.TempDir()
	writeImage(t, dir, "good.jpg", "readable")

	// a broken symlink survives the scan but fails at hashing
	require.NoError(t, os.Symlink(filepath.Join(dir, "vanished-target"), filepath.Join(dir, "broken.jpg")))

	summary, err := env.imp.ImportDirectoryBatch(context.Background(), dir, true, 0, nil)
	require.NoError(t, err)

	require.Equal(t, 1, summary.Imported)
	require.Equal(t, 1, summary.Errors)
	require.Equal(t, 2, summary.TotalProcessed)
}

func TestImportDirectoryBatchSmallBatches(t *testing.T) {
	env := newTestEnv(t, func(o *Options) {
		o.BatchSize = 2
		o.Workers = 3
	})
	dir := t.TempDir()
	for _, f := range []struct{ name, content string }{
		{"p1.jpg", "c1"},
		{"p2.jpg", "c2"},
		{"p3.jpg", "c3"},
		{"p4.jpg", "c4"},
		{"p5.jpg", "c5"},
	} {
		writeImage(t, dir, f.name, f.content)
	}

	summary, err := env.imp.ImportDirectoryBatch(context.Background(), dir, true, 0, nil)
	require.NoError(t, err)
	require.Equal(t, 5, summary.Imported)
	require.Equal(t, 0, summary.Errors)
}

func TestImportDirectoryBatchWithAlbum(t *testing.T) {
	env := newTestEnv(t, nil)
	alb := newAlbum(t, env, "Batch Run")
	dir := t.TempDir()
	writeImage(t, dir, "a.jpg", "one")
	writeImage(t, dir, "b.jpg", "two")
	writeImage(t, dir, "dup.jpg", "one")

	summary, err := env.imp.ImportDirectoryBatch(context.Background(), dir, true, alb, nil)
	require.NoError(t, err)
	require.Equal(t, 2, summary.AlbumAdded)
	require.Empty(t, summary.AlbumError)

	photos, err := env.albums.GetPhotos(alb)
	require.NoError(t, err)
	require.Len(t, photos, 2)
}

func TestImportDirectoryBatchCancelled(t *testing.T) {
	env := newTestEnv(t, nil)
	dir := t.TempDir()
	writeImage(t, dir, "a.jpg", "content a")
	writeImage(t, dir, "b.jpg", "content b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := env.imp.ImportDirectoryBatch(ctx, dir, true, 0, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	require.Equal(t, 0, summary.Imported)
}

func TestImportDirectoryBatchEmpty(t *testing.T) {
	env := newTestEnv(t, nil)

	summary, err := env.imp.ImportDirectoryBatch(context.Background(), t.TempDir(), true, 0, nil)
	require.NoError(t, err)
	require.Zero(t, summary.TotalProcessed)
	require.NotEmpty(t, summary.Timings.Total)
}
