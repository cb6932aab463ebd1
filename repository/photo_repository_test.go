package repository

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Rex818/Photo666-sub001/database"
	"github.com/Rex818/Photo666-sub001/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testPhoto(hash, path string) *models.Photo {
	return &models.Photo{
		FileHash: hash,
		Filename: filepath.Base(path),
		Filepath: path,
		FileSize: 1024,
	}
}

func TestPhotoCreateAndGet(t *testing.T) {
	repo := NewPhotoRepository(newTestDB(t))

	photo := testPhoto("aaa111", "/photos/one.jpg")
	require.NoError(t, repo.Create(photo))
	require.NotZero(t, photo.ID)
	require.NotZero(t, photo.DateAdded)
	require.NotZero(t, photo.DateModified)

	byID, err := repo.GetByID(photo.ID)
	require.NoError(t, err)
	require.Equal(t, "one.jpg", byID.Filename)

	byHash, err := repo.GetByHash("aaa111")
	require.NoError(t, err)
	require.Equal(t, photo.ID, byHash.ID)
}

func TestPhotoCreateDuplicateHash(t *testing.T) {
	repo := NewPhotoRepository(newTestDB(t))

	require.NoError(t, repo.Create(testPhoto("dup", "/a.jpg")))

	err := repo.Create(testPhoto("dup", "/b.jpg"))
	require.Error(t, err)
	require.True(t, IsDuplicateHashErr(err))
}

func TestIsDuplicateHashErr(t *testing.T) {
	require.False(t, IsDuplicateHashErr(nil))
	require.False(t, IsDuplicateHashErr(gorm.ErrRecordNotFound))
}

func TestPhotoGetNotFound(t *testing.T) {
	repo := NewPhotoRepository(newTestDB(t))

	_, err := repo.GetByID(42)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByHash("nonexistent")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPhotoUpdateFields(t *testing.T) {
	repo := NewPhotoRepository(newTestDB(t))

	photo := testPhoto("upd", "/old/path.jpg")
	require.NoError(t, repo.Create(photo))

	err := repo.UpdateFields(photo.ID, map[string]interface{}{
		"filepath":  "/new/path.jpg",
		"file_hash": "tampered", // must be ignored
		"rating":    4,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(photo.ID)
	require.NoError(t, err)
	require.Equal(t, "/new/path.jpg", got.Filepath)
	require.Equal(t, "upd", got.FileHash)
	require.Equal(t, 4, got.Rating)
}

func TestPhotoUpdateFieldsNotFound(t *testing.T) {
	repo := NewPhotoRepository(newTestDB(t))

	err := repo.UpdateFields(999, map[string]interface{}{"rating": 1})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPhotoList(t *testing.T) {
	repo := NewPhotoRepository(newTestDB(t))
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(testPhoto(fmt.Sprintf("h%d", i), fmt.Sprintf("/p%d.jpg", i))))
	}

	page, err := repo.List(2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)

	all, err := repo.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 5)
}

func TestFindExistingHashesChunked(t *testing.T) {
	repo := NewPhotoRepository(newTestDB(t))

	// enough rows to force more than one IN-query chunk
	var lookup []string
	for i := 0; i < 120; i++ {
		hash := fmt.Sprintf("hash%03d", i)
		lookup = append(lookup, hash)
		if i%2 == 0 {
			require.NoError(t, repo.Create(testPhoto(hash, fmt.Sprintf("/p%03d.jpg", i))))
		}
	}
	lookup = append(lookup, "never-seen")

	existing, err := repo.FindExistingHashes(lookup)
	require.NoError(t, err)
	require.Len(t, existing, 60)

	ref, ok := existing["hash002"]
	require.True(t, ok)
	require.Equal(t, "/p002.jpg", ref.Filepath)
	_, ok = existing["hash001"]
	require.False(t, ok)
	_, ok = existing["never-seen"]
	require.False(t, ok)
}

func TestGetIDsByHashes(t *testing.T) {
	repo := NewPhotoRepository(newTestDB(t))

	a := testPhoto("ha", "/a.jpg")
	b := testPhoto("hb", "/b.jpg")
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(b))

	ids, err := repo.GetIDsByHashes([]string{"ha", "hb", "missing"})
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{a.ID, b.ID}, ids)

	ids, err = repo.GetIDsByHashes(nil)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestPhotoDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewPhotoRepository(db)
	albums := NewAlbumRepository(db)

	photo := testPhoto("del", "/del.jpg")
	require.NoError(t, repo.Create(photo))

	album := &models.Album{Name: "To Empty"}
	require.NoError(t, albums.Create(album))
	_, _, err := albums.AddPhotos(album.ID, []uint{photo.ID})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(photo.ID))

	_, err = repo.GetByID(photo.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	photos, err := albums.GetPhotos(album.ID)
	require.NoError(t, err)
	require.Empty(t, photos)

	require.ErrorIs(t, repo.Delete(photo.ID), gorm.ErrRecordNotFound)
}
