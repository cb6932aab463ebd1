package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Rex818/Photo666-sub001/models"
)

func TestAlbumCreateAndGet(t *testing.T) {
	repo := NewAlbumRepository(newTestDB(t))

	album := &models.Album{Name: "Summer 2025", Description: "beach trip"}
	require.NoError(t, repo.Create(album))
	require.NotZero(t, album.ID)
	require.NotZero(t, album.CreatedAt)

	got, err := repo.GetByID(album.ID)
	require.NoError(t, err)
	require.Equal(t, "Summer 2025", got.Name)
}

func TestAlbumListOrdered(t *testing.T) {
	repo := NewAlbumRepository(newTestDB(t))
	for _, name := range []string{"Zoo", "Alps", "Market"} {
		require.NoError(t, repo.Create(&models.Album{Name: name}))
	}

	albums, err := repo.ListAll()
	require.NoError(t, err)
	require.Len(t, albums, 3)
	require.Equal(t, "Alps", albums[0].Name)
	require.Equal(t, "Market", albums[1].Name)
	require.Equal(t, "Zoo", albums[2].Name)
}

func TestAlbumAddPhotosIdempotent(t *testing.T) {
	db := newTestDB(t)
	albums := NewAlbumRepository(db)
	photos := NewPhotoRepository(db)

	album := &models.Album{Name: "Dedup"}
	require.NoError(t, albums.Create(album))

	var ids []uint
	for i := 0; i < 3; i++ {
		p := testPhoto(fmt.Sprintf("ah%d", i), fmt.Sprintf("/a%d.jpg", i))
		require.NoError(t, photos.Create(p))
		ids = append(ids, p.ID)
	}

	added, skipped, err := albums.AddPhotos(album.ID, ids)
	require.NoError(t, err)
	require.Equal(t, 3, added)
	require.Equal(t, 0, skipped)

	// second association of the same photos is skipped, not an error
	added, skipped, err = albums.AddPhotos(album.ID, ids)
	require.NoError(t, err)
	require.Equal(t, 0, added)
	require.Equal(t, 3, skipped)

	got, err := albums.GetPhotos(album.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestAlbumAddPhotosMissingAlbum(t *testing.T) {
	db := newTestDB(t)
	albums := NewAlbumRepository(db)
	photos := NewPhotoRepository(db)

	p := testPhoto("orphan", "/o.jpg")
	require.NoError(t, photos.Create(p))

	_, _, err := albums.AddPhotos(777, []uint{p.ID})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAlbumAddPhotosEmpty(t *testing.T) {
	albums := NewAlbumRepository(newTestDB(t))

	added, skipped, err := albums.AddPhotos(1, nil)
	require.NoError(t, err)
	require.Zero(t, added)
	require.Zero(t, skipped)
}

func TestAlbumDeleteRemovesAssociations(t *testing.T) {
	db := newTestDB(t)
	albums := NewAlbumRepository(db)
	photos := NewPhotoRepository(db)

	album := &models.Album{Name: "Short Lived"}
	require.NoError(t, albums.Create(album))

	p := testPhoto("keepme", "/keep.jpg")
	require.NoError(t, photos.Create(p))
	_, _, err := albums.AddPhotos(album.ID, []uint{p.ID})
	require.NoError(t, err)

	require.NoError(t, albums.Delete(album.ID))

	_, err = albums.GetByID(album.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// the photo itself survives
	_, err = photos.GetByID(p.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.PhotoAlbum{}).Where("album_id = ?", album.ID).Count(&count).Error)
	require.Zero(t, count)

	require.ErrorIs(t, albums.Delete(album.ID), gorm.ErrRecordNotFound)
}
