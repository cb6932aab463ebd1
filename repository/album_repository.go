package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rex818/Photo666-sub001/models"
)

// AlbumRepository handles database operations for Album entities
type AlbumRepository struct {
	DB *gorm.DB
}

// NewAlbumRepository creates a new instance of AlbumRepository
func NewAlbumRepository(db *gorm.DB) *AlbumRepository {
	return &AlbumRepository{DB: db}
}

// Create creates a new album record in the database
func (r *AlbumRepository) Create(album *models.Album) error {
	now := time.Now().Unix()
	if album.CreatedAt == 0 {
		album.CreatedAt = now
	}
	if album.UpdatedAt == 0 {
		album.UpdatedAt = now
	}

	if err := r.DB.Create(album).Error; err != nil {
		return fmt.Errorf("failed to create album %s: %w", album.Name, err)
	}
	return nil
}

// GetByID retrieves an album by its ID
func (r *AlbumRepository) GetByID(id uint) (*models.Album, error) {
	var album models.Album
	err := r.DB.First(&album, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get album by ID %d: %w", id, err)
	}
	return &album, nil
}

// ListAll retrieves all albums, ordered by name
func (r *AlbumRepository) ListAll() ([]models.Album, error) {
	var albums []models.Album
	if err := r.DB.Order("name ASC").Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, nil
}

// AddPhotos associates photos with an album in a single transaction.
// Already-associated pairs are skipped rather than erroring, so repeated
// imports into the same album stay idempotent.
func (r *AlbumRepository) AddPhotos(albumID uint, photoIDs []uint) (added int, skipped int, err error) {
	if len(photoIDs) == 0 {
		return 0, 0, nil
	}

	err = r.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Album{}).Where("id = ?", albumID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check album %d: %w", albumID, err)
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		now := time.Now().Unix()
		rows := make([]models.PhotoAlbum, len(photoIDs))
		for i, photoID := range photoIDs {
			rows[i] = models.PhotoAlbum{PhotoID: photoID, AlbumID: albumID, AddedAt: now}
		}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
		if result.Error != nil {
			return fmt.Errorf("failed to associate photos with album %d: %w", albumID, result.Error)
		}

		added = int(result.RowsAffected)
		skipped = len(photoIDs) - added

		if err := tx.Model(&models.Album{}).Where("id = ?", albumID).
			Update("updated_at", now).Error; err != nil {
			return fmt.Errorf("failed to touch album %d: %w", albumID, err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return added, skipped, nil
}

// GetPhotos retrieves all photos associated with an album, ordered by the
// time they were added.
func (r *AlbumRepository) GetPhotos(albumID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB.
		Joins("JOIN photo_albums ON photo_albums.photo_id = photos.id").
		Where("photo_albums.album_id = ?", albumID).
		Order("photo_albums.added_at ASC, photos.id ASC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get photos for album %d: %w", albumID, err)
	}
	return photos, nil
}

// Delete removes an album and its photo associations
func (r *AlbumRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", id).Delete(&models.PhotoAlbum{}).Error; err != nil {
			return fmt.Errorf("failed to delete photo associations for album %d: %w", id, err)
		}
		result := tx.Delete(&models.Album{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete album ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
