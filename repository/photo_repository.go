package repository

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Rex818/Photo666-sub001/database"
	"github.com/Rex818/Photo666-sub001/models"
)

// PhotoRepository handles database operations for Photo entities
type PhotoRepository struct {
	DB *gorm.DB
}

// NewPhotoRepository creates a new instance of PhotoRepository
func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{DB: db}
}

// IsDuplicateHashErr reports whether err is the sqlite unique-constraint
// violation on photos.file_hash. Two workers racing to insert identical
// content hit this; the loser falls back to the reconcile path.
func IsDuplicateHashErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: photos.file_hash")
}

// Create inserts a new photo record. DateAdded and DateModified default to now
// when unset. The unique index on file_hash is the final arbiter against
// concurrent duplicate inserts; callers should check IsDuplicateHashErr.
func (r *PhotoRepository) Create(photo *models.Photo) error {
	now := time.Now().Unix()
	if photo.DateAdded == 0 {
		photo.DateAdded = now
	}
	if photo.DateModified == 0 {
		photo.DateModified = now
	}

	if err := r.DB.Create(photo).Error; err != nil {
		if IsDuplicateHashErr(err) {
			return err
		}
		return fmt.Errorf("failed to create photo record for %s: %w", photo.Filepath, err)
	}
	return nil
}

// GetByID retrieves a photo by its id
func (r *PhotoRepository) GetByID(id uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.First(&photo, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo by id %d: %w", id, err)
	}
	return &photo, nil
}

// GetByHash retrieves a photo by its content hash
func (r *PhotoRepository) GetByHash(fileHash string) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.Where("file_hash = ?", fileHash).First(&photo).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo by hash %s: %w", fileHash, err)
	}
	return &photo, nil
}

// UpdateFields applies a generic column update to a photo record.
// id and file_hash are never valid update targets.
func (r *PhotoRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	delete(updates, "id")
	delete(updates, "file_hash")

	result := r.DB.Model(&models.Photo{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update photo %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&models.Photo{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// List retrieves photos ordered by id with limit/offset paging.
// A limit <= 0 returns everything.
func (r *PhotoRepository) List(limit, offset int) ([]models.Photo, error) {
	var photos []models.Photo
	tx := r.DB.Order("id ASC").Offset(offset)
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

// ListAll retrieves every photo record. Used by missing-file reconciliation.
func (r *PhotoRepository) ListAll() ([]models.Photo, error) {
	return r.List(0, 0)
}

// FindExistingHashes runs the chunked batched hash lookup against the
// underlying connection.
func (r *PhotoRepository) FindExistingHashes(hashes []string) (map[string]database.PhotoRef, error) {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return database.FindExistingHashes(sqlDB, hashes)
}

// GetIDsByHashes resolves content hashes to photo ids in chunked batches.
func (r *PhotoRepository) GetIDsByHashes(hashes []string) ([]uint, error) {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return database.GetPhotoIDsByHashes(sqlDB, hashes)
}

// Delete removes a photo record and its album associations
func (r *PhotoRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("photo_id = ?", id).Delete(&models.PhotoAlbum{}).Error; err != nil {
			return fmt.Errorf("failed to delete album associations for photo %d: %w", id, err)
		}
		result := tx.Delete(&models.Photo{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete photo record %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
