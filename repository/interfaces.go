package repository

import (
	"github.com/Rex818/Photo666-sub001/database"
	"github.com/Rex818/Photo666-sub001/models"
)

// PhotoRepositoryInterface defines the methods for photo data operations
type PhotoRepositoryInterface interface {
	Create(photo *models.Photo) error
	GetByID(id uint) (*models.Photo, error)
	GetByHash(fileHash string) (*models.Photo, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	List(limit, offset int) ([]models.Photo, error)
	ListAll() ([]models.Photo, error)
	FindExistingHashes(hashes []string) (map[string]database.PhotoRef, error)
	GetIDsByHashes(hashes []string) ([]uint, error)
	Delete(id uint) error
}

// AlbumRepositoryInterface defines the methods for album data operations
type AlbumRepositoryInterface interface {
	Create(album *models.Album) error
	GetByID(id uint) (*models.Album, error)
	ListAll() ([]models.Album, error)
	AddPhotos(albumID uint, photoIDs []uint) (added int, skipped int, err error)
	GetPhotos(albumID uint) ([]models.Photo, error)
	Delete(id uint) error
}
