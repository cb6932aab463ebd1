package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Rex818/Photo666-sub001/importer"
	"github.com/Rex818/Photo666-sub001/models"
	"github.com/Rex818/Photo666-sub001/repository"
)

// AlbumHandler exposes album operations over HTTP.
type AlbumHandler struct {
	Albums   repository.AlbumRepositoryInterface
	Importer *importer.Importer
	Log      *logrus.Logger
}

// CreateAlbum handles POST /api/albums.
func (ah *AlbumHandler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_name", "name is required")
		return
	}

	album := &models.Album{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := ah.Albums.Create(album); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			WriteAPIError(w, http.StatusConflict, "duplicate_name", "An album with this name already exists")
			return
		}
		ah.Log.WithField("name", req.Name).WithError(err).Error("failed to create album")
		WriteAPIError(w, http.StatusInternalServerError, "create_failed", "Failed to create album")
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

// ListAlbums handles GET /api/albums.
func (ah *AlbumHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := ah.Albums.ListAll()
	if err != nil {
		ah.Log.WithError(err).Error("failed to list albums")
		WriteAPIError(w, http.StatusInternalServerError, "list_failed", "Failed to retrieve albums")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"albums": albums, "count": len(albums)})
}

// GetAlbum handles GET /api/albums/{id}.
func (ah *AlbumHandler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid album id")
		return
	}

	album, err := ah.Albums.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Album not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", "Failed to retrieve album")
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// GetAlbumPhotos handles GET /api/albums/{id}/photos.
func (ah *AlbumHandler) GetAlbumPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid album id")
		return
	}

	photos, err := ah.Albums.GetPhotos(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Album not found")
			return
		}
		ah.Log.WithField("album_id", id).WithError(err).Error("failed to get album photos")
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", "Failed to retrieve album photos")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"photos": photos, "count": len(photos)})
}

// AddAlbumPhotos handles POST /api/albums/{id}/photos.
func (ah *AlbumHandler) AddAlbumPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid album id")
		return
	}

	var req struct {
		PhotoIDs []uint `json:"photo_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if len(req.PhotoIDs) == 0 {
		WriteAPIError(w, http.StatusBadRequest, "missing_photo_ids", "photo_ids is required")
		return
	}

	added, skipped, err := ah.Albums.AddPhotos(id, req.PhotoIDs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Album not found")
			return
		}
		ah.Log.WithField("album_id", id).WithError(err).Error("failed to add photos to album")
		WriteAPIError(w, http.StatusInternalServerError, "add_failed", "Failed to add photos to album")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"added": added, "skipped": skipped})
}

// RefreshAlbumAIMetadata handles POST /api/albums/{id}/refresh-ai.
func (ah *AlbumHandler) RefreshAlbumAIMetadata(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid album id")
		return
	}

	summary, err := ah.Importer.RefreshAlbumAIMetadata(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Album not found")
			return
		}
		ah.Log.WithField("album_id", id).WithError(err).Error("album AI metadata refresh failed")
		WriteAPIError(w, http.StatusInternalServerError, "refresh_failed", "Failed to refresh AI metadata")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// DeleteAlbum handles DELETE /api/albums/{id}.
func (ah *AlbumHandler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid album id")
		return
	}

	if err := ah.Albums.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Album not found")
			return
		}
		ah.Log.WithField("album_id", id).WithError(err).Error("failed to delete album")
		WriteAPIError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete album")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}
