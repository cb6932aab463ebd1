package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Rex818/Photo666-sub001/importer"
	"github.com/Rex818/Photo666-sub001/repository"
	"github.com/Rex818/Photo666-sub001/workers"
)

// PhotoHandler exposes photo catalog operations over HTTP.
type PhotoHandler struct {
	Photos    repository.PhotoRepositoryInterface
	Importer  *importer.Importer
	Processor *workers.PhotoProcessor
	Log       *logrus.Logger
}

func parseIDParam(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// ListPhotos handles GET /api/photos?limit=N&offset=N.
func (ph *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	limit := 100
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	photos, err := ph.Photos.List(limit, offset)
	if err != nil {
		ph.Log.WithError(err).Error("failed to list photos")
		WriteAPIError(w, http.StatusInternalServerError, "list_failed", "Failed to retrieve photos")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"photos": photos, "count": len(photos)})
}

// GetPhoto handles GET /api/photos/{id}.
func (ph *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid photo id")
		return
	}

	photo, err := ph.Photos.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Photo not found")
			return
		}
		ph.Log.WithField("photo_id", id).WithError(err).Error("failed to get photo")
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", "Failed to retrieve photo")
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

// DeletePhoto handles DELETE /api/photos/{id}?delete_file=true.
func (ph *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid photo id")
		return
	}
	deleteFile := r.URL.Query().Get("delete_file") == "true"

	if err := ph.Importer.DeletePhoto(id, deleteFile); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Photo not found")
			return
		}
		ph.Log.WithField("photo_id", id).WithError(err).Error("failed to delete photo")
		WriteAPIError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

// GetPhotoTags handles GET /api/photos/{id}/tags.
func (ph *PhotoHandler) GetPhotoTags(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid photo id")
		return
	}

	tags, err := ph.Importer.GetPhotoTags(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Photo not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "tags_failed", "Failed to retrieve tags")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// SetPhotoTags handles PUT /api/photos/{id}/tags.
func (ph *PhotoHandler) SetPhotoTags(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid photo id")
		return
	}

	var req struct {
		Tags   []string `json:"tags"`
		Tier   string   `json:"tier"`
		Append bool     `json:"append"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	opts := importer.TagOptions{Tier: importer.TagTier(req.Tier), Append: req.Append}
	if err := ph.Importer.ApplyTags(id, req.Tags, opts); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Photo not found")
			return
		}
		ph.Log.WithField("photo_id", id).WithError(err).Error("failed to set tags")
		WriteAPIError(w, http.StatusInternalServerError, "tags_failed", "Failed to store tags")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"photo_id": id, "count": len(req.Tags)})
}

// UpdatePhoto handles PATCH /api/photos/{id} for rating, favorite and notes.
func (ph *PhotoHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid photo id")
		return
	}

	var req struct {
		Rating     *int    `json:"rating"`
		IsFavorite *bool   `json:"is_favorite"`
		Notes      *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Rating != nil {
		if *req.Rating < 0 || *req.Rating > 5 {
			WriteAPIError(w, http.StatusBadRequest, "invalid_rating", "rating must be 0-5")
			return
		}
		updates["rating"] = *req.Rating
	}
	if req.IsFavorite != nil {
		updates["is_favorite"] = *req.IsFavorite
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		WriteAPIError(w, http.StatusBadRequest, "empty_update", "no updatable fields supplied")
		return
	}

	if err := ph.Photos.UpdateFields(id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Photo not found")
			return
		}
		ph.Log.WithField("photo_id", id).WithError(err).Error("failed to update photo")
		WriteAPIError(w, http.StatusInternalServerError, "update_failed", "Failed to update photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updated": id})
}

// RefreshPhoto handles POST /api/photos/{id}/refresh, queueing background
// thumbnail and AI metadata regeneration.
func (ph *PhotoHandler) RefreshPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid photo id")
		return
	}

	photo, err := ph.Photos.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Photo not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", "Failed to retrieve photo")
		return
	}

	queued := map[string]bool{
		workers.TaskThumbnail:  ph.Processor.QueueJob(workers.PhotoJob{PhotoID: photo.ID, Path: photo.Filepath, TaskType: workers.TaskThumbnail}),
		workers.TaskAIMetadata: ph.Processor.QueueJob(workers.PhotoJob{PhotoID: photo.ID, Path: photo.Filepath, TaskType: workers.TaskAIMetadata}),
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"photo_id": id, "queued": queued})
}
