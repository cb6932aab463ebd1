package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Rex818/Photo666-sub001/importer"
	"github.com/Rex818/Photo666-sub001/scanner"
)

// ImportHandler exposes the import and maintenance operations over HTTP.
type ImportHandler struct {
	Importer *importer.Importer
	Scanner  *scanner.Scanner
	Log      *logrus.Logger
}

type importDirectoryRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
	AlbumID   uint   `json:"album_id"`
	Batch     bool   `json:"batch"`

	ImportTags bool   `json:"import_tags"`
	TagTier    string `json:"tag_tier"`
}

func (req *importDirectoryRequest) tagOptions() *importer.TagOptions {
	if !req.ImportTags {
		return nil
	}
	tier := importer.TagTier(req.TagTier)
	if tier == "" {
		tier = importer.TagTierAuto
	}
	return &importer.TagOptions{ImportTags: true, Tier: tier}
}

// ImportDirectory handles POST /api/import/directory.
func (ih *ImportHandler) ImportDirectory(w http.ResponseWriter, r *http.Request) {
	var req importDirectoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if req.Path == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_path", "path is required")
		return
	}

	if req.Batch {
		summary, err := ih.Importer.ImportDirectoryBatch(r.Context(), req.Path, req.Recursive, req.AlbumID, req.tagOptions())
		if err != nil {
			if summary != nil {
				// cancelled mid-run; report what was done
				writeJSON(w, http.StatusOK, summary)
				return
			}
			ih.Log.WithField("path", req.Path).WithError(err).Error("batch import failed")
			WriteAPIError(w, http.StatusInternalServerError, "import_failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := ih.Importer.ImportDirectory(req.Path, req.Recursive, req.AlbumID, req.tagOptions())
	if err != nil {
		ih.Log.WithField("path", req.Path).WithError(err).Error("directory import failed")
		WriteAPIError(w, http.StatusInternalServerError, "import_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ImportFile handles POST /api/import/file.
func (ih *ImportHandler) ImportFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path       string `json:"path"`
		ImportTags bool   `json:"import_tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if req.Path == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_path", "path is required")
		return
	}

	result, err := ih.Importer.ImportPhoto(req.Path)
	if err != nil {
		ih.Log.WithField("path", req.Path).WithError(err).Error("file import failed")
		WriteAPIError(w, http.StatusInternalServerError, "import_failed", err.Error())
		return
	}
	if result == nil {
		WriteAPIError(w, http.StatusUnprocessableEntity, "not_importable", "file is missing or not a supported image")
		return
	}
	if result.Imported && req.ImportTags {
		if _, err := ih.Importer.ImportTagsForPhoto(result.PhotoID, req.Path, importer.TagOptions{ImportTags: true, Tier: importer.TagTierAuto}); err != nil {
			ih.Log.WithField("path", req.Path).WithError(err).Warn("tag import failed")
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// ImportDirectories handles POST /api/import/directories.
func (ih *ImportHandler) ImportDirectories(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paths      []string `json:"paths"`
		Recursive  bool     `json:"recursive"`
		AlbumID    uint     `json:"album_id"`
		ImportTags bool     `json:"import_tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if len(req.Paths) == 0 {
		WriteAPIError(w, http.StatusBadRequest, "missing_paths", "paths is required")
		return
	}

	var tagOpts *importer.TagOptions
	if req.ImportTags {
		tagOpts = &importer.TagOptions{ImportTags: true, Tier: importer.TagTierAuto}
	}
	writeJSON(w, http.StatusOK, ih.Importer.ImportDirectories(req.Paths, req.Recursive, req.AlbumID, tagOpts))
}

// FixMissingFiles handles POST /api/maintenance/missing-files.
func (ih *ImportHandler) FixMissingFiles(w http.ResponseWriter, r *http.Request) {
	report, err := ih.Importer.FindAndFixMissingFiles()
	if err != nil {
		ih.Log.WithError(err).Error("missing file sweep failed")
		WriteAPIError(w, http.StatusInternalServerError, "sweep_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ScanDirectories handles GET /api/scan/directories?root=...&min=N, returning
// subdirectories that contain images, largest first.
func (ih *ImportHandler) ScanDirectories(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("root")
	if root == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_root", "root query parameter is required")
		return
	}
	minImages := 1
	if raw := r.URL.Query().Get("min"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			minImages = v
		}
	}

	dirs, err := ih.Scanner.FindImageDirectories(root, minImages)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "scan_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"directories": dirs})
}
