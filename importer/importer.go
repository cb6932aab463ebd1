package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Rex818/Photo666-sub001/media"
	"github.com/Rex818/Photo666-sub001/models"
	"github.com/Rex818/Photo666-sub001/repository"
	"github.com/Rex818/Photo666-sub001/scanner"
)

// ErrHashMismatch is returned when a candidate file's content does not match
// the hash stored on the record it was offered for. A filename match alone is
// never enough to rebind a record.
var ErrHashMismatch = errors.New("file content hash does not match stored hash")

// MetadataExtractor supplies EXIF/dimension metadata for a file.
// Failures are treated as best-effort by the orchestrator.
type MetadataExtractor interface {
	Extract(path string) (*media.Metadata, error)
}

// AIExtractor supplies AI-generation metadata for a file.
type AIExtractor interface {
	Extract(path string) (*media.AIMetadata, error)
}

// ThumbnailGenerator produces a thumbnail for a file and returns its path.
type ThumbnailGenerator interface {
	Generate(path string) (string, error)
}

// Importer coordinates scanning, hashing, dedup decisions, collaborator calls
// and persistence. It holds no mutable state beyond configuration; all shared
// state lives in the catalog store.
type Importer struct {
	photos     repository.PhotoRepositoryInterface
	albums     repository.AlbumRepositoryInterface
	scanner    *scanner.Scanner
	metadata   MetadataExtractor
	ai         AIExtractor
	thumbs     ThumbnailGenerator
	translator Translator
	searchDirs []string
	workers    int
	batchSize  int
	log        *logrus.Logger
}

// Options configures an Importer. Zero-value fields fall back to defaults;
// Photos is the only mandatory collaborator.
type Options struct {
	Photos     repository.PhotoRepositoryInterface
	Albums     repository.AlbumRepositoryInterface
	Scanner    *scanner.Scanner
	Metadata   MetadataExtractor
	AI         AIExtractor
	Thumbs     ThumbnailGenerator
	Translator Translator

	// SearchDirectories are the roots missing-file reconciliation searches.
	SearchDirectories []string

	Workers   int
	BatchSize int
	Logger    *logrus.Logger
}

type mediaMetadataExtractor struct{}

func (mediaMetadataExtractor) Extract(path string) (*media.Metadata, error) {
	return media.ExtractMetadata(path)
}

type mediaAIExtractor struct{}

func (mediaAIExtractor) Extract(path string) (*media.AIMetadata, error) {
	return media.ExtractAIMetadata(path)
}

// New creates an Importer from the given options.
func New(opts Options) *Importer {
	if opts.Scanner == nil {
		opts.Scanner = scanner.New(nil)
	}
	if opts.Metadata == nil {
		opts.Metadata = mediaMetadataExtractor{}
	}
	if opts.AI == nil {
		opts.AI = mediaAIExtractor{}
	}
	if opts.Translator == nil {
		opts.Translator = NewStaticTranslator()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Importer{
		photos:     opts.Photos,
		albums:     opts.Albums,
		scanner:    opts.Scanner,
		metadata:   opts.Metadata,
		ai:         opts.AI,
		thumbs:     opts.Thumbs,
		translator: opts.Translator,
		searchDirs: opts.SearchDirectories,
		workers:    opts.Workers,
		batchSize:  opts.BatchSize,
		log:        opts.Logger,
	}
}

// ImportResult reports the outcome of a single-file import. A nil result with
// a nil error means the path was skipped outright (missing or unsupported).
type ImportResult struct {
	PhotoID  uint `json:"photo_id"`
	Imported bool `json:"imported"` // a new record was created
	Skipped  bool `json:"skipped"`  // content already known; possibly reconciled
}

// ImportPhoto imports a single file. Identity is the content hash: unknown
// content inserts a new record, known content at the same path is a no-op,
// known content at a new path reconciles the stored path. Missing or
// unsupported files return (nil, nil) after a warning.
func (i *Importer) ImportPhoto(path string) (*ImportResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		i.log.WithField("path", absPath).Warn("file not found, skipping")
		return nil, nil
	}
	if !i.scanner.IsSupported(absPath) {
		i.log.WithField("path", absPath).Warn("unsupported file format, skipping")
		return nil, nil
	}

	fileHash, err := media.FileHash(absPath)
	if err != nil {
		return nil, err
	}

	return i.importWithHash(absPath, fileHash, info.Size())
}

// importWithHash runs the dedup decision for a file whose content hash is
// already known. Unknown content inserts, known content reconciles; a lost
// insert race degrades to the reconcile path.
func (i *Importer) importWithHash(absPath, fileHash string, size int64) (*ImportResult, error) {
	existing, err := i.photos.GetByHash(fileHash)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if existing != nil {
		if err := i.reconcileExisting(existing, absPath, size); err != nil {
			return nil, err
		}
		return &ImportResult{PhotoID: existing.ID, Skipped: true}, nil
	}

	photo := i.buildPhoto(absPath, fileHash, size)

	if err := i.photos.Create(photo); err != nil {
		if repository.IsDuplicateHashErr(err) {
			// another worker inserted the same content first; fall back to
			// the reconcile path instead of failing the import
			winner, lookupErr := i.photos.GetByHash(fileHash)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if recErr := i.reconcileExisting(winner, absPath, size); recErr != nil {
				return nil, recErr
			}
			return &ImportResult{PhotoID: winner.ID, Skipped: true}, nil
		}
		return nil, err
	}

	i.log.WithFields(logrus.Fields{"photo_id": photo.ID, "filename": photo.Filename}).
		Info("photo imported")
	return &ImportResult{PhotoID: photo.ID, Imported: true}, nil
}

// buildPhoto assembles a new record for absPath. All collaborator calls are
// best-effort: a failure leaves the corresponding fields empty but never
// blocks insertion.
func (i *Importer) buildPhoto(absPath, fileHash string, size int64) *models.Photo {
	photo := &models.Photo{
		FileHash: fileHash,
		Filename: filepath.Base(absPath),
		Filepath: absPath,
		FileSize: size,
	}

	meta, err := i.metadata.Extract(absPath)
	if err != nil {
		i.log.WithField("path", absPath).WithError(err).Warn("metadata extraction failed")
	} else if meta != nil {
		photo.Width = meta.Width
		photo.Height = meta.Height
		photo.Format = meta.Format
		photo.TakenAt = meta.TakenAt
		photo.ExifData = meta.ExifJSON()
	}

	aiMeta, err := i.ai.Extract(absPath)
	if err != nil {
		i.log.WithField("path", absPath).WithError(err).Warn("AI metadata extraction failed")
	} else if aiMeta != nil {
		photo.AIMetadata = aiMeta.JSON()
		photo.IsAIGenerated = aiMeta.IsAIGenerated
	}

	if i.thumbs != nil {
		thumbPath, err := i.thumbs.Generate(absPath)
		if err != nil {
			i.log.WithField("path", absPath).WithError(err).Warn("thumbnail generation failed")
		} else {
			photo.ThumbnailPath = &thumbPath
		}
	}

	return photo
}

// reconcileExisting handles the found-branch of an import: same path is a
// no-op, a new path means the content was relocated and the record follows
// it. AI metadata is refreshed and the thumbnail regenerated when its stored
// target is gone.
func (i *Importer) reconcileExisting(photo *models.Photo, absPath string, size int64) error {
	if photo.Filepath == absPath {
		i.log.WithFields(logrus.Fields{"photo_id": photo.ID, "path": absPath}).
			Debug("photo already exists at same location")
		return nil
	}

	i.log.WithFields(logrus.Fields{
		"photo_id": photo.ID,
		"old_path": photo.Filepath,
		"new_path": absPath,
	}).Info("photo file moved, updating path")

	updates := map[string]interface{}{
		"filepath":      absPath,
		"filename":      filepath.Base(absPath),
		"file_size":     size,
		"date_modified": time.Now().Unix(),
	}

	if aiMeta, err := i.ai.Extract(absPath); err == nil && aiMeta != nil {
		updates["ai_metadata"] = aiMeta.JSON()
		updates["is_ai_generated"] = aiMeta.IsAIGenerated
	}

	if i.thumbs != nil && !thumbnailExists(photo.ThumbnailPath) {
		if thumbPath, err := i.thumbs.Generate(absPath); err == nil {
			updates["thumbnail_path"] = thumbPath
		} else {
			i.log.WithField("photo_id", photo.ID).WithError(err).
				Warn("thumbnail regeneration failed")
		}
	}

	return i.photos.UpdateFields(photo.ID, updates)
}

func thumbnailExists(thumbPath *string) bool {
	if thumbPath == nil || *thumbPath == "" {
		return false
	}
	_, err := os.Stat(*thumbPath)
	return err == nil
}

// UpdatePhotoFilepath rebinds a record to newPath after verifying the file's
// content hash matches the record. Used by missing-file reconciliation and by
// manual relocation.
func (i *Importer) UpdatePhotoFilepath(photoID uint, newPath string) error {
	absPath, err := filepath.Abs(newPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", newPath, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("new file path does not exist: %w", err)
	}

	photo, err := i.photos.GetByID(photoID)
	if err != nil {
		return err
	}

	fileHash, err := media.FileHash(absPath)
	if err != nil {
		return err
	}
	if fileHash != photo.FileHash {
		return fmt.Errorf("photo %d at %s: %w", photoID, absPath, ErrHashMismatch)
	}

	return i.reconcileExisting(photo, absPath, info.Size())
}

// RefreshAIMetadata re-extracts AI metadata for an existing record.
func (i *Importer) RefreshAIMetadata(photoID uint) error {
	photo, err := i.photos.GetByID(photoID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(photo.Filepath); err != nil {
		return fmt.Errorf("photo file not found: %w", err)
	}

	aiMeta, err := i.ai.Extract(photo.Filepath)
	if err != nil {
		return err
	}
	return i.photos.UpdateFields(photoID, map[string]interface{}{
		"ai_metadata":     aiMeta.JSON(),
		"is_ai_generated": aiMeta.IsAIGenerated,
	})
}

// RefreshSummary tallies a bulk AI metadata refresh.
type RefreshSummary struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// RefreshAlbumAIMetadata re-extracts AI metadata for every photo in an album.
func (i *Importer) RefreshAlbumAIMetadata(albumID uint) (*RefreshSummary, error) {
	photos, err := i.albums.GetPhotos(albumID)
	if err != nil {
		return nil, err
	}
	summary := &RefreshSummary{Total: len(photos)}
	for _, photo := range photos {
		if err := i.RefreshAIMetadata(photo.ID); err != nil {
			i.log.WithField("photo_id", photo.ID).WithError(err).Warn("AI metadata refresh failed")
			summary.Failed++
			continue
		}
		summary.Success++
	}
	return summary, nil
}

// DeletePhoto removes a record, its thumbnail file, and optionally the
// original file on disk.
func (i *Importer) DeletePhoto(photoID uint, deleteFile bool) error {
	photo, err := i.photos.GetByID(photoID)
	if err != nil {
		return err
	}

	if err := i.photos.Delete(photoID); err != nil {
		return err
	}

	if photo.ThumbnailPath != nil && *photo.ThumbnailPath != "" {
		if err := os.Remove(*photo.ThumbnailPath); err != nil && !os.IsNotExist(err) {
			i.log.WithField("photo_id", photoID).WithError(err).Warn("failed to remove thumbnail file")
		}
	}
	if deleteFile {
		if err := os.Remove(photo.Filepath); err != nil && !os.IsNotExist(err) {
			i.log.WithField("photo_id", photoID).WithError(err).Warn("failed to remove photo file")
		}
	}
	return nil
}

// decodeJSONList parses a stored JSON string array, tolerating empty blobs.
func decodeJSONList(blob string) []string {
	if blob == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(blob), &out); err != nil {
		return nil
	}
	return out
}

func encodeJSONList(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeMapJSON(blob string) map[string]string {
	if blob == "" {
		return map[string]string{}
	}
	out := map[string]string{}
	if err := json.Unmarshal([]byte(blob), &out); err != nil {
		return map[string]string{}
	}
	return out
}

func encodeMapJSON(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}
