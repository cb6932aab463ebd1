package importer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Rex818/Photo666-sub001/media"
)

// FixedFile records one relocated photo.
type FixedFile struct {
	PhotoID uint   `json:"photo_id"`
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// MissingFile records one photo whose file could not be found anywhere.
type MissingFile struct {
	PhotoID  uint   `json:"photo_id"`
	Filename string `json:"filename"`
	OldPath  string `json:"old_path"`
}

// MissingFileReport summarizes a reconciliation sweep.
type MissingFileReport struct {
	TotalPhotos int           `json:"total_photos"`
	Missing     int           `json:"missing"`
	Fixed       int           `json:"fixed"`
	Errors      int           `json:"errors"`
	FixedFiles  []FixedFile   `json:"fixed_files,omitempty"`
	StillLost   []MissingFile `json:"still_missing,omitempty"`
}

// FindAndFixMissingFiles sweeps the catalog for records whose file is gone
// from disk, searches the configured directories for a file with the same
// name, and rebinds the record only when the candidate's content hash matches
// the stored one. A name collision with different content is never accepted.
func (i *Importer) FindAndFixMissingFiles() (*MissingFileReport, error) {
	photos, err := i.photos.ListAll()
	if err != nil {
		return nil, err
	}

	report := &MissingFileReport{TotalPhotos: len(photos)}

	for _, photo := range photos {
		if _, err := os.Stat(photo.Filepath); err == nil {
			continue
		}
		report.Missing++

		i.log.WithFields(logrus.Fields{
			"photo_id": photo.ID,
			"path":     photo.Filepath,
		}).Info("photo file missing, searching")

		newPath := i.searchForFile(photo.Filename, photo.FileHash)
		if newPath == "" {
			report.StillLost = append(report.StillLost, MissingFile{
				PhotoID:  photo.ID,
				Filename: photo.Filename,
				OldPath:  photo.Filepath,
			})
			continue
		}

		if err := i.UpdatePhotoFilepath(photo.ID, newPath); err != nil {
			i.log.WithField("photo_id", photo.ID).WithError(err).Error("failed to rebind photo")
			report.Errors++
			report.StillLost = append(report.StillLost, MissingFile{
				PhotoID:  photo.ID,
				Filename: photo.Filename,
				OldPath:  photo.Filepath,
			})
			continue
		}

		report.Fixed++
		report.FixedFiles = append(report.FixedFiles, FixedFile{
			PhotoID: photo.ID,
			OldPath: photo.Filepath,
			NewPath: newPath,
		})
		i.log.WithFields(logrus.Fields{
			"photo_id": photo.ID,
			"new_path": newPath,
		}).Info("photo file relocated")
	}

	i.log.WithFields(logrus.Fields{
		"total":   report.TotalPhotos,
		"missing": report.Missing,
		"fixed":   report.Fixed,
		"errors":  report.Errors,
	}).Info("missing file sweep finished")

	return report, nil
}

// searchForFile walks the configured search directories for a file named
// filename whose content hashes to wantHash. Returns the first verified match
// or "". Unreadable subtrees and hash failures on candidates are skipped.
func (i *Importer) searchForFile(filename, wantHash string) string {
	var errStop = errors.New("found")

	for _, dir := range i.searchDirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}

		var found string
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || d.Name() != filename {
				return nil
			}
			hash, err := media.FileHash(path)
			if err != nil {
				return nil
			}
			if hash == wantHash {
				found = path
				return errStop
			}
			// same name, different content
			i.log.WithField("path", path).Debug("name match rejected, content differs")
			return nil
		})
		if err != nil && err != errStop {
			continue
		}
		if found != "" {
			return found
		}
	}
	return ""
}
