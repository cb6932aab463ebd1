package importer

import (
	"github.com/sirupsen/logrus"
)

// Summary tallies a directory import. AlbumError carries the association
// failure message when the imported photos could not be linked to the
// requested album; the photos themselves stay imported.
type Summary struct {
	Imported       int    `json:"imported"`
	Skipped        int    `json:"skipped"`
	Errors         int    `json:"errors"`
	TotalProcessed int    `json:"total_processed"`
	AlbumID        uint   `json:"album_id,omitempty"`
	AlbumAdded     int    `json:"album_added,omitempty"`
	AlbumSkipped   int    `json:"album_skipped,omitempty"`
	AlbumError     string `json:"album_error,omitempty"`
}

// ImportDirectory imports every supported file under root sequentially.
// An unscannable root is fatal; per-file failures are tallied and the run
// continues. With a non-zero albumID every produced record, new or
// deduplicated, is associated with that album.
func (i *Importer) ImportDirectory(root string, recursive bool, albumID uint, tagOpts *TagOptions) (*Summary, error) {
	paths, err := i.scanner.ScanDirectory(root, recursive)
	if err != nil {
		return nil, err
	}

	summary := &Summary{AlbumID: albumID}
	if len(paths) == 0 {
		i.log.WithField("directory", root).Info("no supported image files found")
		return summary, nil
	}

	i.log.WithFields(logrus.Fields{"directory": root, "files": len(paths)}).
		Info("starting directory import")

	var photoIDs []uint
	for _, path := range paths {
		summary.TotalProcessed++

		result, err := i.ImportPhoto(path)
		if err != nil {
			i.log.WithField("path", path).WithError(err).Error("import failed")
			summary.Errors++
			continue
		}
		if result == nil {
			summary.Errors++
			continue
		}

		photoIDs = append(photoIDs, result.PhotoID)
		if result.Imported {
			summary.Imported++
			if tagOpts != nil && tagOpts.ImportTags {
				if _, err := i.ImportTagsForPhoto(result.PhotoID, path, *tagOpts); err != nil {
					i.log.WithField("path", path).WithError(err).Warn("tag import failed")
				}
			}
		} else {
			summary.Skipped++
		}
	}

	i.associateAlbum(summary, photoIDs)

	i.log.WithFields(logrus.Fields{
		"directory": root,
		"imported":  summary.Imported,
		"skipped":   summary.Skipped,
		"errors":    summary.Errors,
	}).Info("directory import finished")

	return summary, nil
}

// associateAlbum links photoIDs to summary.AlbumID. A failure is surfaced on
// the summary and counted as one error rather than failing the import.
func (i *Importer) associateAlbum(summary *Summary, photoIDs []uint) {
	if summary.AlbumID == 0 || len(photoIDs) == 0 {
		return
	}
	added, skipped, err := i.albums.AddPhotos(summary.AlbumID, photoIDs)
	if err != nil {
		i.log.WithField("album_id", summary.AlbumID).WithError(err).
			Error("album association failed")
		summary.AlbumError = err.Error()
		summary.Errors++
		return
	}
	summary.AlbumAdded = added
	summary.AlbumSkipped = skipped
}

// MultiSummary aggregates per-root summaries of a multi-directory import.
type MultiSummary struct {
	Imported       int                 `json:"imported"`
	Skipped        int                 `json:"skipped"`
	Errors         int                 `json:"errors"`
	TotalProcessed int                 `json:"total_processed"`
	Directories    map[string]*Summary `json:"directories"`
}

// ImportDirectories imports several roots in sequence. A root that cannot be
// scanned is recorded as a single error for that root and the rest still run.
func (i *Importer) ImportDirectories(roots []string, recursive bool, albumID uint, tagOpts *TagOptions) *MultiSummary {
	total := &MultiSummary{Directories: make(map[string]*Summary, len(roots))}
	for _, root := range roots {
		summary, err := i.ImportDirectory(root, recursive, albumID, tagOpts)
		if err != nil {
			i.log.WithField("directory", root).WithError(err).Error("directory import failed")
			total.Errors++
			total.Directories[root] = &Summary{Errors: 1}
			continue
		}
		total.Imported += summary.Imported
		total.Skipped += summary.Skipped
		total.Errors += summary.Errors
		total.TotalProcessed += summary.TotalProcessed
		total.Directories[root] = summary
	}
	return total
}
