package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Thumbnailer generates thumbnail files into a single directory, saving every
// thumbnail as a UUID-named JPEG so originals with clashing basenames never
// collide.
type Thumbnailer struct {
	Dir     string
	MaxSize int // longest side, px
}

// NewThumbnailer creates a Thumbnailer writing into dir with the given
// maximum edge length.
func NewThumbnailer(dir string, maxSize int) *Thumbnailer {
	if maxSize <= 0 {
		maxSize = 300
	}
	return &Thumbnailer{Dir: dir, MaxSize: maxSize}
}

// Generate creates a thumbnail for the image at originalPath and returns the
// full path where it was saved.
func (t *Thumbnailer) Generate(originalPath string) (string, error) {
	if err := os.MkdirAll(t.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory %s: %w", t.Dir, err)
	}

	img, err := imaging.Open(originalPath)
	if err != nil {
		return "", fmt.Errorf("failed to open image %s: %w", originalPath, err)
	}

	thumb := imaging.Fit(img, t.MaxSize, t.MaxSize, imaging.Lanczos)

	thumbUUID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID for thumbnail: %w", err)
	}
	thumbnailSavePath := filepath.Join(t.Dir, thumbUUID.String()+".jpg")

	if err := imaging.Save(thumb, thumbnailSavePath, imaging.JPEGQuality(80)); err != nil {
		return "", fmt.Errorf("failed to save thumbnail to %s: %w", thumbnailSavePath, err)
	}

	return thumbnailSavePath, nil
}
