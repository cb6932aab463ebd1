package media

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Metadata holds the descriptive fields extracted from an image file at
// import time. ExifFields carries the residual EXIF tags not promoted to a
// named field, ready to be stored as a JSON blob.
type Metadata struct {
	Width   *int   `json:"width,omitempty"`
	Height  *int   `json:"height,omitempty"`
	Format  string `json:"format,omitempty"`
	TakenAt *int64 `json:"taken_at,omitempty"` // Unix timestamp

	CameraMake  *string `json:"camera_make,omitempty"`
	CameraModel *string `json:"camera_model,omitempty"`
	LensModel   *string `json:"lens_model,omitempty"`

	ExifFields map[string]string `json:"exif_fields,omitempty"`
}

// ExifJSON renders the residual EXIF fields as a JSON object string, or ""
// when there are none.
func (m *Metadata) ExifJSON() string {
	if m == nil || len(m.ExifFields) == 0 {
		return ""
	}
	b, err := json.Marshal(m.ExifFields)
	if err != nil {
		return ""
	}
	return string(b)
}

// helper to safely get a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	// val string might have null chars at the end
	val := strings.Trim(strings.TrimRight(tag.String(), "\x00"), "\"")
	if val == "" {
		return nil
	}
	return &val
}

// residual tags kept in the ExifFields bag when present
var residualExifTags = []exif.FieldName{
	exif.FNumber,
	exif.ExposureTime,
	exif.ISOSpeedRatings,
	exif.FocalLength,
	exif.Orientation,
	exif.Software,
	exif.ImageDescription,
	exif.GPSLatitude,
	exif.GPSLongitude,
}

// ExtractMetadata reads dimensions, format and EXIF data from an image file.
// A file without EXIF data is not an error; only an unreadable or undecodable
// file fails.
func ExtractMetadata(filePath string) (*Metadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	meta := &Metadata{}

	config, format, err := image.DecodeConfig(file)
	if err == nil {
		w, h := config.Width, config.Height
		meta.Width = &w
		meta.Height = &h
		meta.Format = format
	}

	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("metadata: failed to seek file %s: %w", filePath, err)
	}

	exifData, err := exif.Decode(file)
	if err != nil {
		// file might just lack EXIF data; return what we have
		return meta, nil
	}

	meta.CameraMake = getString(exifData, exif.Make)
	meta.CameraModel = getString(exifData, exif.Model)
	meta.LensModel = getString(exifData, exif.LensModel)

	if dt, err := exifData.DateTime(); err == nil {
		ts := dt.Unix()
		meta.TakenAt = &ts
	}

	fields := make(map[string]string)
	for _, tagName := range residualExifTags {
		if v := getString(exifData, tagName); v != nil {
			fields[string(tagName)] = *v
		}
	}
	if len(fields) > 0 {
		meta.ExifFields = fields
	}

	return meta, nil
}
