package models

// Photo represents a catalogued photo in the database using GORM.
// It corresponds to the 'photos' table.
//
// FileHash is the canonical identity of a photo: two byte-identical files
// map to the same record no matter where they live on disk. Filepath is
// therefore mutable and is rewritten whenever known content shows up at a
// new location.
type Photo struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	FileHash string `gorm:"uniqueIndex;not null" json:"file_hash"` // hex SHA-256, immutable
	Filename string `gorm:"not null;index" json:"filename"`
	Filepath string `gorm:"not null" json:"filepath"` // absolute path, mutable
	FileSize int64  `gorm:"not null" json:"file_size"`

	Width  *int   `gorm:"" json:"width,omitempty"`  // Nullable
	Height *int   `gorm:"" json:"height,omitempty"` // Nullable
	Format string `gorm:"" json:"format,omitempty"` // e.g. "jpeg", "png"

	TakenAt   *int64 `gorm:"index" json:"taken_at,omitempty"` // Nullable, Unix timestamp
	ExifData  string `gorm:"" json:"exif_data,omitempty"`     // JSON object of residual EXIF fields
	ExtraData string `gorm:"" json:"extra_data,omitempty"`    // JSON bag for forward compatibility

	AIMetadata    string `gorm:"" json:"ai_metadata,omitempty"` // JSON blob, see media.AIMetadata
	IsAIGenerated bool   `gorm:"not null;default:false" json:"is_ai_generated"`

	ThumbnailPath *string `gorm:"" json:"thumbnail_path,omitempty"` // Nullable

	// Tag tiers, all JSON-encoded string arrays. Tags is the flat legacy set;
	// the three tiers are written by the sidecar tag importer.
	Tags            string `gorm:"" json:"tags,omitempty"`
	SimpleTags      string `gorm:"" json:"simple_tags,omitempty"`
	NormalTags      string `gorm:"" json:"normal_tags,omitempty"`
	DetailedTags    string `gorm:"" json:"detailed_tags,omitempty"`
	TagTranslations string `gorm:"" json:"tag_translations,omitempty"` // JSON object tag -> translation

	// User-mutable fields, written outside the import path.
	Rating     int    `gorm:"not null;default:0" json:"rating"`
	IsFavorite bool   `gorm:"not null;default:false" json:"is_favorite"`
	Notes      string `gorm:"" json:"notes,omitempty"`

	DateAdded    int64 `gorm:"not null" json:"date_added"`    // Unix timestamp, set on insert
	DateModified int64 `gorm:"not null" json:"date_modified"` // touched on path/size updates
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}
