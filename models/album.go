package models

// Album represents a user-defined grouping of photos.
type Album struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;uniqueIndex" json:"name"`
	Description string `gorm:"" json:"description,omitempty"`
	CreatedAt   int64  `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt   int64  `gorm:"not null" json:"updated_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Album) TableName() string {
	return "albums"
}

// PhotoAlbum is the photo/album association row. The composite unique index
// makes batched re-association idempotent.
type PhotoAlbum struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	PhotoID uint  `gorm:"not null;uniqueIndex:idx_photo_album" json:"photo_id"`
	AlbumID uint  `gorm:"not null;uniqueIndex:idx_photo_album;index" json:"album_id"`
	AddedAt int64 `gorm:"not null" json:"added_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (PhotoAlbum) TableName() string {
	return "photo_albums"
}
