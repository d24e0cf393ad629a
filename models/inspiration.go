package models

import "time"

// Inspiration is a reference image attached to an order at creation time.
// The file itself lives in blob storage; only its metadata is kept here.
type Inspiration struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	StoragePath string    `gorm:"not null" json:"storage_path"`
	FileName    string    `gorm:"not null" json:"file_name"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	MimeType    string    `gorm:"not null" json:"mime_type"`
	URL         string    `gorm:"-" json:"url,omitempty"` // computed, presigned or served URL
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for the Inspiration model
func (Inspiration) TableName() string {
	return "inspirations"
}
