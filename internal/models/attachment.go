package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment is the metadata record for a file blob scoped to one
// complaint. The blob itself lives in the object store under FilePath;
// the metadata record is the source of truth for listing.
type Attachment struct {
	ID          string `gorm:"primaryKey" json:"id"`
	ComplaintID string `gorm:"type:text;not null;index" json:"complaint_id"`
	FileName    string `gorm:"type:text;not null" json:"file_name"`
	FilePath    string `gorm:"type:text;not null" json:"file_path"`
	FileSize    int64  `gorm:"not null" json:"file_size"`
	ContentType string `gorm:"type:text" json:"content_type"`
	UploadedBy  string `gorm:"type:text;not null" json:"uploaded_by"`

	CreatedAt time.Time `json:"created_at"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
