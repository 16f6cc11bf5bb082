package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is one entry in the append-only thread of a complaint. Comments
// are never edited or deleted; the thread is read ascending by CreatedAt.
type Comment struct {
	ID          string `gorm:"primaryKey" json:"id"`
	ComplaintID string `gorm:"type:text;not null;index" json:"complaint_id"`
	UserID      string `gorm:"type:text;not null" json:"user_id"`
	Content     string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// CommentWithAuthor is the read shape of a comment: the record itself plus
// the author's profile attributes resolved via a secondary users lookup.
type CommentWithAuthor struct {
	Comment
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}
