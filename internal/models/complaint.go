package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Priority is the urgency a student attaches to a complaint.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Complaint is a student-submitted issue record. The owner (StudentID) is
// set at creation and never changes. Status, ResolutionNote and AssignedTo
// are written only by admin actors.
type Complaint struct {
	ID          string   `gorm:"primaryKey" json:"id"`
	StudentID   string   `gorm:"type:text;not null;index" json:"student_id"`
	Title       string   `gorm:"type:text;not null" json:"title"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Category    string   `gorm:"type:text" json:"category,omitempty"`
	Priority    Priority `gorm:"type:text;not null" json:"priority"`
	Status      Status   `gorm:"type:text;not null;index" json:"status"`

	// ResolutionNote is admin-authored free text explaining how the
	// complaint was closed.
	ResolutionNote string `gorm:"type:text" json:"resolution_note,omitempty"`
	// AssignedTo holds the user ID of the admin handling the complaint.
	AssignedTo string `gorm:"type:text" json:"assigned_to,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID and defaults status and priority so records
// created outside the HTTP layer (admin CLI, tests) stay well-formed.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	return
}
