package config

import "time"

const (
	// Complaint fields
	TitleMinLen       = 5
	TitleMaxLen       = 100
	DescriptionMinLen = 10
	DescriptionMaxLen = 1000

	// Attachments
	MaxAttachmentSize = 5 * 1024 * 1024 // 5 MiB, per file

	// Auth
	TokenTTL          = 72 * time.Hour
	MinPasswordLen    = 8
	BcryptCost        = 10
	SessionKeyPrefix  = "session:"
	NotifyChannelName = "notify:events"
)
