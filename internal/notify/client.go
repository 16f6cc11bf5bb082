package notify

import "gripelogger/backend/internal/models"

// Client is the interface for one connected dashboard. It abstracts the
// underlying transport so the hub can manage connections uniformly and
// tests can substitute doubles.
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string
	// GetRole returns that user's role, which decides event fanout:
	// admins receive every event, students only events about complaints
	// they own.
	GetRole() models.Role

	// GetSendChannel returns the channel the hub delivers events on.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and send channel.
	Close()
}
