package notify_test

import (
	"sync"

	"gripelogger/backend/internal/models"
)

// mockClient is a test double for one connected dashboard.
type mockClient struct {
	userID string
	role   models.Role
	send   chan models.Event

	mu     sync.Mutex
	closed bool
}

func newMockClient(userID string, role models.Role, buffer int) *mockClient {
	return &mockClient{
		userID: userID,
		role:   role,
		send:   make(chan models.Event, buffer),
	}
}

func (c *mockClient) GetUserID() string { return c.userID }

func (c *mockClient) GetRole() models.Role { return c.role }

func (c *mockClient) GetSendChannel() chan<- models.Event { return c.send }

func (c *mockClient) Run() {}

func (c *mockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *mockClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
