// Package notify fans complaint change events out to connected
// dashboards so they know to refetch. Events travel through Redis
// pub/sub, so fanout works across server instances.
package notify

import (
	"encoding/json"
	"log"

	"gripelogger/backend/internal/models"
	"gripelogger/backend/internal/storage"
)

// Manager owns the set of connected clients and routes events to them.
// All state changes flow through its channels and are applied by the
// single Run goroutine.
type Manager struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	// EventCh receives decoded events from the Redis listener. Tests
	// feed it directly.
	EventCh chan models.Event

	Storage *storage.Service
}

func NewManager(s *storage.Service) *Manager {
	return &Manager{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan models.Event, 16),
		Storage:      s,
	}
}

// startEventListener subscribes to the Redis notify channel and feeds
// decoded events into EventCh.
func (m *Manager) startEventListener() {
	if m.Storage == nil {
		return
	}
	go func() {
		pubsub := m.Storage.SubscribeEvents()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: Failed to decode notify event: %v", err)
				continue
			}
			m.EventCh <- ev
		}
	}()
}

// Run is the hub dispatcher. It must be started exactly once.
func (m *Manager) Run() {
	m.startEventListener()

	for {
		select {
		case client := <-m.RegisterCh:
			// A reconnect replaces the previous connection for the user.
			if old, ok := m.Clients[client.GetUserID()]; ok {
				old.Close()
			}
			m.Clients[client.GetUserID()] = client

		case client := <-m.UnregisterCh:
			if current, ok := m.Clients[client.GetUserID()]; ok && current == client {
				delete(m.Clients, client.GetUserID())
				client.Close()
			}

		case ev := <-m.EventCh:
			m.dispatch(ev)
		}
	}
}

// dispatch delivers an event to every client entitled to it. A client
// whose send buffer is full is dropped rather than allowed to stall the
// hub.
func (m *Manager) dispatch(ev models.Event) {
	for id, client := range m.Clients {
		if !wantsEvent(client, ev) {
			continue
		}
		select {
		case client.GetSendChannel() <- ev:
		default:
			delete(m.Clients, id)
			client.Close()
		}
	}
}

// wantsEvent applies the fanout rule: admins see everything, a student
// sees only events about complaints they own.
func wantsEvent(c Client, ev models.Event) bool {
	if c.GetRole() == models.RoleAdmin {
		return true
	}
	return ev.OwnerID != "" && ev.OwnerID == c.GetUserID()
}
