package handler

import (
	"log"

	"gripelogger/backend/internal/auth"
	"gripelogger/backend/internal/blobstore"
	"gripelogger/backend/internal/models"
	"gripelogger/backend/internal/notify"
	"gripelogger/backend/internal/storage"
	"gripelogger/backend/internal/telegram"
)

// Handler carries the collaborators every endpoint needs.
type Handler struct {
	Storage storage.Storage
	Auth    auth.Auth
	Blobs   blobstore.Store
	Hub     *notify.Manager
	Alerts  telegram.Alerter
}

func NewHandler(s storage.Storage, a auth.Auth, blobs blobstore.Store, hub *notify.Manager, alerts telegram.Alerter) *Handler {
	if alerts == nil {
		alerts = telegram.NopAlerter{}
	}
	return &Handler{Storage: s, Auth: a, Blobs: blobs, Hub: hub, Alerts: alerts}
}

// publish sends a dashboard refresh event. Notification failures never
// fail the write that triggered them.
func (h *Handler) publish(evType, complaintID, ownerID string) {
	ev := models.Event{Type: evType, ComplaintID: complaintID, OwnerID: ownerID}
	if err := h.Storage.PublishEvent(ev); err != nil {
		log.Printf("ERROR: Failed to publish %s event for complaint %s: %v", evType, complaintID, err)
	}
}
