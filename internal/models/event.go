package models

// Event types fanned out to connected dashboards. Payloads are refetch
// hints only; clients reload their lists wholesale on receipt.
const (
	EventComplaintCreated  = "complaint_created"
	EventComplaintUpdated  = "complaint_updated"
	EventComplaintDeleted  = "complaint_deleted"
	EventCommentAdded      = "comment_added"
	EventAttachmentAdded   = "attachment_added"
	EventAttachmentRemoved = "attachment_removed"
)

// Event is a notification about a change to a complaint. OwnerID is the
// complaint owner, used by the hub to target the student's dashboard;
// admins receive every event.
type Event struct {
	Type        string `json:"type"`
	ComplaintID string `json:"complaint_id"`
	OwnerID     string `json:"owner_id,omitempty"`
}
