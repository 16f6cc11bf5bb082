// Package complaint holds the lifecycle and authorization rules for
// complaint records. Everything here is pure: handlers and the admin CLI
// call these checks before touching storage, so the policy lives server
// side rather than in whichever client happens to render the form.
package complaint

import (
	"errors"

	"gripelogger/backend/internal/models"
)

var (
	// ErrForbidden indicates the actor lacks authority for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotPending indicates an owner mutation on a complaint that has
	// already left the pending state.
	ErrNotPending = errors.New("complaint is no longer pending")
	// ErrBadTransition indicates a status change the lifecycle does not
	// allow, such as reopening a resolved complaint.
	ErrBadTransition = errors.New("invalid status transition")
)

// CanView reports whether the actor may read a complaint and its
// comments and attachments: the owning student, or any admin.
func CanView(actorID string, role models.Role, c *models.Complaint) bool {
	return role == models.RoleAdmin || c.StudentID == actorID
}

// CheckOwnerEdit validates an owner mutation of title, description,
// category or priority. Only the owner may edit, and only while the
// complaint is still pending.
func CheckOwnerEdit(actorID string, c *models.Complaint) error {
	if c.StudentID != actorID {
		return ErrForbidden
	}
	if c.Status != models.StatusPending {
		return ErrNotPending
	}
	return nil
}

// CheckOwnerDelete validates an owner deleting their complaint. Deletion
// follows the same rule as editing: pending only.
func CheckOwnerDelete(actorID string, c *models.Complaint) error {
	return CheckOwnerEdit(actorID, c)
}

// CheckTransition validates a status change. The lifecycle is monotonic:
// pending -> in_progress -> resolved, with pending -> resolved allowed
// as a shortcut. Writing the current status again is permitted so an
// admin can amend a resolution note without moving state.
func CheckTransition(from, to models.Status) error {
	if !to.Valid() {
		return ErrBadTransition
	}
	if from == to {
		return nil
	}
	switch from {
	case models.StatusPending:
		return nil // pending may move to either later state
	case models.StatusInProgress:
		if to == models.StatusResolved {
			return nil
		}
	}
	return ErrBadTransition
}

// CheckAdminUpdate validates an admin writing status, resolution note or
// assignment. Only admin actors hold transition authority.
func CheckAdminUpdate(role models.Role, from, to models.Status) error {
	if role != models.RoleAdmin {
		return ErrForbidden
	}
	return CheckTransition(from, to)
}

// CheckAttachmentDelete validates removal of an attachment: permitted
// only to the original uploader.
func CheckAttachmentDelete(actorID string, att *models.Attachment) error {
	if att.UploadedBy != actorID {
		return ErrForbidden
	}
	return nil
}
