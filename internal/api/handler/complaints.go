package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"gripelogger/backend/internal/api/middleware"
	"gripelogger/backend/internal/complaint"
	"gripelogger/backend/internal/config"
	"gripelogger/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// validateComplaintFields returns field-level validation messages, empty
// when everything passes. Values are validated after trimming, since the
// trimmed form is what gets stored. Limits count characters, not bytes,
// so non-ASCII titles are not penalized.
func validateComplaintFields(title, description string) map[string]string {
	errs := make(map[string]string)
	if n := utf8.RuneCountInString(title); n < config.TitleMinLen || n > config.TitleMaxLen {
		errs["title"] = fmt.Sprintf("Title must be between %d and %d characters", config.TitleMinLen, config.TitleMaxLen)
	}
	if n := utf8.RuneCountInString(description); n < config.DescriptionMinLen || n > config.DescriptionMaxLen {
		errs["description"] = fmt.Sprintf("Description must be between %d and %d characters", config.DescriptionMinLen, config.DescriptionMaxLen)
	}
	return errs
}

type createComplaintRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Category    string          `json:"category"`
	Priority    models.Priority `json:"priority"`
}

// CreateComplaint submits a new complaint for the calling student. The
// owner and the pending status are set server-side regardless of input.
func (h *Handler) CreateComplaint(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)

	var req createComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if errs := validateComplaintFields(title, description); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	if req.Priority != "" && !req.Priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"priority": "Unknown priority"}})
		return
	}

	cm := &models.Complaint{
		StudentID:   userID,
		Title:       title,
		Description: description,
		Category:    strings.TrimSpace(req.Category),
		Priority:    req.Priority,
		Status:      models.StatusPending,
	}
	if err := h.Storage.CreateComplaint(cm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit complaint"})
		return
	}

	h.publish(models.EventComplaintCreated, cm.ID, cm.StudentID)
	h.Alerts.ComplaintCreated(cm)

	c.JSON(http.StatusCreated, cm)
}

// ListComplaints returns the caller's visible complaints newest first:
// students see their own, admins see everything. An optional ?status=
// filter narrows to one lifecycle state.
func (h *Handler) ListComplaints(c *gin.Context) {
	userID, role := middleware.CurrentUser(c)

	status := models.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
		return
	}

	scope := userID
	if role == models.RoleAdmin {
		scope = ""
	}

	complaints, err := h.Storage.ListComplaints(scope, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load complaints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// loadVisibleComplaint fetches a complaint and enforces the view rule,
// writing the error response itself when access fails.
func (h *Handler) loadVisibleComplaint(c *gin.Context, id string) *models.Complaint {
	cm, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load complaint"})
		return nil
	}
	if cm == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		return nil
	}

	userID, role := middleware.CurrentUser(c)
	if !complaint.CanView(userID, role, cm) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your complaint"})
		return nil
	}
	return cm
}

// GetComplaint returns one complaint to its owner or any admin.
func (h *Handler) GetComplaint(c *gin.Context) {
	if cm := h.loadVisibleComplaint(c, c.Param("id")); cm != nil {
		c.JSON(http.StatusOK, cm)
	}
}

type updateComplaintRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Priority    *models.Priority `json:"priority"`
}

// UpdateComplaint lets the owner amend title, description, category or
// priority while the complaint is still pending.
func (h *Handler) UpdateComplaint(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)

	cm, err := h.Storage.GetComplaintByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load complaint"})
		return
	}
	if cm == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		return
	}

	if err := complaint.CheckOwnerEdit(userID, cm); err != nil {
		if errors.Is(err, complaint.ErrNotPending) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only pending complaints can be edited"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your complaint"})
		return
	}

	var req updateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := cm.Title
	description := cm.Description
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}
	if errs := validateComplaintFields(title, description); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	if req.Priority != nil && !req.Priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"priority": "Unknown priority"}})
		return
	}

	cm.Title = title
	cm.Description = description
	if req.Category != nil {
		cm.Category = strings.TrimSpace(*req.Category)
	}
	if req.Priority != nil {
		cm.Priority = *req.Priority
	}

	if err := h.Storage.UpdateComplaint(cm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update complaint"})
		return
	}

	h.publish(models.EventComplaintUpdated, cm.ID, cm.StudentID)
	c.JSON(http.StatusOK, cm)
}

// DeleteComplaint lets the owner withdraw a complaint that is still
// pending.
func (h *Handler) DeleteComplaint(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)

	cm, err := h.Storage.GetComplaintByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load complaint"})
		return
	}
	if cm == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		return
	}

	if err := complaint.CheckOwnerDelete(userID, cm); err != nil {
		if errors.Is(err, complaint.ErrNotPending) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only pending complaints can be deleted"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your complaint"})
		return
	}

	if err := h.Storage.DeleteComplaint(cm.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete complaint"})
		return
	}

	h.publish(models.EventComplaintDeleted, cm.ID, cm.StudentID)
	c.JSON(http.StatusOK, gin.H{"message": "Complaint deleted"})
}

type triageRequest struct {
	Status         models.Status `json:"status" binding:"required"`
	ResolutionNote *string       `json:"resolution_note"`
	AssignedTo     *string       `json:"assigned_to"`
}

// TriageComplaint is the admin write: status transitions, resolution
// notes, and assignment to an admin.
func (h *Handler) TriageComplaint(c *gin.Context) {
	_, role := middleware.CurrentUser(c)

	cm, err := h.Storage.GetComplaintByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load complaint"})
		return
	}
	if cm == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		return
	}

	var req triageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := complaint.CheckAdminUpdate(role, cm.Status, req.Status); err != nil {
		if errors.Is(err, complaint.ErrBadTransition) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": fmt.Sprintf("Cannot move complaint from %s to %s", cm.Status, req.Status),
			})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
		return
	}

	if req.AssignedTo != nil && *req.AssignedTo != "" {
		assigneeRole, err := h.Storage.GetRoleForUser(*req.AssignedTo)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check assignee"})
			return
		}
		if assigneeRole != models.RoleAdmin {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Assignee must be an admin"})
			return
		}
	}

	wasResolved := cm.Status == models.StatusResolved
	cm.Status = req.Status
	if req.ResolutionNote != nil {
		cm.ResolutionNote = strings.TrimSpace(*req.ResolutionNote)
	}
	if req.AssignedTo != nil {
		cm.AssignedTo = *req.AssignedTo
	}

	if err := h.Storage.UpdateComplaint(cm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update complaint"})
		return
	}

	h.publish(models.EventComplaintUpdated, cm.ID, cm.StudentID)
	if cm.Status == models.StatusResolved && !wasResolved {
		h.Alerts.ComplaintResolved(cm)
	}

	c.JSON(http.StatusOK, cm)
}

// Stats backs the admin dashboard counters.
func (h *Handler) Stats(c *gin.Context) {
	counts, err := h.Storage.CountComplaintsByStatus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	total := counts[models.StatusPending] + counts[models.StatusInProgress] + counts[models.StatusResolved]
	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"pending":     counts[models.StatusPending],
		"in_progress": counts[models.StatusInProgress],
		"resolved":    counts[models.StatusResolved],
	})
}
