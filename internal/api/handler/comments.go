package handler

import (
	"net/http"
	"strings"

	"gripelogger/backend/internal/api/middleware"
	"gripelogger/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListComments returns the complaint's thread ascending by creation
// time, with author names and emails resolved via a users lookup.
func (h *Handler) ListComments(c *gin.Context) {
	cm := h.loadVisibleComplaint(c, c.Param("id"))
	if cm == nil {
		return
	}

	comments, err := h.Storage.ListComments(cm.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comments"})
		return
	}

	// Collect the distinct author IDs and load their profiles in one go.
	seen := make(map[string]bool)
	var ids []string
	for _, cmt := range comments {
		if !seen[cmt.UserID] {
			seen[cmt.UserID] = true
			ids = append(ids, cmt.UserID)
		}
	}

	users, err := h.Storage.GetUsersByIDs(ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comment authors"})
		return
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]models.CommentWithAuthor, 0, len(comments))
	for _, cmt := range comments {
		entry := models.CommentWithAuthor{Comment: cmt, AuthorName: "Unknown User"}
		if u, ok := byID[cmt.UserID]; ok {
			entry.AuthorName = u.Name
			entry.AuthorEmail = u.Email
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, gin.H{"comments": out})
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// CreateComment appends to the thread. Whitespace-only content is
// rejected before any store call is made.
func (h *Handler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Comment cannot be empty"})
		return
	}

	cm := h.loadVisibleComplaint(c, c.Param("id"))
	if cm == nil {
		return
	}

	userID, _ := middleware.CurrentUser(c)
	comment := &models.Comment{
		ComplaintID: cm.ID,
		UserID:      userID,
		Content:     content,
	}
	if err := h.Storage.CreateComment(comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	h.publish(models.EventCommentAdded, cm.ID, cm.StudentID)
	c.JSON(http.StatusCreated, comment)
}
