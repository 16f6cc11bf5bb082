package handler

import (
	"errors"
	"net/http"

	"gripelogger/backend/internal/api/middleware"
	"gripelogger/backend/internal/auth"
	"gripelogger/backend/internal/config"
	"gripelogger/backend/internal/models"
	"gripelogger/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// SignUp creates a user with the student role and signs them in.
// Admin accounts are granted through the ops CLI, never self-service.
func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := &models.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
	if err := h.Storage.CreateUser(user, models.RoleStudent); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	h.issueToken(c, http.StatusCreated, user, models.RoleStudent)
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignIn verifies credentials and issues a token carrying the resolved
// role.
func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Storage.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	role, err := h.Storage.GetRoleForUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve role"})
		return
	}
	if role == "" {
		// No role row means the account is not provisioned; issuing a
		// token here would let the gate leak protected content.
		c.JSON(http.StatusForbidden, gin.H{"error": "No role assigned to this account"})
		return
	}

	h.issueToken(c, http.StatusOK, user, role)
}

func (h *Handler) issueToken(c *gin.Context, status int, user *models.User, role models.Role) {
	token, sessionID, err := h.Auth.GenerateToken(user.ID, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}
	if err := h.Storage.SaveSession(sessionID, user.ID, config.TokenTTL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(status, gin.H{"token": token, "user": user, "role": role})
}

// SignOut revokes the presented token's session. Outstanding copies of
// the token stop working immediately.
func (h *Handler) SignOut(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)
	if err := h.Storage.DeleteSession(sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Me returns the caller's profile and role, the session introspection
// the dashboards run on load.
func (h *Handler) Me(c *gin.Context) {
	userID, role := middleware.CurrentUser(c)

	user, err := h.Storage.GetUserByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "role": role})
}
