// Package middleware holds the authentication and role gate applied in
// front of the protected API routes.
package middleware

import (
	"net/http"

	"gripelogger/backend/internal/auth"
	"gripelogger/backend/internal/models"
	"gripelogger/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Context keys populated by RequireAuth.
const (
	UserIDKey    = "userID"
	RoleKey      = "role"
	SessionIDKey = "sessionID"
)

// RequireAuth verifies the bearer token and checks that its session has
// not been revoked by sign-out. The token may also arrive as a "token"
// query parameter, which the websocket endpoint uses.
func RequireAuth(a auth.Auth, s storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		claims, err := a.VerifyToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}

		alive, err := s.SessionExists(claims.SessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check session"})
			return
		}
		if !alive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session has been signed out"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Set(SessionIDKey, claims.SessionID)
		c.Next()
	}
}

// RequireRole gates an area to one role. A caller holding the other
// role is answered 403 with their own area in the body, so the client
// redirects there rather than to login.
func RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(RoleKey)
		actual, ok := role.(models.Role)
		if !ok || actual == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role not resolved"})
			return
		}
		if actual != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":       "Wrong area for your role",
				"redirect_to": AreaPath(actual),
			})
			return
		}
		c.Next()
	}
}

// CurrentUser pulls the authenticated identity out of the Gin context.
func CurrentUser(c *gin.Context) (userID string, role models.Role) {
	if v, ok := c.Get(UserIDKey); ok {
		userID, _ = v.(string)
	}
	if v, ok := c.Get(RoleKey); ok {
		role, _ = v.(models.Role)
	}
	return userID, role
}
