package middleware

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hushhome/hushhome-golang/internal/auth"
	"github.com/hushhome/hushhome-golang/internal/models"
)

// unauthorized aborts the request with the standard error envelope.
func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}

// AuthMiddleware validates the Bearer token and puts the caller's user ID
// into the request context under "userID". It also rejects suspended
// accounts, so a suspension takes effect on the next request.
func AuthMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "Invalid token format (must be Bearer)")
			return
		}
		tokenString := parts[1]

		// 2. --- Validate Token ---
		userID, err := auth.ValidateToken(tokenString)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		// 3. --- Reject Suspended Accounts ---
		var status string
		err = db.QueryRow("SELECT status FROM users WHERE id = ?", userID).Scan(&status)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}
		if status == models.StatusSuspended {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "Account suspended"},
			})
			return
		}

		// 4. --- Success ---
		c.Set("userID", userID)
		c.Next()
	}
}
