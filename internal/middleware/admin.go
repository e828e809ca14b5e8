package middleware

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hushhome/hushhome-golang/internal/models"
)

//
// --- Role-Based Middleware ---
//
// AdminMiddleware must run AFTER AuthMiddleware: it reads the 'userID'
// set by the auth layer, looks up the user's role, and only lets ADMIN
// accounts through. The client-side guard is cosmetic; every admin route
// goes through here.
//

// queryUserRole is a helper to get the user's role from the DB.
func queryUserRole(db *sql.DB, userID int64) (string, error) {
	var role string
	err := db.QueryRow("SELECT role FROM users WHERE id = ?", userID).Scan(&role)
	if err != nil {
		return "", err
	}
	return role, nil
}

// AdminMiddleware restricts a route group to ADMIN accounts.
func AdminMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get userID from AuthMiddleware
		userIDRaw, exists := c.Get("userID")
		if !exists {
			unauthorized(c, "User ID not found in context (AuthMiddleware must run first)")
			return
		}
		userID := userIDRaw.(int64)

		// 2. Query DB for user's role
		role, err := queryUserRole(db, userID)
		if err != nil {
			status := http.StatusInternalServerError
			code := "SERVER_ERROR"
			message := "Failed to check role"
			if err == sql.ErrNoRows {
				status = http.StatusForbidden
				code = "FORBIDDEN"
				message = "Access denied"
			}
			c.AbortWithStatusJSON(status, gin.H{
				"success": false,
				"error":   gin.H{"code": code, "message": message},
			})
			return
		}

		// 3. Check permission
		if role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "Access denied: Admin role required"},
			})
			return
		}

		// 4. Success: add role to context and proceed.
		c.Set("userRole", role)
		c.Next()
	}
}
