package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hushhome/hushhome-golang/internal/ai"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB         *sql.DB       // Primary Read/Write connection
	DBReadOnly *sql.DB       // Read-Only connection for the AI assistant
	AIService  *ai.AIService // nil when AI is not configured
}

//
// --- Response Envelope ---
//
// Every response in the API uses the same envelope:
//   success: {"success": true,  "data": {...}}
//   failure: {"success": false, "error": {"code": "...", "message": "..."}}
//

// Error codes used across the API.
const (
	CodeServerError        = "SERVER_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// serverError logs the real error server-side and sends the generic
// envelope. Clients never see the underlying failure.
func serverError(c *gin.Context, context string, err error) {
	log.Printf("ERROR: %s: %v", context, err)
	respondError(c, http.StatusInternalServerError, CodeServerError, "Something went wrong")
}

// currentUserID reads the user ID set by the auth middleware.
func currentUserID(c *gin.Context) int64 {
	userIDRaw, _ := c.Get("userID")
	userID, _ := userIDRaw.(int64)
	return userID
}
