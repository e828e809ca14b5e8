package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- AI Handlers ---
//
// Both routes require the AI service to be configured at boot; without it
// they answer 503 instead of failing at startup.
//

// GenerateDescription is the handler for POST /v1/properties/:id/generate-description
// It drafts listing copy for one of the caller's own properties.
func (h *Handlers) GenerateDescription(c *gin.Context) {
	if h.AIService == nil {
		respondError(c, http.StatusServiceUnavailable, CodeServiceUnavailable, "AI assistant is not configured")
		return
	}

	ownerID := currentUserID(c)
	propertyID := c.Param("id")

	if !h.propertyOwnedBy(c, propertyID, ownerID) {
		return
	}

	var (
		title, propertyType, suburb, city string
		price                             float64
		bedrooms, bathrooms               int
	)
	err := h.DB.QueryRow(`
		SELECT title, property_type, suburb, city, price, bedrooms, bathrooms
		FROM properties
		WHERE id = ?`, propertyID).Scan(&title, &propertyType, &suburb, &city, &price, &bedrooms, &bathrooms)
	if err != nil {
		serverError(c, "fetch property for description", err)
		return
	}

	description, err := h.AIService.DraftListingDescription(
		c.Request.Context(), title, propertyType, suburb, city, price, bedrooms, bathrooms,
	)
	if err != nil {
		serverError(c, "draft listing description", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"description": description})
}

// ChatInput defines the structure of the JSON request body.
type ChatInput struct {
	Message string `json:"message" binding:"required"`
}

// AdminChat is the handler for POST /v1/admin/ai/chat
// Admin insights over live marketplace data via the read-only connection.
func (h *Handlers) AdminChat(c *gin.Context) {
	if h.AIService == nil {
		respondError(c, http.StatusServiceUnavailable, CodeServiceUnavailable, "AI assistant is not configured")
		return
	}

	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	response, err := h.AIService.GenerateInsights(c.Request.Context(), input.Message)
	if err != nil {
		serverError(c, "admin AI chat", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"response": response})
}
