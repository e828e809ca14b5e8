package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// --- Lead Handlers ---
//
// The owner landing page embeds a lead widget. Its submissions land here,
// get a public reference code, and show up in the admin leads list.
//

// LeadInput defines the JSON input for the lead capture endpoint.
type LeadInput struct {
	FullName     string `json:"fullName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	Suburb       string `json:"suburb"`
	PropertyType string `json:"propertyType"`
	Message      string `json:"message"`
}

// CreateLead is the handler for POST /v1/leads (public, no auth).
func (h *Handlers) CreateLead(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	// 2. --- Generate Reference Code ---
	// Short uuid prefix is enough for support staff to find the record.
	reference := fmt.Sprintf("HH-%.8s", uuid.NewString())

	// 3. --- Save to Database ---
	query := `
		INSERT INTO leads
		(reference, full_name, email, phone, suburb, property_type, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := h.DB.Exec(query,
		reference,
		input.FullName,
		input.Email,
		nullable(input.Phone),
		nullable(input.Suburb),
		nullable(input.PropertyType),
		nullable(input.Message),
		time.Now(),
	)
	if err != nil {
		serverError(c, "create lead", err)
		return
	}

	// 4. --- Send Success Response ---
	respondData(c, http.StatusCreated, gin.H{
		"reference": reference,
		"message":   "Thanks! Our team will be in touch shortly.",
	})
}

// nullable converts an optional string field to its sql.NullString form.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
