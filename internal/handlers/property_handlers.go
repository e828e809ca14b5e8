package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/hushhome/hushhome-golang/internal/models"
)

//
// --- Property Handlers (Owner Side) ---
//
// Properties are private: there is no public listing or search endpoint.
// Buyers only ever see a property through a match on one of their briefs.
//

// PropertyInput defines the JSON input for creating or updating a property.
type PropertyInput struct {
	Title        string  `json:"title" binding:"required"`
	PropertyType string  `json:"propertyType" binding:"required"`
	Suburb       string  `json:"suburb" binding:"required"`
	City         string  `json:"city" binding:"required"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	Bedrooms     int     `json:"bedrooms" binding:"min=0"`
	Bathrooms    int     `json:"bathrooms" binding:"min=0"`
	Description  string  `json:"description"`
}

// CreateProperty is the handler for POST /v1/properties
func (h *Handlers) CreateProperty(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	ownerID := currentUserID(c)

	var input PropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	// 2. --- Insert the Property ---
	now := time.Now()
	query := `
		INSERT INTO properties
		(owner_id, title, slug, property_type, suburb, city, price, bedrooms, bathrooms, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := h.DB.Exec(query,
		ownerID,
		input.Title,
		"", // final slug needs the row id
		input.PropertyType,
		input.Suburb,
		input.City,
		input.Price,
		input.Bedrooms,
		input.Bathrooms,
		input.Description,
		models.PropertyActive,
		now,
		now,
	)
	if err != nil {
		serverError(c, "create property", err)
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		serverError(c, "get new property ID", err)
		return
	}

	// 3. --- Set the Slug ---
	// The id suffix keeps slugs unique without a separate uniqueness check.
	propertySlug := fmt.Sprintf("%s-%d", slug.Make(input.Title), id)
	if _, err := h.DB.Exec("UPDATE properties SET slug = ? WHERE id = ?", propertySlug, id); err != nil {
		serverError(c, "set property slug", err)
		return
	}

	// 4. --- Sweep for Matching Briefs ---
	if err := h.RunMatchSweep(); err != nil {
		// The background worker will retry; creation itself succeeded.
		logSweepError("after property create", err)
	}

	property, err := h.getProperty(id)
	if err != nil {
		serverError(c, "fetch created property", err)
		return
	}

	respondData(c, http.StatusCreated, gin.H{"property": property})
}

// GetMyProperties is the handler for GET /v1/properties/mine
func (h *Handlers) GetMyProperties(c *gin.Context) {
	ownerID := currentUserID(c)

	rows, err := h.DB.Query(`
		SELECT id, owner_id, title, slug, property_type, suburb, city, price, bedrooms, bathrooms, description, status, created_at, updated_at
		FROM properties
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		serverError(c, "list properties", err)
		return
	}
	defer rows.Close()

	properties := []*models.Property{}
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			serverError(c, "scan property row", err)
			return
		}
		properties = append(properties, property)
	}
	if err = rows.Err(); err != nil {
		serverError(c, "iterate property rows", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"properties": properties})
}

// UpdateProperty is the handler for PUT /v1/properties/:id
// The update is conditional on id AND owner_id (atomic ownership check).
func (h *Handlers) UpdateProperty(c *gin.Context) {
	ownerID := currentUserID(c)
	propertyID := c.Param("id")

	var input PropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	result, err := h.DB.Exec(`
		UPDATE properties
		SET title = ?, property_type = ?, suburb = ?, city = ?, price = ?, bedrooms = ?, bathrooms = ?, description = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		input.Title,
		input.PropertyType,
		input.Suburb,
		input.City,
		input.Price,
		input.Bedrooms,
		input.Bathrooms,
		input.Description,
		time.Now(),
		propertyID, ownerID,
	)
	if err != nil {
		serverError(c, "update property", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		serverError(c, "update property", err)
		return
	}
	if rowsAffected == 0 {
		if !h.propertyOwnedBy(c, propertyID, ownerID) {
			return
		}
	}

	// Changed criteria can produce new matches.
	if err := h.RunMatchSweep(); err != nil {
		logSweepError("after property update", err)
	}

	id, err := strconv.ParseInt(propertyID, 10, 64)
	if err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Property not found")
		return
	}
	property, err := h.getProperty(id)
	if err != nil {
		serverError(c, "fetch updated property", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"property": property})
}

// PropertyStatusInput defines the JSON input for a status change.
type PropertyStatusInput struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE PAUSED SOLD"`
}

// UpdatePropertyStatus is the handler for PATCH /v1/properties/:id/status
func (h *Handlers) UpdatePropertyStatus(c *gin.Context) {
	ownerID := currentUserID(c)
	propertyID := c.Param("id")

	var input PropertyStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	result, err := h.DB.Exec(
		"UPDATE properties SET status = ?, updated_at = ? WHERE id = ? AND owner_id = ?",
		input.Status, time.Now(), propertyID, ownerID,
	)
	if err != nil {
		serverError(c, "update property status", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		serverError(c, "update property status", err)
		return
	}
	if rowsAffected == 0 {
		if !h.propertyOwnedBy(c, propertyID, ownerID) {
			return
		}
	}

	// Re-activated properties rejoin the sweep.
	if input.Status == models.PropertyActive {
		if err := h.RunMatchSweep(); err != nil {
			logSweepError("after property reactivation", err)
		}
	}

	respondData(c, http.StatusOK, gin.H{"updated": true})
}

// DeleteProperty is the handler for DELETE /v1/properties/:id
// Matches referencing the property go with it, in one transaction.
func (h *Handlers) DeleteProperty(c *gin.Context) {
	ownerID := currentUserID(c)
	propertyID := c.Param("id")

	tx, err := h.DB.Begin()
	if err != nil {
		serverError(c, "begin delete transaction", err)
		return
	}
	defer tx.Rollback() // Safety net

	result, err := tx.Exec(
		"DELETE FROM properties WHERE id = ? AND owner_id = ?",
		propertyID, ownerID,
	)
	if err != nil {
		serverError(c, "delete property", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		serverError(c, "delete property", err)
		return
	}
	if rowsAffected == 0 {
		// Nothing to commit; release the transaction before diagnosing.
		tx.Rollback()
		if !h.propertyOwnedBy(c, propertyID, ownerID) {
			return
		}
		// Concurrent request must have deleted it first. Treat as gone.
		respondError(c, http.StatusNotFound, CodeNotFound, "Property not found")
		return
	}

	if _, err := tx.Exec("DELETE FROM matches WHERE property_id = ?", propertyID); err != nil {
		serverError(c, "delete property matches", err)
		return
	}

	if err := tx.Commit(); err != nil {
		serverError(c, "commit property delete", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// getProperty fetches a single property by id.
func (h *Handlers) getProperty(id int64) (*models.Property, error) {
	row := h.DB.QueryRow(`
		SELECT id, owner_id, title, slug, property_type, suburb, city, price, bedrooms, bathrooms, description, status, created_at, updated_at
		FROM properties
		WHERE id = ?`, id)
	return scanProperty(row)
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Slug,
		&p.PropertyType,
		&p.Suburb,
		&p.City,
		&p.Price,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Description,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// propertyOwnedBy resolves a zero-row conditional mutation into 404 or 403.
// It writes the error response and returns false unless the property exists
// and belongs to the caller.
func (h *Handlers) propertyOwnedBy(c *gin.Context, propertyID string, userID int64) bool {
	var ownerID int64
	err := h.DB.QueryRow("SELECT owner_id FROM properties WHERE id = ?", propertyID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, CodeNotFound, "Property not found")
		return false
	}
	if err != nil {
		serverError(c, "check property owner", err)
		return false
	}
	if ownerID != userID {
		respondError(c, http.StatusForbidden, CodeForbidden, "You do not have permission to modify this property")
		return false
	}
	return true
}
