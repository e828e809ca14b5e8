package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hushhome/hushhome-golang/internal/models"
)

//
// --- Demand Handlers (Buyer Side) ---
//

// DemandInput defines the JSON input for creating or updating a demand brief.
// Suburb and City are optional filters; a price bound of 0 is open.
type DemandInput struct {
	PropertyType string  `json:"propertyType" binding:"required"`
	Suburb       string  `json:"suburb"`
	City         string  `json:"city"`
	MinPrice     float64 `json:"minPrice" binding:"min=0"`
	MaxPrice     float64 `json:"maxPrice" binding:"min=0"`
	MinBedrooms  int     `json:"minBedrooms" binding:"min=0"`
}

// CreateDemand is the handler for POST /v1/demands
func (h *Handlers) CreateDemand(c *gin.Context) {
	buyerID := currentUserID(c)

	var input DemandInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}
	if input.MaxPrice > 0 && input.MinPrice > input.MaxPrice {
		respondError(c, http.StatusBadRequest, CodeValidationError, "minPrice cannot exceed maxPrice")
		return
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO demands
		(buyer_id, property_type, suburb, city, min_price, max_price, min_bedrooms, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		buyerID,
		input.PropertyType,
		input.Suburb,
		input.City,
		input.MinPrice,
		input.MaxPrice,
		input.MinBedrooms,
		models.DemandActive,
		now,
		now,
	)
	if err != nil {
		serverError(c, "create demand", err)
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		serverError(c, "get new demand ID", err)
		return
	}

	// A new brief may already have matching properties.
	if err := h.RunMatchSweep(); err != nil {
		logSweepError("after demand create", err)
	}

	demand, err := h.getDemand(id)
	if err != nil {
		serverError(c, "fetch created demand", err)
		return
	}

	respondData(c, http.StatusCreated, gin.H{"demand": demand})
}

// GetMyDemands is the handler for GET /v1/demands/mine
func (h *Handlers) GetMyDemands(c *gin.Context) {
	buyerID := currentUserID(c)

	rows, err := h.DB.Query(`
		SELECT id, buyer_id, property_type, suburb, city, min_price, max_price, min_bedrooms, status, created_at, updated_at
		FROM demands
		WHERE buyer_id = ?
		ORDER BY created_at DESC, id DESC`, buyerID)
	if err != nil {
		serverError(c, "list demands", err)
		return
	}
	defer rows.Close()

	demands := []*models.Demand{}
	for rows.Next() {
		demand, err := scanDemand(rows)
		if err != nil {
			serverError(c, "scan demand row", err)
			return
		}
		demands = append(demands, demand)
	}
	if err = rows.Err(); err != nil {
		serverError(c, "iterate demand rows", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"demands": demands})
}

// UpdateDemand is the handler for PUT /v1/demands/:id
func (h *Handlers) UpdateDemand(c *gin.Context) {
	buyerID := currentUserID(c)
	demandID := c.Param("id")

	var input DemandInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}
	if input.MaxPrice > 0 && input.MinPrice > input.MaxPrice {
		respondError(c, http.StatusBadRequest, CodeValidationError, "minPrice cannot exceed maxPrice")
		return
	}

	result, err := h.DB.Exec(`
		UPDATE demands
		SET property_type = ?, suburb = ?, city = ?, min_price = ?, max_price = ?, min_bedrooms = ?, updated_at = ?
		WHERE id = ? AND buyer_id = ?`,
		input.PropertyType,
		input.Suburb,
		input.City,
		input.MinPrice,
		input.MaxPrice,
		input.MinBedrooms,
		time.Now(),
		demandID, buyerID,
	)
	if err != nil {
		serverError(c, "update demand", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		serverError(c, "update demand", err)
		return
	}
	if rowsAffected == 0 {
		if !h.demandOwnedBy(c, demandID, buyerID) {
			return
		}
	}

	if err := h.RunMatchSweep(); err != nil {
		logSweepError("after demand update", err)
	}

	respondData(c, http.StatusOK, gin.H{"updated": true})
}

// DeleteDemand is the handler for DELETE /v1/demands/:id
func (h *Handlers) DeleteDemand(c *gin.Context) {
	buyerID := currentUserID(c)
	demandID := c.Param("id")

	tx, err := h.DB.Begin()
	if err != nil {
		serverError(c, "begin delete transaction", err)
		return
	}
	defer tx.Rollback() // Safety net

	result, err := tx.Exec(
		"DELETE FROM demands WHERE id = ? AND buyer_id = ?",
		demandID, buyerID,
	)
	if err != nil {
		serverError(c, "delete demand", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		serverError(c, "delete demand", err)
		return
	}
	if rowsAffected == 0 {
		// Nothing to commit; release the transaction before diagnosing.
		tx.Rollback()
		if !h.demandOwnedBy(c, demandID, buyerID) {
			return
		}
		respondError(c, http.StatusNotFound, CodeNotFound, "Demand not found")
		return
	}

	if _, err := tx.Exec("DELETE FROM matches WHERE demand_id = ?", demandID); err != nil {
		serverError(c, "delete demand matches", err)
		return
	}

	if err := tx.Commit(); err != nil {
		serverError(c, "commit demand delete", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// GetDemandMatches is the handler for GET /v1/demands/:id/matches
// It returns the properties matched to one of the caller's briefs.
func (h *Handlers) GetDemandMatches(c *gin.Context) {
	buyerID := currentUserID(c)
	demandID := c.Param("id")

	if !h.demandOwnedBy(c, demandID, buyerID) {
		return
	}

	rows, err := h.DB.Query(`
		SELECT p.id, p.owner_id, p.title, p.slug, p.property_type, p.suburb, p.city, p.price, p.bedrooms, p.bathrooms, p.description, p.status, p.created_at, p.updated_at
		FROM matches m
		JOIN properties p ON p.id = m.property_id
		WHERE m.demand_id = ?
		ORDER BY m.created_at DESC, m.id DESC`, demandID)
	if err != nil {
		serverError(c, "list demand matches", err)
		return
	}
	defer rows.Close()

	properties := []*models.Property{}
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			serverError(c, "scan matched property", err)
			return
		}
		properties = append(properties, property)
	}
	if err = rows.Err(); err != nil {
		serverError(c, "iterate matched properties", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"matches": properties})
}

// getDemand fetches a single demand by id.
func (h *Handlers) getDemand(id int64) (*models.Demand, error) {
	row := h.DB.QueryRow(`
		SELECT id, buyer_id, property_type, suburb, city, min_price, max_price, min_bedrooms, status, created_at, updated_at
		FROM demands
		WHERE id = ?`, id)
	return scanDemand(row)
}

func scanDemand(row rowScanner) (*models.Demand, error) {
	var d models.Demand
	err := row.Scan(
		&d.ID,
		&d.BuyerID,
		&d.PropertyType,
		&d.Suburb,
		&d.City,
		&d.MinPrice,
		&d.MaxPrice,
		&d.MinBedrooms,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// demandOwnedBy resolves ownership of a demand brief into 404/403 responses.
func (h *Handlers) demandOwnedBy(c *gin.Context, demandID string, userID int64) bool {
	var buyerID int64
	err := h.DB.QueryRow("SELECT buyer_id FROM demands WHERE id = ?", demandID).Scan(&buyerID)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, CodeNotFound, "Demand not found")
		return false
	}
	if err != nil {
		serverError(c, "check demand owner", err)
		return false
	}
	if buyerID != userID {
		respondError(c, http.StatusForbidden, CodeForbidden, "You do not have permission to access this demand")
		return false
	}
	return true
}
