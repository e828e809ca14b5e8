package models

import "time"

// Demand status values.
const (
	DemandActive = "ACTIVE"
	DemandPaused = "PAUSED"
)

// Demand is a buyer's brief: the kind of property they are looking for.
// Suburb and City are optional filters (empty = any). A price bound of 0
// means that side of the range is open.
type Demand struct {
	ID           int64   `json:"id" db:"id"`
	BuyerID      int64   `json:"buyerId" db:"buyer_id"`
	PropertyType string  `json:"propertyType" db:"property_type"`
	Suburb       string  `json:"suburb" db:"suburb"`
	City         string  `json:"city" db:"city"`
	MinPrice     float64 `json:"minPrice" db:"min_price"`
	MaxPrice     float64 `json:"maxPrice" db:"max_price"`
	MinBedrooms  int     `json:"minBedrooms" db:"min_bedrooms"`
	Status       string  `json:"status" db:"status"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Match pairs one property with one demand. The (property_id, demand_id)
// pair is unique, which is what makes the sweep idempotent.
type Match struct {
	ID         int64     `json:"id" db:"id"`
	PropertyID int64     `json:"propertyId" db:"property_id"`
	DemandID   int64     `json:"demandId" db:"demand_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
