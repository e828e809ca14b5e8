package models

import "time"

// Property status values. Only ACTIVE properties take part in match sweeps.
const (
	PropertyActive = "ACTIVE"
	PropertyPaused = "PAUSED"
	PropertySold   = "SOLD"
)

// Property is the model for the 'properties' table.
// Properties are private to their owner: buyers only ever see them
// through a match on one of their demand briefs.
type Property struct {
	ID           int64   `json:"id" db:"id"`
	OwnerID      int64   `json:"ownerId" db:"owner_id"`
	Title        string  `json:"title" db:"title"`
	Slug         string  `json:"slug" db:"slug"`
	PropertyType string  `json:"propertyType" db:"property_type"`
	Suburb       string  `json:"suburb" db:"suburb"`
	City         string  `json:"city" db:"city"`
	Price        float64 `json:"price" db:"price"`
	Bedrooms     int     `json:"bedrooms" db:"bedrooms"`
	Bathrooms    int     `json:"bathrooms" db:"bathrooms"`
	Description  string  `json:"description" db:"description"`
	Status       string  `json:"status" db:"status"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
