package models

import (
	"database/sql"
	"time"
)

// Lead is a seller enquiry captured from the owner landing page.
// Reference is the public code quoted back to the enquirer (HH-xxxxxxxx).
type Lead struct {
	ID           int64          `json:"id" db:"id"`
	Reference    string         `json:"reference" db:"reference"`
	FullName     string         `json:"fullName" db:"full_name"`
	Email        string         `json:"email" db:"email"`
	Phone        sql.NullString `json:"phone,omitempty" db:"phone"`
	Suburb       sql.NullString `json:"suburb,omitempty" db:"suburb"`
	PropertyType sql.NullString `json:"propertyType,omitempty" db:"property_type"`
	Message      sql.NullString `json:"message,omitempty" db:"message"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
}
