package model

import "github.com/google/uuid"

// SalonService is a bookable service from the catalog (haircut, facial, ...).
type SalonService struct {
	Base
	BranchID    uuid.UUID `db:"branch_id" json:"branch_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Category    string    `db:"category" json:"category,omitempty"`
	Price       float64   `db:"price" json:"price"`
	DurationMin int       `db:"duration_min" json:"duration_min"`
	Active      bool      `db:"active" json:"active"`
}

type CreateServiceRequest struct {
	BranchID    uuid.UUID `json:"branch_id" validate:"required"`
	Name        string    `json:"name" validate:"required,max=120"`
	Description string    `json:"description" validate:"max=1000"`
	Category    string    `json:"category" validate:"max=60"`
	Price       float64   `json:"price" validate:"gte=0"`
	DurationMin int       `json:"duration_min" validate:"gt=0"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	DurationMin *int     `json:"duration_min"`
	Active      *bool    `json:"active"`
}
