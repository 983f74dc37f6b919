package model

import "github.com/google/uuid"

type InventoryStatus string

const (
	InventoryStatusInStock  InventoryStatus = "In Stock"
	InventoryStatusLowStock InventoryStatus = "Low Stock"
	InventoryStatusCritical InventoryStatus = "Critical"
)

type Inventory struct {
	Base
	BranchID  uuid.UUID       `db:"branch_id" json:"branch_id"`
	Name      string          `db:"name" json:"name"`
	SKU       string          `db:"sku" json:"sku,omitempty"`
	Stock     int             `db:"stock" json:"stock"`
	Threshold int             `db:"threshold" json:"threshold"`
	UnitCost  float64         `db:"unit_cost" json:"unit_cost,omitempty"`
	Status    InventoryStatus `db:"status" json:"status"`
}

// RecomputeStatus derives the stock status. Called on every save so the
// stored status never drifts from the counts.
func (i *Inventory) RecomputeStatus() {
	switch {
	case i.Stock <= 0:
		i.Status = InventoryStatusCritical
	case i.Stock <= i.Threshold:
		i.Status = InventoryStatusLowStock
	default:
		i.Status = InventoryStatusInStock
	}
}

type UpsertInventoryRequest struct {
	BranchID  uuid.UUID `json:"branch_id" validate:"required"`
	Name      string    `json:"name" validate:"required,max=120"`
	SKU       string    `json:"sku" validate:"max=60"`
	Stock     int       `json:"stock" validate:"gte=0"`
	Threshold int       `json:"threshold" validate:"gte=0"`
	UnitCost  float64   `json:"unit_cost" validate:"gte=0"`
}
