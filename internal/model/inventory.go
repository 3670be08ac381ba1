package model

import "time"

type Inventory struct {
	ID                string     `db:"id" json:"id"`
	ProductID         string     `db:"product_id" json:"product_id"`
	Quantity          float64    `db:"quantity" json:"quantity"`
	ReservedQuantity  float64    `db:"reserved_quantity" json:"reserved_quantity"`
	AvailableQuantity float64    `db:"available_quantity" json:"available_quantity"` // Generated column
	ReorderPoint      float64    `db:"reorder_point" json:"reorder_point"`
	ReorderQuantity   float64    `db:"reorder_quantity" json:"reorder_quantity"`
	LastCountedAt     *time.Time `db:"last_counted_at" json:"last_counted_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

type InventoryMovement struct {
	ID             string    `db:"id" json:"id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange float64   `db:"quantity_change" json:"quantity_change"`
	QuantityBefore float64   `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  float64   `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
