package dto

import "time"

type InventoryFilters struct {
	ProductID string
	LowStock  bool // available_quantity <= reorder_point
	Page      int
	PageSize  int
}

type MovementFilters struct {
	ProductID    string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}
