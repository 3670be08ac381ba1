package inventory

import (
	"context"

	"github.com/verone/catalog-service/internal/inventory/dto"
	"github.com/verone/catalog-service/internal/model"
)

type UseCase interface {
	GetProductInventory(ctx context.Context, productID string) (*model.Inventory, error)
	ListInventory(ctx context.Context, filters *dto.InventoryFilters) ([]model.Inventory, int, error)
	ListLowStock(ctx context.Context, page, pageSize int) ([]model.Inventory, int, error)
	AdjustInventory(ctx context.Context, input *dto.AdjustInventoryInput) (*model.Inventory, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)

	// HandleOrderCreated converts an order's reservations into sale
	// movements. Idempotent per event id.
	HandleOrderCreated(ctx context.Context, event *model.OrderCreatedEvent) error
}
