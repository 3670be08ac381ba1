package inventory

import (
	"context"

	"github.com/verone/catalog-service/internal/inventory/dto"
	"github.com/verone/catalog-service/internal/model"
)

type Repository interface {
	GetByProduct(ctx context.Context, productID string) (*model.Inventory, error)
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.Inventory, int, error)
	CreateOrUpdate(ctx context.Context, inv *model.Inventory) error

	LogMovement(ctx context.Context, movement *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
	MovementExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error)

	// AdjustStockWithMovement writes the stock row and its audit movement in
	// one transaction.
	AdjustStockWithMovement(ctx context.Context, inv *model.Inventory, movement *model.InventoryMovement) error

	// Reserve atomically moves qty into reserved when enough stock is
	// available. Returns false without error when it is not.
	Reserve(ctx context.Context, productID string, qty float64) (bool, error)
	Release(ctx context.Context, productID string, qty float64) error

	// CommitReservation removes qty from both quantity and reserved,
	// completing a sale.
	CommitReservation(ctx context.Context, productID string, qty float64) error
}
