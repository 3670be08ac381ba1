package order

import (
	"context"

	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/order/dto"
)

type Repository interface {
	// CreateWithLines persists the order header and its lines in one
	// transaction.
	CreateWithLines(ctx context.Context, order *model.SalesOrder) error
	FindByID(ctx context.Context, id string) (*model.SalesOrder, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.SalesOrder, int, error)
	UpdateStatus(ctx context.Context, order *model.SalesOrder) error
}
