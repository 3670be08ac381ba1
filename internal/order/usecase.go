package order

import (
	"context"

	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/order/dto"
)

// StockReserver is the slice of the inventory repository order entry needs.
type StockReserver interface {
	Reserve(ctx context.Context, productID string, qty float64) (bool, error)
	Release(ctx context.Context, productID string, qty float64) error

	// SaleCommitted reports whether the order's reservation was already
	// converted into a sale by the event listener. Cancelling after that
	// point must restore quantity instead of releasing a reservation the
	// order no longer holds.
	SaleCommitted(ctx context.Context, orderID string) (bool, error)
	RestoreSale(ctx context.Context, orderID, productID string, qty float64) error
}

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.SalesOrder, error)
	GetOrder(ctx context.Context, id string) (*model.SalesOrder, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.SalesOrder, int, error)
	ConfirmOrder(ctx context.Context, id string) (*model.SalesOrder, error)
	CancelOrder(ctx context.Context, id string) (*model.SalesOrder, error)
}
