package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/inventory"
	"github.com/verone/catalog-service/internal/inventory/dto"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/platform/cache"
	"github.com/verone/catalog-service/internal/platform/logger"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, cache *cache.RedisClient, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *inventoryUseCase) GetProductInventory(ctx context.Context, productID string) (*model.Inventory, error) {
	inv, err := uc.repo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, apperr.External(err, "get inventory")
	}
	if inv == nil {
		// Synthesize a zero row so callers never deal with missing stock.
		return &model.Inventory{
			ProductID:         productID,
			Quantity:          0,
			AvailableQuantity: 0,
		}, nil
	}
	return inv, nil
}

func (uc *inventoryUseCase) ListInventory(ctx context.Context, filters *dto.InventoryFilters) ([]model.Inventory, int, error) {
	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperr.External(err, "list inventory")
	}
	return items, count, nil
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, page, pageSize int) ([]model.Inventory, int, error) {
	return uc.ListInventory(ctx, &dto.InventoryFilters{
		LowStock: true,
		Page:     page,
		PageSize: pageSize,
	})
}

func (uc *inventoryUseCase) AdjustInventory(ctx context.Context, input *dto.AdjustInventoryInput) (*model.Inventory, error) {
	if input.ProductID == "" {
		return nil, apperr.Validation("product id is required")
	}
	if input.QuantityChange == 0 {
		return nil, apperr.Validation("quantity change cannot be zero")
	}

	release, err := uc.lockProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := uc.repo.GetByProduct(ctx, input.ProductID)
	if err != nil {
		return nil, apperr.External(err, "get inventory")
	}

	now := time.Now()
	if inv == nil {
		inv = &model.Inventory{
			ID:        uuid.New().String(),
			ProductID: input.ProductID,
			Quantity:  0,
			UpdatedAt: now,
		}
	}

	quantityBefore := inv.Quantity
	inv.Quantity += input.QuantityChange
	inv.UpdatedAt = now

	if inv.Quantity < 0 {
		return nil, apperr.Conflict("insufficient stock for product %s", input.ProductID)
	}

	movementType := input.ReferenceType
	if movementType == "" {
		movementType = "manual_adjustment"
	}

	var refID, refType, createdBy *string
	if input.ReferenceID != "" {
		refID = &input.ReferenceID
	}
	if input.ReferenceType != "" {
		refType = &input.ReferenceType
	}
	if input.UserID != "" {
		createdBy = &input.UserID
	}

	movement := &model.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		MovementType:   movementType,
		QuantityChange: input.QuantityChange,
		QuantityBefore: quantityBefore,
		QuantityAfter:  inv.Quantity,
		ReferenceType:  refType,
		ReferenceID:    refID,
		Notes:          input.Reason,
		CreatedBy:      createdBy,
		CreatedAt:      now,
	}

	if err := uc.repo.AdjustStockWithMovement(ctx, inv, movement); err != nil {
		return nil, apperr.External(err, "adjust stock")
	}
	return inv, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	items, count, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, 0, apperr.External(err, "list movements")
	}
	return items, count, nil
}

func (uc *inventoryUseCase) HandleOrderCreated(ctx context.Context, event *model.OrderCreatedEvent) error {
	if event.EventID == "" {
		return apperr.Validation("event id is required")
	}

	if event.OrderID == "" {
		return apperr.Validation("order id is required")
	}

	// Sale movements are keyed by order id so both event redelivery and a
	// later cancel can find them.
	seen, err := uc.repo.MovementExistsByReference(ctx, "order", event.OrderID)
	if err != nil {
		return apperr.External(err, "check event idempotency")
	}
	if seen {
		uc.logger.Debug("order event already processed",
			zap.String("event_id", event.EventID),
			zap.String("order_id", event.OrderID))
		return nil
	}

	refType := "order"
	for _, line := range event.Lines {
		release, err := uc.lockProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}

		err = func() error {
			defer release()

			inv, err := uc.repo.GetByProduct(ctx, line.ProductID)
			if err != nil {
				return apperr.External(err, "get inventory")
			}
			if inv == nil {
				uc.logger.Warn("sale recorded for product without stock row",
					zap.String("product_id", line.ProductID),
					zap.String("order_id", event.OrderID))
				return nil
			}

			qty := float64(line.Quantity)
			if err := uc.repo.CommitReservation(ctx, line.ProductID, qty); err != nil {
				return apperr.External(err, "commit reservation")
			}

			orderID := event.OrderID
			movement := &model.InventoryMovement{
				ID:             uuid.New().String(),
				ProductID:      line.ProductID,
				MovementType:   "sale",
				QuantityChange: -qty,
				QuantityBefore: inv.Quantity,
				QuantityAfter:  inv.Quantity - qty,
				ReferenceType:  &refType,
				ReferenceID:    &orderID,
				Notes:          fmt.Sprintf("event %s", event.EventID),
				CreatedAt:      time.Now(),
			}
			if err := uc.repo.LogMovement(ctx, movement); err != nil {
				return apperr.External(err, "log sale movement")
			}
			return nil
		}()
		if err != nil {
			return err
		}
	}

	return nil
}

func (uc *inventoryUseCase) lockProduct(ctx context.Context, productID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := "lock:inventory:" + productID
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire inventory lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, apperr.Conflict("inventory for product %s is busy, retry later", productID)
	}

	return func() { uc.cache.ReleaseLock(ctx, lockKey, lockValue) }, nil
}
