package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/order"
	"github.com/verone/catalog-service/internal/order/dto"
	"github.com/verone/catalog-service/internal/platform/logger"
	"github.com/verone/catalog-service/internal/pricing"
	pricingdto "github.com/verone/catalog-service/internal/pricing/dto"
	"go.uber.org/zap"
)

// Publisher abstracts the Kafka producer so tests can observe published
// events.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type orderUseCase struct {
	repo      order.Repository
	pricing   pricing.UseCase
	stock     order.StockReserver
	publisher Publisher
	logger    logger.ZapLogger
}

func NewOrderUseCase(repo order.Repository, pricingUC pricing.UseCase, stock order.StockReserver, publisher Publisher, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		pricing:   pricingUC,
		stock:     stock,
		publisher: publisher,
		logger:    log,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.SalesOrder, error) {
	if input.CustomerID == "" {
		return nil, apperr.Validation("customer id is required")
	}
	if len(input.Lines) == 0 {
		return nil, apperr.Validation("order needs at least one line")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperr.Validation("line quantity must be positive")
		}
	}

	channelID := ""
	if input.ChannelID != nil {
		channelID = *input.ChannelID
	}

	now := time.Now()
	orderID := uuid.New().String()

	// Reserve stock line by line. On any failure, release what was already
	// taken so a rejected order leaves nothing behind.
	var reserved []dto.CreateOrderLine
	releaseAll := func() {
		for _, line := range reserved {
			if err := uc.stock.Release(ctx, line.ProductID, float64(line.Quantity)); err != nil {
				uc.logger.Error("failed to release reservation",
					zap.String("product_id", line.ProductID),
					zap.Error(err))
			}
		}
	}

	var lines []model.OrderLine
	var total float64
	for _, line := range input.Lines {
		res, err := uc.pricing.Resolve(ctx, &pricingdto.ResolveInput{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			CustomerID: input.CustomerID,
			ChannelID:  channelID,
			AsOf:       now,
		})
		if err != nil {
			releaseAll()
			return nil, err
		}

		ok, err := uc.stock.Reserve(ctx, line.ProductID, float64(line.Quantity))
		if err != nil {
			releaseAll()
			return nil, apperr.External(err, "reserve stock")
		}
		if !ok {
			releaseAll()
			return nil, apperr.Conflict("insufficient stock for product %s", line.ProductID)
		}
		reserved = append(reserved, line)

		lineTotal := round2(res.UnitPrice * (1 - res.DiscountRate) * float64(line.Quantity))
		lines = append(lines, model.OrderLine{
			ID:           uuid.New().String(),
			OrderID:      orderID,
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			UnitPrice:    res.UnitPrice,
			DiscountRate: res.DiscountRate,
			PriceTier:    res.Tier,
			LineTotal:    lineTotal,
		})
		total += lineTotal
	}

	o := &model.SalesOrder{
		BaseModel: model.BaseModel{
			ID:        orderID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:   newReference(orderID),
		CustomerID:  input.CustomerID,
		ChannelID:   input.ChannelID,
		Status:      model.OrderPending,
		TotalAmount: round2(total),
		Lines:       lines,
	}

	if err := uc.repo.CreateWithLines(ctx, o); err != nil {
		releaseAll()
		return nil, apperr.External(err, "create order")
	}

	uc.publishCreated(o)

	return o, nil
}

func (uc *orderUseCase) publishCreated(o *model.SalesOrder) {
	if uc.publisher == nil {
		return
	}

	event := model.OrderCreatedEvent{
		EventID:    uuid.New().String(),
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		OccurredAt: time.Now(),
	}
	for _, line := range o.Lines {
		event.Lines = append(event.Lines, model.OrderEventLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to marshal order event", zap.Error(err))
		return
	}

	// Publishing is best effort. The order is already persisted; a broker
	// outage must not fail the request.
	if err := uc.publisher.Publish(context.Background(), []byte(o.ID), payload); err != nil {
		uc.logger.Error("failed to publish order event",
			zap.String("order_id", o.ID),
			zap.Error(err))
	}
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*model.SalesOrder, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.External(err, "find order")
	}
	if o == nil {
		return nil, apperr.NotFound("order %s not found", id)
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.SalesOrder, int, error) {
	orders, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperr.External(err, "list orders")
	}
	return orders, count, nil
}

func (uc *orderUseCase) ConfirmOrder(ctx context.Context, id string) (*model.SalesOrder, error) {
	o, err := uc.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderPending {
		return nil, apperr.Conflict("order %s is %s, only pending orders can be confirmed", id, o.Status)
	}

	o.Status = model.OrderConfirmed
	o.UpdatedAt = time.Now()
	if err := uc.repo.UpdateStatus(ctx, o); err != nil {
		return nil, apperr.External(err, "update order status")
	}
	return o, nil
}

func (uc *orderUseCase) CancelOrder(ctx context.Context, id string) (*model.SalesOrder, error) {
	o, err := uc.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == model.OrderCancelled {
		return o, nil
	}

	// Once the listener has recorded the sale, the order's reservation is
	// gone: releasing here would eat into reservations held by other
	// pending orders. Restore quantity with a compensating movement
	// instead.
	committed, err := uc.stock.SaleCommitted(ctx, id)
	if err != nil {
		return nil, apperr.External(err, "check sale state")
	}

	for _, line := range o.Lines {
		qty := float64(line.Quantity)
		if committed {
			if err := uc.stock.RestoreSale(ctx, id, line.ProductID, qty); err != nil {
				uc.logger.Error("failed to restore stock on cancel",
					zap.String("order_id", id),
					zap.String("product_id", line.ProductID),
					zap.Error(err))
			}
			continue
		}
		if err := uc.stock.Release(ctx, line.ProductID, qty); err != nil {
			uc.logger.Error("failed to release stock on cancel",
				zap.String("order_id", id),
				zap.String("product_id", line.ProductID),
				zap.Error(err))
		}
	}

	o.Status = model.OrderCancelled
	o.UpdatedAt = time.Now()
	if err := uc.repo.UpdateStatus(ctx, o); err != nil {
		return nil, apperr.External(err, "update order status")
	}
	return o, nil
}

func newReference(orderID string) string {
	short := strings.ToUpper(strings.ReplaceAll(orderID, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("SO-%s-%s", time.Now().Format("20060102"), short)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
