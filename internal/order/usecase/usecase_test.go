package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/order/dto"
	pricingdto "github.com/verone/catalog-service/internal/pricing/dto"
	"go.uber.org/zap"
)

type fakeRepo struct {
	orders map[string]*model.SalesOrder
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[string]*model.SalesOrder{}}
}

func (r *fakeRepo) CreateWithLines(_ context.Context, o *model.SalesOrder) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*model.SalesOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeRepo) FindAll(_ context.Context, _ *dto.OrderFilters) ([]model.SalesOrder, int, error) {
	var out []model.SalesOrder
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, o *model.SalesOrder) error {
	stored, ok := r.orders[o.ID]
	if ok {
		stored.Status = o.Status
		stored.UpdatedAt = o.UpdatedAt
	}
	return nil
}

type fakePricing struct {
	prices map[string]*model.Resolution
}

func (p *fakePricing) Resolve(_ context.Context, input *pricingdto.ResolveInput) (*model.Resolution, error) {
	if res, ok := p.prices[input.ProductID]; ok {
		return res, nil
	}
	return &model.Resolution{UnitPrice: 100, Tier: model.TierBaseCatalog}, nil
}

func (p *fakePricing) CreateContract(_ context.Context, _ *pricingdto.CreateContractInput) (*model.PriceContract, error) {
	return nil, nil
}

func (p *fakePricing) ListContracts(_ context.Context, _ *pricingdto.ContractFilters) ([]model.PriceContract, error) {
	return nil, nil
}

func (p *fakePricing) DeleteContract(_ context.Context, _ string) error { return nil }

func (p *fakePricing) SetChannelRate(_ context.Context, _ *pricingdto.SetChannelRateInput) (*model.ChannelRate, error) {
	return nil, nil
}

func (p *fakePricing) ListChannelRates(_ context.Context, _ string) ([]model.ChannelRate, error) {
	return nil, nil
}

func (p *fakePricing) DeleteChannelRate(_ context.Context, _ string) error { return nil }

type fakeStock struct {
	available map[string]float64
	reserved  map[string]float64
	committed map[string]bool
	restored  map[string]float64
}

func newFakeStock() *fakeStock {
	return &fakeStock{
		available: map[string]float64{},
		reserved:  map[string]float64{},
		committed: map[string]bool{},
		restored:  map[string]float64{},
	}
}

func (s *fakeStock) Reserve(_ context.Context, productID string, qty float64) (bool, error) {
	if s.available[productID]-s.reserved[productID] < qty {
		return false, nil
	}
	s.reserved[productID] += qty
	return true, nil
}

func (s *fakeStock) Release(_ context.Context, productID string, qty float64) error {
	s.reserved[productID] -= qty
	if s.reserved[productID] < 0 {
		s.reserved[productID] = 0
	}
	return nil
}

// commitSale mirrors what the event listener does: the reservation becomes a
// sale, removing the stock and the reservation together.
func (s *fakeStock) commitSale(orderID, productID string, qty float64) {
	s.available[productID] -= qty
	s.reserved[productID] -= qty
	if s.reserved[productID] < 0 {
		s.reserved[productID] = 0
	}
	s.committed[orderID] = true
}

func (s *fakeStock) SaleCommitted(_ context.Context, orderID string) (bool, error) {
	return s.committed[orderID], nil
}

func (s *fakeStock) RestoreSale(_ context.Context, orderID, productID string, qty float64) error {
	s.available[productID] += qty
	s.restored[productID] += qty
	return nil
}

type fakePublisher struct {
	events []model.OrderCreatedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, _, value []byte) error {
	if p.err != nil {
		return p.err
	}
	var event model.OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}
	p.events = append(p.events, event)
	return nil
}

func TestCreateOrderResolvesPricesAndReservesStock(t *testing.T) {
	repo := newFakeRepo()
	stock := newFakeStock()
	stock.available["p1"] = 10
	stock.available["p2"] = 10
	pub := &fakePublisher{}
	prices := &fakePricing{prices: map[string]*model.Resolution{
		"p1": {UnitPrice: 80, DiscountRate: 0.10, Tier: model.TierCustomerSpecific},
		"p2": {UnitPrice: 50, Tier: model.TierBaseCatalog},
	}}
	uc := NewOrderUseCase(repo, prices, stock, pub, zap.NewNop())

	o, err := uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID: "cust-1",
		Lines: []dto.CreateOrderLine{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, o.Lines, 2)

	assert.Equal(t, model.TierCustomerSpecific, o.Lines[0].PriceTier)
	assert.Equal(t, 144.0, o.Lines[0].LineTotal) // 80 * 0.9 * 2
	assert.Equal(t, 50.0, o.Lines[1].LineTotal)
	assert.Equal(t, 194.0, o.TotalAmount)
	assert.Equal(t, model.OrderPending, o.Status)

	assert.Equal(t, 2.0, stock.reserved["p1"])
	assert.Equal(t, 1.0, stock.reserved["p2"])

	require.Len(t, pub.events, 1)
	assert.Equal(t, o.ID, pub.events[0].OrderID)
}

func TestCreateOrderInsufficientStockLeavesNothing(t *testing.T) {
	repo := newFakeRepo()
	stock := newFakeStock()
	stock.available["p1"] = 10
	stock.available["p2"] = 1
	uc := NewOrderUseCase(repo, &fakePricing{}, stock, &fakePublisher{}, zap.NewNop())

	_, err := uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID: "cust-1",
		Lines: []dto.CreateOrderLine{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 5},
		},
	})
	require.Error(t, err)

	assert.Empty(t, repo.orders)
	assert.Equal(t, 0.0, stock.reserved["p1"])
	assert.Equal(t, 0.0, stock.reserved["p2"])
}

func TestCreateOrderSurvivesPublishFailure(t *testing.T) {
	repo := newFakeRepo()
	stock := newFakeStock()
	stock.available["p1"] = 10
	pub := &fakePublisher{err: assert.AnError}
	uc := NewOrderUseCase(repo, &fakePricing{}, stock, pub, zap.NewNop())

	o, err := uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID: "cust-1",
		Lines:      []dto.CreateOrderLine{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotNil(t, repo.orders[o.ID])
}

func TestCancelOrderReleasesStock(t *testing.T) {
	repo := newFakeRepo()
	stock := newFakeStock()
	stock.available["p1"] = 10
	uc := NewOrderUseCase(repo, &fakePricing{}, stock, &fakePublisher{}, zap.NewNop())

	o, err := uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID: "cust-1",
		Lines:      []dto.CreateOrderLine{{ProductID: "p1", Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, stock.reserved["p1"])

	cancelled, err := uc.CancelOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	assert.Equal(t, 0.0, stock.reserved["p1"])

	// Cancelling again is a no-op and must not release more stock.
	stock.reserved["p1"] = 1
	_, err = uc.CancelOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, stock.reserved["p1"])
}

func TestCancelOrderAfterSaleRestoresQuantity(t *testing.T) {
	repo := newFakeRepo()
	stock := newFakeStock()
	stock.available["p1"] = 10
	uc := NewOrderUseCase(repo, &fakePricing{}, stock, &fakePublisher{}, zap.NewNop())

	a, err := uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID: "cust-1",
		Lines:      []dto.CreateOrderLine{{ProductID: "p1", Quantity: 5}},
	})
	require.NoError(t, err)
	_, err = uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID: "cust-2",
		Lines:      []dto.CreateOrderLine{{ProductID: "p1", Quantity: 5}},
	})
	require.NoError(t, err)
	require.Equal(t, 10.0, stock.reserved["p1"])

	// The event listener converts the first order's reservation into a sale.
	stock.commitSale(a.ID, "p1", 5)
	require.Equal(t, 5.0, stock.available["p1"])
	require.Equal(t, 5.0, stock.reserved["p1"])

	cancelled, err := uc.CancelOrder(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)

	// Quantity comes back through a compensating restore; the second order's
	// reservation is untouched.
	assert.Equal(t, 10.0, stock.available["p1"])
	assert.Equal(t, 5.0, stock.reserved["p1"])
	assert.Equal(t, 5.0, stock.restored["p1"])
}

func TestConfirmOrderOnlyFromPending(t *testing.T) {
	repo := newFakeRepo()
	stock := newFakeStock()
	stock.available["p1"] = 10
	uc := NewOrderUseCase(repo, &fakePricing{}, stock, &fakePublisher{}, zap.NewNop())

	o, err := uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID: "cust-1",
		Lines:      []dto.CreateOrderLine{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	confirmed, err := uc.ConfirmOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderConfirmed, confirmed.Status)

	_, err = uc.ConfirmOrder(context.Background(), o.ID)
	assert.Error(t, err)
}
