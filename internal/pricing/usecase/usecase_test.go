package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/pricing/dto"
	"go.uber.org/zap"
)

type fakeRepo struct {
	products  map[string]*model.Product
	contracts []model.PriceContract
	groups    map[string]*model.CustomerGroup // keyed by customer id
	rates     map[string]*model.ChannelRate   // keyed by productID+"/"+channelID

	contractErr error
	groupErr    error
	rateErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: map[string]*model.Product{},
		groups:   map[string]*model.CustomerGroup{},
		rates:    map[string]*model.ChannelRate{},
	}
}

func (r *fakeRepo) FindProductByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *fakeRepo) FindBestContract(_ context.Context, productID, customerID string, qty int, asOf time.Time) (*model.PriceContract, error) {
	if r.contractErr != nil {
		return nil, r.contractErr
	}
	var best *model.PriceContract
	for i := range r.contracts {
		c := &r.contracts[i]
		if c.ProductID != productID || c.CustomerID != customerID || c.MinQty > qty {
			continue
		}
		if c.StartsAt != nil && c.StartsAt.After(asOf) {
			continue
		}
		if c.EndsAt != nil && c.EndsAt.Before(asOf) {
			continue
		}
		if best == nil || c.MinQty > best.MinQty {
			best = c
		}
	}
	return best, nil
}

func (r *fakeRepo) FindCustomerGroup(_ context.Context, customerID string) (*model.CustomerGroup, error) {
	if r.groupErr != nil {
		return nil, r.groupErr
	}
	return r.groups[customerID], nil
}

func (r *fakeRepo) FindChannelRate(_ context.Context, productID, channelID string) (*model.ChannelRate, error) {
	if r.rateErr != nil {
		return nil, r.rateErr
	}
	return r.rates[productID+"/"+channelID], nil
}

func (r *fakeRepo) CreateContract(_ context.Context, c *model.PriceContract) error {
	r.contracts = append(r.contracts, *c)
	return nil
}

func (r *fakeRepo) FindContracts(_ context.Context, _ *dto.ContractFilters) ([]model.PriceContract, error) {
	return r.contracts, nil
}

func (r *fakeRepo) DeleteContract(_ context.Context, _ string) error { return nil }

func (r *fakeRepo) UpsertChannelRate(_ context.Context, rate *model.ChannelRate) error {
	r.rates[rate.ProductID+"/"+rate.ChannelID] = rate
	return nil
}

func (r *fakeRepo) FindChannelRates(_ context.Context, _ string) ([]model.ChannelRate, error) {
	return nil, nil
}

func (r *fakeRepo) DeleteChannelRate(_ context.Context, _ string) error { return nil }

func seedProduct(r *fakeRepo, id string, basePrice float64) {
	r.products[id] = &model.Product{
		BaseModel: model.BaseModel{ID: id},
		Name:      "Chaise Oslo",
		SKU:       "CHR-OSLO",
		BasePrice: basePrice,
		Status:    model.StatusInStock,
	}
}

func TestResolveBaseCatalogWhenNoRules(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "p1", 149.90)
	uc := NewPricingUseCase(repo, zap.NewNop())

	res, err := uc.Resolve(context.Background(), &dto.ResolveInput{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 149.90, res.UnitPrice)
	assert.Equal(t, 0.0, res.DiscountRate)
	assert.Equal(t, model.TierBaseCatalog, res.Tier)
}

func TestResolveUnknownProduct(t *testing.T) {
	uc := NewPricingUseCase(newFakeRepo(), zap.NewNop())

	_, err := uc.Resolve(context.Background(), &dto.ResolveInput{ProductID: "missing"})
	assert.Error(t, err)
}

func TestResolveTierPriority(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "p1", 100)
	repo.contracts = append(repo.contracts, model.PriceContract{
		BaseModel:    model.BaseModel{ID: "c1"},
		ProductID:    "p1",
		CustomerID:   "cust-1",
		MinQty:       1,
		UnitPrice:    80,
		DiscountRate: 0.05,
	})
	repo.groups["cust-1"] = &model.CustomerGroup{
		BaseModel:    model.BaseModel{ID: "g1"},
		Name:         "Pro",
		DiscountRate: 0.10,
	}
	repo.rates["p1/web"] = &model.ChannelRate{
		BaseModel: model.BaseModel{ID: "r1"},
		ProductID: "p1",
		ChannelID: "web",
		UnitPrice: 95,
	}
	uc := NewPricingUseCase(repo, zap.NewNop())

	// Contract beats everything.
	res, err := uc.Resolve(context.Background(), &dto.ResolveInput{
		ProductID: "p1", Quantity: 1, CustomerID: "cust-1", ChannelID: "web",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TierCustomerSpecific, res.Tier)
	assert.Equal(t, 80.0, res.UnitPrice)

	// Without a contract the group rate applies on the base price.
	repo.contracts = nil
	res, err = uc.Resolve(context.Background(), &dto.ResolveInput{
		ProductID: "p1", Quantity: 1, CustomerID: "cust-1", ChannelID: "web",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TierCustomerGroup, res.Tier)
	assert.Equal(t, 100.0, res.UnitPrice)
	assert.Equal(t, 0.10, res.DiscountRate)

	// No customer: the channel rate wins.
	res, err = uc.Resolve(context.Background(), &dto.ResolveInput{
		ProductID: "p1", Quantity: 1, ChannelID: "web",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TierChannel, res.Tier)
	assert.Equal(t, 95.0, res.UnitPrice)
}

func TestResolveQuantityTiersAndDateWindow(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "p1", 100)
	past := time.Now().Add(-48 * time.Hour)
	expired := time.Now().Add(-24 * time.Hour)
	repo.contracts = append(repo.contracts,
		model.PriceContract{
			BaseModel:  model.BaseModel{ID: "c1"},
			ProductID:  "p1",
			CustomerID: "cust-1",
			MinQty:     1,
			UnitPrice:  90,
		},
		model.PriceContract{
			BaseModel:  model.BaseModel{ID: "c2"},
			ProductID:  "p1",
			CustomerID: "cust-1",
			MinQty:     10,
			UnitPrice:  75,
		},
		model.PriceContract{
			BaseModel:  model.BaseModel{ID: "c3"},
			ProductID:  "p1",
			CustomerID: "cust-1",
			MinQty:     1,
			UnitPrice:  10,
			StartsAt:   &past,
			EndsAt:     &expired,
		},
	)
	uc := NewPricingUseCase(repo, zap.NewNop())

	res, err := uc.Resolve(context.Background(), &dto.ResolveInput{
		ProductID: "p1", Quantity: 5, CustomerID: "cust-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 90.0, res.UnitPrice)

	res, err = uc.Resolve(context.Background(), &dto.ResolveInput{
		ProductID: "p1", Quantity: 12, CustomerID: "cust-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 75.0, res.UnitPrice)
}

func TestResolveDegradesOnLookupFailure(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "p1", 100)
	repo.contractErr = errors.New("connection reset")
	uc := NewPricingUseCase(repo, zap.NewNop())

	res, err := uc.Resolve(context.Background(), &dto.ResolveInput{
		ProductID: "p1", Quantity: 1, CustomerID: "cust-1", ChannelID: "web",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TierBaseCatalog, res.Tier)
	assert.Equal(t, 100.0, res.UnitPrice)
	assert.Equal(t, 0.0, res.DiscountRate)
}

func TestCreateContractValidation(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "p1", 100)
	uc := NewPricingUseCase(repo, zap.NewNop())

	_, err := uc.CreateContract(context.Background(), &dto.CreateContractInput{
		ProductID: "p1", CustomerID: "cust-1", UnitPrice: -1,
	})
	assert.Error(t, err)

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err = uc.CreateContract(context.Background(), &dto.CreateContractInput{
		ProductID: "p1", CustomerID: "cust-1", UnitPrice: 50, StartsAt: &start, EndsAt: &end,
	})
	assert.Error(t, err)

	c, err := uc.CreateContract(context.Background(), &dto.CreateContractInput{
		ProductID: "p1", CustomerID: "cust-1", UnitPrice: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.MinQty)
}
