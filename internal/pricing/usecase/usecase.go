package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/platform/logger"
	"github.com/verone/catalog-service/internal/pricing"
	"github.com/verone/catalog-service/internal/pricing/dto"
	"go.uber.org/zap"
)

type pricingUseCase struct {
	repo   pricing.Repository
	logger logger.ZapLogger
}

func NewPricingUseCase(repo pricing.Repository, log logger.ZapLogger) pricing.UseCase {
	return &pricingUseCase{
		repo:   repo,
		logger: log,
	}
}

// Resolve returns exactly one resolution for an existing product. The tiers
// are consulted in strict priority order: customer contract, customer group,
// channel rate, base catalog. A repository failure on any tier is logged and
// the resolution degrades to the base catalog price with discount 0, so
// order entry is never blocked by a pricing-side outage. Only a missing
// product is a hard failure since there is no base price to fall back to.
func (uc *pricingUseCase) Resolve(ctx context.Context, input *dto.ResolveInput) (*model.Resolution, error) {
	if input.ProductID == "" {
		return nil, apperr.Validation("product id is required")
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}
	asOf := input.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	product, err := uc.repo.FindProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, apperr.External(err, "find product")
	}
	if product == nil {
		return nil, apperr.NotFound("product %s not found", input.ProductID)
	}

	base := &model.Resolution{
		UnitPrice:    product.BasePrice,
		DiscountRate: 0,
		Tier:         model.TierBaseCatalog,
	}

	if input.CustomerID != "" {
		contract, err := uc.repo.FindBestContract(ctx, input.ProductID, input.CustomerID, input.Quantity, asOf)
		if err != nil {
			uc.logger.Warn("contract lookup failed, falling back to base catalog",
				zap.String("product_id", input.ProductID),
				zap.String("customer_id", input.CustomerID),
				zap.Error(err))
			return base, nil
		}
		if contract != nil {
			return &model.Resolution{
				UnitPrice:    contract.UnitPrice,
				DiscountRate: contract.DiscountRate,
				Tier:         model.TierCustomerSpecific,
			}, nil
		}

		group, err := uc.repo.FindCustomerGroup(ctx, input.CustomerID)
		if err != nil {
			uc.logger.Warn("customer group lookup failed, falling back to base catalog",
				zap.String("customer_id", input.CustomerID),
				zap.Error(err))
			return base, nil
		}
		if group != nil {
			return &model.Resolution{
				UnitPrice:    product.BasePrice,
				DiscountRate: group.DiscountRate,
				Tier:         model.TierCustomerGroup,
			}, nil
		}
	}

	if input.ChannelID != "" {
		rate, err := uc.repo.FindChannelRate(ctx, input.ProductID, input.ChannelID)
		if err != nil {
			uc.logger.Warn("channel rate lookup failed, falling back to base catalog",
				zap.String("product_id", input.ProductID),
				zap.String("channel_id", input.ChannelID),
				zap.Error(err))
			return base, nil
		}
		if rate != nil {
			return &model.Resolution{
				UnitPrice:    rate.UnitPrice,
				DiscountRate: rate.DiscountRate,
				Tier:         model.TierChannel,
			}, nil
		}
	}

	return base, nil
}

func (uc *pricingUseCase) CreateContract(ctx context.Context, input *dto.CreateContractInput) (*model.PriceContract, error) {
	if input.ProductID == "" || input.CustomerID == "" {
		return nil, apperr.Validation("product id and customer id are required")
	}
	if input.UnitPrice < 0 {
		return nil, apperr.Validation("unit price cannot be negative")
	}
	if input.DiscountRate < 0 || input.DiscountRate >= 1 {
		return nil, apperr.Validation("discount rate must be in [0, 1)")
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, apperr.Validation("contract window ends before it starts")
	}

	product, err := uc.repo.FindProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, apperr.External(err, "find product")
	}
	if product == nil {
		return nil, apperr.NotFound("product %s not found", input.ProductID)
	}

	minQty := input.MinQty
	if minQty < 1 {
		minQty = 1
	}

	now := time.Now()
	contract := &model.PriceContract{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProductID:    input.ProductID,
		CustomerID:   input.CustomerID,
		MinQty:       minQty,
		UnitPrice:    input.UnitPrice,
		DiscountRate: input.DiscountRate,
		StartsAt:     input.StartsAt,
		EndsAt:       input.EndsAt,
	}

	if err := uc.repo.CreateContract(ctx, contract); err != nil {
		return nil, apperr.External(err, "create price contract")
	}
	return contract, nil
}

func (uc *pricingUseCase) ListContracts(ctx context.Context, filters *dto.ContractFilters) ([]model.PriceContract, error) {
	contracts, err := uc.repo.FindContracts(ctx, filters)
	if err != nil {
		return nil, apperr.External(err, "list price contracts")
	}
	return contracts, nil
}

func (uc *pricingUseCase) DeleteContract(ctx context.Context, id string) error {
	if err := uc.repo.DeleteContract(ctx, id); err != nil {
		return apperr.External(err, "delete price contract")
	}
	return nil
}

func (uc *pricingUseCase) SetChannelRate(ctx context.Context, input *dto.SetChannelRateInput) (*model.ChannelRate, error) {
	if input.ProductID == "" || input.ChannelID == "" {
		return nil, apperr.Validation("product id and channel id are required")
	}
	if input.UnitPrice < 0 {
		return nil, apperr.Validation("unit price cannot be negative")
	}
	if input.DiscountRate < 0 || input.DiscountRate >= 1 {
		return nil, apperr.Validation("discount rate must be in [0, 1)")
	}

	product, err := uc.repo.FindProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, apperr.External(err, "find product")
	}
	if product == nil {
		return nil, apperr.NotFound("product %s not found", input.ProductID)
	}

	now := time.Now()
	rate := &model.ChannelRate{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProductID:    input.ProductID,
		ChannelID:    input.ChannelID,
		UnitPrice:    input.UnitPrice,
		DiscountRate: input.DiscountRate,
	}

	if err := uc.repo.UpsertChannelRate(ctx, rate); err != nil {
		return nil, apperr.External(err, "upsert channel rate")
	}
	return rate, nil
}

func (uc *pricingUseCase) ListChannelRates(ctx context.Context, productID string) ([]model.ChannelRate, error) {
	rates, err := uc.repo.FindChannelRates(ctx, productID)
	if err != nil {
		return nil, apperr.External(err, "list channel rates")
	}
	return rates, nil
}

func (uc *pricingUseCase) DeleteChannelRate(ctx context.Context, id string) error {
	if err := uc.repo.DeleteChannelRate(ctx, id); err != nil {
		return apperr.External(err, "delete channel rate")
	}
	return nil
}
