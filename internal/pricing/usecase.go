package pricing

import (
	"context"

	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/pricing/dto"
)

type UseCase interface {
	// Resolve walks the four pricing tiers in priority order and always
	// yields a resolution when the product exists. Lookup failures on any
	// tier degrade to the base catalog price instead of erroring.
	Resolve(ctx context.Context, input *dto.ResolveInput) (*model.Resolution, error)

	CreateContract(ctx context.Context, input *dto.CreateContractInput) (*model.PriceContract, error)
	ListContracts(ctx context.Context, filters *dto.ContractFilters) ([]model.PriceContract, error)
	DeleteContract(ctx context.Context, id string) error

	SetChannelRate(ctx context.Context, input *dto.SetChannelRateInput) (*model.ChannelRate, error)
	ListChannelRates(ctx context.Context, productID string) ([]model.ChannelRate, error)
	DeleteChannelRate(ctx context.Context, id string) error
}
