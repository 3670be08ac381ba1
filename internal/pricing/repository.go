package pricing

import (
	"context"
	"time"

	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/pricing/dto"
)

type Repository interface {
	FindProductByID(ctx context.Context, id string) (*model.Product, error)

	// FindBestContract returns the customer's matching contract with the
	// highest satisfied quantity tier, or nil when none applies.
	FindBestContract(ctx context.Context, productID, customerID string, qty int, asOf time.Time) (*model.PriceContract, error)

	// FindCustomerGroup resolves the customer's pricing group through the
	// organisation record, or nil when the customer has none.
	FindCustomerGroup(ctx context.Context, customerID string) (*model.CustomerGroup, error)

	FindChannelRate(ctx context.Context, productID, channelID string) (*model.ChannelRate, error)

	CreateContract(ctx context.Context, contract *model.PriceContract) error
	FindContracts(ctx context.Context, filters *dto.ContractFilters) ([]model.PriceContract, error)
	DeleteContract(ctx context.Context, id string) error

	UpsertChannelRate(ctx context.Context, rate *model.ChannelRate) error
	FindChannelRates(ctx context.Context, productID string) ([]model.ChannelRate, error)
	DeleteChannelRate(ctx context.Context, id string) error
}
