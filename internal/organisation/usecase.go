package organisation

import (
	"context"

	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/organisation/dto"
)

type UseCase interface {
	CreateOrganisation(ctx context.Context, input *dto.CreateOrganisationInput) (*model.Organisation, error)
	GetOrganisation(ctx context.Context, id string) (*model.Organisation, error)
	ListOrganisations(ctx context.Context, filters *dto.OrganisationFilters) ([]model.Organisation, int, error)
	UpdateOrganisation(ctx context.Context, input *dto.UpdateOrganisationInput) (*model.Organisation, error)
	DeactivateOrganisation(ctx context.Context, id string) error

	CreateCustomerGroup(ctx context.Context, input *dto.CreateCustomerGroupInput) (*model.CustomerGroup, error)
	ListCustomerGroups(ctx context.Context) ([]model.CustomerGroup, error)
	UpdateCustomerGroup(ctx context.Context, input *dto.UpdateCustomerGroupInput) (*model.CustomerGroup, error)
	DeleteCustomerGroup(ctx context.Context, id string) error
}
