package organisation

import (
	"context"

	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/organisation/dto"
)

type Repository interface {
	Create(ctx context.Context, org *model.Organisation) error
	FindByID(ctx context.Context, id string) (*model.Organisation, error)
	FindAll(ctx context.Context, filters *dto.OrganisationFilters) ([]model.Organisation, int, error)
	Update(ctx context.Context, org *model.Organisation) error

	CreateGroup(ctx context.Context, group *model.CustomerGroup) error
	FindGroupByID(ctx context.Context, id string) (*model.CustomerGroup, error)
	FindGroups(ctx context.Context) ([]model.CustomerGroup, error)
	UpdateGroup(ctx context.Context, group *model.CustomerGroup) error
	DeleteGroup(ctx context.Context, id string) error
	CountGroupMembers(ctx context.Context, groupID string) (int, error)
}
