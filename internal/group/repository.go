package group

import (
	"context"

	"github.com/verone/catalog-service/internal/group/dto"
	"github.com/verone/catalog-service/internal/model"
)

type Repository interface {
	CreateGroup(ctx context.Context, g *model.VariantGroup) error
	FindGroupByID(ctx context.Context, id string) (*model.VariantGroup, error)
	FindGroups(ctx context.Context, filters *dto.GroupFilters) ([]model.VariantGroup, int, error)
	SaveGroup(ctx context.Context, g *model.VariantGroup) error
	// DeleteGroup detaches all members and removes the group row in one
	// transaction. Products survive.
	DeleteGroup(ctx context.Context, id string) error

	// FindMembers returns the group's products ordered by position.
	FindMembers(ctx context.Context, groupID string) ([]model.Product, error)
	FindProductByID(ctx context.Context, id string) (*model.Product, error)
	FindProducts(ctx context.Context, ids []string) ([]model.Product, error)

	// InsertMember inserts the product and saves the group row (member
	// counter) in one transaction.
	InsertMember(ctx context.Context, g *model.VariantGroup, p *model.Product) error
	SaveMember(ctx context.Context, p *model.Product) error
	// SaveCascade writes the group row and every given member row in one
	// transaction, so a failed cascade leaves no half-applied batch.
	SaveCascade(ctx context.Context, g *model.VariantGroup, members []model.Product) error
}
