package group

import (
	"context"

	"github.com/verone/catalog-service/internal/group/dto"
	"github.com/verone/catalog-service/internal/model"
)

type UseCase interface {
	CreateGroup(ctx context.Context, input *dto.CreateGroupInput) (*model.VariantGroup, error)
	GetGroup(ctx context.Context, id string) (*model.VariantGroup, error)
	ListGroups(ctx context.Context, filters *dto.GroupFilters) ([]model.VariantGroup, int, error)
	UpdateGroup(ctx context.Context, input *dto.UpdateGroupInput) (*model.VariantGroup, error)
	DeleteGroup(ctx context.Context, id string) error

	// Member ops
	AddMembers(ctx context.Context, input *dto.AddMembersInput) ([]model.Product, error)
	CreateMember(ctx context.Context, input *dto.CreateMemberInput) (*model.Product, error)
	RemoveMember(ctx context.Context, productID string) error
	UpdateMemberAttribute(ctx context.Context, input *dto.UpdateMemberAttributeInput) (*model.Product, error)
	ListMembers(ctx context.Context, groupID string) ([]model.Product, error)

	ArchiveGroup(ctx context.Context, id string) error
	UnarchiveGroup(ctx context.Context, id string) error
}
