package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/organisation"
	"github.com/verone/catalog-service/internal/organisation/dto"
	"github.com/verone/catalog-service/internal/platform/logger"
)

type organisationUseCase struct {
	repo   organisation.Repository
	logger logger.ZapLogger
}

func NewOrganisationUseCase(repo organisation.Repository, log logger.ZapLogger) organisation.UseCase {
	return &organisationUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *organisationUseCase) CreateOrganisation(ctx context.Context, input *dto.CreateOrganisationInput) (*model.Organisation, error) {
	if input.LegalName == "" {
		return nil, apperr.Validation("legal name is required")
	}
	kind := model.OrganisationKind(input.Kind)
	if kind != model.KindSupplier && kind != model.KindCustomer {
		return nil, apperr.Validation("invalid organisation kind %q", input.Kind)
	}
	if kind == model.KindSupplier && input.CustomerGroupID != nil {
		return nil, apperr.Validation("suppliers cannot belong to a customer group")
	}
	if input.CustomerGroupID != nil {
		group, err := uc.repo.FindGroupByID(ctx, *input.CustomerGroupID)
		if err != nil {
			return nil, apperr.External(err, "find customer group")
		}
		if group == nil {
			return nil, apperr.NotFound("customer group %s not found", *input.CustomerGroupID)
		}
	}

	now := time.Now()
	org := &model.Organisation{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Kind:             kind,
		LegalName:        input.LegalName,
		ContactEmail:     input.ContactEmail,
		ContactPhone:     input.ContactPhone,
		AddressLine:      input.AddressLine,
		City:             input.City,
		PostalCode:       input.PostalCode,
		Country:          input.Country,
		CustomerGroupID:  input.CustomerGroupID,
		PaymentTermsDays: input.PaymentTermsDays,
		IsActive:         true,
	}

	if err := uc.repo.Create(ctx, org); err != nil {
		return nil, apperr.External(err, "create organisation")
	}
	return org, nil
}

func (uc *organisationUseCase) GetOrganisation(ctx context.Context, id string) (*model.Organisation, error) {
	org, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.External(err, "find organisation")
	}
	if org == nil {
		return nil, apperr.NotFound("organisation %s not found", id)
	}
	return org, nil
}

func (uc *organisationUseCase) ListOrganisations(ctx context.Context, filters *dto.OrganisationFilters) ([]model.Organisation, int, error) {
	orgs, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperr.External(err, "list organisations")
	}
	return orgs, count, nil
}

func (uc *organisationUseCase) UpdateOrganisation(ctx context.Context, input *dto.UpdateOrganisationInput) (*model.Organisation, error) {
	org, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, apperr.External(err, "find organisation")
	}
	if org == nil {
		return nil, apperr.NotFound("organisation %s not found", input.ID)
	}

	if input.CustomerGroupID != nil {
		if org.Kind != model.KindCustomer {
			return nil, apperr.Validation("only customers can belong to a customer group")
		}
		if *input.CustomerGroupID != "" {
			group, err := uc.repo.FindGroupByID(ctx, *input.CustomerGroupID)
			if err != nil {
				return nil, apperr.External(err, "find customer group")
			}
			if group == nil {
				return nil, apperr.NotFound("customer group %s not found", *input.CustomerGroupID)
			}
			org.CustomerGroupID = input.CustomerGroupID
		} else {
			org.CustomerGroupID = nil
		}
	}

	if input.LegalName != nil {
		if *input.LegalName == "" {
			return nil, apperr.Validation("legal name cannot be empty")
		}
		org.LegalName = *input.LegalName
	}
	if input.ContactEmail != nil {
		org.ContactEmail = input.ContactEmail
	}
	if input.ContactPhone != nil {
		org.ContactPhone = input.ContactPhone
	}
	if input.AddressLine != nil {
		org.AddressLine = input.AddressLine
	}
	if input.City != nil {
		org.City = input.City
	}
	if input.PostalCode != nil {
		org.PostalCode = input.PostalCode
	}
	if input.Country != nil {
		org.Country = input.Country
	}
	if input.PaymentTermsDays != nil {
		org.PaymentTermsDays = *input.PaymentTermsDays
	}
	if input.IsActive != nil {
		org.IsActive = *input.IsActive
	}
	org.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, org); err != nil {
		return nil, apperr.External(err, "update organisation")
	}
	return org, nil
}

// DeactivateOrganisation soft-disables the record. Orders and contracts keep
// their references, so there is no hard delete.
func (uc *organisationUseCase) DeactivateOrganisation(ctx context.Context, id string) error {
	org, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.External(err, "find organisation")
	}
	if org == nil {
		return apperr.NotFound("organisation %s not found", id)
	}
	if !org.IsActive {
		return nil
	}

	org.IsActive = false
	org.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, org); err != nil {
		return apperr.External(err, "update organisation")
	}
	return nil
}

func (uc *organisationUseCase) CreateCustomerGroup(ctx context.Context, input *dto.CreateCustomerGroupInput) (*model.CustomerGroup, error) {
	if input.Name == "" {
		return nil, apperr.Validation("customer group name is required")
	}
	if input.DiscountRate < 0 || input.DiscountRate >= 1 {
		return nil, apperr.Validation("discount rate must be in [0, 1)")
	}

	now := time.Now()
	group := &model.CustomerGroup{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         input.Name,
		DiscountRate: input.DiscountRate,
	}

	if err := uc.repo.CreateGroup(ctx, group); err != nil {
		return nil, apperr.External(err, "create customer group")
	}
	return group, nil
}

func (uc *organisationUseCase) ListCustomerGroups(ctx context.Context) ([]model.CustomerGroup, error) {
	groups, err := uc.repo.FindGroups(ctx)
	if err != nil {
		return nil, apperr.External(err, "list customer groups")
	}
	return groups, nil
}

func (uc *organisationUseCase) UpdateCustomerGroup(ctx context.Context, input *dto.UpdateCustomerGroupInput) (*model.CustomerGroup, error) {
	group, err := uc.repo.FindGroupByID(ctx, input.ID)
	if err != nil {
		return nil, apperr.External(err, "find customer group")
	}
	if group == nil {
		return nil, apperr.NotFound("customer group %s not found", input.ID)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperr.Validation("customer group name cannot be empty")
		}
		group.Name = *input.Name
	}
	if input.DiscountRate != nil {
		if *input.DiscountRate < 0 || *input.DiscountRate >= 1 {
			return nil, apperr.Validation("discount rate must be in [0, 1)")
		}
		group.DiscountRate = *input.DiscountRate
	}
	group.UpdatedAt = time.Now()

	if err := uc.repo.UpdateGroup(ctx, group); err != nil {
		return nil, apperr.External(err, "update customer group")
	}
	return group, nil
}

func (uc *organisationUseCase) DeleteCustomerGroup(ctx context.Context, id string) error {
	group, err := uc.repo.FindGroupByID(ctx, id)
	if err != nil {
		return apperr.External(err, "find customer group")
	}
	if group == nil {
		return apperr.NotFound("customer group %s not found", id)
	}

	members, err := uc.repo.CountGroupMembers(ctx, id)
	if err != nil {
		return apperr.External(err, "count customer group members")
	}
	if members > 0 {
		return apperr.Conflict("customer group %s still has %d members", id, members)
	}

	if err := uc.repo.DeleteGroup(ctx, id); err != nil {
		return apperr.External(err, "delete customer group")
	}
	return nil
}
