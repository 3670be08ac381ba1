package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/organisation/dto"
	"go.uber.org/zap"
)

type fakeRepo struct {
	orgs   map[string]*model.Organisation
	groups map[string]*model.CustomerGroup
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orgs:   map[string]*model.Organisation{},
		groups: map[string]*model.CustomerGroup{},
	}
}

func (r *fakeRepo) Create(_ context.Context, org *model.Organisation) error {
	cp := *org
	r.orgs[org.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*model.Organisation, error) {
	org, ok := r.orgs[id]
	if !ok {
		return nil, nil
	}
	cp := *org
	return &cp, nil
}

func (r *fakeRepo) FindAll(_ context.Context, f *dto.OrganisationFilters) ([]model.Organisation, int, error) {
	var out []model.Organisation
	for _, org := range r.orgs {
		if f.Kind != "" && string(org.Kind) != f.Kind {
			continue
		}
		if f.IsActive != nil && org.IsActive != *f.IsActive {
			continue
		}
		out = append(out, *org)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, org *model.Organisation) error {
	cp := *org
	r.orgs[org.ID] = &cp
	return nil
}

func (r *fakeRepo) CreateGroup(_ context.Context, group *model.CustomerGroup) error {
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *fakeRepo) FindGroupByID(_ context.Context, id string) (*model.CustomerGroup, error) {
	group, ok := r.groups[id]
	if !ok {
		return nil, nil
	}
	cp := *group
	return &cp, nil
}

func (r *fakeRepo) FindGroups(_ context.Context) ([]model.CustomerGroup, error) {
	var out []model.CustomerGroup
	for _, g := range r.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (r *fakeRepo) UpdateGroup(_ context.Context, group *model.CustomerGroup) error {
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *fakeRepo) DeleteGroup(_ context.Context, id string) error {
	delete(r.groups, id)
	return nil
}

func (r *fakeRepo) CountGroupMembers(_ context.Context, groupID string) (int, error) {
	count := 0
	for _, org := range r.orgs {
		if org.CustomerGroupID != nil && *org.CustomerGroupID == groupID {
			count++
		}
	}
	return count, nil
}

func TestCreateOrganisationValidatesKind(t *testing.T) {
	uc := NewOrganisationUseCase(newFakeRepo(), zap.NewNop())

	_, err := uc.CreateOrganisation(context.Background(), &dto.CreateOrganisationInput{
		Kind:      "warehouse",
		LegalName: "Ateliers du Nord",
	})
	assert.Error(t, err)

	_, err = uc.CreateOrganisation(context.Background(), &dto.CreateOrganisationInput{
		Kind: "supplier",
	})
	assert.Error(t, err)

	org, err := uc.CreateOrganisation(context.Background(), &dto.CreateOrganisationInput{
		Kind:      "supplier",
		LegalName: "Ateliers du Nord",
	})
	require.NoError(t, err)
	assert.Equal(t, model.KindSupplier, org.Kind)
	assert.True(t, org.IsActive)
}

func TestCreateOrganisationSupplierCannotJoinCustomerGroup(t *testing.T) {
	repo := newFakeRepo()
	uc := NewOrganisationUseCase(repo, zap.NewNop())

	group, err := uc.CreateCustomerGroup(context.Background(), &dto.CreateCustomerGroupInput{
		Name:         "Grossistes",
		DiscountRate: 0.15,
	})
	require.NoError(t, err)

	_, err = uc.CreateOrganisation(context.Background(), &dto.CreateOrganisationInput{
		Kind:            "supplier",
		LegalName:       "Ateliers du Nord",
		CustomerGroupID: &group.ID,
	})
	assert.Error(t, err)

	customer, err := uc.CreateOrganisation(context.Background(), &dto.CreateOrganisationInput{
		Kind:            "customer",
		LegalName:       "Hôtel Beau Rivage",
		CustomerGroupID: &group.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, group.ID, *customer.CustomerGroupID)
}

func TestCreateOrganisationRejectsMissingGroup(t *testing.T) {
	uc := NewOrganisationUseCase(newFakeRepo(), zap.NewNop())

	missing := "nope"
	_, err := uc.CreateOrganisation(context.Background(), &dto.CreateOrganisationInput{
		Kind:            "customer",
		LegalName:       "Hôtel Beau Rivage",
		CustomerGroupID: &missing,
	})
	assert.Error(t, err)
}

func TestUpdateOrganisationGroupAssignment(t *testing.T) {
	repo := newFakeRepo()
	uc := NewOrganisationUseCase(repo, zap.NewNop())

	group, err := uc.CreateCustomerGroup(context.Background(), &dto.CreateCustomerGroupInput{
		Name:         "Grossistes",
		DiscountRate: 0.15,
	})
	require.NoError(t, err)

	supplier, err := uc.CreateOrganisation(context.Background(), &dto.CreateOrganisationInput{
		Kind:      "supplier",
		LegalName: "Ateliers du Nord",
	})
	require.NoError(t, err)

	// Suppliers never get a group, even on update.
	_, err = uc.UpdateOrganisation(context.Background(), &dto.UpdateOrganisationInput{
		ID:              supplier.ID,
		CustomerGroupID: &group.ID,
	})
	assert.Error(t, err)

	customer, err := uc.CreateOrganisation(context.Background(), &dto.CreateOrganisationInput{
		Kind:      "customer",
		LegalName: "Hôtel Beau Rivage",
	})
	require.NoError(t, err)

	updated, err := uc.UpdateOrganisation(context.Background(), &dto.UpdateOrganisationInput{
		ID:              customer.ID,
		CustomerGroupID: &group.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CustomerGroupID)
	assert.Equal(t, group.ID, *updated.CustomerGroupID)

	// An empty group id clears the assignment.
	empty := ""
	cleared, err := uc.UpdateOrganisation(context.Background(), &dto.UpdateOrganisationInput{
		ID:              customer.ID,
		CustomerGroupID: &empty,
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.CustomerGroupID)
}

func TestDeactivateOrganisationIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	uc := NewOrganisationUseCase(repo, zap.NewNop())

	org, err := uc.CreateOrganisation(context.Background(), &dto.CreateOrganisationInput{
		Kind:      "customer",
		LegalName: "Hôtel Beau Rivage",
	})
	require.NoError(t, err)

	require.NoError(t, uc.DeactivateOrganisation(context.Background(), org.ID))
	assert.False(t, repo.orgs[org.ID].IsActive)

	require.NoError(t, uc.DeactivateOrganisation(context.Background(), org.ID))
	assert.Error(t, uc.DeactivateOrganisation(context.Background(), "nope"))
}

func TestCreateCustomerGroupValidatesDiscountRate(t *testing.T) {
	uc := NewOrganisationUseCase(newFakeRepo(), zap.NewNop())

	_, err := uc.CreateCustomerGroup(context.Background(), &dto.CreateCustomerGroupInput{
		Name:         "Grossistes",
		DiscountRate: 1,
	})
	assert.Error(t, err)

	_, err = uc.CreateCustomerGroup(context.Background(), &dto.CreateCustomerGroupInput{
		Name:         "Grossistes",
		DiscountRate: -0.1,
	})
	assert.Error(t, err)

	group, err := uc.CreateCustomerGroup(context.Background(), &dto.CreateCustomerGroupInput{
		Name:         "Grossistes",
		DiscountRate: 0.25,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.25, group.DiscountRate)
}

func TestDeleteCustomerGroupConflictsOnMembers(t *testing.T) {
	repo := newFakeRepo()
	uc := NewOrganisationUseCase(repo, zap.NewNop())

	group, err := uc.CreateCustomerGroup(context.Background(), &dto.CreateCustomerGroupInput{
		Name:         "Grossistes",
		DiscountRate: 0.15,
	})
	require.NoError(t, err)

	customer, err := uc.CreateOrganisation(context.Background(), &dto.CreateOrganisationInput{
		Kind:            "customer",
		LegalName:       "Hôtel Beau Rivage",
		CustomerGroupID: &group.ID,
	})
	require.NoError(t, err)

	assert.Error(t, uc.DeleteCustomerGroup(context.Background(), group.ID))

	empty := ""
	_, err = uc.UpdateOrganisation(context.Background(), &dto.UpdateOrganisationInput{
		ID:              customer.ID,
		CustomerGroupID: &empty,
	})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteCustomerGroup(context.Background(), group.ID))
	assert.Empty(t, repo.groups)
}
