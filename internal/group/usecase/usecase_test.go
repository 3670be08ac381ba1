package usecase

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/group/dto"
	"github.com/verone/catalog-service/internal/model"
	"go.uber.org/zap"
)

// fakeRepo is an in-memory Repository; cascades are applied atomically
// enough for single-goroutine tests.
type fakeRepo struct {
	groups   map[string]model.VariantGroup
	products map[string]model.Product
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		groups:   map[string]model.VariantGroup{},
		products: map[string]model.Product{},
	}
}

func (r *fakeRepo) CreateGroup(_ context.Context, g *model.VariantGroup) error {
	r.groups[g.ID] = *g
	return nil
}

func (r *fakeRepo) FindGroupByID(_ context.Context, id string) (*model.VariantGroup, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, nil
	}
	cp := g
	return &cp, nil
}

func (r *fakeRepo) FindGroups(_ context.Context, _ *dto.GroupFilters) ([]model.VariantGroup, int, error) {
	out := make([]model.VariantGroup, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g)
	}
	return out, len(out), nil
}

func (r *fakeRepo) SaveGroup(_ context.Context, g *model.VariantGroup) error {
	r.groups[g.ID] = *g
	return nil
}

func (r *fakeRepo) DeleteGroup(_ context.Context, id string) error {
	for pid, p := range r.products {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
			p.Position = nil
			r.products[pid] = p
		}
	}
	delete(r.groups, id)
	return nil
}

func (r *fakeRepo) FindMembers(_ context.Context, groupID string) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.GroupID != nil && *p.GroupID == groupID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return *out[i].Position < *out[j].Position
	})
	return out, nil
}

func (r *fakeRepo) FindProductByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (r *fakeRepo) FindProducts(_ context.Context, ids []string) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) InsertMember(_ context.Context, g *model.VariantGroup, p *model.Product) error {
	r.products[p.ID] = *p
	r.groups[g.ID] = *g
	return nil
}

func (r *fakeRepo) SaveMember(_ context.Context, p *model.Product) error {
	r.products[p.ID] = *p
	return nil
}

func (r *fakeRepo) SaveCascade(_ context.Context, g *model.VariantGroup, members []model.Product) error {
	r.groups[g.ID] = *g
	for _, m := range members {
		r.products[m.ID] = m
	}
	return nil
}

func newTestUseCase(repo *fakeRepo) *groupUseCase {
	return &groupUseCase{repo: repo, cache: nil, logger: zap.NewNop()}
}

func seedStandalone(repo *fakeRepo, id, color string) {
	attrs := model.AttributeMap{}
	if color != "" {
		attrs["color"] = color
	}
	repo.products[id] = model.Product{
		BaseModel:    model.BaseModel{ID: id},
		Name:         "Produit " + id,
		SKU:          "SKU-" + id,
		VariantAttrs: attrs,
		Status:       model.StatusInStock,
	}
}

func mustCreateGroup(t *testing.T, uc *groupUseCase) *model.VariantGroup {
	t.Helper()
	g, err := uc.CreateGroup(context.Background(), &dto.CreateGroupInput{
		Name:        "Chaise Oslo",
		BaseSKU:     "CHR-OSLO",
		VariantType: "color",
	})
	require.NoError(t, err)
	require.Equal(t, 0, g.MemberCount)
	return g
}

func positions(t *testing.T, repo *fakeRepo, groupID string) []int {
	t.Helper()
	members, err := repo.FindMembers(context.Background(), groupID)
	require.NoError(t, err)
	out := make([]int, 0, len(members))
	for _, m := range members {
		require.NotNil(t, m.Position)
		out = append(out, *m.Position)
	}
	return out
}

func TestCreateGroupValidation(t *testing.T) {
	uc := newTestUseCase(newFakeRepo())

	_, err := uc.CreateGroup(context.Background(), &dto.CreateGroupInput{BaseSKU: "X", VariantType: "color"})
	assert.True(t, apperr.IsValidation(err))

	_, err = uc.CreateGroup(context.Background(), &dto.CreateGroupInput{Name: "X", VariantType: "color"})
	assert.True(t, apperr.IsValidation(err))

	_, err = uc.CreateGroup(context.Background(), &dto.CreateGroupInput{Name: "X", BaseSKU: "X", VariantType: "flavour"})
	assert.True(t, apperr.IsValidation(err))
}

func TestAddMembersDerivesFieldsAndPositions(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	g := mustCreateGroup(t, uc)

	seedStandalone(repo, "p1", "Rouge")

	added, err := uc.AddMembers(context.Background(), &dto.AddMembersInput{
		GroupID: g.ID, ProductIDs: []string{"p1"},
	})
	require.NoError(t, err)
	require.Len(t, added, 1)

	p1, _ := repo.FindProductByID(context.Background(), "p1")
	assert.Equal(t, "Chaise Oslo - Rouge", p1.Name)
	assert.Equal(t, "CHR-OSLO-ROUGE", p1.SKU)
	require.NotNil(t, p1.Position)
	assert.Equal(t, 1, *p1.Position)

	saved, _ := repo.FindGroupByID(context.Background(), g.ID)
	assert.Equal(t, 1, saved.MemberCount)
}

func TestAddMembersRejectsAlreadyGroupedBatch(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	g := mustCreateGroup(t, uc)

	other, err := uc.CreateGroup(context.Background(), &dto.CreateGroupInput{
		Name: "Table Riga", BaseSKU: "TBL-RIGA", VariantType: "color",
	})
	require.NoError(t, err)

	seedStandalone(repo, "free", "Rouge")
	seedStandalone(repo, "taken", "Bleu")
	taken := repo.products["taken"]
	oid := other.ID
	pos := 1
	taken.GroupID = &oid
	taken.Position = &pos
	repo.products["taken"] = taken

	_, err = uc.AddMembers(context.Background(), &dto.AddMembersInput{
		GroupID: g.ID, ProductIDs: []string{"free", "taken"},
	})
	assert.True(t, apperr.IsConflict(err))

	// Whole batch rejected: the free product stays standalone.
	free, _ := repo.FindProductByID(context.Background(), "free")
	assert.Nil(t, free.GroupID)
	saved, _ := repo.FindGroupByID(context.Background(), g.ID)
	assert.Equal(t, 0, saved.MemberCount)
}

func TestCreateMemberDuplicateVariantValue(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	g := mustCreateGroup(t, uc)

	_, err := uc.CreateMember(context.Background(), &dto.CreateMemberInput{
		GroupID: g.ID, VariantValue: "Rouge", BasePrice: 129,
	})
	require.NoError(t, err)

	_, err = uc.CreateMember(context.Background(), &dto.CreateMemberInput{
		GroupID: g.ID, VariantValue: "Rouge", BasePrice: 129,
	})
	assert.True(t, apperr.IsConflict(err))

	// Member set unchanged.
	members, _ := repo.FindMembers(context.Background(), g.ID)
	assert.Len(t, members, 1)
	saved, _ := repo.FindGroupByID(context.Background(), g.ID)
	assert.Equal(t, 1, saved.MemberCount)

	// Case-sensitive exact match: "rouge" is a different value.
	_, err = uc.CreateMember(context.Background(), &dto.CreateMemberInput{
		GroupID: g.ID, VariantValue: "rouge", BasePrice: 129,
	})
	assert.NoError(t, err)
}

func TestRemoveMemberRenumbersDense(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	g := mustCreateGroup(t, uc)

	ctx := context.Background()
	p1, err := uc.CreateMember(ctx, &dto.CreateMemberInput{GroupID: g.ID, VariantValue: "Rouge"})
	require.NoError(t, err)
	_, err = uc.CreateMember(ctx, &dto.CreateMemberInput{GroupID: g.ID, VariantValue: "Bleu"})
	require.NoError(t, err)
	p3, err := uc.CreateMember(ctx, &dto.CreateMemberInput{GroupID: g.ID, VariantValue: "Vert"})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, positions(t, repo, g.ID))

	require.NoError(t, uc.RemoveMember(ctx, p1.ID))

	assert.Equal(t, []int{1, 2}, positions(t, repo, g.ID))
	saved, _ := repo.FindGroupByID(ctx, g.ID)
	assert.Equal(t, 2, saved.MemberCount)

	removed, _ := repo.FindProductByID(ctx, p1.ID)
	assert.Nil(t, removed.GroupID)
	assert.Nil(t, removed.Position)

	require.NoError(t, uc.RemoveMember(ctx, p3.ID))
	assert.Equal(t, []int{1}, positions(t, repo, g.ID))
	saved, _ = repo.FindGroupByID(ctx, g.ID)
	assert.Equal(t, 1, saved.MemberCount)
}

func TestUpdateGroupNameCascadesNamesNotSKUs(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	g := mustCreateGroup(t, uc)

	ctx := context.Background()
	p, err := uc.CreateMember(ctx, &dto.CreateMemberInput{GroupID: g.ID, VariantValue: "Bleu"})
	require.NoError(t, err)
	require.Equal(t, "CHR-OSLO-BLEU", p.SKU)

	newName := "Chaise Oslo V2"
	_, err = uc.UpdateGroup(ctx, &dto.UpdateGroupInput{ID: g.ID, Name: &newName})
	require.NoError(t, err)

	saved, _ := repo.FindProductByID(ctx, p.ID)
	assert.Equal(t, "Chaise Oslo V2 - Bleu", saved.Name)
	assert.Equal(t, "CHR-OSLO-BLEU", saved.SKU)
}

func TestUpdateGroupBaseSKURegeneratesMemberSKUs(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	g := mustCreateGroup(t, uc)

	ctx := context.Background()
	p, err := uc.CreateMember(ctx, &dto.CreateMemberInput{GroupID: g.ID, VariantValue: "Bleu"})
	require.NoError(t, err)

	newSKU := "CHR-OSLO2"
	_, err = uc.UpdateGroup(ctx, &dto.UpdateGroupInput{ID: g.ID, BaseSKU: &newSKU})
	require.NoError(t, err)

	saved, _ := repo.FindProductByID(ctx, p.ID)
	assert.Equal(t, "CHR-OSLO2-BLEU", saved.SKU)
	assert.Equal(t, "Chaise Oslo - Bleu", saved.Name)
}

func TestArchiveCascadeAndIdempotence(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	g := mustCreateGroup(t, uc)

	ctx := context.Background()
	p, err := uc.CreateMember(ctx, &dto.CreateMemberInput{GroupID: g.ID, VariantValue: "Bleu"})
	require.NoError(t, err)

	// A member archived independently before the group cascade.
	pre, err := uc.CreateMember(ctx, &dto.CreateMemberInput{GroupID: g.ID, VariantValue: "Vert"})
	require.NoError(t, err)
	preRow := repo.products[pre.ID]
	earlier := time.Now().Add(-time.Hour)
	preRow.ArchivedAt = &earlier
	preRow.Status = model.StatusDiscontinued
	repo.products[pre.ID] = preRow

	require.NoError(t, uc.ArchiveGroup(ctx, g.ID))

	saved, _ := repo.FindProductByID(ctx, p.ID)
	require.NotNil(t, saved.ArchivedAt)
	assert.Equal(t, model.StatusDiscontinued, saved.Status)

	// Already-archived member untouched by the cascade.
	preSaved, _ := repo.FindProductByID(ctx, pre.ID)
	assert.True(t, preSaved.ArchivedAt.Equal(earlier))

	// Archiving again is a no-op.
	firstArchivedAt := *saved.ArchivedAt
	require.NoError(t, uc.ArchiveGroup(ctx, g.ID))
	saved, _ = repo.FindProductByID(ctx, p.ID)
	assert.True(t, saved.ArchivedAt.Equal(firstArchivedAt))

	require.NoError(t, uc.UnarchiveGroup(ctx, g.ID))

	// Cascade-archived member restored...
	saved, _ = repo.FindProductByID(ctx, p.ID)
	assert.Nil(t, saved.ArchivedAt)
	assert.Equal(t, model.StatusInStock, saved.Status)

	// ...but the independently archived one stays archived.
	preSaved, _ = repo.FindProductByID(ctx, pre.ID)
	assert.NotNil(t, preSaved.ArchivedAt)
	assert.Equal(t, model.StatusDiscontinued, preSaved.Status)
}

func TestUpdateMemberAttributeRegeneratesDerivedFields(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	g := mustCreateGroup(t, uc)

	ctx := context.Background()
	p, err := uc.CreateMember(ctx, &dto.CreateMemberInput{GroupID: g.ID, VariantValue: "Bleu"})
	require.NoError(t, err)

	// Changing a non-dimension key keeps derived fields but stores the key.
	updated, err := uc.UpdateMemberAttribute(ctx, &dto.UpdateMemberAttributeInput{
		ProductID: p.ID, Key: "finish", Value: "mat",
	})
	require.NoError(t, err)
	assert.Equal(t, "mat", updated.VariantAttrs["finish"])
	assert.Equal(t, "Chaise Oslo - Bleu", updated.Name)

	// Changing the variant dimension regenerates name and SKU.
	updated, err = uc.UpdateMemberAttribute(ctx, &dto.UpdateMemberAttributeInput{
		ProductID: p.ID, Key: "color", Value: "Émeraude",
	})
	require.NoError(t, err)
	assert.Equal(t, "Chaise Oslo - Émeraude", updated.Name)
	assert.Equal(t, "CHR-OSLO-EMERAUDE", updated.SKU)
}

func TestUpdateMemberAttributeStandaloneProduct(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	seedStandalone(repo, "p1", "")

	updated, err := uc.UpdateMemberAttribute(context.Background(), &dto.UpdateMemberAttributeInput{
		ProductID: "p1", Key: "color", Value: "Rouge",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rouge", updated.VariantAttrs["color"])
	// No group template: name and SKU untouched.
	assert.Equal(t, "Produit p1", updated.Name)
	assert.Equal(t, "SKU-p1", updated.SKU)
}

func TestDeleteGroupDetachesMembers(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	g := mustCreateGroup(t, uc)

	ctx := context.Background()
	p, err := uc.CreateMember(ctx, &dto.CreateMemberInput{GroupID: g.ID, VariantValue: "Bleu"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteGroup(ctx, g.ID))

	_, err = uc.GetGroup(ctx, g.ID)
	assert.True(t, apperr.IsNotFound(err))

	survivor, _ := repo.FindProductByID(ctx, p.ID)
	require.NotNil(t, survivor)
	assert.Nil(t, survivor.GroupID)
	assert.Nil(t, survivor.Position)
}
