package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verone/catalog-service/internal/category/dto"
	"github.com/verone/catalog-service/internal/model"
	"go.uber.org/zap"
)

type fakeRepo struct {
	categories    map[string]*model.Category
	productCounts map[string]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories:    map[string]*model.Category{},
		productCounts: map[string]int{},
	}
}

func (r *fakeRepo) Create(_ context.Context, c *model.Category) error {
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) FindAll(_ context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var out []model.Category
	for _, c := range r.categories {
		if f.ParentID != nil {
			if *f.ParentID == "" {
				if c.ParentID != nil {
					continue
				}
			} else if c.ParentID == nil || *c.ParentID != *f.ParentID {
				continue
			}
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, c *model.Category) error {
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.categories, id)
	return nil
}

func (r *fakeRepo) CountProducts(_ context.Context, id string) (int, error) {
	return r.productCounts[id], nil
}

func (r *fakeRepo) CountChildren(_ context.Context, id string) (int, error) {
	count := 0
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == id {
			count++
		}
	}
	return count, nil
}

func TestCreateCategoryValidatesParent(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCategoryUseCase(repo, zap.NewNop())

	missing := "nope"
	_, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Salon", ParentID: &missing})
	assert.Error(t, err)

	parent, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Meubles"})
	require.NoError(t, err)

	child, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Chaises", ParentID: &parent.ID})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *child.ParentID)
}

func TestListCategoriesAsTree(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCategoryUseCase(repo, zap.NewNop())

	root, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Meubles"})
	require.NoError(t, err)
	_, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Chaises", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Tables", ParentID: &root.ID})
	require.NoError(t, err)

	tree, _, err := uc.ListCategories(context.Background(), &dto.CategoryFilters{AsTree: true})
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Meubles", tree[0].Name)
	assert.Len(t, tree[0].Children, 2)
}

func TestListCategoriesAsTreeKeepsGrandchildren(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCategoryUseCase(repo, zap.NewNop())

	root, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Meubles"})
	require.NoError(t, err)
	mid, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Salon", ParentID: &root.ID})
	require.NoError(t, err)
	leaf, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Canapés", ParentID: &mid.ID})
	require.NoError(t, err)

	tree, _, err := uc.ListCategories(context.Background(), &dto.CategoryFilters{AsTree: true})
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, leaf.ID, tree[0].Children[0].Children[0].ID)
}

func TestDeleteCategoryConflicts(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCategoryUseCase(repo, zap.NewNop())

	cat, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Chaises"})
	require.NoError(t, err)

	repo.productCounts[cat.ID] = 3
	assert.Error(t, uc.DeleteCategory(context.Background(), cat.ID))

	repo.productCounts[cat.ID] = 0
	require.NoError(t, uc.DeleteCategory(context.Background(), cat.ID))
}

func TestUpdateCategoryRejectsSelfParent(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCategoryUseCase(repo, zap.NewNop())

	cat, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Chaises"})
	require.NoError(t, err)

	_, err = uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{
		ID:       cat.ID,
		ParentID: &cat.ID,
		IsActive: true,
	})
	assert.Error(t, err)
}
