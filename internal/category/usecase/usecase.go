package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/category"
	"github.com/verone/catalog-service/internal/category/dto"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/platform/logger"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if input.Name == "" {
		return nil, apperr.Validation("category name is required")
	}
	if input.ParentID != nil && *input.ParentID != "" {
		parent, err := uc.repo.FindByID(ctx, *input.ParentID)
		if err != nil {
			return nil, apperr.External(err, "find parent category")
		}
		if parent == nil {
			return nil, apperr.NotFound("parent category %s not found", *input.ParentID)
		}
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ParentID:  input.ParentID,
		Name:      input.Name,
		SortOrder: input.SortOrder,
		IsActive:  true,
	}
	if input.Description != "" {
		cat.Description = &input.Description
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, apperr.External(err, "create category")
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.External(err, "find category")
	}
	if cat == nil {
		return nil, apperr.NotFound("category %s not found", id)
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	if filters.AsTree {
		// Tree view needs the full set; pagination applies to flat lists only.
		all, count, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{IsActive: filters.IsActive})
		if err != nil {
			return nil, 0, apperr.External(err, "list categories")
		}
		return buildTree(all), count, nil
	}

	categories, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperr.External(err, "list categories")
	}
	return categories, count, nil
}

// buildTree nests categories under their parents to arbitrary depth.
// Orphans (parent missing from the set) are kept at the root rather than
// dropped. Nodes are materialized bottom-up so the result is independent
// of the input order.
func buildTree(flat []model.Category) []model.Category {
	byID := make(map[string]*model.Category, len(flat))
	for i := range flat {
		byID[flat[i].ID] = &flat[i]
	}

	children := map[string][]*model.Category{}
	var roots []*model.Category
	for i := range flat {
		c := &flat[i]
		if c.ParentID != nil && *c.ParentID != "" {
			if _, ok := byID[*c.ParentID]; ok {
				children[*c.ParentID] = append(children[*c.ParentID], c)
				continue
			}
		}
		roots = append(roots, c)
	}

	var assemble func(c *model.Category) model.Category
	assemble = func(c *model.Category) model.Category {
		node := *c
		node.Children = nil
		for _, child := range children[c.ID] {
			node.Children = append(node.Children, assemble(child))
		}
		return node
	}

	out := make([]model.Category, 0, len(roots))
	for _, r := range roots {
		out = append(out, assemble(r))
	}
	return out
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, apperr.External(err, "find category")
	}
	if cat == nil {
		return nil, apperr.NotFound("category %s not found", input.ID)
	}

	if input.ParentID != nil && *input.ParentID != "" {
		if *input.ParentID == cat.ID {
			return nil, apperr.Validation("category cannot be its own parent")
		}
		parent, err := uc.repo.FindByID(ctx, *input.ParentID)
		if err != nil {
			return nil, apperr.External(err, "find parent category")
		}
		if parent == nil {
			return nil, apperr.NotFound("parent category %s not found", *input.ParentID)
		}
	}

	if input.Name != "" {
		cat.Name = input.Name
	}
	if input.Description != "" {
		cat.Description = &input.Description
	}
	cat.ParentID = input.ParentID
	cat.SortOrder = input.SortOrder
	cat.IsActive = input.IsActive
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, apperr.External(err, "update category")
	}
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.External(err, "find category")
	}
	if cat == nil {
		return apperr.NotFound("category %s not found", id)
	}

	products, err := uc.repo.CountProducts(ctx, id)
	if err != nil {
		return apperr.External(err, "count category products")
	}
	if products > 0 {
		return apperr.Conflict("category %s still has %d products", id, products)
	}

	children, err := uc.repo.CountChildren(ctx, id)
	if err != nil {
		return apperr.External(err, "count category children")
	}
	if children > 0 {
		return apperr.Conflict("category %s still has %d subcategories", id, children)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperr.External(err, "delete category")
	}
	return nil
}
