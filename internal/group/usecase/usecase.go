package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/group"
	"github.com/verone/catalog-service/internal/group/dto"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/platform/cache"
	"github.com/verone/catalog-service/internal/platform/logger"
	"github.com/verone/catalog-service/internal/sku"
	"go.uber.org/zap"
)

const nameSeparator = " - "

type groupUseCase struct {
	repo   group.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewGroupUseCase(repo group.Repository, cache *cache.RedisClient, log logger.ZapLogger) group.UseCase {
	return &groupUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// withGroupLock serializes member add/remove and cascades per group.
// Position and counter updates are read-then-written; without the lock two
// concurrent calls can compute the same starting position.
func (uc *groupUseCase) withGroupLock(ctx context.Context, groupID string, fn func() error) error {
	if uc.cache == nil {
		return fn()
	}

	lockKey := "lock:group:" + groupID
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire group lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return apperr.Conflict("group %s is being modified, please retry", groupID)
	}
	defer uc.cache.ReleaseLock(ctx, lockKey, lockValue)

	return fn()
}

func memberName(groupName, variantValue string) string {
	return groupName + nameSeparator + variantValue
}

func (uc *groupUseCase) CreateGroup(ctx context.Context, input *dto.CreateGroupInput) (*model.VariantGroup, error) {
	if input.Name == "" {
		return nil, apperr.Validation("group name is required")
	}
	if input.BaseSKU == "" {
		return nil, apperr.Validation("group base SKU is required")
	}
	variantType := model.VariantType(input.VariantType)
	if !variantType.Valid() {
		return nil, apperr.Validation("invalid variant type %q", input.VariantType)
	}

	now := time.Now()
	g := &model.VariantGroup{
		BaseModel:           model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:                input.Name,
		BaseSKU:             input.BaseSKU,
		VariantType:         variantType,
		CategoryID:          input.CategoryID,
		SupplierID:          input.SupplierID,
		HasCommonSupplier:   input.HasCommonSupplier,
		Length:              input.Length,
		Width:               input.Width,
		Height:              input.Height,
		DimensionUnit:       input.DimensionUnit,
		HasCommonDimensions: input.HasCommonDimensions,
		Weight:              input.Weight,
		HasCommonWeight:     input.HasCommonWeight,
		Style:               input.Style,
		RoomTags:            input.RoomTags,
		MemberCount:         0,
	}

	if err := uc.repo.CreateGroup(ctx, g); err != nil {
		return nil, apperr.External(err, "create group")
	}
	return g, nil
}

func (uc *groupUseCase) GetGroup(ctx context.Context, id string) (*model.VariantGroup, error) {
	g, err := uc.repo.FindGroupByID(ctx, id)
	if err != nil {
		return nil, apperr.External(err, "find group")
	}
	if g == nil {
		return nil, apperr.NotFound("group %s not found", id)
	}
	return g, nil
}

func (uc *groupUseCase) ListGroups(ctx context.Context, filters *dto.GroupFilters) ([]model.VariantGroup, int, error) {
	groups, count, err := uc.repo.FindGroups(ctx, filters)
	if err != nil {
		return nil, 0, apperr.External(err, "list groups")
	}
	return groups, count, nil
}

func (uc *groupUseCase) ListMembers(ctx context.Context, groupID string) ([]model.Product, error) {
	members, err := uc.repo.FindMembers(ctx, groupID)
	if err != nil {
		return nil, apperr.External(err, "list members")
	}
	return members, nil
}

func (uc *groupUseCase) AddMembers(ctx context.Context, input *dto.AddMembersInput) ([]model.Product, error) {
	if len(input.ProductIDs) == 0 {
		return nil, apperr.Validation("no products selected")
	}

	var out []model.Product
	err := uc.withGroupLock(ctx, input.GroupID, func() error {
		g, err := uc.repo.FindGroupByID(ctx, input.GroupID)
		if err != nil {
			return apperr.External(err, "find group")
		}
		if g == nil {
			return apperr.NotFound("group %s not found", input.GroupID)
		}

		candidates, err := uc.repo.FindProducts(ctx, input.ProductIDs)
		if err != nil {
			return apperr.External(err, "find products")
		}
		if len(candidates) != len(input.ProductIDs) {
			return apperr.NotFound("one or more products do not exist")
		}

		members, err := uc.repo.FindMembers(ctx, g.ID)
		if err != nil {
			return apperr.External(err, "find members")
		}

		// All-or-nothing: any already-grouped candidate or colliding variant
		// value rejects the whole batch before anything is written.
		seen := make(map[string]bool, len(members))
		for _, m := range members {
			if v := m.VariantValue(g.VariantType); v != "" {
				seen[v] = true
			}
		}
		for i := range candidates {
			c := &candidates[i]
			if c.Grouped() {
				return apperr.Conflict("product %s already belongs to a group", c.ID)
			}
			if v := c.VariantValue(g.VariantType); v != "" {
				if seen[v] {
					return apperr.Conflict("duplicate variant value %q in group", v)
				}
				seen[v] = true
			}
		}

		now := time.Now()
		base := len(members) // live count, not the cached counter
		for i := range candidates {
			c := &candidates[i]
			gid := g.ID
			pos := base + i + 1
			c.GroupID = &gid
			c.Position = &pos

			if v := c.VariantValue(g.VariantType); v != "" {
				c.Name = memberName(g.Name, v)
				c.SKU = sku.Generate(g.BaseSKU, v)
			} else {
				uc.logger.Warn("product has no value for group variant dimension, keeping name and sku",
					zap.String("product_id", c.ID),
					zap.String("group_id", g.ID),
					zap.String("variant_type", string(g.VariantType)),
				)
			}

			if g.CategoryID != nil {
				c.CategoryID = g.CategoryID
			}
			if g.HasCommonDimensions {
				c.Length, c.Width, c.Height = g.Length, g.Width, g.Height
				c.DimensionUnit = g.DimensionUnit
			}
			c.UpdatedAt = now
		}

		g.MemberCount = base + len(candidates)
		g.UpdatedAt = now

		if err := uc.repo.SaveCascade(ctx, g, candidates); err != nil {
			return apperr.External(err, "add members")
		}
		out = candidates
		return nil
	})
	return out, err
}

func (uc *groupUseCase) CreateMember(ctx context.Context, input *dto.CreateMemberInput) (*model.Product, error) {
	if input.VariantValue == "" {
		return nil, apperr.Validation("variant value is required")
	}

	var out *model.Product
	err := uc.withGroupLock(ctx, input.GroupID, func() error {
		g, err := uc.repo.FindGroupByID(ctx, input.GroupID)
		if err != nil {
			return apperr.External(err, "find group")
		}
		if g == nil {
			return apperr.NotFound("group %s not found", input.GroupID)
		}

		members, err := uc.repo.FindMembers(ctx, g.ID)
		if err != nil {
			return apperr.External(err, "find members")
		}

		// Case-sensitive exact match on the group's variant dimension.
		for _, m := range members {
			if m.VariantValue(g.VariantType) == input.VariantValue {
				return apperr.Conflict("duplicate variant value %q in group", input.VariantValue)
			}
		}

		now := time.Now()
		gid := g.ID
		pos := len(members) + 1
		p := &model.Product{
			BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			Name:         memberName(g.Name, input.VariantValue),
			SKU:          sku.Generate(g.BaseSKU, input.VariantValue),
			GroupID:      &gid,
			Position:     &pos,
			VariantAttrs: model.AttributeMap{string(g.VariantType): input.VariantValue},
			CategoryID:   g.CategoryID,
			BasePrice:    input.BasePrice,
			CostPrice:    input.CostPrice,
			RoomTags:     g.RoomTags,
			Status:       model.StatusInStock,
		}
		if g.HasCommonDimensions {
			p.Length, p.Width, p.Height = g.Length, g.Width, g.Height
			p.DimensionUnit = g.DimensionUnit
		}
		if g.HasCommonWeight {
			p.Weight = g.Weight
		}
		if g.HasCommonSupplier {
			p.SupplierID = g.SupplierID
		}

		g.MemberCount = len(members) + 1
		g.UpdatedAt = now

		if err := uc.repo.InsertMember(ctx, g, p); err != nil {
			return apperr.External(err, "insert member")
		}
		out = p
		return nil
	})
	return out, err
}

func (uc *groupUseCase) UpdateMemberAttribute(ctx context.Context, input *dto.UpdateMemberAttributeInput) (*model.Product, error) {
	if input.Key == "" {
		return nil, apperr.Validation("attribute key is required")
	}

	p, err := uc.repo.FindProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, apperr.External(err, "find product")
	}
	if p == nil {
		return nil, apperr.NotFound("product %s not found", input.ProductID)
	}

	if p.VariantAttrs == nil {
		p.VariantAttrs = model.AttributeMap{}
	}
	p.VariantAttrs[input.Key] = input.Value

	// Regenerate derived fields only when the owning group's variant
	// dimension has a value after the merge.
	if p.Grouped() {
		g, err := uc.repo.FindGroupByID(ctx, *p.GroupID)
		if err != nil {
			return nil, apperr.External(err, "find group")
		}
		if g != nil {
			if v := p.VariantValue(g.VariantType); v != "" {
				if input.Key == string(g.VariantType) {
					members, err := uc.repo.FindMembers(ctx, g.ID)
					if err != nil {
						return nil, apperr.External(err, "find members")
					}
					for _, m := range members {
						if m.ID != p.ID && m.VariantValue(g.VariantType) == v {
							return nil, apperr.Conflict("duplicate variant value %q in group", v)
						}
					}
				}
				p.Name = memberName(g.Name, v)
				p.SKU = sku.Generate(g.BaseSKU, v)
			}
		}
	}

	p.UpdatedAt = time.Now()
	if err := uc.repo.SaveMember(ctx, p); err != nil {
		return nil, apperr.External(err, "save product")
	}
	return p, nil
}

func (uc *groupUseCase) RemoveMember(ctx context.Context, productID string) error {
	p, err := uc.repo.FindProductByID(ctx, productID)
	if err != nil {
		return apperr.External(err, "find product")
	}
	if p == nil {
		return apperr.NotFound("product %s not found", productID)
	}
	if !p.Grouped() {
		return apperr.Validation("product %s is not in a group", productID)
	}
	groupID := *p.GroupID

	return uc.withGroupLock(ctx, groupID, func() error {
		g, err := uc.repo.FindGroupByID(ctx, groupID)
		if err != nil {
			return apperr.External(err, "find group")
		}
		if g == nil {
			return apperr.NotFound("group %s not found", groupID)
		}

		members, err := uc.repo.FindMembers(ctx, groupID)
		if err != nil {
			return apperr.External(err, "find members")
		}

		now := time.Now()
		// Renumber survivors dense 1..N, ordered by prior position.
		updates := make([]model.Product, 0, len(members))
		next := 1
		for i := range members {
			m := members[i]
			if m.ID == productID {
				continue
			}
			pos := next
			m.Position = &pos
			m.UpdatedAt = now
			updates = append(updates, m)
			next++
		}

		p.GroupID = nil
		p.Position = nil
		p.UpdatedAt = now
		updates = append(updates, *p)

		// Recomputed from the surviving member set, not decremented, so a
		// drifted counter heals itself here.
		g.MemberCount = next - 1
		g.UpdatedAt = now

		if err := uc.repo.SaveCascade(ctx, g, updates); err != nil {
			return apperr.External(err, "remove member")
		}
		return nil
	})
}

func (uc *groupUseCase) UpdateGroup(ctx context.Context, input *dto.UpdateGroupInput) (*model.VariantGroup, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, apperr.Validation("group name cannot be empty")
	}
	if input.BaseSKU != nil && *input.BaseSKU == "" {
		return nil, apperr.Validation("group base SKU cannot be empty")
	}

	var out *model.VariantGroup
	err := uc.withGroupLock(ctx, input.ID, func() error {
		g, err := uc.repo.FindGroupByID(ctx, input.ID)
		if err != nil {
			return apperr.External(err, "find group")
		}
		if g == nil {
			return apperr.NotFound("group %s not found", input.ID)
		}

		nameChanged := input.Name != nil && *input.Name != g.Name
		skuChanged := input.BaseSKU != nil && *input.BaseSKU != g.BaseSKU
		categoryChanged := input.CategoryID != nil
		dimensionsChanged := input.Length != nil || input.Width != nil ||
			input.Height != nil || input.DimensionUnit != nil
		weightChanged := input.Weight != nil
		tagsChanged := input.RoomTags != nil
		supplierChanged := input.SupplierID != nil

		if input.Name != nil {
			g.Name = *input.Name
		}
		if input.BaseSKU != nil {
			g.BaseSKU = *input.BaseSKU
		}
		if input.CategoryID != nil {
			g.CategoryID = input.CategoryID
		}
		if input.SupplierID != nil {
			g.SupplierID = input.SupplierID
		}
		if input.HasCommonSupplier != nil {
			g.HasCommonSupplier = *input.HasCommonSupplier
		}
		if input.Length != nil {
			g.Length = input.Length
		}
		if input.Width != nil {
			g.Width = input.Width
		}
		if input.Height != nil {
			g.Height = input.Height
		}
		if input.DimensionUnit != nil {
			g.DimensionUnit = input.DimensionUnit
		}
		if input.HasCommonDimensions != nil {
			g.HasCommonDimensions = *input.HasCommonDimensions
		}
		if input.Weight != nil {
			g.Weight = input.Weight
		}
		if input.HasCommonWeight != nil {
			g.HasCommonWeight = *input.HasCommonWeight
		}
		if input.Style != nil {
			// Style stays on the group row; products carry no style column.
			g.Style = input.Style
		}
		if input.RoomTags != nil {
			g.RoomTags = input.RoomTags
		}

		now := time.Now()
		g.UpdatedAt = now

		cascade := nameChanged || skuChanged || categoryChanged ||
			(dimensionsChanged && g.HasCommonDimensions) ||
			(weightChanged && g.HasCommonWeight) ||
			(supplierChanged && g.HasCommonSupplier) ||
			tagsChanged
		if !cascade {
			if err := uc.repo.SaveGroup(ctx, g); err != nil {
				return apperr.External(err, "save group")
			}
			out = g
			return nil
		}

		members, err := uc.repo.FindMembers(ctx, g.ID)
		if err != nil {
			return apperr.External(err, "find members")
		}

		// Full overwrite of the member field, not a merge.
		for i := range members {
			m := &members[i]
			v := m.VariantValue(g.VariantType)
			if nameChanged && v != "" {
				m.Name = memberName(g.Name, v)
			}
			if skuChanged && v != "" {
				m.SKU = sku.Generate(g.BaseSKU, v)
			}
			if categoryChanged {
				m.CategoryID = g.CategoryID
			}
			if dimensionsChanged && g.HasCommonDimensions {
				m.Length, m.Width, m.Height = g.Length, g.Width, g.Height
				m.DimensionUnit = g.DimensionUnit
			}
			if weightChanged && g.HasCommonWeight {
				m.Weight = g.Weight
			}
			if supplierChanged && g.HasCommonSupplier {
				m.SupplierID = g.SupplierID
			}
			if tagsChanged {
				m.RoomTags = g.RoomTags
			}
			m.UpdatedAt = now
		}

		if err := uc.repo.SaveCascade(ctx, g, members); err != nil {
			return apperr.External(err, "update group cascade")
		}
		out = g
		return nil
	})
	return out, err
}

func (uc *groupUseCase) DeleteGroup(ctx context.Context, id string) error {
	g, err := uc.repo.FindGroupByID(ctx, id)
	if err != nil {
		return apperr.External(err, "find group")
	}
	if g == nil {
		return apperr.NotFound("group %s not found", id)
	}

	return uc.withGroupLock(ctx, id, func() error {
		if err := uc.repo.DeleteGroup(ctx, id); err != nil {
			return apperr.External(err, "delete group")
		}
		return nil
	})
}

func (uc *groupUseCase) ArchiveGroup(ctx context.Context, id string) error {
	return uc.setArchival(ctx, id, true)
}

func (uc *groupUseCase) UnarchiveGroup(ctx context.Context, id string) error {
	return uc.setArchival(ctx, id, false)
}

func (uc *groupUseCase) setArchival(ctx context.Context, id string, archive bool) error {
	return uc.withGroupLock(ctx, id, func() error {
		g, err := uc.repo.FindGroupByID(ctx, id)
		if err != nil {
			return apperr.External(err, "find group")
		}
		if g == nil {
			return apperr.NotFound("group %s not found", id)
		}

		// Idempotent: re-archiving an archived group must not re-toggle
		// members that were archived independently.
		if archive == g.Archived() {
			return nil
		}

		members, err := uc.repo.FindMembers(ctx, g.ID)
		if err != nil {
			return apperr.External(err, "find members")
		}

		now := time.Now()
		var updates []model.Product
		if archive {
			g.ArchivedAt = &now
			for i := range members {
				m := members[i]
				if m.Archived() {
					continue
				}
				ts := now
				m.ArchivedAt = &ts
				m.Status = model.StatusDiscontinued
				m.UpdatedAt = now
				updates = append(updates, m)
			}
		} else {
			// Only members archived by the group cascade (same timestamp)
			// are restored; independently archived members keep their state.
			groupArchivedAt := *g.ArchivedAt
			g.ArchivedAt = nil
			for i := range members {
				m := members[i]
				if !m.Archived() || !m.ArchivedAt.Equal(groupArchivedAt) {
					continue
				}
				m.ArchivedAt = nil
				m.Status = model.StatusInStock
				m.UpdatedAt = now
				updates = append(updates, m)
			}
		}
		g.UpdatedAt = now

		if err := uc.repo.SaveCascade(ctx, g, updates); err != nil {
			return apperr.External(err, "archive cascade")
		}
		return nil
	})
}
