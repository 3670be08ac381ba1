package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/group"
	"github.com/verone/catalog-service/internal/group/dto"
	"github.com/verone/catalog-service/internal/platform/logger"
	"go.uber.org/zap"
)

type GroupHandler struct {
	uc     group.UseCase
	logger logger.ZapLogger
}

func NewGroupHandler(uc group.UseCase, log logger.ZapLogger) *GroupHandler {
	return &GroupHandler{uc: uc, logger: log}
}

func (h *GroupHandler) Register(router fiber.Router) {
	g := router.Group("/groups")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Delete("/:id", h.Delete)
	g.Get("/:id/members", h.ListMembers)
	g.Post("/:id/members", h.AddMembers)
	g.Post("/:id/variants", h.CreateMember)
	g.Post("/:id/archive", h.Archive)
	g.Post("/:id/unarchive", h.Unarchive)
	g.Delete("/members/:productId", h.RemoveMember)
	g.Patch("/members/:productId/attributes", h.UpdateMemberAttribute)
}

type createGroupRequest struct {
	Name        string `json:"name"`
	BaseSKU     string `json:"base_sku"`
	VariantType string `json:"variant_type"`

	CategoryID        *string `json:"category_id"`
	SupplierID        *string `json:"supplier_id"`
	HasCommonSupplier bool    `json:"has_common_supplier"`

	Length              *float64 `json:"length_cm"`
	Width               *float64 `json:"width_cm"`
	Height              *float64 `json:"height_cm"`
	DimensionUnit       *string  `json:"dimension_unit"`
	HasCommonDimensions bool     `json:"has_common_dimensions"`

	Weight          *float64 `json:"weight_kg"`
	HasCommonWeight bool     `json:"has_common_weight"`

	Style    *string  `json:"style"`
	RoomTags []string `json:"room_tags"`
}

type updateGroupRequest struct {
	Name    *string `json:"name"`
	BaseSKU *string `json:"base_sku"`

	CategoryID        *string `json:"category_id"`
	SupplierID        *string `json:"supplier_id"`
	HasCommonSupplier *bool   `json:"has_common_supplier"`

	Length              *float64 `json:"length_cm"`
	Width               *float64 `json:"width_cm"`
	Height              *float64 `json:"height_cm"`
	DimensionUnit       *string  `json:"dimension_unit"`
	HasCommonDimensions *bool    `json:"has_common_dimensions"`

	Weight          *float64 `json:"weight_kg"`
	HasCommonWeight *bool    `json:"has_common_weight"`

	Style    *string  `json:"style"`
	RoomTags []string `json:"room_tags"`
}

type addMembersRequest struct {
	ProductIDs []string `json:"product_ids"`
}

type createMemberRequest struct {
	VariantValue string   `json:"variant_value"`
	BasePrice    float64  `json:"base_price"`
	CostPrice    *float64 `json:"cost_price"`
}

type updateAttributeRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *GroupHandler) Create(c *fiber.Ctx) error {
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "create group")
	}

	g, err := h.uc.CreateGroup(c.UserContext(), &dto.CreateGroupInput{
		Name:                req.Name,
		BaseSKU:             req.BaseSKU,
		VariantType:         req.VariantType,
		CategoryID:          req.CategoryID,
		SupplierID:          req.SupplierID,
		HasCommonSupplier:   req.HasCommonSupplier,
		Length:              req.Length,
		Width:               req.Width,
		Height:              req.Height,
		DimensionUnit:       req.DimensionUnit,
		HasCommonDimensions: req.HasCommonDimensions,
		Weight:              req.Weight,
		HasCommonWeight:     req.HasCommonWeight,
		Style:               req.Style,
		RoomTags:            req.RoomTags,
	})
	if err != nil {
		return h.fail(c, err, "create group")
	}
	return c.Status(fiber.StatusCreated).JSON(g)
}

func (h *GroupHandler) Get(c *fiber.Ctx) error {
	g, err := h.uc.GetGroup(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "get group")
	}
	return c.JSON(g)
}

func (h *GroupHandler) List(c *fiber.Ctx) error {
	filters := &dto.GroupFilters{
		VariantType: c.Query("variant_type"),
		SearchQuery: c.Query("q"),
		Page:        c.QueryInt("page", 1),
		PageSize:    c.QueryInt("page_size", 25),
	}
	if c.Query("archived") != "" {
		archived := c.QueryBool("archived")
		filters.Archived = &archived
	}

	groups, count, err := h.uc.ListGroups(c.UserContext(), filters)
	if err != nil {
		return h.fail(c, err, "list groups")
	}
	return c.JSON(fiber.Map{"groups": groups, "total": count})
}

func (h *GroupHandler) Update(c *fiber.Ctx) error {
	var req updateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "update group")
	}

	g, err := h.uc.UpdateGroup(c.UserContext(), &dto.UpdateGroupInput{
		ID:                  c.Params("id"),
		Name:                req.Name,
		BaseSKU:             req.BaseSKU,
		CategoryID:          req.CategoryID,
		SupplierID:          req.SupplierID,
		HasCommonSupplier:   req.HasCommonSupplier,
		Length:              req.Length,
		Width:               req.Width,
		Height:              req.Height,
		DimensionUnit:       req.DimensionUnit,
		HasCommonDimensions: req.HasCommonDimensions,
		Weight:              req.Weight,
		HasCommonWeight:     req.HasCommonWeight,
		Style:               req.Style,
		RoomTags:            req.RoomTags,
	})
	if err != nil {
		return h.fail(c, err, "update group")
	}
	return c.JSON(g)
}

func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteGroup(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "delete group")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.uc.ListMembers(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "list members")
	}
	return c.JSON(fiber.Map{"members": members})
}

func (h *GroupHandler) AddMembers(c *fiber.Ctx) error {
	var req addMembersRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "add members")
	}

	members, err := h.uc.AddMembers(c.UserContext(), &dto.AddMembersInput{
		GroupID:    c.Params("id"),
		ProductIDs: req.ProductIDs,
	})
	if err != nil {
		return h.fail(c, err, "add members")
	}
	return c.JSON(fiber.Map{"members": members})
}

func (h *GroupHandler) CreateMember(c *fiber.Ctx) error {
	var req createMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "create member")
	}

	p, err := h.uc.CreateMember(c.UserContext(), &dto.CreateMemberInput{
		GroupID:      c.Params("id"),
		VariantValue: req.VariantValue,
		BasePrice:    req.BasePrice,
		CostPrice:    req.CostPrice,
	})
	if err != nil {
		return h.fail(c, err, "create member")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	if err := h.uc.RemoveMember(c.UserContext(), c.Params("productId")); err != nil {
		return h.fail(c, err, "remove member")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) UpdateMemberAttribute(c *fiber.Ctx) error {
	var req updateAttributeRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "update member attribute")
	}

	p, err := h.uc.UpdateMemberAttribute(c.UserContext(), &dto.UpdateMemberAttributeInput{
		ProductID: c.Params("productId"),
		Key:       req.Key,
		Value:     req.Value,
	})
	if err != nil {
		return h.fail(c, err, "update member attribute")
	}
	return c.JSON(p)
}

func (h *GroupHandler) Archive(c *fiber.Ctx) error {
	if err := h.uc.ArchiveGroup(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "archive group")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) Unarchive(c *fiber.Ctx) error {
	if err := h.uc.UnarchiveGroup(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "unarchive group")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) fail(c *fiber.Ctx, err error, op string) error {
	status := apperr.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
