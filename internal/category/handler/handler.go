package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/category"
	"github.com/verone/catalog-service/internal/category/dto"
	"github.com/verone/catalog-service/internal/platform/logger"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{uc: uc, logger: log}
}

func (h *CategoryHandler) Register(router fiber.Router) {
	c := router.Group("/categories")
	c.Post("/", h.Create)
	c.Get("/", h.List)
	c.Get("/:id", h.Get)
	c.Patch("/:id", h.Update)
	c.Delete("/:id", h.Delete)
}

type createCategoryRequest struct {
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	SortOrder   int     `json:"sort_order"`
}

type updateCategoryRequest struct {
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	SortOrder   int     `json:"sort_order"`
	IsActive    bool    `json:"is_active"`
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req createCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "create category")
	}

	cat, err := h.uc.CreateCategory(c.UserContext(), &dto.CreateCategoryInput{
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		return h.fail(c, err, "create category")
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	cat, err := h.uc.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "get category")
	}
	return c.JSON(cat)
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	filters := &dto.CategoryFilters{
		AsTree:   c.QueryBool("tree"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 50),
	}
	if c.Query("parent_id") != "" || c.Query("roots") == "true" {
		parentID := c.Query("parent_id")
		filters.ParentID = &parentID
	}
	if c.Query("is_active") != "" {
		isActive := c.QueryBool("is_active")
		filters.IsActive = &isActive
	}

	categories, count, err := h.uc.ListCategories(c.UserContext(), filters)
	if err != nil {
		return h.fail(c, err, "list categories")
	}
	return c.JSON(fiber.Map{"categories": categories, "total": count})
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var req updateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "update category")
	}

	cat, err := h.uc.UpdateCategory(c.UserContext(), &dto.UpdateCategoryInput{
		ID:          c.Params("id"),
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return h.fail(c, err, "update category")
	}
	return c.JSON(cat)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "delete category")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CategoryHandler) fail(c *fiber.Ctx, err error, op string) error {
	status := apperr.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
