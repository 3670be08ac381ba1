package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/platform/logger"
	"github.com/verone/catalog-service/internal/product"
	"github.com/verone/catalog-service/internal/product/dto"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{uc: uc, logger: log}
}

func (h *ProductHandler) Register(router fiber.Router) {
	p := router.Group("/products")
	p.Post("/", h.Create)
	p.Get("/", h.List)
	p.Get("/:id", h.Get)
	p.Patch("/:id", h.Update)
	p.Delete("/:id", h.Delete)
	p.Post("/:id/archive", h.Archive)
	p.Post("/:id/unarchive", h.Unarchive)
}

type createProductRequest struct {
	Name         string            `json:"name"`
	SKU          string            `json:"sku"`
	VariantAttrs map[string]string `json:"variant_attrs"`
	CategoryID   *string           `json:"category_id"`
	SupplierID   *string           `json:"supplier_id"`
	BasePrice    float64           `json:"base_price"`
	CostPrice    *float64          `json:"cost_price"`

	Length        *float64 `json:"length_cm"`
	Width         *float64 `json:"width_cm"`
	Height        *float64 `json:"height_cm"`
	DimensionUnit *string  `json:"dimension_unit"`
	Weight        *float64 `json:"weight_kg"`

	RoomTags []string `json:"room_tags"`
}

type updateProductRequest struct {
	Name       string   `json:"name"`
	SKU        string   `json:"sku"`
	CategoryID *string  `json:"category_id"`
	SupplierID *string  `json:"supplier_id"`
	BasePrice  float64  `json:"base_price"`
	CostPrice  *float64 `json:"cost_price"`

	Length        *float64 `json:"length_cm"`
	Width         *float64 `json:"width_cm"`
	Height        *float64 `json:"height_cm"`
	DimensionUnit *string  `json:"dimension_unit"`
	Weight        *float64 `json:"weight_kg"`

	RoomTags []string `json:"room_tags"`
	Status   string   `json:"status"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "create product")
	}

	p, err := h.uc.CreateProduct(c.UserContext(), &dto.CreateProductInput{
		Name:          req.Name,
		SKU:           req.SKU,
		VariantAttrs:  req.VariantAttrs,
		CategoryID:    req.CategoryID,
		SupplierID:    req.SupplierID,
		BasePrice:     req.BasePrice,
		CostPrice:     req.CostPrice,
		Length:        req.Length,
		Width:         req.Width,
		Height:        req.Height,
		DimensionUnit: req.DimensionUnit,
		Weight:        req.Weight,
		RoomTags:      req.RoomTags,
	})
	if err != nil {
		return h.fail(c, err, "create product")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	p, err := h.uc.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "get product")
	}
	return c.JSON(p)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	filters := &dto.ProductFilters{
		CategoryID:  c.Query("category_id"),
		SupplierID:  c.Query("supplier_id"),
		GroupID:     c.Query("group_id"),
		Status:      c.Query("status"),
		SearchQuery: c.Query("q"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
		Page:        c.QueryInt("page", 1),
		PageSize:    c.QueryInt("page_size", 25),
	}
	if c.Query("archived") != "" {
		archived := c.QueryBool("archived")
		filters.Archived = &archived
	}

	products, count, err := h.uc.ListProducts(c.UserContext(), filters)
	if err != nil {
		return h.fail(c, err, "list products")
	}
	return c.JSON(fiber.Map{"products": products, "total": count})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req updateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "update product")
	}

	p, err := h.uc.UpdateProduct(c.UserContext(), &dto.UpdateProductInput{
		ID:            c.Params("id"),
		Name:          req.Name,
		SKU:           req.SKU,
		CategoryID:    req.CategoryID,
		SupplierID:    req.SupplierID,
		BasePrice:     req.BasePrice,
		CostPrice:     req.CostPrice,
		Length:        req.Length,
		Width:         req.Width,
		Height:        req.Height,
		DimensionUnit: req.DimensionUnit,
		Weight:        req.Weight,
		RoomTags:      req.RoomTags,
		Status:        req.Status,
	})
	if err != nil {
		return h.fail(c, err, "update product")
	}
	return c.JSON(p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) Archive(c *fiber.Ctx) error {
	if err := h.uc.ArchiveProduct(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "archive product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) Unarchive(c *fiber.Ctx) error {
	if err := h.uc.UnarchiveProduct(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "unarchive product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) fail(c *fiber.Ctx, err error, op string) error {
	status := apperr.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
