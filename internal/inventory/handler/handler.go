package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/inventory"
	"github.com/verone/catalog-service/internal/inventory/dto"
	"github.com/verone/catalog-service/internal/platform/logger"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{uc: uc, logger: log}
}

func (h *InventoryHandler) Register(router fiber.Router) {
	i := router.Group("/inventory")
	i.Get("/", h.List)
	i.Get("/low-stock", h.ListLowStock)
	i.Get("/movements", h.ListMovements)
	i.Get("/:productId", h.Get)
	i.Post("/:productId/adjust", h.Adjust)
}

type adjustRequest struct {
	QuantityChange float64 `json:"quantity_change"`
	Reason         string  `json:"reason"`
	ReferenceID    string  `json:"reference_id"`
	ReferenceType  string  `json:"reference_type"`
	UserID         string  `json:"user_id"`
}

func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	inv, err := h.uc.GetProductInventory(c.UserContext(), c.Params("productId"))
	if err != nil {
		return h.fail(c, err, "get inventory")
	}
	return c.JSON(inv)
}

func (h *InventoryHandler) List(c *fiber.Ctx) error {
	filters := &dto.InventoryFilters{
		ProductID: c.Query("product_id"),
		LowStock:  c.QueryBool("low_stock"),
		Page:      c.QueryInt("page", 1),
		PageSize:  c.QueryInt("page_size", 25),
	}

	items, count, err := h.uc.ListInventory(c.UserContext(), filters)
	if err != nil {
		return h.fail(c, err, "list inventory")
	}
	return c.JSON(fiber.Map{"inventory": items, "total": count})
}

func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	items, count, err := h.uc.ListLowStock(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("page_size", 25))
	if err != nil {
		return h.fail(c, err, "list low stock")
	}
	return c.JSON(fiber.Map{"inventory": items, "total": count})
}

func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filters := &dto.MovementFilters{
		ProductID:    c.Query("product_id"),
		MovementType: c.Query("movement_type"),
		Page:         c.QueryInt("page", 1),
		PageSize:     c.QueryInt("page_size", 25),
	}

	movements, count, err := h.uc.ListMovements(c.UserContext(), filters)
	if err != nil {
		return h.fail(c, err, "list movements")
	}
	return c.JSON(fiber.Map{"movements": movements, "total": count})
}

func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "adjust inventory")
	}

	inv, err := h.uc.AdjustInventory(c.UserContext(), &dto.AdjustInventoryInput{
		ProductID:      c.Params("productId"),
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
		ReferenceID:    req.ReferenceID,
		ReferenceType:  req.ReferenceType,
		UserID:         req.UserID,
	})
	if err != nil {
		return h.fail(c, err, "adjust inventory")
	}
	return c.JSON(inv)
}

func (h *InventoryHandler) fail(c *fiber.Ctx, err error, op string) error {
	status := apperr.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
