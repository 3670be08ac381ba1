package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/order"
	"github.com/verone/catalog-service/internal/order/dto"
	"github.com/verone/catalog-service/internal/platform/logger"
	"go.uber.org/zap"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

func (h *OrderHandler) Register(router fiber.Router) {
	o := router.Group("/orders")
	o.Post("/", h.Create)
	o.Get("/", h.List)
	o.Get("/:id", h.Get)
	o.Post("/:id/confirm", h.Confirm)
	o.Post("/:id/cancel", h.Cancel)
}

type createOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	ChannelID  *string            `json:"channel_id"`
	Lines      []orderLineRequest `json:"lines"`
}

type orderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "create order")
	}

	input := &dto.CreateOrderInput{
		CustomerID: req.CustomerID,
		ChannelID:  req.ChannelID,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, dto.CreateOrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	o, err := h.uc.CreateOrder(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err, "create order")
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	o, err := h.uc.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "get order")
	}
	return c.JSON(o)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	filters := &dto.OrderFilters{
		CustomerID: c.Query("customer_id"),
		ChannelID:  c.Query("channel_id"),
		Status:     c.Query("status"),
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("page_size", 25),
	}

	orders, count, err := h.uc.ListOrders(c.UserContext(), filters)
	if err != nil {
		return h.fail(c, err, "list orders")
	}
	return c.JSON(fiber.Map{"orders": orders, "total": count})
}

func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	o, err := h.uc.ConfirmOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "confirm order")
	}
	return c.JSON(o)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	o, err := h.uc.CancelOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "cancel order")
	}
	return c.JSON(o)
}

func (h *OrderHandler) fail(c *fiber.Ctx, err error, op string) error {
	status := apperr.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
