package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/platform/logger"
	"github.com/verone/catalog-service/internal/pricing"
	"github.com/verone/catalog-service/internal/pricing/dto"
	"go.uber.org/zap"
)

type PricingHandler struct {
	uc     pricing.UseCase
	logger logger.ZapLogger
}

func NewPricingHandler(uc pricing.UseCase, log logger.ZapLogger) *PricingHandler {
	return &PricingHandler{uc: uc, logger: log}
}

func (h *PricingHandler) Register(router fiber.Router) {
	p := router.Group("/pricing")
	p.Post("/resolve", h.Resolve)
	p.Post("/contracts", h.CreateContract)
	p.Get("/contracts", h.ListContracts)
	p.Delete("/contracts/:id", h.DeleteContract)
	p.Put("/channel-rates", h.SetChannelRate)
	p.Get("/channel-rates", h.ListChannelRates)
	p.Delete("/channel-rates/:id", h.DeleteChannelRate)
}

type resolveRequest struct {
	ProductID    string     `json:"product_id"`
	Quantity     int        `json:"quantity"`
	CustomerID   string     `json:"customer_id"`
	CustomerType string     `json:"customer_type"`
	ChannelID    string     `json:"channel_id"`
	AsOf         *time.Time `json:"as_of"`
}

type createContractRequest struct {
	ProductID    string     `json:"product_id"`
	CustomerID   string     `json:"customer_id"`
	MinQty       int        `json:"min_qty"`
	UnitPrice    float64    `json:"unit_price"`
	DiscountRate float64    `json:"discount_rate"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
}

type setChannelRateRequest struct {
	ProductID    string  `json:"product_id"`
	ChannelID    string  `json:"channel_id"`
	UnitPrice    float64 `json:"unit_price"`
	DiscountRate float64 `json:"discount_rate"`
}

func (h *PricingHandler) Resolve(c *fiber.Ctx) error {
	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "resolve price")
	}

	input := &dto.ResolveInput{
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		CustomerID:   req.CustomerID,
		CustomerType: req.CustomerType,
		ChannelID:    req.ChannelID,
	}
	if req.AsOf != nil {
		input.AsOf = *req.AsOf
	}

	res, err := h.uc.Resolve(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err, "resolve price")
	}
	return c.JSON(res)
}

func (h *PricingHandler) CreateContract(c *fiber.Ctx) error {
	var req createContractRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "create price contract")
	}

	contract, err := h.uc.CreateContract(c.UserContext(), &dto.CreateContractInput{
		ProductID:    req.ProductID,
		CustomerID:   req.CustomerID,
		MinQty:       req.MinQty,
		UnitPrice:    req.UnitPrice,
		DiscountRate: req.DiscountRate,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
	})
	if err != nil {
		return h.fail(c, err, "create price contract")
	}
	return c.Status(fiber.StatusCreated).JSON(contract)
}

func (h *PricingHandler) ListContracts(c *fiber.Ctx) error {
	contracts, err := h.uc.ListContracts(c.UserContext(), &dto.ContractFilters{
		ProductID:  c.Query("product_id"),
		CustomerID: c.Query("customer_id"),
	})
	if err != nil {
		return h.fail(c, err, "list price contracts")
	}
	return c.JSON(fiber.Map{"contracts": contracts})
}

func (h *PricingHandler) DeleteContract(c *fiber.Ctx) error {
	if err := h.uc.DeleteContract(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "delete price contract")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PricingHandler) SetChannelRate(c *fiber.Ctx) error {
	var req setChannelRateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "set channel rate")
	}

	rate, err := h.uc.SetChannelRate(c.UserContext(), &dto.SetChannelRateInput{
		ProductID:    req.ProductID,
		ChannelID:    req.ChannelID,
		UnitPrice:    req.UnitPrice,
		DiscountRate: req.DiscountRate,
	})
	if err != nil {
		return h.fail(c, err, "set channel rate")
	}
	return c.JSON(rate)
}

func (h *PricingHandler) ListChannelRates(c *fiber.Ctx) error {
	rates, err := h.uc.ListChannelRates(c.UserContext(), c.Query("product_id"))
	if err != nil {
		return h.fail(c, err, "list channel rates")
	}
	return c.JSON(fiber.Map{"channel_rates": rates})
}

func (h *PricingHandler) DeleteChannelRate(c *fiber.Ctx) error {
	if err := h.uc.DeleteChannelRate(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "delete channel rate")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PricingHandler) fail(c *fiber.Ctx, err error, op string) error {
	status := apperr.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
