package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/organisation"
	"github.com/verone/catalog-service/internal/organisation/dto"
	"github.com/verone/catalog-service/internal/platform/logger"
	"go.uber.org/zap"
)

type OrganisationHandler struct {
	uc     organisation.UseCase
	logger logger.ZapLogger
}

func NewOrganisationHandler(uc organisation.UseCase, log logger.ZapLogger) *OrganisationHandler {
	return &OrganisationHandler{uc: uc, logger: log}
}

func (h *OrganisationHandler) Register(router fiber.Router) {
	o := router.Group("/organisations")
	o.Post("/", h.Create)
	o.Get("/", h.List)
	o.Get("/:id", h.Get)
	o.Patch("/:id", h.Update)
	o.Post("/:id/deactivate", h.Deactivate)

	g := router.Group("/customer-groups")
	g.Post("/", h.CreateGroup)
	g.Get("/", h.ListGroups)
	g.Patch("/:id", h.UpdateGroup)
	g.Delete("/:id", h.DeleteGroup)
}

type createOrganisationRequest struct {
	Kind         string  `json:"kind"`
	LegalName    string  `json:"legal_name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	AddressLine  *string `json:"address_line"`
	City         *string `json:"city"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`

	CustomerGroupID  *string `json:"customer_group_id"`
	PaymentTermsDays int     `json:"payment_terms_days"`
}

type updateOrganisationRequest struct {
	LegalName    *string `json:"legal_name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	AddressLine  *string `json:"address_line"`
	City         *string `json:"city"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`

	CustomerGroupID  *string `json:"customer_group_id"`
	PaymentTermsDays *int    `json:"payment_terms_days"`
	IsActive         *bool   `json:"is_active"`
}

type customerGroupRequest struct {
	Name         *string  `json:"name"`
	DiscountRate *float64 `json:"discount_rate"`
}

func (h *OrganisationHandler) Create(c *fiber.Ctx) error {
	var req createOrganisationRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "create organisation")
	}

	org, err := h.uc.CreateOrganisation(c.UserContext(), &dto.CreateOrganisationInput{
		Kind:             req.Kind,
		LegalName:        req.LegalName,
		ContactEmail:     req.ContactEmail,
		ContactPhone:     req.ContactPhone,
		AddressLine:      req.AddressLine,
		City:             req.City,
		PostalCode:       req.PostalCode,
		Country:          req.Country,
		CustomerGroupID:  req.CustomerGroupID,
		PaymentTermsDays: req.PaymentTermsDays,
	})
	if err != nil {
		return h.fail(c, err, "create organisation")
	}
	return c.Status(fiber.StatusCreated).JSON(org)
}

func (h *OrganisationHandler) Get(c *fiber.Ctx) error {
	org, err := h.uc.GetOrganisation(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "get organisation")
	}
	return c.JSON(org)
}

func (h *OrganisationHandler) List(c *fiber.Ctx) error {
	filters := &dto.OrganisationFilters{
		Kind:            c.Query("kind"),
		CustomerGroupID: c.Query("customer_group_id"),
		SearchQuery:     c.Query("q"),
		Page:            c.QueryInt("page", 1),
		PageSize:        c.QueryInt("page_size", 25),
	}
	if c.Query("is_active") != "" {
		isActive := c.QueryBool("is_active")
		filters.IsActive = &isActive
	}

	orgs, count, err := h.uc.ListOrganisations(c.UserContext(), filters)
	if err != nil {
		return h.fail(c, err, "list organisations")
	}
	return c.JSON(fiber.Map{"organisations": orgs, "total": count})
}

func (h *OrganisationHandler) Update(c *fiber.Ctx) error {
	var req updateOrganisationRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "update organisation")
	}

	org, err := h.uc.UpdateOrganisation(c.UserContext(), &dto.UpdateOrganisationInput{
		ID:               c.Params("id"),
		LegalName:        req.LegalName,
		ContactEmail:     req.ContactEmail,
		ContactPhone:     req.ContactPhone,
		AddressLine:      req.AddressLine,
		City:             req.City,
		PostalCode:       req.PostalCode,
		Country:          req.Country,
		CustomerGroupID:  req.CustomerGroupID,
		PaymentTermsDays: req.PaymentTermsDays,
		IsActive:         req.IsActive,
	})
	if err != nil {
		return h.fail(c, err, "update organisation")
	}
	return c.JSON(org)
}

func (h *OrganisationHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.DeactivateOrganisation(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "deactivate organisation")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *OrganisationHandler) CreateGroup(c *fiber.Ctx) error {
	var req customerGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "create customer group")
	}

	input := &dto.CreateCustomerGroupInput{}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.DiscountRate != nil {
		input.DiscountRate = *req.DiscountRate
	}

	group, err := h.uc.CreateCustomerGroup(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err, "create customer group")
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *OrganisationHandler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.uc.ListCustomerGroups(c.UserContext())
	if err != nil {
		return h.fail(c, err, "list customer groups")
	}
	return c.JSON(fiber.Map{"customer_groups": groups})
}

func (h *OrganisationHandler) UpdateGroup(c *fiber.Ctx) error {
	var req customerGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.Validation("invalid request body"), "update customer group")
	}

	group, err := h.uc.UpdateCustomerGroup(c.UserContext(), &dto.UpdateCustomerGroupInput{
		ID:           c.Params("id"),
		Name:         req.Name,
		DiscountRate: req.DiscountRate,
	})
	if err != nil {
		return h.fail(c, err, "update customer group")
	}
	return c.JSON(group)
}

func (h *OrganisationHandler) DeleteGroup(c *fiber.Ctx) error {
	if err := h.uc.DeleteCustomerGroup(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "delete customer group")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *OrganisationHandler) fail(c *fiber.Ctx, err error, op string) error {
	status := apperr.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
