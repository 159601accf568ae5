package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/service"
)

// CountriesHandler exposes the rule catalog.
type CountriesHandler struct {
	auditService *service.AuditService
}

// NewCountriesHandler creates a new countries handler.
func NewCountriesHandler(auditService *service.AuditService) *CountriesHandler {
	return &CountriesHandler{auditService: auditService}
}

// Register sets up catalog routes.
func (h *CountriesHandler) Register(router fiber.Router) {
	countries := router.Group("/countries")
	countries.Get("/", h.List)
	countries.Get("/:name", h.Get)
}

// List returns the supported jurisdiction keys.
func (h *CountriesHandler) List(c fiber.Ctx) error {
	names := h.auditService.Countries()
	return c.JSON(fiber.Map{
		"countries": names,
		"count":     len(names),
	})
}

// Get returns one country's rule profile.
func (h *CountriesHandler) Get(c fiber.Ctx) error {
	profile, err := h.auditService.ProfileFor(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"country":         profile.Country,
		"tax_id_label":    profile.TaxIDLabel,
		"tax_id_pattern":  profile.TaxIDPattern.String(),
		"required_fields": profile.RequiredFields,
		"currency":        profile.Currency,
	})
}
