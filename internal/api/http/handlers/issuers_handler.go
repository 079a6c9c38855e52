package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pardisbank/statement-registry/internal/api/dto"
	"github.com/pardisbank/statement-registry/internal/service"
	apperrors "github.com/pardisbank/statement-registry/pkg/util"
)

// IssuersHandler exposes issuer management endpoints.
type IssuersHandler struct {
	issuers *service.IssuerService
	auth    *service.AuthService
}

// NewIssuersHandler constructs handler.
func NewIssuersHandler(issuerService *service.IssuerService, authService *service.AuthService) *IssuersHandler {
	return &IssuersHandler{issuers: issuerService, auth: authService}
}

// DirectoryUsers handles GET /api/issuers/ad-users.
func (h *IssuersHandler) DirectoryUsers(c *fiber.Ctx) error {
	identities, err := h.auth.ListDirectoryUsers(c.Context(), c.Query("search"))
	if err != nil {
		return err
	}

	responses := make([]dto.IdentityResponse, 0, len(identities))
	for _, identity := range identities {
		responses = append(responses, dto.NewIdentityResponse(identity))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Create handles POST /api/issuers.
func (h *IssuersHandler) Create(c *fiber.Ctx) error {
	var req dto.IssuerCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issuer, err := h.issuers.Create(c.Context(), req.Name, req.BranchID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewIssuerResponse(issuer)})
}

// List handles GET /api/issuers.
func (h *IssuersHandler) List(c *fiber.Ctx) error {
	issuers, err := h.issuers.List(c.Context())
	if err != nil {
		return err
	}

	responses := make([]dto.IssuerResponse, 0, len(issuers))
	for i := range issuers {
		responses = append(responses, dto.NewIssuerResponse(&issuers[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Delete handles DELETE /api/issuers/:id.
func (h *IssuersHandler) Delete(c *fiber.Ctx) error {
	if err := h.issuers.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// ToggleActive handles PUT /api/issuers/:id/toggle-active.
func (h *IssuersHandler) ToggleActive(c *fiber.Ctx) error {
	active, err := h.issuers.ToggleActive(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"active": active}})
}
