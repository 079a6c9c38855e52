package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pardisbank/statement-registry/internal/api/dto"
	"github.com/pardisbank/statement-registry/internal/service"
	apperrors "github.com/pardisbank/statement-registry/pkg/util"
)

// BranchesHandler exposes branch management endpoints.
type BranchesHandler struct {
	branches *service.BranchService
}

// NewBranchesHandler constructs handler.
func NewBranchesHandler(branchService *service.BranchService) *BranchesHandler {
	return &BranchesHandler{branches: branchService}
}

// Create handles POST /api/branches.
func (h *BranchesHandler) Create(c *fiber.Ctx) error {
	var req dto.BranchCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	branch, err := h.branches.Create(c.Context(), req.Code, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewBranchResponse(branch)})
}

// List handles GET /api/branches.
func (h *BranchesHandler) List(c *fiber.Ctx) error {
	branches, err := h.branches.List(c.Context())
	if err != nil {
		return err
	}

	responses := make([]dto.BranchResponse, 0, len(branches))
	for i := range branches {
		responses = append(responses, dto.NewBranchResponse(&branches[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Delete handles DELETE /api/branches/:id.
func (h *BranchesHandler) Delete(c *fiber.Ctx) error {
	if err := h.branches.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}
