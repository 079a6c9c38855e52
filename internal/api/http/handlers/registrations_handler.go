package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pardisbank/statement-registry/internal/api/dto"
	"github.com/pardisbank/statement-registry/internal/auth"
	"github.com/pardisbank/statement-registry/internal/service"
	apperrors "github.com/pardisbank/statement-registry/pkg/util"
)

// RegistrationsHandler exposes the registration lifecycle endpoints.
type RegistrationsHandler struct {
	registrations *service.RegistrationService
	bulk          *service.BulkImportService
}

// NewRegistrationsHandler constructs handler.
func NewRegistrationsHandler(registrations *service.RegistrationService, bulk *service.BulkImportService) *RegistrationsHandler {
	return &RegistrationsHandler{registrations: registrations, bulk: bulk}
}

// Verify handles GET /api/registrations/verify/:account.
func (h *RegistrationsHandler) Verify(c *fiber.Ctx) error {
	result, err := h.registrations.Verify(c.Context(), c.Params("account"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// Submit handles POST /api/registrations.
func (h *RegistrationsHandler) Submit(c *fiber.Ctx) error {
	actor, ok := auth.SubjectFromContext(c)
	if !ok {
		return apperrors.NewInvalidCredential()
	}

	var req dto.RegistrationCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.SubmitInput{
		AccountNumber: req.AccountNumber,
		FullName:      req.FullName,
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
		IDNumber:      req.IDNumber,
	}
	if req.RegistrationDate != nil {
		input.RegistrationDate = *req.RegistrationDate
	}

	reg, err := h.registrations.Submit(c.Context(), input, actor)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRegistrationResponse(reg)})
}

// BulkImport handles POST /api/registrations/bulk.
func (h *RegistrationsHandler) BulkImport(c *fiber.Ctx) error {
	actor, ok := auth.SubjectFromContext(c)
	if !ok {
		return apperrors.NewInvalidCredential()
	}

	var req dto.BulkImportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Rows) == 0 {
		return apperrors.NewValidationError("rows required", nil)
	}

	rows := make([]service.BulkRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, service.BulkRow{
			AccountNumber: row.AccountNumber,
			FullName:      row.FullName,
			PhoneNumber:   row.PhoneNumber,
		})
	}

	report := h.bulk.ImportAll(c.Context(), rows, actor)
	return c.JSON(fiber.Map{"data": report})
}

// MarkIssued handles PUT /api/registrations/:id/issue.
func (h *RegistrationsHandler) MarkIssued(c *fiber.Ctx) error {
	actor, ok := auth.SubjectFromContext(c)
	if !ok {
		return apperrors.NewInvalidCredential()
	}

	if err := h.registrations.MarkIssued(c.Context(), c.Params("id"), actor); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"issued": true}})
}

// List handles GET /api/registrations.
func (h *RegistrationsHandler) List(c *fiber.Ctx) error {
	registrations, err := h.registrations.List(c.Context())
	if err != nil {
		return err
	}

	responses := make([]dto.RegistrationResponse, 0, len(registrations))
	for i := range registrations {
		responses = append(responses, dto.NewRegistrationResponse(&registrations[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Stats handles GET /api/registrations/stats.
func (h *RegistrationsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.registrations.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatsResponse(stats)})
}

// History handles GET /api/registrations/:id/history.
func (h *RegistrationsHandler) History(c *fiber.Ctx) error {
	records, err := h.registrations.History(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	responses := make([]dto.StatementRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewStatementRecordResponse(record))
	}
	return c.JSON(fiber.Map{"data": responses})
}
