package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
)

// InvalidationHandler maneja los eventos de anulación de DTE (protegido).
type InvalidationHandler struct {
	uc *billing.InvalidationUseCase
}

// NewInvalidationHandler construye el handler de invalidación.
func NewInvalidationHandler(uc *billing.InvalidationUseCase) *InvalidationHandler {
	return &InvalidationHandler{uc: uc}
}

// Void solicita la invalidación de un DTE aceptado ante el MH.
// POST /api/dte/:id/void
// Igual que en la emisión, un evento RECHAZADO por el MH se devuelve 201 con
// su estado; el documento original no cambia.
func (h *InvalidationHandler) Void(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.VoidDTERequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.TipoAnulacion < 1 || in.TipoAnulacion > 3 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo_anulacion debe ser 1, 2 o 3"})
	}
	if in.Motivo == "" || in.NombreResponsable == "" || in.NombreSolicitante == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "motivo, responsable y solicitante son requeridos"})
	}
	ev, err := h.uc.Void(c.Context(), companyID, c.Params("id"), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ev)
}

// ListVoidEvents devuelve los eventos de anulación de un DTE, el más reciente primero.
// GET /api/dte/:id/void-events
func (h *InvalidationHandler) ListVoidEvents(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	events, err := h.uc.ListByDTE(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"data": events})
}
