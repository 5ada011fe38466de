package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
)

// SequenceBlockHandler administra los bloques de numeración autorizados
// (solo rol admin).
type SequenceBlockHandler struct {
	uc *billing.SequenceBlockUseCase
}

// NewSequenceBlockHandler construye el handler de bloques.
func NewSequenceBlockHandler(uc *billing.SequenceBlockUseCase) *SequenceBlockHandler {
	return &SequenceBlockHandler{uc: uc}
}

// Create registra un bloque y desactiva el anterior del mismo tipo/sucursal.
// POST /api/sequence-blocks
func (h *SequenceBlockHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateSequenceBlockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	block, err := h.uc.Create(c.Context(), companyID, in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(block)
}

// List devuelve los bloques de la empresa.
// GET /api/sequence-blocks
func (h *SequenceBlockHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	blocks, err := h.uc.List(c.Context(), companyID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"data": blocks})
}

// Deactivate desactiva un bloque sin borrarlo; su historial de consumo se conserva.
// POST /api/sequence-blocks/:id/deactivate
func (h *SequenceBlockHandler) Deactivate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	block, err := h.uc.Deactivate(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(block)
}
