package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/application/latefee"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// LateFeeHandler expone el cálculo de mora de un contrato sin emitir nada:
// el recargo real se factura vía POST /api/dte con incluir_mora=true.
type LateFeeHandler struct {
	engine       *latefee.Engine
	contractRepo repository.ContractRepository
}

// NewLateFeeHandler construye el handler de mora.
func NewLateFeeHandler(engine *latefee.Engine, contractRepo repository.ContractRepository) *LateFeeHandler {
	return &LateFeeHandler{engine: engine, contractRepo: contractRepo}
}

// GetLateFee calcula el recargo acumulado del contrato a la fecha.
// GET /api/contracts/:id/late-fee
func (h *LateFeeHandler) GetLateFee(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	contractID := c.Params("id")
	contract, err := h.contractRepo.GetByID(c.Context(), contractID)
	if err != nil {
		return mapDomainError(c, err)
	}
	if contract == nil || contract.CompanyID != companyID {
		return mapDomainError(c, fmt.Errorf("contrato %s: %w", contractID, domain.ErrNotFound))
	}
	res, err := h.engine.Compute(c.Context(), contract)
	if err != nil {
		return mapDomainError(c, err)
	}
	out := dto.LateFeeResponse{
		ContractID:  contract.ID,
		Total:       res.Total,
		MaxDiasMora: res.MaxDiasMora,
		Facturas:    make([]dto.LateFeeInvoiceResponse, 0, len(res.Facturas)),
	}
	for _, f := range res.Facturas {
		out.Facturas = append(out.Facturas, dto.LateFeeInvoiceResponse{
			DTEID:            f.DTEID,
			CodigoGeneracion: f.CodigoGeneracion,
			DiasMora:         f.DiasMora,
			Original:         f.Original,
			Recargo:          f.Recargo,
		})
	}
	return c.JSON(out)
}
