package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// DTEHandler maneja la emisión y consulta de documentos tributarios (protegido).
type DTEHandler struct {
	issueUC     *billing.IssueDocumentUseCase
	companyRepo repository.CompanyRepository
	pdfGen      billing.PDFGenerator
}

// NewDTEHandler construye el handler de emisión.
func NewDTEHandler(issueUC *billing.IssueDocumentUseCase, companyRepo repository.CompanyRepository, pdfGen billing.PDFGenerator) *DTEHandler {
	return &DTEHandler{issueUC: issueUC, companyRepo: companyRepo, pdfGen: pdfGen}
}

// Issue emite un DTE: construye, firma, transmite y devuelve el estado final.
// POST /api/dte
// Un documento RECHAZADO por el MH no es un error HTTP: se devuelve 201 con
// estado=RECHAZADO para que el operador decida reemitir o corregir.
func (h *DTEHandler) Issue(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.IssueDTERequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.BranchID == "" || len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "branch_id e items son requeridos"})
	}
	doc, err := h.issueUC.Issue(c.Context(), companyID, in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// IssueCreditNote emite una nota de crédito contra un CCF aceptado.
// POST /api/dte/credit-note
func (h *DTEHandler) IssueCreditNote(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreditNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.OriginalID == "" || len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "original_id e items son requeridos"})
	}
	doc, err := h.issueUC.IssueCreditNote(c.Context(), companyID, in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Resend reintenta firma y transmisión de un DTE en DRAFT o RECHAZADO,
// conservando código de generación y número de control.
// POST /api/dte/:id/resend
func (h *DTEHandler) Resend(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	doc, err := h.issueUC.Resend(c.Context(), companyID, id)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(doc)
}

// GetByID devuelve un DTE.
// GET /api/dte/:id
func (h *DTEHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	doc, err := h.issueUC.Get(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(doc)
}

// List devuelve los DTE de la empresa con filtros y paginación.
// GET /api/dte?branch_id=&contract_id=&tipo_dte=&estado=&limit=&offset=
func (h *DTEHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.Normalize()
	f := repository.DTEFilter{
		BranchID:   c.Query("branch_id"),
		ContractID: c.Query("contract_id"),
		TipoDte:    c.Query("tipo_dte"),
		Estado:     c.Query("estado"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	docs, err := h.issueUC.List(c.Context(), companyID, f)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{
		"data": docs,
		"page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetPDF devuelve la representación gráfica del DTE.
// GET /api/dte/:id/pdf
func (h *DTEHandler) GetPDF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	doc, items, err := h.issueUC.GetWithItems(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	company, err := h.companyRepo.GetByID(c.Context(), companyID)
	if err != nil || company == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "emisor no disponible"})
	}
	pdfBytes, err := h.pdfGen.GenerateDTEPDF(c.Context(), doc, items, company)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF_FAILED", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+doc.NumeroControl+`.pdf"`)
	return c.Send(pdfBytes)
}
