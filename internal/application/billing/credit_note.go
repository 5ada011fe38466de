package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/dte"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	pkgdte "github.com/jhoicas/Facturacion-api/pkg/dte"
)

// IssueCreditNote emite una nota de crédito (05) contra un Crédito Fiscal
// aceptado. Valida cantidades por línea y el tope acumulado antes de reservar
// numeración; el resto del flujo es el mismo de toda emisión.
func (uc *IssueDocumentUseCase) IssueCreditNote(ctx context.Context, companyID string, in dto.CreditNoteRequest) (*dto.DTEResponse, error) {
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	original, err := uc.dteRepo.GetByID(ctx, in.OriginalID)
	if err != nil {
		return nil, err
	}
	if original == nil || original.CompanyID != companyID {
		return nil, fmt.Errorf("documento original %s: %w", in.OriginalID, domain.ErrNotFound)
	}
	originalItems, err := uc.dteRepo.GetItems(ctx, original.ID)
	if err != nil {
		return nil, err
	}
	branch, err := uc.branchRepo.GetByID(ctx, original.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, fmt.Errorf("sucursal %s: %w", original.BranchID, domain.ErrNotFound)
	}

	items := itemsFromRequest(in.Items)

	// Totales preliminares de la nota: mismo cálculo del builder, sin número
	// de control todavía. Se usa un número placebo para validar montos antes
	// de tomar el lock de numeración.
	preview := dte.BuildInput{
		TipoDte:            pkgdte.TipoNotaCredito,
		Ambiente:           uc.ambiente,
		CodigoGeneracion:   strings.ToUpper(uuid.New().String()),
		NumeroControl:      original.NumeroControl,
		FecEmi:             uc.now().Format("2006-01-02"),
		HorEmi:             uc.now().Format("15:04:05"),
		Emisor:             dte.EmisorFromCompany(company, branch),
		Receptor:           receptorFromSnapshot(original.ReceptorSnapshot),
		Items:              items,
		CondicionOperacion: pkgdte.CondicionContado,
		Relacionado: &dte.DocumentoRelacionado{
			TipoDocumento:   original.TipoDte,
			TipoGeneracion:  2,
			NumeroDocumento: original.CodigoGeneracion,
			FechaEmision:    original.FechaEmision.Format("2006-01-02"),
		},
		Observaciones: in.Motivo,
	}
	_, totales, err := dte.Build(preview)
	if err != nil {
		return nil, err
	}

	previous, err := uc.dteRepo.SumProcessedCreditNotes(ctx, original.ID)
	if err != nil {
		return nil, err
	}
	if err := dte.ValidateCreditNote(original, originalItems, items, previous, totales.Pagar); err != nil {
		return nil, err
	}

	input := preview
	input.CodigoGeneracion = strings.ToUpper(uuid.New().String())
	doc, err := uc.issuePrepared(ctx, company, branch, input, items, func(d *entity.DTE) {
		d.CustomerID = original.CustomerID
		d.ContractID = original.ContractID
		d.RelatedDTEID = original.ID
	})
	if err != nil {
		return nil, err
	}
	return toDTEResponse(doc), nil
}
