package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/dte"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// Resend reintenta la emisión de un DTE que quedó en DRAFT (falla de firma) o
// RECHAZADO. Conserva codigoGeneracion y numeroControl intactos: el payload
// almacenado se vuelve a firmar y transmitir sin tocar el asignador de números.
func (uc *IssueDocumentUseCase) Resend(ctx context.Context, companyID, dteID string) (*dto.DTEResponse, error) {
	doc, err := uc.dteRepo.GetByID(ctx, dteID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.CompanyID != companyID {
		return nil, fmt.Errorf("DTE %s: %w", dteID, domain.ErrNotFound)
	}
	switch doc.Estado {
	case entity.DTEStatusDraft, entity.DTEStatusRechazado:
		// reemisible
	default:
		return nil, fmt.Errorf("el DTE %s está %s y no admite reemisión: %w",
			doc.CodigoGeneracion, doc.Estado, domain.ErrConflict)
	}

	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	if err := uc.signAndTransmit(ctx, company, doc, []byte(doc.JSONPayload), nil); err != nil {
		return nil, err
	}
	return toDTEResponse(doc), nil
}

// receptorFromSnapshot reconstruye el receptor desde el snapshot JSON congelado
// del documento original. Devuelve nil si el snapshot está vacío.
func receptorFromSnapshot(snapshot string) *dte.Receptor {
	if snapshot == "" {
		return nil
	}
	var r dte.Receptor
	if err := json.Unmarshal([]byte(snapshot), &r); err != nil {
		return nil
	}
	return &r
}
