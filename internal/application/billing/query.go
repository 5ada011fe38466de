package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// Get devuelve un DTE de la empresa por ID.
func (uc *IssueDocumentUseCase) Get(ctx context.Context, companyID, dteID string) (*dto.DTEResponse, error) {
	doc, err := uc.getOwned(ctx, companyID, dteID)
	if err != nil {
		return nil, err
	}
	return toDTEResponse(doc), nil
}

// GetWithItems devuelve la entidad completa con sus líneas (impresión PDF).
func (uc *IssueDocumentUseCase) GetWithItems(ctx context.Context, companyID, dteID string) (*entity.DTE, []*entity.DTEItem, error) {
	doc, err := uc.getOwned(ctx, companyID, dteID)
	if err != nil {
		return nil, nil, err
	}
	items, err := uc.dteRepo.GetItems(ctx, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	return doc, items, nil
}

// List devuelve los DTE de la empresa según filtro y paginación.
func (uc *IssueDocumentUseCase) List(ctx context.Context, companyID string, f repository.DTEFilter) ([]*dto.DTEResponse, error) {
	docs, err := uc.dteRepo.ListByCompany(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.DTEResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDTEResponse(d))
	}
	return out, nil
}

func (uc *IssueDocumentUseCase) getOwned(ctx context.Context, companyID, dteID string) (*entity.DTE, error) {
	doc, err := uc.dteRepo.GetByID(ctx, dteID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.CompanyID != companyID {
		return nil, fmt.Errorf("DTE %s: %w", dteID, domain.ErrNotFound)
	}
	return doc, nil
}
