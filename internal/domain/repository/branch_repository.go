package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// BranchRepository define el puerto de persistencia para Branch (sucursales).
type BranchRepository interface {
	Create(ctx context.Context, branch *entity.Branch) error
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Branch, error)
	Update(ctx context.Context, branch *entity.Branch) error
}
