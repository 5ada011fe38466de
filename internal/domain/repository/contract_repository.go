package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// ContractRepository define el puerto de persistencia para Contract.
type ContractRepository interface {
	Create(ctx context.Context, contract *entity.Contract) error
	GetByID(ctx context.Context, id string) (*entity.Contract, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Contract, error)
	Update(ctx context.Context, contract *entity.Contract) error
}
