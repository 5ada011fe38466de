package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// SequenceBlockRepository define el puerto de persistencia de los bloques de
// numeración. La asignación concurrente de números (lock + avance del puntero)
// vive en el puerto SequenceAllocator de application/billing, no aquí.
type SequenceBlockRepository interface {
	Create(ctx context.Context, block *entity.SequenceBlock) error
	GetByID(ctx context.Context, id string) (*entity.SequenceBlock, error)
	// GetActive devuelve el bloque activo del par (sucursal, tipo) o nil.
	GetActive(ctx context.Context, branchID, tipoDte string) (*entity.SequenceBlock, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.SequenceBlock, error)
	Update(ctx context.Context, block *entity.SequenceBlock) error
}
