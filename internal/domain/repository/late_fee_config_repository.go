package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// LateFeeConfigRepository define el puerto de persistencia de configuración de mora.
type LateFeeConfigRepository interface {
	Create(ctx context.Context, cfg *entity.LateFeeConfig) error
	Update(ctx context.Context, cfg *entity.LateFeeConfig) error
	// GetActiveByContract devuelve la config activa específica del contrato, o nil.
	GetActiveByContract(ctx context.Context, contractID string) (*entity.LateFeeConfig, error)
	// GetActiveDefault devuelve la config activa por defecto del emisor, o nil.
	GetActiveDefault(ctx context.Context, companyID string) (*entity.LateFeeConfig, error)
}
