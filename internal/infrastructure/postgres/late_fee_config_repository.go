package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.LateFeeConfigRepository = (*LateFeeConfigRepo)(nil)

// LateFeeConfigRepo implementación de LateFeeConfigRepository (usable con pool o tx).
type LateFeeConfigRepo struct {
	q Querier
}

// NewLateFeeConfigRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLateFeeConfigRepository(q Querier) *LateFeeConfigRepo {
	return &LateFeeConfigRepo{q: q}
}

const lateFeeColumns = `
	id, company_id, contract_id, modo, valor, gracia_dias, frecuencia,
	tope_monto, tope_porcentaje, acumulativa, is_active, created_at, updated_at`

// Create persiste una configuración de mora.
func (r *LateFeeConfigRepo) Create(ctx context.Context, cfg *entity.LateFeeConfig) error {
	query := `
		INSERT INTO late_fee_configs (` + lateFeeColumns + `)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		cfg.ID, cfg.CompanyID, cfg.ContractID,
		cfg.Modo, cfg.Valor, cfg.GraciaDias, cfg.Frecuencia,
		cfg.TopeMonto, cfg.TopePorcentaje, cfg.Acumulativa,
		cfg.IsActive, cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert late fee config: %w", err)
	}
	return nil
}

// Update actualiza una configuración de mora.
func (r *LateFeeConfigRepo) Update(ctx context.Context, cfg *entity.LateFeeConfig) error {
	query := `
		UPDATE late_fee_configs SET
			modo = $2, valor = $3, gracia_dias = $4, frecuencia = $5,
			tope_monto = $6, tope_porcentaje = $7, acumulativa = $8,
			is_active = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		cfg.ID, cfg.Modo, cfg.Valor, cfg.GraciaDias, cfg.Frecuencia,
		cfg.TopeMonto, cfg.TopePorcentaje, cfg.Acumulativa,
		cfg.IsActive, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update late fee config: %w", err)
	}
	return nil
}

// GetActiveByContract devuelve la config activa específica del contrato, o nil.
func (r *LateFeeConfigRepo) GetActiveByContract(ctx context.Context, contractID string) (*entity.LateFeeConfig, error) {
	query := `SELECT ` + lateFeeColumns + ` FROM late_fee_configs
		WHERE contract_id = $1 AND is_active`
	return r.scanOne(r.q.QueryRow(ctx, query, contractID))
}

// GetActiveDefault devuelve la config activa por defecto del emisor, o nil.
func (r *LateFeeConfigRepo) GetActiveDefault(ctx context.Context, companyID string) (*entity.LateFeeConfig, error) {
	query := `SELECT ` + lateFeeColumns + ` FROM late_fee_configs
		WHERE company_id = $1 AND contract_id IS NULL AND is_active`
	return r.scanOne(r.q.QueryRow(ctx, query, companyID))
}

func (r *LateFeeConfigRepo) scanOne(row pgx.Row) (*entity.LateFeeConfig, error) {
	var c entity.LateFeeConfig
	var contractID *string
	err := row.Scan(&c.ID, &c.CompanyID, &contractID,
		&c.Modo, &c.Valor, &c.GraciaDias, &c.Frecuencia,
		&c.TopeMonto, &c.TopePorcentaje, &c.Acumulativa,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get late fee config: %w", err)
	}
	if contractID != nil {
		c.ContractID = *contractID
	}
	return &c, nil
}
