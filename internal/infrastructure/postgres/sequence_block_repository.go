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

var _ repository.SequenceBlockRepository = (*SequenceBlockRepo)(nil)

// SequenceBlockRepo implementación de SequenceBlockRepository (usable con pool o tx).
type SequenceBlockRepo struct {
	q Querier
}

// NewSequenceBlockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceBlockRepository(q Querier) *SequenceBlockRepo {
	return &SequenceBlockRepo{q: q}
}

const blockColumns = `
	id, company_id, branch_id, tipo_dte, serie_prefix,
	lower_bound, upper_bound, current_number, is_active, created_at, updated_at`

// Create persiste un bloque de numeración. El índice parcial único sobre
// (branch_id, tipo_dte) WHERE is_active garantiza a lo sumo un bloque activo.
func (r *SequenceBlockRepo) Create(ctx context.Context, block *entity.SequenceBlock) error {
	query := `
		INSERT INTO sequence_blocks (` + blockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		block.ID, block.CompanyID, block.BranchID, block.TipoDte, block.SeriePrefix,
		block.Lower, block.Upper, block.Current, block.IsActive, block.CreatedAt, block.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sequence block: %w", err)
	}
	return nil
}

// GetByID obtiene un bloque por ID.
func (r *SequenceBlockRepo) GetByID(ctx context.Context, id string) (*entity.SequenceBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM sequence_blocks WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetActive devuelve el bloque activo del par (sucursal, tipo), o nil.
func (r *SequenceBlockRepo) GetActive(ctx context.Context, branchID, tipoDte string) (*entity.SequenceBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM sequence_blocks
		WHERE branch_id = $1 AND tipo_dte = $2 AND is_active`
	return r.scanOne(r.q.QueryRow(ctx, query, branchID, tipoDte))
}

// GetActiveForUpdate toma el bloque activo con lock de fila (SELECT ... FOR
// UPDATE). Debe llamarse dentro de una transacción; el lock se sostiene hasta
// el commit/rollback. Es la base del asignador de numeración concurrente.
func (r *SequenceBlockRepo) GetActiveForUpdate(ctx context.Context, branchID, tipoDte string) (*entity.SequenceBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM sequence_blocks
		WHERE branch_id = $1 AND tipo_dte = $2 AND is_active
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, branchID, tipoDte))
}

// ListByCompany devuelve todos los bloques de la empresa.
func (r *SequenceBlockRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.SequenceBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM sequence_blocks
		WHERE company_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list sequence blocks: %w", err)
	}
	defer rows.Close()
	var list []*entity.SequenceBlock
	for rows.Next() {
		var b entity.SequenceBlock
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.BranchID, &b.TipoDte, &b.SeriePrefix,
			&b.Lower, &b.Upper, &b.Current, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sequence block: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// Update persiste puntero y estado del bloque.
func (r *SequenceBlockRepo) Update(ctx context.Context, block *entity.SequenceBlock) error {
	query := `
		UPDATE sequence_blocks SET current_number = $2, is_active = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, block.ID, block.Current, block.IsActive, block.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update sequence block: %w", err)
	}
	return nil
}

func (r *SequenceBlockRepo) scanOne(row pgx.Row) (*entity.SequenceBlock, error) {
	var b entity.SequenceBlock
	err := row.Scan(&b.ID, &b.CompanyID, &b.BranchID, &b.TipoDte, &b.SeriePrefix,
		&b.Lower, &b.Upper, &b.Current, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sequence block: %w", err)
	}
	return &b, nil
}
