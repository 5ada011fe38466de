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

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación de BranchRepository (usable con pool o tx).
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

const branchColumns = `
	id, company_id, name, cod_estable_mh, cod_punto_venta_mh, tipo_establec,
	departamento, municipio, complemento, telefono, email, is_active, created_at, updated_at`

// Create persiste una sucursal.
func (r *BranchRepo) Create(ctx context.Context, branch *entity.Branch) error {
	query := `
		INSERT INTO branches (` + branchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		branch.ID, branch.CompanyID, branch.Name,
		branch.CodEstableMH, branch.CodPuntoVentaMH, branch.TipoEstablec,
		branch.Departamento, branch.Municipio, branch.Complemento,
		branch.Telefono, branch.Email, branch.IsActive, branch.CreatedAt, branch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

// GetByID obtiene una sucursal por ID.
func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE id = $1`
	var b entity.Branch
	err := r.q.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.CompanyID, &b.Name,
		&b.CodEstableMH, &b.CodPuntoVentaMH, &b.TipoEstablec,
		&b.Departamento, &b.Municipio, &b.Complemento,
		&b.Telefono, &b.Email, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}

// ListByCompany devuelve las sucursales de la empresa.
func (r *BranchRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE company_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Branch
	for rows.Next() {
		var b entity.Branch
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.Name,
			&b.CodEstableMH, &b.CodPuntoVentaMH, &b.TipoEstablec,
			&b.Departamento, &b.Municipio, &b.Complemento,
			&b.Telefono, &b.Email, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// Update actualiza una sucursal.
func (r *BranchRepo) Update(ctx context.Context, branch *entity.Branch) error {
	query := `
		UPDATE branches SET
			name = $2, cod_estable_mh = $3, cod_punto_venta_mh = $4, tipo_establec = $5,
			departamento = $6, municipio = $7, complemento = $8,
			telefono = $9, email = $10, is_active = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		branch.ID, branch.Name,
		branch.CodEstableMH, branch.CodPuntoVentaMH, branch.TipoEstablec,
		branch.Departamento, branch.Municipio, branch.Complemento,
		branch.Telefono, branch.Email, branch.IsActive, branch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update branch: %w", err)
	}
	return nil
}
