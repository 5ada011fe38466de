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

var _ repository.ContractRepository = (*ContractRepo)(nil)

// ContractRepo implementación de ContractRepository (usable con pool o tx).
type ContractRepo struct {
	q Querier
}

// NewContractRepository construye el adaptador. Pasar pool o tx (Querier).
func NewContractRepository(q Querier) *ContractRepo {
	return &ContractRepo{q: q}
}

const contractColumns = `
	id, company_id, customer_id, branch_id, descripcion,
	monto_mensual, dia_corte, status, created_at, updated_at`

// Create persiste un contrato.
func (r *ContractRepo) Create(ctx context.Context, contract *entity.Contract) error {
	query := `
		INSERT INTO contracts (` + contractColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		contract.ID, contract.CompanyID, contract.CustomerID, contract.BranchID,
		contract.Descripcion, contract.MontoMensual, contract.DiaCorte,
		contract.Status, contract.CreatedAt, contract.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

// GetByID obtiene un contrato por ID.
func (r *ContractRepo) GetByID(ctx context.Context, id string) (*entity.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`
	var c entity.Contract
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.CompanyID, &c.CustomerID, &c.BranchID,
		&c.Descripcion, &c.MontoMensual, &c.DiaCorte,
		&c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return &c, nil
}

// ListByCompany lista contratos de la empresa con paginación.
func (r *ContractRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts
		WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Contract
	for rows.Next() {
		var c entity.Contract
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.CustomerID, &c.BranchID,
			&c.Descripcion, &c.MontoMensual, &c.DiaCorte,
			&c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza un contrato.
func (r *ContractRepo) Update(ctx context.Context, contract *entity.Contract) error {
	query := `
		UPDATE contracts SET
			descripcion = $2, monto_mensual = $3, dia_corte = $4, status = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		contract.ID, contract.Descripcion, contract.MontoMensual, contract.DiaCorte,
		contract.Status, contract.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update contract: %w", err)
	}
	return nil
}
