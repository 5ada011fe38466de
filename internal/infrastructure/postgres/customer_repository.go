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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `
	id, company_id, name, tipo_documento, num_documento, nrc,
	cod_actividad, desc_actividad, departamento, municipio, complemento,
	telefono, email, created_at, updated_at`

// Create persiste un cliente.
func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.CompanyID, customer.Name,
		customer.TipoDocumento, customer.NumDocumento, customer.NRC,
		customer.CodActividad, customer.DescActividad,
		customer.Departamento, customer.Municipio, customer.Complemento,
		customer.Telefono, customer.Email, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByCompanyAndDocumento obtiene un cliente por empresa y número de documento.
func (r *CustomerRepo) GetByCompanyAndDocumento(ctx context.Context, companyID, numDocumento string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE company_id = $1 AND num_documento = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, companyID, numDocumento))
}

// ListByCompany lista clientes de la empresa con paginación.
func (r *CustomerRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name,
			&c.TipoDocumento, &c.NumDocumento, &c.NRC,
			&c.CodActividad, &c.DescActividad, &c.Departamento, &c.Municipio, &c.Complemento,
			&c.Telefono, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza un cliente.
func (r *CustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	query := `
		UPDATE customers SET
			name = $2, tipo_documento = $3, num_documento = $4, nrc = $5,
			cod_actividad = $6, desc_actividad = $7,
			departamento = $8, municipio = $9, complemento = $10,
			telefono = $11, email = $12, updated_at = $13
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.Name,
		customer.TipoDocumento, customer.NumDocumento, customer.NRC,
		customer.CodActividad, customer.DescActividad,
		customer.Departamento, customer.Municipio, customer.Complemento,
		customer.Telefono, customer.Email, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) scanOne(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name,
		&c.TipoDocumento, &c.NumDocumento, &c.NRC,
		&c.CodActividad, &c.DescActividad, &c.Departamento, &c.Municipio, &c.Complemento,
		&c.Telefono, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}
