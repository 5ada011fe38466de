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

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación de CompanyRepository (usable con pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `
	id, name, nombre_comercial, nit, nrc, cod_actividad, desc_actividad,
	departamento, municipio, complemento, telefono, email, status, created_at, updated_at`

// Create persiste un emisor.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		company.ID, company.Name, company.NombreComercial, company.NIT, company.NRC,
		company.CodActividad, company.DescActividad,
		company.Departamento, company.Municipio, company.Complemento,
		company.Telefono, company.Email, company.Status, company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene un emisor por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByNIT obtiene un emisor por NIT.
func (r *CompanyRepo) GetByNIT(ctx context.Context, nit string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE nit = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, nit))
}

// Update actualiza un emisor.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	query := `
		UPDATE companies SET
			name = $2, nombre_comercial = $3, nit = $4, nrc = $5,
			cod_actividad = $6, desc_actividad = $7,
			departamento = $8, municipio = $9, complemento = $10,
			telefono = $11, email = $12, status = $13, updated_at = $14
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		company.ID, company.Name, company.NombreComercial, company.NIT, company.NRC,
		company.CodActividad, company.DescActividad,
		company.Departamento, company.Municipio, company.Complemento,
		company.Telefono, company.Email, company.Status, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// List devuelve emisores con paginación.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.NombreComercial, &c.NIT, &c.NRC,
			&c.CodActividad, &c.DescActividad, &c.Departamento, &c.Municipio, &c.Complemento,
			&c.Telefono, &c.Email, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CompanyRepo) scanOne(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(&c.ID, &c.Name, &c.NombreComercial, &c.NIT, &c.NRC,
		&c.CodActividad, &c.DescActividad, &c.Departamento, &c.Municipio, &c.Complemento,
		&c.Telefono, &c.Email, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}
