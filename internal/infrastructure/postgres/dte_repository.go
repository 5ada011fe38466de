package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.DTERepository = (*DTERepo)(nil)

// DTERepo implementación de DTERepository (usable con pool o tx).
type DTERepo struct {
	q Querier
}

// NewDTERepository construye el adaptador. Pasar pool o tx (Querier).
func NewDTERepository(q Querier) *DTERepo {
	return &DTERepo{q: q}
}

const dteColumns = `
	id, company_id, branch_id, customer_id, contract_id,
	tipo_dte, codigo_generacion, numero_control, estado,
	emisor_snapshot, receptor_snapshot,
	total_gravada, total_exenta, total_no_sujeta, total_descuento,
	total_iva, total_pagar, total_letras,
	json_payload, signed_payload,
	sello_recibido, codigo_msg, descripcion_msg, observaciones, fh_procesamiento,
	related_dte_id, mora_aplicada, intentos, ultimo_error,
	fecha_emision, created_at, updated_at`

// Create persiste la cabecera del DTE en estado DRAFT.
func (r *DTERepo) Create(ctx context.Context, doc *entity.DTE) error {
	query := `
		INSERT INTO dte_documents (` + dteColumns + `)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''),
			$6, $7, $8, $9,
			$10, $11,
			$12, $13, $14, $15,
			$16, $17, $18,
			$19, $20,
			$21, $22, $23, $24, $25,
			NULLIF($26, ''), $27, $28, $29,
			$30, $31, $32)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.CompanyID, doc.BranchID, doc.CustomerID, doc.ContractID,
		doc.TipoDte, doc.CodigoGeneracion, doc.NumeroControl, doc.Estado,
		doc.EmisorSnapshot, doc.ReceptorSnapshot,
		doc.TotalGravada, doc.TotalExenta, doc.TotalNoSujeta, doc.TotalDescuento,
		doc.TotalIva, doc.TotalPagar, doc.TotalLetras,
		doc.JSONPayload, doc.SignedPayload,
		doc.SelloRecibido, doc.CodigoMsg, doc.DescripcionMsg, doc.Observaciones, doc.FhProcesamiento,
		doc.RelatedDTEID, doc.MoraAplicada, doc.Intentos, doc.UltimoError,
		doc.FechaEmision, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert dte %s: %w", doc.NumeroControl, err)
		}
		return fmt.Errorf("insert dte: %w", err)
	}
	return nil
}

// CreateItem persiste una línea del documento.
func (r *DTERepo) CreateItem(ctx context.Context, item *entity.DTEItem) error {
	query := `
		INSERT INTO dte_items (id, dte_id, num_item, product_id, descripcion, cantidad, precio_uni, monto_descu, tipo_venta)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.DTEID, item.NumItem, item.ProductID, item.Descripcion,
		item.Cantidad, item.PrecioUni, item.MontoDescu, item.TipoVenta,
	)
	if err != nil {
		return fmt.Errorf("insert dte item: %w", err)
	}
	return nil
}

// Update persiste los campos de ciclo de vida del documento.
func (r *DTERepo) Update(ctx context.Context, doc *entity.DTE) error {
	query := `
		UPDATE dte_documents SET
			estado = $2, json_payload = $3, signed_payload = $4,
			sello_recibido = $5, codigo_msg = $6, descripcion_msg = $7,
			observaciones = $8, fh_procesamiento = $9,
			mora_aplicada = $10, intentos = $11, ultimo_error = $12,
			updated_at = $13
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.Estado, doc.JSONPayload, doc.SignedPayload,
		doc.SelloRecibido, doc.CodigoMsg, doc.DescripcionMsg,
		doc.Observaciones, doc.FhProcesamiento,
		doc.MoraAplicada, doc.Intentos, doc.UltimoError,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update dte: %w", err)
	}
	return nil
}

// GetByID obtiene un DTE por ID.
func (r *DTERepo) GetByID(ctx context.Context, id string) (*entity.DTE, error) {
	query := `SELECT ` + dteColumns + ` FROM dte_documents WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByCodigoGeneracion obtiene un DTE de la empresa por su código de generación.
func (r *DTERepo) GetByCodigoGeneracion(ctx context.Context, companyID, codigoGeneracion string) (*entity.DTE, error) {
	query := `SELECT ` + dteColumns + ` FROM dte_documents
		WHERE company_id = $1 AND codigo_generacion = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, companyID, codigoGeneracion))
}

// GetItems devuelve las líneas del documento ordenadas por num_item.
func (r *DTERepo) GetItems(ctx context.Context, dteID string) ([]*entity.DTEItem, error) {
	query := `
		SELECT id, dte_id, num_item, COALESCE(product_id, ''), descripcion, cantidad, precio_uni, monto_descu, tipo_venta
		FROM dte_items WHERE dte_id = $1 ORDER BY num_item`
	rows, err := r.q.Query(ctx, query, dteID)
	if err != nil {
		return nil, fmt.Errorf("list dte items: %w", err)
	}
	defer rows.Close()
	var items []*entity.DTEItem
	for rows.Next() {
		var it entity.DTEItem
		if err := rows.Scan(&it.ID, &it.DTEID, &it.NumItem, &it.ProductID, &it.Descripcion,
			&it.Cantidad, &it.PrecioUni, &it.MontoDescu, &it.TipoVenta); err != nil {
			return nil, fmt.Errorf("scan dte item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// ListByCompany lista los DTE de la empresa según filtro, del más reciente al más antiguo.
func (r *DTERepo) ListByCompany(ctx context.Context, companyID string, f repository.DTEFilter) ([]*entity.DTE, error) {
	query := `SELECT ` + dteColumns + ` FROM dte_documents WHERE company_id = $1`
	args := []any{companyID}
	if f.BranchID != "" {
		args = append(args, f.BranchID)
		query += fmt.Sprintf(" AND branch_id = $%d", len(args))
	}
	if f.ContractID != "" {
		args = append(args, f.ContractID)
		query += fmt.Sprintf(" AND contract_id = $%d", len(args))
	}
	if f.TipoDte != "" {
		args = append(args, f.TipoDte)
		query += fmt.Sprintf(" AND tipo_dte = $%d", len(args))
	}
	if f.Estado != "" {
		args = append(args, f.Estado)
		query += fmt.Sprintf(" AND estado = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dte: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListProcessedByContract devuelve los DTE PROCESADOS del contrato (cálculo de mora),
// excluyendo notas de crédito, del más antiguo al más reciente.
func (r *DTERepo) ListProcessedByContract(ctx context.Context, contractID string) ([]*entity.DTE, error) {
	query := `SELECT ` + dteColumns + ` FROM dte_documents
		WHERE contract_id = $1 AND estado = $2 AND tipo_dte <> '05'
		ORDER BY fecha_emision`
	rows, err := r.q.Query(ctx, query, contractID, entity.DTEStatusProcesado)
	if err != nil {
		return nil, fmt.Errorf("list dte by contract: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// SumProcessedCreditNotes suma el total de las notas de crédito PROCESADAS
// emitidas contra el documento original.
func (r *DTERepo) SumProcessedCreditNotes(ctx context.Context, originalID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(total_pagar), 0)
		FROM dte_documents
		WHERE related_dte_id = $1 AND tipo_dte = '05' AND estado = $2`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, originalID, entity.DTEStatusProcesado).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum credit notes: %w", err)
	}
	return total, nil
}

func (r *DTERepo) scanOne(row pgx.Row) (*entity.DTE, error) {
	var d entity.DTE
	var customerID, contractID, relatedID *string
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.BranchID, &customerID, &contractID,
		&d.TipoDte, &d.CodigoGeneracion, &d.NumeroControl, &d.Estado,
		&d.EmisorSnapshot, &d.ReceptorSnapshot,
		&d.TotalGravada, &d.TotalExenta, &d.TotalNoSujeta, &d.TotalDescuento,
		&d.TotalIva, &d.TotalPagar, &d.TotalLetras,
		&d.JSONPayload, &d.SignedPayload,
		&d.SelloRecibido, &d.CodigoMsg, &d.DescripcionMsg, &d.Observaciones, &d.FhProcesamiento,
		&relatedID, &d.MoraAplicada, &d.Intentos, &d.UltimoError,
		&d.FechaEmision, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dte: %w", err)
	}
	if customerID != nil {
		d.CustomerID = *customerID
	}
	if contractID != nil {
		d.ContractID = *contractID
	}
	if relatedID != nil {
		d.RelatedDTEID = *relatedID
	}
	return &d, nil
}

func (r *DTERepo) scanMany(rows pgx.Rows) ([]*entity.DTE, error) {
	var list []*entity.DTE
	for rows.Next() {
		var d entity.DTE
		var customerID, contractID, relatedID *string
		err := rows.Scan(
			&d.ID, &d.CompanyID, &d.BranchID, &customerID, &contractID,
			&d.TipoDte, &d.CodigoGeneracion, &d.NumeroControl, &d.Estado,
			&d.EmisorSnapshot, &d.ReceptorSnapshot,
			&d.TotalGravada, &d.TotalExenta, &d.TotalNoSujeta, &d.TotalDescuento,
			&d.TotalIva, &d.TotalPagar, &d.TotalLetras,
			&d.JSONPayload, &d.SignedPayload,
			&d.SelloRecibido, &d.CodigoMsg, &d.DescripcionMsg, &d.Observaciones, &d.FhProcesamiento,
			&relatedID, &d.MoraAplicada, &d.Intentos, &d.UltimoError,
			&d.FechaEmision, &d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan dte: %w", err)
		}
		if customerID != nil {
			d.CustomerID = *customerID
		}
		if contractID != nil {
			d.ContractID = *contractID
		}
		if relatedID != nil {
			d.RelatedDTEID = *relatedID
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
