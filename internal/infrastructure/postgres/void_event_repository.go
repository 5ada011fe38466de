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

var _ repository.VoidEventRepository = (*VoidEventRepo)(nil)

// VoidEventRepo implementación de VoidEventRepository (usable con pool o tx).
type VoidEventRepo struct {
	q Querier
}

// NewVoidEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVoidEventRepository(q Querier) *VoidEventRepo {
	return &VoidEventRepo{q: q}
}

const voidColumns = `
	id, company_id, dte_id, codigo_generacion,
	tipo_dte_original, codigo_gen_original, numero_control_orig, sello_original,
	fecha_emision_orig, receptor_snapshot,
	tipo_anulacion, motivo_anulacion, codigo_gen_reemplazo,
	nombre_responsable, tip_doc_responsable, num_doc_responsable,
	nombre_solicitante, tip_doc_solicitante, num_doc_solicitante,
	estado, json_payload, signed_payload, sello,
	codigo_msg, descripcion_msg, observaciones, fh_procesamiento,
	created_at, updated_at`

// Create persiste el evento de invalidación.
// El índice parcial único sobre dte_id WHERE estado = 'PROCESADO' respalda
// la regla de a lo sumo una anulación efectiva por documento.
func (r *VoidEventRepo) Create(ctx context.Context, ev *entity.VoidEvent) error {
	query := `
		INSERT INTO void_events (` + voidColumns + `)
		VALUES ($1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10,
			$11, $12, NULLIF($13, ''),
			$14, $15, $16,
			$17, $18, $19,
			$20, $21, $22, $23,
			$24, $25, $26, $27,
			$28, $29)`
	_, err := r.q.Exec(ctx, query,
		ev.ID, ev.CompanyID, ev.DTEID, ev.CodigoGeneracion,
		ev.TipoDteOriginal, ev.CodigoGenOriginal, ev.NumeroControlOrig, ev.SelloOriginal,
		ev.FechaEmisionOrig, ev.ReceptorSnapshot,
		ev.TipoAnulacion, ev.MotivoAnulacion, ev.CodigoGenReemplazo,
		ev.NombreResponsable, ev.TipDocResponsable, ev.NumDocResponsable,
		ev.NombreSolicitante, ev.TipDocSolicitante, ev.NumDocSolicitante,
		ev.Estado, ev.JSONPayload, ev.SignedPayload, ev.Sello,
		ev.CodigoMsg, ev.DescripcionMsg, ev.Observaciones, ev.FhProcesamiento,
		ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert void event: %w", err)
	}
	return nil
}

// Update persiste estado, payloads y respuesta del MH.
func (r *VoidEventRepo) Update(ctx context.Context, ev *entity.VoidEvent) error {
	query := `
		UPDATE void_events SET
			estado = $2, json_payload = $3, signed_payload = $4, sello = $5,
			codigo_msg = $6, descripcion_msg = $7, observaciones = $8,
			fh_procesamiento = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		ev.ID, ev.Estado, ev.JSONPayload, ev.SignedPayload, ev.Sello,
		ev.CodigoMsg, ev.DescripcionMsg, ev.Observaciones,
		ev.FhProcesamiento, ev.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update void event: %w", err)
	}
	return nil
}

// GetByID obtiene un evento por ID.
func (r *VoidEventRepo) GetByID(ctx context.Context, id string) (*entity.VoidEvent, error) {
	query := `SELECT ` + voidColumns + ` FROM void_events WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetProcessedByDTE devuelve el evento PROCESADO del documento, o nil.
func (r *VoidEventRepo) GetProcessedByDTE(ctx context.Context, dteID string) (*entity.VoidEvent, error) {
	query := `SELECT ` + voidColumns + ` FROM void_events
		WHERE dte_id = $1 AND estado = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, dteID, entity.VoidStatusProcesado))
}

// ListByDTE devuelve todos los eventos del documento, del más reciente al más antiguo.
func (r *VoidEventRepo) ListByDTE(ctx context.Context, dteID string) ([]*entity.VoidEvent, error) {
	query := `SELECT ` + voidColumns + ` FROM void_events
		WHERE dte_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, dteID)
	if err != nil {
		return nil, fmt.Errorf("list void events: %w", err)
	}
	defer rows.Close()
	var list []*entity.VoidEvent
	for rows.Next() {
		ev, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, ev)
	}
	return list, rows.Err()
}

func (r *VoidEventRepo) scanOne(row pgx.Row) (*entity.VoidEvent, error) {
	ev, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ev, nil
}

func (r *VoidEventRepo) scanRow(row pgx.Row) (*entity.VoidEvent, error) {
	var ev entity.VoidEvent
	var reemplazo *string
	err := row.Scan(
		&ev.ID, &ev.CompanyID, &ev.DTEID, &ev.CodigoGeneracion,
		&ev.TipoDteOriginal, &ev.CodigoGenOriginal, &ev.NumeroControlOrig, &ev.SelloOriginal,
		&ev.FechaEmisionOrig, &ev.ReceptorSnapshot,
		&ev.TipoAnulacion, &ev.MotivoAnulacion, &reemplazo,
		&ev.NombreResponsable, &ev.TipDocResponsable, &ev.NumDocResponsable,
		&ev.NombreSolicitante, &ev.TipDocSolicitante, &ev.NumDocSolicitante,
		&ev.Estado, &ev.JSONPayload, &ev.SignedPayload, &ev.Sello,
		&ev.CodigoMsg, &ev.DescripcionMsg, &ev.Observaciones, &ev.FhProcesamiento,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan void event: %w", err)
	}
	if reemplazo != nil {
		ev.CodigoGenReemplazo = *reemplazo
	}
	return &ev, nil
}
