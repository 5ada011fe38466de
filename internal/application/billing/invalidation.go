package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/dte"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
	pkgdte "github.com/jhoicas/Facturacion-api/pkg/dte"
)

// InvalidationUseCase orquesta la anulación de un DTE aceptado: precondiciones
// (documento con sello, sin anulación previa, dentro del plazo legal), evento
// firmado y transmitido al MH. Solo un evento PROCESADO marca el original
// como INVALIDADO; un rechazo deja el original intacto.
type InvalidationUseCase struct {
	dteRepo     repository.DTERepository
	voidRepo    repository.VoidEventRepository
	companyRepo repository.CompanyRepository

	signer      Signer
	transmitter Transmitter

	ambiente string
	log      *logger.Logger
	now      func() time.Time
}

// NewInvalidationUseCase construye el orquestador de invalidación.
func NewInvalidationUseCase(
	dteRepo repository.DTERepository,
	voidRepo repository.VoidEventRepository,
	companyRepo repository.CompanyRepository,
	signer Signer,
	transmitter Transmitter,
	ambiente string,
	log *logger.Logger,
) *InvalidationUseCase {
	return &InvalidationUseCase{
		dteRepo:     dteRepo,
		voidRepo:    voidRepo,
		companyRepo: companyRepo,
		signer:      signer,
		transmitter: transmitter,
		ambiente:    ambiente,
		log:         log,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *InvalidationUseCase) WithClock(now func() time.Time) *InvalidationUseCase {
	uc.now = now
	return uc
}

// Void solicita la invalidación del DTE ante el MH.
func (uc *InvalidationUseCase) Void(ctx context.Context, companyID, dteID string, in dto.VoidDTERequest) (*dto.VoidEventResponse, error) {
	doc, err := uc.dteRepo.GetByID(ctx, dteID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.CompanyID != companyID {
		return nil, fmt.Errorf("DTE %s: %w", dteID, domain.ErrNotFound)
	}
	if !doc.Aceptado() {
		return nil, fmt.Errorf("el DTE %s no está aceptado por el MH: %w",
			doc.CodigoGeneracion, domain.ErrConflict)
	}

	// Doble anulación: a lo sumo un evento PROCESADO por documento.
	existing, err := uc.voidRepo.GetProcessedByDTE(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("el DTE %s ya fue invalidado por el evento %s: %w",
			doc.CodigoGeneracion, existing.CodigoGeneracion, domain.ErrConflict)
	}

	now := uc.now()
	if err := dte.CheckVoidWindow(doc, now); err != nil {
		return nil, err
	}

	// Motivo 1 (error de datos) exige un DTE de reemplazo ya aceptado.
	if in.TipoAnulacion == entity.VoidReasonDataError {
		if in.ReemplazoCodigoGeneracion == "" {
			return nil, fmt.Errorf("el motivo 1 requiere DTE de reemplazo: %w", domain.ErrInvalidInput)
		}
		repl, err := uc.dteRepo.GetByCodigoGeneracion(ctx, companyID, in.ReemplazoCodigoGeneracion)
		if err != nil {
			return nil, err
		}
		if repl == nil {
			return nil, fmt.Errorf("DTE de reemplazo %s: %w", in.ReemplazoCodigoGeneracion, domain.ErrNotFound)
		}
		if !repl.Aceptado() {
			return nil, fmt.Errorf("el DTE de reemplazo %s no está aceptado: %w",
				in.ReemplazoCodigoGeneracion, domain.ErrConflict)
		}
	}

	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	ev := &entity.VoidEvent{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		DTEID:             doc.ID,
		CodigoGeneracion:  strings.ToUpper(uuid.New().String()),
		TipoDteOriginal:   doc.TipoDte,
		CodigoGenOriginal: doc.CodigoGeneracion,
		NumeroControlOrig: doc.NumeroControl,
		SelloOriginal:     doc.SelloRecibido,
		FechaEmisionOrig:  doc.FechaEmision,
		ReceptorSnapshot:  doc.ReceptorSnapshot,

		TipoAnulacion:      in.TipoAnulacion,
		MotivoAnulacion:    in.Motivo,
		CodigoGenReemplazo: in.ReemplazoCodigoGeneracion,

		NombreResponsable: in.NombreResponsable,
		TipDocResponsable: in.TipDocResponsable,
		NumDocResponsable: in.NumDocResponsable,
		NombreSolicitante: in.NombreSolicitante,
		TipDocSolicitante: in.TipDocSolicitante,
		NumDocSolicitante: in.NumDocSolicitante,

		Estado:    entity.VoidStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var emisor dte.Emisor
	if err := json.Unmarshal([]byte(doc.EmisorSnapshot), &emisor); err != nil {
		return nil, fmt.Errorf("snapshot de emisor corrupto en DTE %s: %w", doc.ID, err)
	}
	evento, err := dte.BuildVoidEvent(ev, emisor, uc.ambiente, now)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(evento)
	if err != nil {
		return nil, err
	}
	ev.JSONPayload = string(payload)
	if err := uc.voidRepo.Create(ctx, ev); err != nil {
		return nil, err
	}

	nit := pkgdte.NormalizeID(company.NIT)
	jws, err := uc.signer.Sign(ctx, nit, payload)
	if err != nil {
		// El evento queda en DRAFT; el original no cambia.
		return nil, fmt.Errorf("firma del evento de invalidación %s: %w", ev.CodigoGeneracion, err)
	}
	ev.SignedPayload = jws
	ev.Estado = entity.VoidStatusFirmado
	ev.UpdatedAt = uc.now()
	if err := uc.voidRepo.Update(ctx, ev); err != nil {
		return nil, err
	}

	env := VoidEnvelope{
		Ambiente:  uc.ambiente,
		IdEnvio:   1,
		Version:   dte.VersionEventoInvalidacion,
		Documento: jws,
	}
	result, terr := uc.transmitter.TransmitVoid(ctx, env, nit)
	switch {
	case terr != nil:
		ev.Estado = entity.VoidStatusRechazado
		ev.DescripcionMsg = terr.Error()
		uc.log.Warn().Err(terr).
			Str("void_id", ev.ID).
			Str("dte_id", doc.ID).
			Msg("transmisión del evento de invalidación fallida")
	case result.Accepted:
		ev.Estado = entity.VoidStatusProcesado
		ev.Sello = result.Sello
		ev.CodigoMsg = result.CodigoMsg
		ev.DescripcionMsg = result.DescripcionMsg
		ev.Observaciones = result.Observaciones
		ev.FhProcesamiento = result.FhProcesamiento
	default:
		ev.Estado = entity.VoidStatusRechazado
		ev.CodigoMsg = result.CodigoMsg
		ev.DescripcionMsg = result.DescripcionMsg
		ev.Observaciones = result.Observaciones
	}
	ev.UpdatedAt = uc.now()
	if err := uc.voidRepo.Update(ctx, ev); err != nil {
		return nil, err
	}

	if ev.Estado == entity.VoidStatusProcesado {
		doc.Estado = entity.DTEStatusInvalidado
		doc.UpdatedAt = uc.now()
		if err := uc.dteRepo.Update(ctx, doc); err != nil {
			return nil, err
		}
		uc.log.Info().
			Str("dte_id", doc.ID).
			Str("codigo_generacion", doc.CodigoGeneracion).
			Int("tipo_anulacion", ev.TipoAnulacion).
			Msg("DTE invalidado ante el MH")
	}
	return toVoidEventResponse(ev), nil
}

// ListByDTE devuelve los eventos de invalidación (todos los estados) del documento.
func (uc *InvalidationUseCase) ListByDTE(ctx context.Context, companyID, dteID string) ([]*dto.VoidEventResponse, error) {
	doc, err := uc.dteRepo.GetByID(ctx, dteID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.CompanyID != companyID {
		return nil, fmt.Errorf("DTE %s: %w", dteID, domain.ErrNotFound)
	}
	events, err := uc.voidRepo.ListByDTE(ctx, dteID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.VoidEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toVoidEventResponse(ev))
	}
	return out, nil
}

func toVoidEventResponse(ev *entity.VoidEvent) *dto.VoidEventResponse {
	return &dto.VoidEventResponse{
		ID:               ev.ID,
		DTEID:            ev.DTEID,
		CodigoGeneracion: ev.CodigoGeneracion,
		TipoAnulacion:    ev.TipoAnulacion,
		Motivo:           ev.MotivoAnulacion,
		Estado:           ev.Estado,
		Sello:            ev.Sello,
		CodigoMsg:        ev.CodigoMsg,
		DescripcionMsg:   ev.DescripcionMsg,
		FhProcesamiento:  ev.FhProcesamiento,
		CreatedAt:        ev.CreatedAt,
	}
}
