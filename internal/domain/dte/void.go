package dte

import (
	"fmt"
	"time"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	pkgdte "github.com/jhoicas/Facturacion-api/pkg/dte"
)

// Plazos de invalidación por tipo de DTE, en días calendario desde la
// aceptación (o la emisión si no hay sello fechado).
var voidWindowDays = map[string]int{
	pkgdte.TipoFacturaConsumidor: 90,
	pkgdte.TipoFacturaExporta:    90,
	pkgdte.TipoSujetoExcluido:    90,
	pkgdte.TipoCreditoFiscal:     1,
	pkgdte.TipoNotaCredito:       1,
	pkgdte.TipoNotaDebito:        1,
	pkgdte.TipoComprobanteRet:    1,
}

// VoidWindowDays devuelve el plazo de invalidación del tipo, o 0 si el tipo
// no es invalidable.
func VoidWindowDays(tipoDte string) int {
	return voidWindowDays[tipoDte]
}

// CheckVoidWindow verifica que el documento siga dentro del plazo de
// invalidación a la fecha dada. Un intento exactamente en el límite es válido.
func CheckVoidWindow(doc *entity.DTE, now time.Time) error {
	limit := VoidWindowDays(doc.TipoDte)
	if limit == 0 {
		return fmt.Errorf("%w: el tipo %s no es invalidable", ErrDocumentoInvalido, doc.TipoDte)
	}
	elapsed := int(now.Sub(doc.FechaReferenciaInvalidacion()).Hours() / 24)
	if elapsed > limit {
		return fmt.Errorf("%d días transcurridos, límite %d para tipo %s: %w",
			elapsed, limit, doc.TipoDte, domain.ErrVoidWindowExpired)
	}
	return nil
}

// EventoInvalidacion es el payload JSON del evento de anulación.
type EventoInvalidacion struct {
	Identificacion IdentificacionEvento `json:"identificacion"`
	Emisor         Emisor               `json:"emisor"`
	Documento      DocumentoAnulado     `json:"documento"`
	Motivo         MotivoAnulacion      `json:"motivo"`
}

// IdentificacionEvento encabeza el evento de invalidación (versión 2).
type IdentificacionEvento struct {
	Version          int    `json:"version"`
	Ambiente         string `json:"ambiente"`
	CodigoGeneracion string `json:"codigoGeneracion"`
	FecAnula         string `json:"fecAnula"`
	HorAnula         string `json:"horAnula"`
}

// DocumentoAnulado es el snapshot congelado del DTE que se anula.
type DocumentoAnulado struct {
	TipoDte          string `json:"tipoDte"`
	CodigoGeneracion string `json:"codigoGeneracion"`
	SelloRecibido    string `json:"selloRecibido"`
	NumeroControl    string `json:"numeroControl"`
	FecEmi           string `json:"fecEmi"`
	// CodigoGeneracionR referencia al DTE de reemplazo; vacío salvo motivo 1.
	CodigoGeneracionR string `json:"codigoGeneracionR,omitempty"`
	TipoDocumento     string `json:"tipoDocumento,omitempty"`
	NumDocumento      string `json:"numDocumento,omitempty"`
	Nombre            string `json:"nombre,omitempty"`
}

// MotivoAnulacion detalla razón y responsables del evento.
type MotivoAnulacion struct {
	TipoAnulacion     int    `json:"tipoAnulacion"`
	MotivoAnulacion   string `json:"motivoAnulacion,omitempty"`
	NombreResponsable string `json:"nombreResponsable"`
	TipDocResponsable string `json:"tipDocResponsable"`
	NumDocResponsable string `json:"numDocResponsable"`
	NombreSolicita    string `json:"nombreSolicita"`
	TipDocSolicita    string `json:"tipDocSolicita"`
	NumDocSolicita    string `json:"numDocSolicita"`
}

// VersionEventoInvalidacion es la versión del esquema del evento.
const VersionEventoInvalidacion = 2

// BuildVoidEvent construye el payload del evento desde el registro VoidEvent
// y el snapshot del emisor. No consulta nada: todos los datos vienen congelados.
func BuildVoidEvent(ev *entity.VoidEvent, emisor Emisor, ambiente string, now time.Time) (*EventoInvalidacion, error) {
	if ev.TipoAnulacion < entity.VoidReasonDataError || ev.TipoAnulacion > entity.VoidReasonOther {
		return nil, fmt.Errorf("%w: tipoAnulacion %d desconocido", ErrDocumentoInvalido, ev.TipoAnulacion)
	}
	if ev.TipoAnulacion == entity.VoidReasonDataError && ev.CodigoGenReemplazo == "" {
		return nil, fmt.Errorf("%w: el motivo 1 requiere DTE de reemplazo", ErrDocumentoInvalido)
	}
	if ev.TipoAnulacion == entity.VoidReasonOther && ev.MotivoAnulacion == "" {
		return nil, fmt.Errorf("%w: el motivo 3 requiere justificación", ErrDocumentoInvalido)
	}
	return &EventoInvalidacion{
		Identificacion: IdentificacionEvento{
			Version:          VersionEventoInvalidacion,
			Ambiente:         ambiente,
			CodigoGeneracion: ev.CodigoGeneracion,
			FecAnula:         now.Format("2006-01-02"),
			HorAnula:         now.Format("15:04:05"),
		},
		Emisor: emisor,
		Documento: DocumentoAnulado{
			TipoDte:           ev.TipoDteOriginal,
			CodigoGeneracion:  ev.CodigoGenOriginal,
			SelloRecibido:     ev.SelloOriginal,
			NumeroControl:     ev.NumeroControlOrig,
			FecEmi:            ev.FechaEmisionOrig.Format("2006-01-02"),
			CodigoGeneracionR: ev.CodigoGenReemplazo,
		},
		Motivo: MotivoAnulacion{
			TipoAnulacion:     ev.TipoAnulacion,
			MotivoAnulacion:   ev.MotivoAnulacion,
			NombreResponsable: ev.NombreResponsable,
			TipDocResponsable: ev.TipDocResponsable,
			NumDocResponsable: ev.NumDocResponsable,
			NombreSolicita:    ev.NombreSolicitante,
			TipDocSolicita:    ev.TipDocSolicitante,
			NumDocSolicita:    ev.NumDocSolicitante,
		},
	}, nil
}
