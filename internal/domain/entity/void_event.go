package entity

import "time"

// Estados del evento de invalidación (reflejan los del DTE).
const (
	VoidStatusDraft     = "DRAFT"
	VoidStatusFirmado   = "FIRMADO"
	VoidStatusProcesado = "PROCESADO"
	VoidStatusRechazado = "RECHAZADO"
)

// Motivos de anulación según normativa MH.
const (
	VoidReasonDataError = 1 // Error en la información (requiere DTE de reemplazo)
	VoidReasonRescind   = 2 // Rescindir de la operación
	VoidReasonOther     = 3 // Otro (requiere justificación en texto libre)
)

// VoidEvent representa un evento de invalidación de un DTE aceptado.
// Guarda un snapshot congelado de la identificación del documento original;
// no es un join vivo. Un DTE admite a lo sumo un evento PROCESADO.
type VoidEvent struct {
	ID               string
	CompanyID        string
	DTEID            string
	CodigoGeneracion string // del evento de invalidación, no del DTE original

	// Snapshot del documento original al momento de solicitar la anulación.
	TipoDteOriginal     string
	CodigoGenOriginal   string
	NumeroControlOrig   string
	SelloOriginal       string
	FechaEmisionOrig    time.Time
	ReceptorSnapshot    string // JSON congelado del receptor

	TipoAnulacion   int    // 1 error de datos, 2 rescindir, 3 otro
	MotivoAnulacion string // obligatorio para tipo 3
	// CodigoGenReemplazo referencia el DTE que sustituye al anulado (tipo 1).
	CodigoGenReemplazo string

	NombreResponsable  string
	TipDocResponsable  string
	NumDocResponsable  string
	NombreSolicitante  string
	TipDocSolicitante  string
	NumDocSolicitante  string

	Estado          string
	JSONPayload     string
	SignedPayload   string
	Sello           string
	CodigoMsg       string
	DescripcionMsg  string
	Observaciones   []string
	FhProcesamiento *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
