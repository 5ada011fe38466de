package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un DTE.
const (
	DTEStatusDraft      = "DRAFT"      // Construido y persistido, pendiente de firma
	DTEStatusFirmado    = "FIRMADO"    // JWS disponible, pendiente de transmisión
	DTEStatusProcesado  = "PROCESADO"  // Aceptado por el MH (sello de recepción)
	DTEStatusRechazado  = "RECHAZADO"  // Rechazado por el MH (número consumido)
	DTEStatusInvalidado = "INVALIDADO" // Anulado mediante evento de invalidación procesado
)

// DTE representa un Documento Tributario Electrónico emitido o en emisión.
// Nunca se borra; solo avanza de estado a través de los orquestadores.
type DTE struct {
	ID         string
	CompanyID  string
	BranchID   string
	CustomerID string // vacío en factura de consumidor sin receptor
	ContractID string // vacío en venta directa

	TipoDte          string // CAT-002: 01, 03, 05, 14
	CodigoGeneracion string // UUID v4 en mayúsculas, generado al crear
	NumeroControl    string // DTE-{tipo}-{estab}{pos}-{correlativo 15 dígitos}
	Estado           string

	// Snapshots inmutables al momento de la construcción (JSON serializado).
	EmisorSnapshot   string
	ReceptorSnapshot string

	// Totales calculados por el builder.
	TotalGravada   decimal.Decimal
	TotalExenta    decimal.Decimal
	TotalNoSujeta  decimal.Decimal
	TotalDescuento decimal.Decimal
	TotalIva       decimal.Decimal
	TotalPagar     decimal.Decimal
	TotalLetras    string

	JSONPayload   string // documento construido (sin firma)
	SignedPayload string // JWS devuelto por el firmador

	// Respuesta de transmisión MH.
	SelloRecibido   string
	CodigoMsg       string
	DescripcionMsg  string
	Observaciones   []string
	FhProcesamiento *time.Time

	// RelatedDTEID referencia el documento original (notas de crédito).
	RelatedDTEID string

	// MoraAplicada acumula los recargos por mora ya facturados contra este
	// documento; sirve de base cuando la configuración es acumulativa.
	MoraAplicada decimal.Decimal

	Intentos    int
	UltimoError string

	FechaEmision time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Aceptado indica si el DTE fue aceptado por el MH y porta sello.
func (d *DTE) Aceptado() bool {
	return d.Estado == DTEStatusProcesado && d.SelloRecibido != ""
}

// FechaReferenciaInvalidacion es la fecha desde la que corre el plazo de
// invalidación: fecha de procesamiento MH, o emisión si no hay sello fechado.
func (d *DTE) FechaReferenciaInvalidacion() time.Time {
	if d.FhProcesamiento != nil {
		return *d.FhProcesamiento
	}
	return d.FechaEmision
}
