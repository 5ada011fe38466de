package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemRequest es una línea de venta en la petición de emisión.
type ItemRequest struct {
	ProductID   string          `json:"product_id" validate:"omitempty,uuid"`
	Descripcion string          `json:"descripcion" validate:"required,min=1,max=1000"`
	Cantidad    decimal.Decimal `json:"cantidad" validate:"required"`
	PrecioUni   decimal.Decimal `json:"precio_uni" validate:"required"`
	MontoDescu  decimal.Decimal `json:"monto_descu"`
	TipoVenta   string          `json:"tipo_venta" validate:"omitempty,oneof=GRAVADA EXENTA NO_SUJETA NO_GRAVADA"`
}

// IssueDTERequest entrada para emitir un DTE. Si TipoDte viene vacío, el
// orquestador lo determina por el perfil fiscal del cliente (NIT+NRC -> 03,
// de lo contrario 01). "14" debe pedirse explícito.
type IssueDTERequest struct {
	BranchID   string `json:"branch_id" validate:"required,uuid"`
	CustomerID string `json:"customer_id" validate:"omitempty,uuid"`
	ContractID string `json:"contract_id" validate:"omitempty,uuid"`
	TipoDte    string `json:"tipo_dte" validate:"omitempty,oneof=01 03 14"`

	Items              []ItemRequest `json:"items" validate:"required,min=1,dive"`
	CondicionOperacion int           `json:"condicion_operacion" validate:"omitempty,oneof=1 2 3"`
	Observaciones      string        `json:"observaciones" validate:"omitempty,max=3000"`

	// IncluirMora agrega el recargo por mora del contrato como línea exenta.
	IncluirMora bool `json:"incluir_mora"`
}

// CreditNoteRequest entrada para emitir una nota de crédito contra un CCF.
type CreditNoteRequest struct {
	OriginalID string        `json:"original_id" validate:"required,uuid"`
	Items      []ItemRequest `json:"items" validate:"required,min=1,dive"`
	Motivo     string        `json:"motivo" validate:"omitempty,max=3000"`
}

// VoidDTERequest entrada para solicitar la invalidación de un DTE aceptado.
type VoidDTERequest struct {
	TipoAnulacion int `json:"tipo_anulacion" validate:"required,oneof=1 2 3"`
	// Motivo es obligatorio cuando tipo_anulacion = 3.
	Motivo string `json:"motivo" validate:"omitempty,max=3000"`
	// ReemplazoCodigoGeneracion referencia el DTE sustituto (tipo 1).
	ReemplazoCodigoGeneracion string `json:"reemplazo_codigo_generacion" validate:"omitempty,uuid"`

	NombreResponsable string `json:"nombre_responsable" validate:"required,max=200"`
	TipDocResponsable string `json:"tip_doc_responsable" validate:"required"`
	NumDocResponsable string `json:"num_doc_responsable" validate:"required"`
	NombreSolicitante string `json:"nombre_solicitante" validate:"required,max=200"`
	TipDocSolicitante string `json:"tip_doc_solicitante" validate:"required"`
	NumDocSolicitante string `json:"num_doc_solicitante" validate:"required"`
}

// DTEResponse salida de un DTE: identificación, estado y respuesta del MH.
type DTEResponse struct {
	ID               string `json:"id"`
	TipoDte          string `json:"tipo_dte"`
	CodigoGeneracion string `json:"codigo_generacion"`
	NumeroControl    string `json:"numero_control"`
	Estado           string `json:"estado"`

	TotalGravada   decimal.Decimal `json:"total_gravada"`
	TotalExenta    decimal.Decimal `json:"total_exenta"`
	TotalNoSujeta  decimal.Decimal `json:"total_no_sujeta"`
	TotalDescuento decimal.Decimal `json:"total_descuento"`
	TotalIva       decimal.Decimal `json:"total_iva"`
	TotalPagar     decimal.Decimal `json:"total_pagar"`
	TotalLetras    string          `json:"total_letras"`

	SelloRecibido   string     `json:"sello_recibido,omitempty"`
	CodigoMsg       string     `json:"codigo_msg,omitempty"`
	DescripcionMsg  string     `json:"descripcion_msg,omitempty"`
	Observaciones   []string   `json:"observaciones,omitempty"`
	FhProcesamiento *time.Time `json:"fh_procesamiento,omitempty"`

	RelatedDTEID string    `json:"related_dte_id,omitempty"`
	UltimoError  string    `json:"ultimo_error,omitempty"`
	FechaEmision time.Time `json:"fecha_emision"`
	CreatedAt    time.Time `json:"created_at"`
}

// VoidEventResponse salida de un evento de invalidación.
type VoidEventResponse struct {
	ID               string     `json:"id"`
	DTEID            string     `json:"dte_id"`
	CodigoGeneracion string     `json:"codigo_generacion"`
	TipoAnulacion    int        `json:"tipo_anulacion"`
	Motivo           string     `json:"motivo,omitempty"`
	Estado           string     `json:"estado"`
	Sello            string     `json:"sello,omitempty"`
	CodigoMsg        string     `json:"codigo_msg,omitempty"`
	DescripcionMsg   string     `json:"descripcion_msg,omitempty"`
	FhProcesamiento  *time.Time `json:"fh_procesamiento,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CreateSequenceBlockRequest entrada para registrar un bloque de numeración.
type CreateSequenceBlockRequest struct {
	BranchID    string `json:"branch_id" validate:"required,uuid"`
	TipoDte     string `json:"tipo_dte" validate:"required,oneof=01 03 05 14"`
	SeriePrefix string `json:"serie_prefix" validate:"omitempty,max=10"`
	Lower       int64  `json:"lower" validate:"required,min=1"`
	Upper       int64  `json:"upper" validate:"required,min=1"`
}

// SequenceBlockResponse salida de un bloque de numeración.
type SequenceBlockResponse struct {
	ID          string    `json:"id"`
	BranchID    string    `json:"branch_id"`
	TipoDte     string    `json:"tipo_dte"`
	SeriePrefix string    `json:"serie_prefix"`
	Lower       int64     `json:"lower"`
	Upper       int64     `json:"upper"`
	Current     int64     `json:"current"`
	Restantes   int64     `json:"restantes"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// LateFeeInvoiceResponse recargo de una factura vencida.
type LateFeeInvoiceResponse struct {
	DTEID            string          `json:"dte_id"`
	CodigoGeneracion string          `json:"codigo_generacion"`
	DiasMora         int             `json:"dias_mora"`
	Original         decimal.Decimal `json:"original"`
	Recargo          decimal.Decimal `json:"recargo"`
}

// LateFeeResponse salida del cálculo de mora de un contrato.
type LateFeeResponse struct {
	ContractID  string                   `json:"contract_id"`
	Total       decimal.Decimal          `json:"total"`
	MaxDiasMora int                      `json:"max_dias_mora"`
	Facturas    []LateFeeInvoiceResponse `json:"facturas"`
}
