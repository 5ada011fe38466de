package entity

import "github.com/shopspring/decimal"

// Tratamiento tributario de una línea (CAT-011 simplificado).
const (
	VentaGravada   = "GRAVADA"
	VentaExenta    = "EXENTA"
	VentaNoSujeta  = "NO_SUJETA"
	VentaNoGravada = "NO_GRAVADA"
)

// DTEItem representa una línea del cuerpo del documento.
// Inmutable una vez construido el DTE padre.
type DTEItem struct {
	ID          string
	DTEID       string
	NumItem     int
	ProductID   string // enlace opcional al catálogo de servicios
	Descripcion string
	Cantidad    decimal.Decimal
	PrecioUni   decimal.Decimal
	MontoDescu  decimal.Decimal
	TipoVenta   string // GRAVADA, EXENTA, NO_SUJETA, NO_GRAVADA
}

// Subtotal devuelve cantidad × precio unitario − descuento.
func (i *DTEItem) Subtotal() decimal.Decimal {
	return i.Cantidad.Mul(i.PrecioUni).Sub(i.MontoDescu)
}
