package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de cálculo del recargo por mora.
const (
	LateFeeModeFijo               = "FIJO"                // monto fijo por período
	LateFeeModePorcentajeSaldo    = "PORCENTAJE_SALDO"    // % del saldo base
	LateFeeModePorcentajeOriginal = "PORCENTAJE_ORIGINAL" // % del monto original
)

// Frecuencias de cobro del recargo.
const (
	LateFeeFreqUnica   = "UNICA"
	LateFeeFreqDiaria  = "DIARIA"
	LateFeeFreqSemanal = "SEMANAL"
	LateFeeFreqMensual = "MENSUAL"
)

// LateFeeConfig define cómo se calcula la mora para un contrato.
// ContractID vacío = configuración por defecto del emisor (tenant-wide).
// Resolución por prioridad: config del contrato → default del emisor → sin mora.
type LateFeeConfig struct {
	ID         string
	CompanyID  string
	ContractID string // vacío = default del emisor

	Modo       string          // FIJO, PORCENTAJE_SALDO, PORCENTAJE_ORIGINAL
	Valor      decimal.Decimal // monto fijo o porcentaje (0.05 = 5%)
	GraciaDias int
	Frecuencia string // UNICA, DIARIA, SEMANAL, MENSUAL

	// Topes; cero = sin tope. Ambos se evalúan contra el monto original.
	TopeMonto      decimal.Decimal
	TopePorcentaje decimal.Decimal

	// Acumulativa: la mora ya aplicada se suma a la base del siguiente cálculo.
	Acumulativa bool

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
