// Package latefee implementa el motor de mora: resuelve la configuración
// aplicable a un contrato y calcula el recargo agregado por facturas vencidas.
package latefee

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// InvoiceFee es el recargo calculado para una factura vencida.
type InvoiceFee struct {
	DTEID            string
	CodigoGeneracion string
	DiasMora         int
	Original         decimal.Decimal
	Recargo          decimal.Decimal
}

// Result agrega el recargo de todas las facturas vencidas del contrato.
// MaxDiasMora se reporta para despliegue y auditoría.
type Result struct {
	Total       decimal.Decimal
	MaxDiasMora int
	Facturas    []InvoiceFee
}

// Engine calcula mora. Now es inyectable para tests deterministas.
type Engine struct {
	cfgRepo repository.LateFeeConfigRepository
	dteRepo repository.DTERepository
	now     func() time.Time
}

// NewEngine construye el motor.
func NewEngine(cfgRepo repository.LateFeeConfigRepository, dteRepo repository.DTERepository) *Engine {
	return &Engine{cfgRepo: cfgRepo, dteRepo: dteRepo, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ResolveConfig resuelve la configuración de mora por prioridad:
// config activa del contrato → default activo del emisor → nil (sin mora).
func (e *Engine) ResolveConfig(ctx context.Context, contract *entity.Contract) (*entity.LateFeeConfig, error) {
	cfg, err := e.cfgRepo.GetActiveByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}
	return e.cfgRepo.GetActiveDefault(ctx, contract.CompanyID)
}

// Compute calcula el recargo agregado del contrato: suma el recargo de cada
// factura PROCESADA cuya emisión más los días de gracia ya venció.
// Devuelve un resultado en cero (sin error) cuando no aplica mora.
func (e *Engine) Compute(ctx context.Context, contract *entity.Contract) (*Result, error) {
	cfg, err := e.ResolveConfig(ctx, contract)
	if err != nil {
		return nil, err
	}
	res := &Result{Total: decimal.Zero}
	if cfg == nil {
		return res, nil
	}

	docs, err := e.dteRepo.ListProcessedByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	today := e.now()
	for _, doc := range docs {
		dias := daysLate(doc.FechaEmision, cfg.GraciaDias, today)
		if dias <= 0 {
			continue
		}
		fee := ComputeInvoiceFee(cfg, doc.TotalPagar, doc.MoraAplicada, dias)
		if fee.IsZero() {
			continue
		}
		res.Facturas = append(res.Facturas, InvoiceFee{
			DTEID:            doc.ID,
			CodigoGeneracion: doc.CodigoGeneracion,
			DiasMora:         dias,
			Original:         doc.TotalPagar,
			Recargo:          fee,
		})
		res.Total = res.Total.Add(fee)
		if dias > res.MaxDiasMora {
			res.MaxDiasMora = dias
		}
	}
	res.Total = res.Total.Round(2)
	return res, nil
}

// daysLate devuelve los días de mora: días calendario desde la emisión menos
// la gracia. Una factura está vencida cuando emisión + gracia < hoy.
func daysLate(emision time.Time, graciaDias int, today time.Time) int {
	days := int(today.Sub(emision).Hours() / 24)
	return days - graciaDias
}

// ComputeInvoiceFee calcula el recargo de una factura.
//
// Base: monto original, o original + mora ya aplicada si la config es
// acumulativa. El modo determina el recargo por período; la frecuencia lo
// multiplica por ceil(diasMora/período). Después se aplican los topes —
// absoluto y porcentual — ambos calculados contra el monto ORIGINAL; gana el
// menor.
func ComputeInvoiceFee(cfg *entity.LateFeeConfig, original, aplicada decimal.Decimal, diasMora int) decimal.Decimal {
	if diasMora <= 0 {
		return decimal.Zero
	}
	base := original
	if cfg.Acumulativa {
		base = base.Add(aplicada)
	}

	var porPeriodo decimal.Decimal
	switch cfg.Modo {
	case entity.LateFeeModeFijo:
		porPeriodo = cfg.Valor
	case entity.LateFeeModePorcentajeSaldo:
		porPeriodo = base.Mul(cfg.Valor)
	case entity.LateFeeModePorcentajeOriginal:
		porPeriodo = original.Mul(cfg.Valor)
	default:
		return decimal.Zero
	}

	fee := porPeriodo.Mul(decimal.NewFromInt(int64(periods(cfg.Frecuencia, diasMora))))

	if cfg.TopeMonto.GreaterThan(decimal.Zero) && fee.GreaterThan(cfg.TopeMonto) {
		fee = cfg.TopeMonto
	}
	if cfg.TopePorcentaje.GreaterThan(decimal.Zero) {
		topePct := original.Mul(cfg.TopePorcentaje)
		if fee.GreaterThan(topePct) {
			fee = topePct
		}
	}
	return fee.Round(2)
}

// periods devuelve cuántos períodos de cobro caben en los días de mora.
func periods(frecuencia string, diasMora int) int {
	switch frecuencia {
	case entity.LateFeeFreqDiaria:
		return diasMora
	case entity.LateFeeFreqSemanal:
		return int(math.Ceil(float64(diasMora) / 7))
	case entity.LateFeeFreqMensual:
		return int(math.Ceil(float64(diasMora) / 30))
	default: // UNICA
		return 1
	}
}
