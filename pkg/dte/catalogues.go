// Package dte contiene catálogos y validaciones alineados a la normativa de
// Documentos Tributarios Electrónicos (DTE) del Ministerio de Hacienda de
// El Salvador.
package dte

import "github.com/shopspring/decimal"

// =============================================================================
// CAT-002 - Tipos de Documento Tributario Electrónico
// =============================================================================

const (
	TipoFacturaConsumidor = "01" // Factura (consumidor final)
	TipoCreditoFiscal     = "03" // Comprobante de Crédito Fiscal (CCF)
	TipoNotaRemision      = "04" // Nota de Remisión
	TipoNotaCredito       = "05" // Nota de Crédito
	TipoNotaDebito        = "06" // Nota de Débito (reservado, no implementado)
	TipoComprobanteRet    = "07" // Comprobante de Retención
	TipoFacturaExporta    = "11" // Factura de Exportación
	TipoSujetoExcluido    = "14" // Factura de Sujeto Excluido (FSE)
)

// ValidTipoDte contiene los tipos de DTE que el sistema puede emitir.
var ValidTipoDte = map[string]bool{
	TipoFacturaConsumidor: true,
	TipoCreditoFiscal:     true,
	TipoNotaCredito:       true,
	TipoSujetoExcluido:    true,
}

// VersionPorTipo es la versión de esquema JSON que exige el MH por tipo de DTE.
var VersionPorTipo = map[string]int{
	TipoFacturaConsumidor: 1,
	TipoCreditoFiscal:     3,
	TipoNotaCredito:       3,
	TipoNotaDebito:        3,
	TipoSujetoExcluido:    1,
}

// =============================================================================
// CAT-001 - Ambiente de destino
// =============================================================================

const (
	AmbientePruebas    = "00" // Pruebas / certificación
	AmbienteProduccion = "01" // Producción
)

// =============================================================================
// CAT-022 - Tipo de documento de identificación del receptor
// =============================================================================

const (
	DocIDNIT       = "36" // NIT
	DocIDDUI       = "13" // DUI
	DocIDOtro      = "37" // Otro
	DocIDPasaporte = "03" // Pasaporte
	DocIDCarnetRes = "02" // Carnet de residente
)

// =============================================================================
// Operación y modelo de facturación
// =============================================================================

const (
	ModeloFacturacionPrevio = 1 // Modelo de facturación normal (previo)
	TipoTransmisionNormal   = 1 // Transmisión normal (no contingencia)
)

// CAT-016 - Condición de la operación.
const (
	CondicionContado = 1
	CondicionCredito = 2
	CondicionOtro    = 3
)

// CAT-015 - Tributos: el único que aplica aquí es el IVA 13%.
const (
	TributoIVA = "20" // Impuesto al Valor Agregado 13%
)

// IVARate es la tasa vigente del IVA en El Salvador.
var IVARate = decimal.NewFromFloat(0.13)

// Moneda de curso legal; el MH solo acepta USD.
const Moneda = "USD"

// =============================================================================
// CAT-014 - Unidades de medida (subset usado por servicios de suscripción)
// =============================================================================

const (
	UnidadOtra     = 99 // Otra / servicio
	UnidadUnidad   = 59 // Unidad
	UnidadMes      = 58 // Mes de servicio (uso interno)
)

// TipoItemServicio y TipoItemBien clasifican la línea según CAT-011.
const (
	TipoItemBien     = 1
	TipoItemServicio = 2
	TipoItemAmbos    = 3
	TipoItemOtro     = 4 // Otros tributos por ítem (ej. interés por mora)
)
