package dte

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	pkgdte "github.com/jhoicas/Facturacion-api/pkg/dte"
)

// ErrDocumentoInvalido agrupa errores de validación de construcción de DTE.
var ErrDocumentoInvalido = errors.New("documento inválido")

// CreditNoteTolerance es la tolerancia de un centavo del tope acumulado de
// notas de crédito contra un mismo documento original.
var CreditNoteTolerance = decimal.NewFromFloat(0.01)

// ValidateReceptor aplica los requisitos de receptor por tipo de documento:
//   - 03 (CCF) y 05 (NC): NIT y NRC obligatorios.
//   - 14 (FSE): DUI o NIT más nombre; nunca NRC.
//   - 01 (Factura): sin requisitos; si trae documento, se valida el formato.
func ValidateReceptor(tipoDte string, receptor *Receptor, sujeto *SujetoExcluido) error {
	switch tipoDte {
	case pkgdte.TipoCreditoFiscal, pkgdte.TipoNotaCredito:
		if receptor == nil {
			return fmt.Errorf("%w: el tipo %s requiere receptor", ErrDocumentoInvalido, tipoDte)
		}
		if receptor.TipoDocumento != pkgdte.DocIDNIT || receptor.NumDocumento == "" {
			return fmt.Errorf("%w: el tipo %s requiere NIT del receptor", ErrDocumentoInvalido, tipoDte)
		}
		if err := pkgdte.ValidateNIT(receptor.NumDocumento); err != nil {
			return fmt.Errorf("%w: %v", ErrDocumentoInvalido, err)
		}
		if receptor.NRC == "" {
			return fmt.Errorf("%w: el tipo %s requiere NRC del receptor", ErrDocumentoInvalido, tipoDte)
		}
		if err := pkgdte.ValidateNRC(receptor.NRC); err != nil {
			return fmt.Errorf("%w: %v", ErrDocumentoInvalido, err)
		}
		return nil

	case pkgdte.TipoSujetoExcluido:
		if sujeto == nil {
			return fmt.Errorf("%w: la FSE requiere sujeto excluido", ErrDocumentoInvalido)
		}
		if sujeto.TipoDocumento != pkgdte.DocIDNIT && sujeto.TipoDocumento != pkgdte.DocIDDUI {
			return fmt.Errorf("%w: la FSE requiere DUI o NIT del sujeto excluido", ErrDocumentoInvalido)
		}
		if err := pkgdte.ValidateDocumentoReceptor(sujeto.TipoDocumento, sujeto.NumDocumento); err != nil {
			return fmt.Errorf("%w: %v", ErrDocumentoInvalido, err)
		}
		if strings.TrimSpace(sujeto.Nombre) == "" {
			return fmt.Errorf("%w: la FSE requiere nombre del sujeto excluido", ErrDocumentoInvalido)
		}
		return nil

	case pkgdte.TipoFacturaConsumidor:
		if receptor != nil && receptor.NumDocumento != "" {
			if err := pkgdte.ValidateDocumentoReceptor(receptor.TipoDocumento, receptor.NumDocumento); err != nil {
				return fmt.Errorf("%w: %v", ErrDocumentoInvalido, err)
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: tipo de DTE no soportado %q", ErrDocumentoInvalido, tipoDte)
	}
}

// ValidateCreditNote verifica las reglas de nota de crédito contra el original:
//   - el original debe estar PROCESADO (aceptado con sello);
//   - cada línea devuelta no puede exceder la cantidad original del mismo
//     producto (o descripción, si no hay enlace a catálogo);
//   - la suma de notas previas más la nueva no puede superar el total del
//     original más un centavo de tolerancia.
//
// previousCreditTotal es la suma de TotalPagar de las notas PROCESADAS previas;
// newTotal el total de la nota en construcción.
func ValidateCreditNote(
	original *entity.DTE,
	originalItems []*entity.DTEItem,
	items []*entity.DTEItem,
	previousCreditTotal, newTotal decimal.Decimal,
) error {
	if original == nil {
		return fmt.Errorf("%w: documento original requerido", ErrDocumentoInvalido)
	}
	if !original.Aceptado() {
		return fmt.Errorf("%w: el documento original no está aceptado por el MH", ErrDocumentoInvalido)
	}
	if original.TipoDte != pkgdte.TipoCreditoFiscal {
		return fmt.Errorf("%w: la nota de crédito solo aplica a Crédito Fiscal (03)", ErrDocumentoInvalido)
	}

	// Cantidades originales por clave de línea.
	disponibles := make(map[string]decimal.Decimal, len(originalItems))
	for _, it := range originalItems {
		disponibles[lineKey(it)] = disponibles[lineKey(it)].Add(it.Cantidad)
	}
	for _, it := range items {
		key := lineKey(it)
		avail, ok := disponibles[key]
		if !ok {
			return fmt.Errorf("%w: la línea %q no existe en el documento original", ErrDocumentoInvalido, it.Descripcion)
		}
		if it.Cantidad.GreaterThan(avail) {
			return fmt.Errorf("%w: la línea %q devuelve %s pero el original tiene %s",
				ErrDocumentoInvalido, it.Descripcion, it.Cantidad.String(), avail.String())
		}
	}

	tope := original.TotalPagar.Add(CreditNoteTolerance)
	if previousCreditTotal.Add(newTotal).GreaterThan(tope) {
		return fmt.Errorf("notas previas %s + nota nueva %s > total original %s: %w",
			previousCreditTotal.String(), newTotal.String(), original.TotalPagar.String(),
			domain.ErrCreditNoteCapExceeded)
	}
	return nil
}

func lineKey(it *entity.DTEItem) string {
	if it.ProductID != "" {
		return "p:" + it.ProductID
	}
	return "d:" + strings.ToLower(strings.TrimSpace(it.Descripcion))
}
