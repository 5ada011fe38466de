package dte_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	domaindte "github.com/jhoicas/Facturacion-api/internal/domain/dte"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

func ccfOriginal(total string) *entity.DTE {
	doc := dteAceptado("03", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	doc.TotalPagar = dec(total)
	return doc
}

func lineaOriginal(descripcion, cantidad string) *entity.DTEItem {
	return &entity.DTEItem{
		Descripcion: descripcion,
		Cantidad:    dec(cantidad),
		PrecioUni:   dec("100.00"),
		TipoVenta:   entity.VentaGravada,
	}
}

func TestValidateCreditNote_DevolucionValida(t *testing.T) {
	original := ccfOriginal("113.00")
	origItems := []*entity.DTEItem{lineaOriginal("Internet dedicado agosto", "1")}
	notaItems := []*entity.DTEItem{lineaOriginal("Internet dedicado agosto", "1")}

	err := domaindte.ValidateCreditNote(original, origItems, notaItems, decimal.Zero, dec("113.00"))
	assert.NoError(t, err)
}

func TestValidateCreditNote_OriginalNoAceptado(t *testing.T) {
	original := ccfOriginal("113.00")
	original.Estado = entity.DTEStatusRechazado
	original.SelloRecibido = ""

	err := domaindte.ValidateCreditNote(original, nil, nil, decimal.Zero, dec("10.00"))
	assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)
}

func TestValidateCreditNote_SoloAplicaACCF(t *testing.T) {
	original := dteAceptado("01", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	original.TotalPagar = dec("25.00")

	err := domaindte.ValidateCreditNote(original, nil, nil, decimal.Zero, dec("10.00"))
	assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)
}

func TestValidateCreditNote_LineaInexistente(t *testing.T) {
	original := ccfOriginal("113.00")
	origItems := []*entity.DTEItem{lineaOriginal("Internet dedicado agosto", "1")}
	notaItems := []*entity.DTEItem{lineaOriginal("Servicio que no existe", "1")}

	err := domaindte.ValidateCreditNote(original, origItems, notaItems, decimal.Zero, dec("10.00"))
	assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)
}

func TestValidateCreditNote_CantidadExcedeLaOriginal(t *testing.T) {
	original := ccfOriginal("226.00")
	origItems := []*entity.DTEItem{lineaOriginal("Internet dedicado agosto", "2")}
	notaItems := []*entity.DTEItem{lineaOriginal("Internet dedicado agosto", "3")}

	err := domaindte.ValidateCreditNote(original, origItems, notaItems, decimal.Zero, dec("10.00"))
	assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)
}

func TestValidateCreditNote_TopeAcumulado(t *testing.T) {
	original := ccfOriginal("113.00")
	origItems := []*entity.DTEItem{lineaOriginal("Internet dedicado agosto", "2")}
	notaItems := []*entity.DTEItem{lineaOriginal("Internet dedicado agosto", "1")}

	// Notas previas 60.00 + nueva 60.00 = 120.00 > 113.01
	err := domaindte.ValidateCreditNote(original, origItems, notaItems, dec("60.00"), dec("60.00"))
	assert.ErrorIs(t, err, domain.ErrCreditNoteCapExceeded)
}

func TestValidateCreditNote_ToleranciaDeUnCentavo(t *testing.T) {
	original := ccfOriginal("113.00")
	origItems := []*entity.DTEItem{lineaOriginal("Internet dedicado agosto", "2")}
	notaItems := []*entity.DTEItem{lineaOriginal("Internet dedicado agosto", "1")}

	// Exactamente en el tope más la tolerancia: pasa.
	assert.NoError(t, domaindte.ValidateCreditNote(original, origItems, notaItems, dec("60.00"), dec("53.01")))
	// Un centavo más: excede.
	err := domaindte.ValidateCreditNote(original, origItems, notaItems, dec("60.00"), dec("53.02"))
	assert.ErrorIs(t, err, domain.ErrCreditNoteCapExceeded)
}

func TestValidateCreditNote_MismaDescripcionSinCatalogo(t *testing.T) {
	original := ccfOriginal("113.00")
	// Sin ProductID el enlace es por descripción, sin distinguir mayúsculas.
	origItems := []*entity.DTEItem{lineaOriginal("Internet Dedicado Agosto", "1")}
	notaItems := []*entity.DTEItem{lineaOriginal("internet dedicado agosto", "1")}

	err := domaindte.ValidateCreditNote(original, origItems, notaItems, decimal.Zero, dec("50.00"))
	assert.NoError(t, err)
}
