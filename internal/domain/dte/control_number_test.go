package dte_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	domaindte "github.com/jhoicas/Facturacion-api/internal/domain/dte"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

func branchPrueba() *entity.Branch {
	return &entity.Branch{
		ID:              "b-1",
		CodEstableMH:    "M001",
		CodPuntoVentaMH: "P001",
	}
}

func bloquePrueba(lower, upper, current int64) *entity.SequenceBlock {
	return &entity.SequenceBlock{
		ID:          "blk-1",
		TipoDte:     "01",
		SeriePrefix: "DTE",
		Lower:       lower,
		Upper:       upper,
		Current:     current,
		IsActive:    true,
	}
}

func TestFormatControlNumber(t *testing.T) {
	assert.Equal(t, "DTE-01-M001P001-000000000000001",
		domaindte.FormatControlNumber("DTE", "01", "M001", "P001", 1))
	assert.Equal(t, "DTE-03-M002P015-000000000123456",
		domaindte.FormatControlNumber("DTE", "03", "M002", "P015", 123456))
}

func TestNextControlNumber_AvanzaSinMutarElBloque(t *testing.T) {
	block := bloquePrueba(1, 100, 0) // bloque nuevo: aún no emite

	numero, n, err := domaindte.NextControlNumber(block, branchPrueba())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "DTE-01-M001P001-000000000000001", numero)
	assert.Equal(t, int64(0), block.Current, "el puntero se avanza en el Consume, no aquí")
}

func TestNextControlNumber_Monotonia(t *testing.T) {
	// Simula N asignaciones consecutivas confirmadas: current == inicial + N.
	block := bloquePrueba(1, 100, 0)
	branch := branchPrueba()
	const emisiones = 10
	for i := 1; i <= emisiones; i++ {
		_, n, err := domaindte.NextControlNumber(block, branch)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
		block.Current = n // Consume
	}
	assert.Equal(t, int64(emisiones), block.Current)
}

func TestNextControlNumber_BloqueAgotado(t *testing.T) {
	block := bloquePrueba(1, 5, 5)

	_, _, err := domaindte.NextControlNumber(block, branchPrueba())
	assert.ErrorIs(t, err, domain.ErrBlockExhausted)
}

func TestNextControlNumber_UltimoNumeroDelBloque(t *testing.T) {
	block := bloquePrueba(1, 5, 4)

	numero, n, err := domaindte.NextControlNumber(block, branchPrueba())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "DTE-01-M001P001-000000000000005", numero)
}

func TestNextControlNumber_BloqueInactivoONulo(t *testing.T) {
	block := bloquePrueba(1, 100, 0)
	block.IsActive = false

	_, _, err := domaindte.NextControlNumber(block, branchPrueba())
	assert.ErrorIs(t, err, domain.ErrBlockExhausted)

	_, _, err = domaindte.NextControlNumber(nil, branchPrueba())
	assert.ErrorIs(t, err, domain.ErrBlockExhausted)
}
