package dte

import (
	"fmt"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// FormatControlNumber arma el número de control normativo:
//
//	{prefijo}-{tipoDte}-{codEstable}{codPuntoVenta}-{correlativo a 15 dígitos}
//
// ej: DTE-01-M001P001-000000000000001
func FormatControlNumber(prefix, tipoDte, codEstable, codPuntoVenta string, n int64) string {
	return fmt.Sprintf("%s-%s-%s%s-%015d", prefix, tipoDte, codEstable, codPuntoVenta, n)
}

// NextControlNumber calcula el número de control que produciría el bloque sin
// avanzar el puntero. Devuelve ErrBlockExhausted si el bloque está agotado.
// El puntero se avanza después del intento de transmisión, no aquí.
func NextControlNumber(block *entity.SequenceBlock, branch *entity.Branch) (string, int64, error) {
	if block == nil || !block.IsActive {
		return "", 0, domain.ErrBlockExhausted
	}
	if block.Exhausted() {
		return "", 0, fmt.Errorf("bloque %s [%d..%d] en %d: %w",
			block.ID, block.Lower, block.Upper, block.Current, domain.ErrBlockExhausted)
	}
	next := block.Current + 1
	return FormatControlNumber(block.SeriePrefix, block.TipoDte,
		branch.CodEstableMH, branch.CodPuntoVentaMH, next), next, nil
}
