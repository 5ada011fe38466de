package dte

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountInWords convierte un monto USD a su representación en letras para el
// campo totalLetras del resumen. Formato: "CIENTO TRECE 00/100 DÓLARES".
// Soporta montos de 0 a 999,999,999.99.
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	entero := amount.IntPart()
	centavos := amount.Sub(decimal.NewFromInt(entero)).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if centavos < 0 {
		centavos = -centavos
	}
	words := numeroEnLetras(entero)
	return fmt.Sprintf("%s %02d/100 DÓLARES", words, centavos)
}

var unidades = [...]string{
	"CERO", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
	"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE", "DIECISÉIS", "DIECISIETE",
	"DIECIOCHO", "DIECINUEVE", "VEINTE", "VEINTIUNO", "VEINTIDÓS", "VEINTITRÉS",
	"VEINTICUATRO", "VEINTICINCO", "VEINTISÉIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE",
}

var decenas = [...]string{
	"", "", "", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
}

var centenas = [...]string{
	"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS",
	"SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}

func numeroEnLetras(n int64) string {
	if n < 0 {
		return "MENOS " + numeroEnLetras(-n)
	}
	switch {
	case n < 30:
		return unidades[n]
	case n < 100:
		d, u := n/10, n%10
		if u == 0 {
			return decenas[d]
		}
		return decenas[d] + " Y " + unidades[u]
	case n == 100:
		return "CIEN"
	case n < 1000:
		c, resto := n/100, n%100
		if resto == 0 {
			return centenas[c]
		}
		return centenas[c] + " " + numeroEnLetras(resto)
	case n < 1_000_000:
		miles, resto := n/1000, n%1000
		var head string
		if miles == 1 {
			head = "MIL"
		} else {
			head = numeroEnLetras(miles) + " MIL"
		}
		if resto == 0 {
			return head
		}
		return head + " " + numeroEnLetras(resto)
	default:
		millones, resto := n/1_000_000, n%1_000_000
		var head string
		if millones == 1 {
			head = "UN MILLÓN"
		} else {
			head = numeroEnLetras(millones) + " MILLONES"
		}
		if resto == 0 {
			return head
		}
		return strings.TrimSpace(head + " " + numeroEnLetras(resto))
	}
}
