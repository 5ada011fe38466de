package dte_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	pkgdte "github.com/jhoicas/Facturacion-api/pkg/dte"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAmountInWords_MontosTipicos(t *testing.T) {
	cases := []struct {
		monto    string
		esperado string
	}{
		{"0.00", "CERO 00/100 DÓLARES"},
		{"1.00", "UNO 00/100 DÓLARES"},
		{"25.00", "VEINTICINCO 00/100 DÓLARES"},
		{"100.00", "CIEN 00/100 DÓLARES"},
		{"113.00", "CIENTO TRECE 00/100 DÓLARES"},
		{"113.13", "CIENTO TRECE 13/100 DÓLARES"},
		{"250.50", "DOSCIENTOS CINCUENTA 50/100 DÓLARES"},
		{"999.99", "NOVECIENTOS NOVENTA Y NUEVE 99/100 DÓLARES"},
		{"1000.00", "MIL 00/100 DÓLARES"},
		{"1516.08", "MIL QUINIENTOS DIECISÉIS 08/100 DÓLARES"},
		{"21000.00", "VEINTIUNO MIL 00/100 DÓLARES"},
		{"1000000.00", "UN MILLÓN 00/100 DÓLARES"},
		{"2000001.01", "DOS MILLONES UNO 01/100 DÓLARES"},
	}
	for _, c := range cases {
		assert.Equal(t, c.esperado, pkgdte.AmountInWords(dec(c.monto)), "monto %s", c.monto)
	}
}

func TestAmountInWords_RedondeaADosDecimales(t *testing.T) {
	// 12.345 → 12.35 (Round redondea la mitad alejándose de cero)
	assert.Equal(t, "DOCE 35/100 DÓLARES", pkgdte.AmountInWords(dec("12.345")))
	assert.Equal(t, "DOCE 34/100 DÓLARES", pkgdte.AmountInWords(dec("12.344")))
}
