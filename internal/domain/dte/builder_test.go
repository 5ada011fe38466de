package dte_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaindte "github.com/jhoicas/Facturacion-api/internal/domain/dte"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	pkgdte "github.com/jhoicas/Facturacion-api/pkg/dte"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func emisorPrueba() domaindte.Emisor {
	return domaindte.Emisor{
		NIT:           "06140101231001",
		NRC:           "123456",
		Nombre:        "Conexiones del Sur S.A. de C.V.",
		CodActividad:  "61209",
		DescActividad: "Servicios de internet",
		TipoEstablec:  "01",
		Direccion: domaindte.Direccion{
			Departamento: "06",
			Municipio:    "14",
			Complemento:  "Col. Escalón, San Salvador",
		},
		CodEstableMH:    "M001",
		CodPuntoVentaMH: "P001",
	}
}

func receptorContribuyente() *domaindte.Receptor {
	return &domaindte.Receptor{
		TipoDocumento: pkgdte.DocIDNIT,
		NumDocumento:  "06142509881018",
		NRC:           "654321",
		Nombre:        "Comercial El Roble S.A. de C.V.",
	}
}

func itemGravado(descripcion, cantidad, precio string) *entity.DTEItem {
	return &entity.DTEItem{
		Descripcion: descripcion,
		Cantidad:    dec(cantidad),
		PrecioUni:   dec(precio),
		TipoVenta:   entity.VentaGravada,
	}
}

func buildInputCCF(items ...*entity.DTEItem) domaindte.BuildInput {
	return domaindte.BuildInput{
		TipoDte:          pkgdte.TipoCreditoFiscal,
		Ambiente:         "00",
		CodigoGeneracion: "A6E21D2A-3F5E-4B7C-9D18-0C1B2A3D4E5F",
		NumeroControl:    "DTE-03-M001P001-000000000000001",
		FecEmi:           "2026-08-01",
		HorEmi:           "10:30:00",
		Emisor:           emisorPrueba(),
		Receptor:         receptorContribuyente(),
		Items:            items,
	}
}

// CCF (03): precios sin IVA; el impuesto se suma al total.
func TestBuild_CCF_IVAExclusivo(t *testing.T) {
	doc, tot, err := domaindte.Build(buildInputCCF(itemGravado("Internet 100Mbps agosto", "1", "100.00")))
	require.NoError(t, err)

	assert.True(t, tot.Gravada.Equal(dec("100.00")), "gravada: %s", tot.Gravada)
	assert.True(t, tot.Iva.Equal(dec("13.00")), "iva: %s", tot.Iva)
	assert.True(t, tot.Pagar.Equal(dec("113.00")), "total a pagar: %s", tot.Pagar)
	assert.Equal(t, "CIENTO TRECE 00/100 DÓLARES", tot.Letras)

	require.Len(t, doc.Resumen.Tributos, 1)
	assert.Equal(t, pkgdte.TributoIVA, doc.Resumen.Tributos[0].Codigo)
	assert.True(t, doc.Resumen.Tributos[0].Valor.Equal(dec("13.00")))
	assert.Equal(t, 3, doc.Identificacion.Version)
}

// Factura de consumidor (01): precios IVA-incluido; el total no cambia
// y el impuesto se extrae por línea.
func TestBuild_Factura_IVAIncluido(t *testing.T) {
	in := buildInputCCF(itemGravado("Internet residencial agosto", "1", "25.00"))
	in.TipoDte = pkgdte.TipoFacturaConsumidor
	in.NumeroControl = "DTE-01-M001P001-000000000000001"
	in.Receptor = nil

	doc, tot, err := domaindte.Build(in)
	require.NoError(t, err)

	assert.True(t, tot.Pagar.Equal(dec("25.00")), "el total IVA-incluido no cambia: %s", tot.Pagar)
	assert.True(t, tot.Iva.Equal(dec("2.88")), "iva extraído: %s", tot.Iva)
	assert.True(t, doc.CuerpoDocumento[0].IvaItem.Equal(dec("2.88")))
	assert.Empty(t, doc.Resumen.Tributos, "en IVA-incluido no se agrega tributo al resumen")
	assert.Equal(t, 1, doc.Identificacion.Version)
}

func TestBuild_MezclaDeTratamientos(t *testing.T) {
	exento := &entity.DTEItem{
		Descripcion: "Recargo por mora (12 días)",
		Cantidad:    dec("1"),
		PrecioUni:   dec("3.50"),
		TipoVenta:   entity.VentaExenta,
	}
	doc, tot, err := domaindte.Build(buildInputCCF(
		itemGravado("Internet dedicado agosto", "1", "200.00"), exento,
	))
	require.NoError(t, err)

	assert.True(t, tot.Gravada.Equal(dec("200.00")))
	assert.True(t, tot.Exenta.Equal(dec("3.50")))
	assert.True(t, tot.Iva.Equal(dec("26.00")), "solo la gravada tributa: %s", tot.Iva)
	assert.True(t, tot.Pagar.Equal(dec("229.50")))
	assert.True(t, doc.CuerpoDocumento[1].VentaExenta.Equal(dec("3.50")))
	assert.Empty(t, doc.CuerpoDocumento[1].Tributos, "línea exenta sin tributos")
}

func TestBuild_DescuentoPorLinea(t *testing.T) {
	item := itemGravado("Internet 50Mbps agosto", "1", "100.00")
	item.MontoDescu = dec("10.00")

	_, tot, err := domaindte.Build(buildInputCCF(item))
	require.NoError(t, err)

	// Gravada neta 90.00; IVA sobre la neta.
	assert.True(t, tot.Gravada.Equal(dec("90.00")), "gravada neta: %s", tot.Gravada)
	assert.True(t, tot.Descuento.Equal(dec("10.00")))
	assert.True(t, tot.Iva.Equal(dec("11.70")))
	assert.True(t, tot.Pagar.Equal(dec("101.70")))
}

func TestBuild_FSE_SujetoExcluido(t *testing.T) {
	in := buildInputCCF(itemGravado("Arrendamiento de poste", "1", "50.00"))
	in.TipoDte = pkgdte.TipoSujetoExcluido
	in.NumeroControl = "DTE-14-M001P001-000000000000001"
	in.Receptor = nil
	in.SujetoExcluido = &domaindte.SujetoExcluido{
		TipoDocumento: pkgdte.DocIDDUI,
		NumDocumento:  "012345678",
		Nombre:        "José Antonio Pérez",
	}

	_, tot, err := domaindte.Build(in)
	require.NoError(t, err)
	// FSE maneja precios IVA-incluido: el total no se incrementa.
	assert.True(t, tot.Pagar.Equal(dec("50.00")))
}

func TestBuild_NotaCreditoRequiereRelacionado(t *testing.T) {
	in := buildInputCCF(itemGravado("Ajuste internet agosto", "1", "10.00"))
	in.TipoDte = pkgdte.TipoNotaCredito
	in.NumeroControl = "DTE-05-M001P001-000000000000001"

	_, _, err := domaindte.Build(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)

	in.Relacionado = &domaindte.DocumentoRelacionado{
		TipoDocumento:   pkgdte.TipoCreditoFiscal,
		TipoGeneracion:  2,
		NumeroDocumento: "A6E21D2A-3F5E-4B7C-9D18-0C1B2A3D4E5F",
		FechaEmision:    "2026-08-01",
	}
	_, _, err = domaindte.Build(in)
	assert.NoError(t, err)
}

func TestBuild_EntradasInvalidas(t *testing.T) {
	t.Run("sin lineas", func(t *testing.T) {
		_, _, err := domaindte.Build(buildInputCCF())
		assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)
	})
	t.Run("cantidad cero", func(t *testing.T) {
		_, _, err := domaindte.Build(buildInputCCF(itemGravado("x", "0", "10.00")))
		assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)
	})
	t.Run("precio negativo", func(t *testing.T) {
		_, _, err := domaindte.Build(buildInputCCF(itemGravado("x", "1", "-5.00")))
		assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)
	})
	t.Run("tipo de DTE desconocido", func(t *testing.T) {
		in := buildInputCCF(itemGravado("x", "1", "10.00"))
		in.TipoDte = "06"
		_, _, err := domaindte.Build(in)
		assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)
	})
	t.Run("CCF sin receptor", func(t *testing.T) {
		in := buildInputCCF(itemGravado("x", "1", "10.00"))
		in.Receptor = nil
		_, _, err := domaindte.Build(in)
		assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)
	})
	t.Run("CCF con receptor sin NRC", func(t *testing.T) {
		in := buildInputCCF(itemGravado("x", "1", "10.00"))
		in.Receptor.NRC = ""
		_, _, err := domaindte.Build(in)
		assert.ErrorIs(t, err, domaindte.ErrDocumentoInvalido)
	})
}

// Identidad del resumen: subtotales por tratamiento cuadran con el total.
func TestBuild_IdentidadDeTotales(t *testing.T) {
	_, tot, err := domaindte.Build(buildInputCCF(
		itemGravado("Servicio A", "2", "33.33"),
		itemGravado("Servicio B", "1", "0.99"),
		&entity.DTEItem{
			Descripcion: "Cuota no sujeta",
			Cantidad:    dec("1"),
			PrecioUni:   dec("5.00"),
			TipoVenta:   entity.VentaNoSujeta,
		},
	))
	require.NoError(t, err)

	suma := tot.Gravada.Add(tot.Exenta).Add(tot.NoSujeta).Add(tot.Iva)
	assert.True(t, tot.Pagar.Equal(suma), "pagar %s != gravada+exenta+noSujeta+iva %s", tot.Pagar, suma)
}
