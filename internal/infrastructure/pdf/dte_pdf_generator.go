// Package pdf implementa la representación gráfica del DTE (El Salvador).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + NIT  │  Tipo DTE + N° Control       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: NRC / Actividad / Dirección                         │
//	│  RECEPTOR: Nombre + Documento + NRC                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Venta                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Gravada / Exenta / IVA / TOTAL + en letras         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER MH: Código de generación + Sello + QR de consulta    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"encoding/json"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// nombres imprimibles por tipo de DTE (CAT-002).
var tipoDteNombre = map[string]string{
	"01": "FACTURA",
	"03": "COMPROBANTE DE CRÉDITO FISCAL",
	"05": "NOTA DE CRÉDITO",
	"14": "FACTURA DE SUJETO EXCLUIDO",
}

var _ appbilling.PDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	ambiente string
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(ambiente string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{ambiente: ambiente}
}

// GenerateDTEPDF genera la representación gráfica y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDTEPDF(
	_ context.Context,
	doc *entity.DTE,
	items []*entity.DTEItem,
	company *entity.Company,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Documento Tributario Electrónico", true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(company))
	m.AddRows(receptorRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range g.mhFooterRows(doc) {
		m.AddRows(r)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: Razón social + NIT (izq) y tipo de documento + N° control (der).
func headerRow(doc *entity.DTE, company *entity.Company) core.Row {
	nombre := tipoDteNombre[doc.TipoDte]
	if nombre == "" {
		nombre = "DOCUMENTO TRIBUTARIO ELECTRÓNICO"
	}
	fecha := doc.FechaEmision.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+company.NIT, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(nombre, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(doc.NumeroControl, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// emisorRow: datos fiscales del emisor.
func emisorRow(company *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("NRC: %s   |   Actividad: %s   |   Dirección: %s",
				nonEmpty(company.NRC, "—"),
				nonEmpty(company.DescActividad, "—"),
				nonEmpty(company.Complemento, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// receptorRow: datos del receptor desde el snapshot congelado del documento.
func receptorRow(doc *entity.DTE) core.Row {
	nombre, documento, nrc := receptorResumen(doc.ReceptorSnapshot)
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(nombre, "Consumidor final"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Documento: %s   |   NRC: %s",
				nonEmpty(documento, "—"),
				nonEmpty(nrc, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Venta", 3, align.Right),
	)
}

// tableItemRows: una fila por línea del documento.
func tableItemRows(items []*entity.DTEItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Cantidad.StringFixed(2),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				it.Descripcion,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$"+it.PrecioUni.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				"$"+it.Subtotal().StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales con el total en letras.
func totalsRow(doc *entity.DTE) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(34).Add(
		col.New(6).Add(
			text.New("SON: "+doc.TotalLetras, props.Text{
				Size: 8, Top: 20, Color: colorGray,
			}),
		),
		col.New(3).Add(
			label("Venta gravada:"),
			label("Venta exenta:"),
			label("IVA:"),
			grandLabel("TOTAL A PAGAR:"),
		),
		col.New(3).Add(
			value("$"+doc.TotalGravada.StringFixed(2)),
			value("$"+doc.TotalExenta.StringFixed(2)),
			value("$"+doc.TotalIva.StringFixed(2)),
			grandValue("$"+doc.TotalPagar.StringFixed(2)),
		),
	)
}

// mhFooterRows: código de generación + sello de recepción + QR de consulta pública.
func (g *MarotoPDFGenerator) mhFooterRows(doc *entity.DTE) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("INFORMACIÓN ELECTRÓNICA MH", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New("Código de generación: "+doc.CodigoGeneracion, props.Text{
				Size: 7, Color: colorGray, Top: 1, Left: 2,
			}),
		)),
	}

	if doc.SelloRecibido != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Sello de recepción: "+doc.SelloRecibido, props.Text{
				Size: 7, Color: colorGray, Top: 1, Left: 2,
			}),
		)))
	} else {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("DOCUMENTO SIN SELLO DE RECEPCIÓN — ESTADO: "+doc.Estado, props.Text{
				Style: fontstyle.Bold, Size: 7, Top: 1, Left: 2,
			}),
		)))
	}

	rows = append(rows, row.New(3))

	qr := fmt.Sprintf("https://admin.factura.gob.sv/consultaPublica?ambiente=%s&codGen=%s&fechaEmi=%s",
		g.ambiente, doc.CodigoGeneracion, doc.FechaEmision.Format("2006-01-02"))
	rows = append(rows, row.New(40).Add(
		col.New(4).Add(code.NewQr(qr, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(8).Add(
			text.New("Escanea el código QR para validar\neste documento en el portal del MH.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("DOCUMENTO TRIBUTARIO ELECTRÓNICO", props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 22,
				Left: 3, Color: colorPrimary,
			}),
		),
	))

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Documento emitido conforme a la Ley de Facturación Electrónica de El Salvador. "+
				"Conserve este documento como soporte fiscal.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// receptorResumen extrae nombre, documento y NRC del snapshot JSON.
func receptorResumen(snapshot string) (nombre, documento, nrc string) {
	if snapshot == "" {
		return "", "", ""
	}
	var r struct {
		Nombre       string `json:"nombre"`
		NumDocumento string `json:"numDocumento"`
		NRC          string `json:"nrc"`
	}
	if err := json.Unmarshal([]byte(snapshot), &r); err != nil {
		return "", "", ""
	}
	return r.Nombre, r.NumDocumento, r.NRC
}
