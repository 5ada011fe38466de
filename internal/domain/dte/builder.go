package dte

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	pkgdte "github.com/jhoicas/Facturacion-api/pkg/dte"
)

// BuildInput agrupa todo lo que el builder necesita. Los snapshots de emisor y
// receptor ya vienen resueltos; el builder no consulta repositorios.
type BuildInput struct {
	TipoDte          string
	Ambiente         string
	CodigoGeneracion string
	NumeroControl    string
	FecEmi           string // YYYY-MM-DD
	HorEmi           string // HH:MM:SS

	Emisor         Emisor
	Receptor       *Receptor       // 01 (opcional), 03 y 05 (obligatorio)
	SujetoExcluido *SujetoExcluido // solo 14

	Items              []*entity.DTEItem
	CondicionOperacion int
	Relacionado        *DocumentoRelacionado // solo notas de crédito
	Observaciones      string
}

// Build construye el documento canónico y sus totales según el tipo de DTE.
//
// Política de IVA por tipo:
//   - 01 y 14: precios IVA-incluido; el impuesto se extrae por línea:
//     iva = subtotal − subtotal/(1+tasa). El total a pagar no cambia.
//   - 03 y 05: precios sin IVA; el impuesto se suma:
//     iva = totalGravada × tasa, totalPagar = subtotales − descuentos + iva.
//
// Todos los montos monetarios se redondean a 2 decimales.
func Build(in BuildInput) (*Documento, Totales, error) {
	if err := validateInput(in); err != nil {
		return nil, Totales{}, err
	}

	inclusive := taxInclusive(in.TipoDte)
	one := decimal.NewFromInt(1)
	rate := pkgdte.IVARate

	var (
		gravada, exenta, noSuj                decimal.Decimal
		descuGravada, descuExenta, descuNoSuj decimal.Decimal
		bruto                                 decimal.Decimal
		totalIva                              decimal.Decimal
	)

	cuerpo := make([]CuerpoItem, 0, len(in.Items))
	for i, item := range in.Items {
		sub := item.Subtotal().Round(2)
		bruto = bruto.Add(item.Cantidad.Mul(item.PrecioUni).Round(2))

		ci := CuerpoItem{
			NumItem:     i + 1,
			TipoItem:    pkgdte.TipoItemServicio,
			Codigo:      item.ProductID,
			UniMedida:   pkgdte.UnidadOtra,
			Descripcion: item.Descripcion,
			Cantidad:    item.Cantidad,
			PrecioUni:   item.PrecioUni,
			MontoDescu:  item.MontoDescu.Round(2),
		}

		switch item.TipoVenta {
		case entity.VentaGravada:
			ci.VentaGravada = sub
			ci.Tributos = []string{pkgdte.TributoIVA}
			gravada = gravada.Add(sub)
			descuGravada = descuGravada.Add(item.MontoDescu)
			if inclusive {
				// IVA extraído de la línea: sub − sub/(1+tasa)
				ivaItem := sub.Sub(sub.Div(one.Add(rate))).Round(2)
				ci.IvaItem = ivaItem
				totalIva = totalIva.Add(ivaItem)
			}
		case entity.VentaExenta:
			ci.VentaExenta = sub
			exenta = exenta.Add(sub)
			descuExenta = descuExenta.Add(item.MontoDescu)
		case entity.VentaNoSujeta, entity.VentaNoGravada:
			ci.VentaNoSuj = sub
			noSuj = noSuj.Add(sub)
			descuNoSuj = descuNoSuj.Add(item.MontoDescu)
		default:
			return nil, Totales{}, fmt.Errorf("%w: tipo de venta desconocido %q", ErrDocumentoInvalido, item.TipoVenta)
		}
		cuerpo = append(cuerpo, ci)
	}

	gravada = gravada.Round(2)
	exenta = exenta.Round(2)
	noSuj = noSuj.Round(2)
	totalDescu := descuGravada.Add(descuExenta).Add(descuNoSuj).Round(2)
	subTotal := gravada.Add(exenta).Add(noSuj)

	var montoTotal decimal.Decimal
	var tributos []TributoResumen
	if inclusive {
		totalIva = totalIva.Round(2)
		montoTotal = subTotal // el IVA ya viene dentro del precio
	} else {
		totalIva = gravada.Mul(rate).Round(2)
		montoTotal = subTotal.Add(totalIva).Round(2)
		tributos = []TributoResumen{{
			Codigo:      pkgdte.TributoIVA,
			Descripcion: "Impuesto al Valor Agregado 13%",
			Valor:       totalIva,
		}}
	}
	totalPagar := montoTotal.Round(2)
	letras := pkgdte.AmountInWords(totalPagar)

	doc := &Documento{
		Identificacion: Identificacion{
			Version:          pkgdte.VersionPorTipo[in.TipoDte],
			Ambiente:         in.Ambiente,
			TipoDte:          in.TipoDte,
			NumeroControl:    in.NumeroControl,
			CodigoGeneracion: in.CodigoGeneracion,
			TipoModelo:       pkgdte.ModeloFacturacionPrevio,
			TipoOperacion:    pkgdte.TipoTransmisionNormal,
			FecEmi:           in.FecEmi,
			HorEmi:           in.HorEmi,
			TipoMoneda:       pkgdte.Moneda,
		},
		Emisor:          in.Emisor,
		Receptor:        in.Receptor,
		SujetoExcluido:  in.SujetoExcluido,
		CuerpoDocumento: cuerpo,
		Resumen: Resumen{
			TotalNoSuj:          noSuj,
			TotalExenta:         exenta,
			TotalGravada:        gravada,
			SubTotalVentas:      bruto.Round(2),
			DescuNoSuj:          descuNoSuj.Round(2),
			DescuExenta:         descuExenta.Round(2),
			DescuGravada:        descuGravada.Round(2),
			TotalDescu:          totalDescu,
			Tributos:            tributos,
			SubTotal:            subTotal.Round(2),
			MontoTotalOperacion: montoTotal.Round(2),
			TotalNoGravado:      decimal.Zero,
			TotalPagar:          totalPagar,
			TotalLetras:         letras,
			TotalIva:            totalIva,
			CondicionOperacion:  in.CondicionOperacion,
		},
	}
	if in.Relacionado != nil {
		doc.DocumentoRelacionado = []DocumentoRelacionado{*in.Relacionado}
	}
	if in.Observaciones != "" {
		doc.Extension = &Extension{Observaciones: in.Observaciones}
	}

	tot := Totales{
		Gravada:   gravada,
		Exenta:    exenta,
		NoSujeta:  noSuj,
		Descuento: totalDescu,
		Iva:       totalIva,
		Pagar:     totalPagar,
		Letras:    letras,
	}
	return doc, tot, nil
}

// taxInclusive indica si el tipo maneja precios con IVA incluido.
func taxInclusive(tipoDte string) bool {
	switch tipoDte {
	case pkgdte.TipoFacturaConsumidor, pkgdte.TipoSujetoExcluido:
		return true
	default:
		return false
	}
}

func validateInput(in BuildInput) error {
	if !pkgdte.ValidTipoDte[in.TipoDte] {
		return fmt.Errorf("%w: tipo de DTE no soportado %q", ErrDocumentoInvalido, in.TipoDte)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: el documento debe tener al menos una línea", ErrDocumentoInvalido)
	}
	for i, item := range in.Items {
		if !item.Cantidad.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: línea %d con cantidad no positiva", ErrDocumentoInvalido, i+1)
		}
		if item.PrecioUni.LessThan(decimal.Zero) || item.MontoDescu.LessThan(decimal.Zero) {
			return fmt.Errorf("%w: línea %d con montos negativos", ErrDocumentoInvalido, i+1)
		}
		if strings.TrimSpace(item.Descripcion) == "" {
			return fmt.Errorf("%w: línea %d sin descripción", ErrDocumentoInvalido, i+1)
		}
	}
	if in.CodigoGeneracion == "" || in.NumeroControl == "" {
		return fmt.Errorf("%w: identificación incompleta (codigoGeneracion/numeroControl)", ErrDocumentoInvalido)
	}
	if in.TipoDte == pkgdte.TipoNotaCredito && in.Relacionado == nil {
		return fmt.Errorf("%w: la nota de crédito requiere documento relacionado", ErrDocumentoInvalido)
	}
	return ValidateReceptor(in.TipoDte, in.Receptor, in.SujetoExcluido)
}

// EmisorFromCompany arma el snapshot del emisor combinando contribuyente y sucursal.
func EmisorFromCompany(company *entity.Company, branch *entity.Branch) Emisor {
	return Emisor{
		NIT:             pkgdte.NormalizeID(company.NIT),
		NRC:             pkgdte.NormalizeID(company.NRC),
		Nombre:          company.Name,
		CodActividad:    company.CodActividad,
		DescActividad:   company.DescActividad,
		NombreComercial: company.NombreComercial,
		TipoEstablec:    branch.TipoEstablec,
		Direccion: Direccion{
			Departamento: branch.Departamento,
			Municipio:    branch.Municipio,
			Complemento:  branch.Complemento,
		},
		Telefono:        branch.Telefono,
		Correo:          branch.Email,
		CodEstableMH:    branch.CodEstableMH,
		CodPuntoVentaMH: branch.CodPuntoVentaMH,
	}
}

// ReceptorFromCustomer arma el snapshot del receptor desde el cliente.
// Devuelve nil para un consumidor final sin datos.
func ReceptorFromCustomer(c *entity.Customer) *Receptor {
	if c == nil {
		return nil
	}
	r := &Receptor{
		TipoDocumento: c.TipoDocumento,
		NumDocumento:  pkgdte.NormalizeID(c.NumDocumento),
		NRC:           pkgdte.NormalizeID(c.NRC),
		Nombre:        c.Name,
		CodActividad:  c.CodActividad,
		DescActividad: c.DescActividad,
		Telefono:      c.Telefono,
		Correo:        c.Email,
	}
	if c.Departamento != "" || c.Municipio != "" || c.Complemento != "" {
		r.Direccion = &Direccion{
			Departamento: c.Departamento,
			Municipio:    c.Municipio,
			Complemento:  c.Complemento,
		}
	}
	return r
}

// SujetoExcluidoFromCustomer arma el snapshot del sujeto excluido (FSE).
func SujetoExcluidoFromCustomer(c *entity.Customer) *SujetoExcluido {
	if c == nil {
		return nil
	}
	s := &SujetoExcluido{
		TipoDocumento: c.TipoDocumento,
		NumDocumento:  pkgdte.NormalizeID(c.NumDocumento),
		Nombre:        c.Name,
		CodActividad:  c.CodActividad,
		DescActividad: c.DescActividad,
		Telefono:      c.Telefono,
		Correo:        c.Email,
	}
	if c.Departamento != "" || c.Municipio != "" || c.Complemento != "" {
		s.Direccion = &Direccion{
			Departamento: c.Departamento,
			Municipio:    c.Municipio,
			Complemento:  c.Complemento,
		}
	}
	return s
}
