// Package dte implementa la construcción pura de Documentos Tributarios
// Electrónicos (El Salvador): esquema JSON del documento, cálculo de totales
// según el tipo de DTE, validación del receptor y formato del número de control.
// No toca base de datos ni red; los orquestadores de application/billing lo
// invocan con snapshots ya resueltos.
package dte

import "github.com/shopspring/decimal"

// Documento es el payload JSON conceptual compartido por todos los tipos.
// Según el tipo, se llena receptor (01/03/05) o sujetoExcluido (14).
type Documento struct {
	Identificacion       Identificacion         `json:"identificacion"`
	DocumentoRelacionado []DocumentoRelacionado `json:"documentoRelacionado,omitempty"`
	Emisor               Emisor                 `json:"emisor"`
	Receptor             *Receptor              `json:"receptor,omitempty"`
	SujetoExcluido       *SujetoExcluido        `json:"sujetoExcluido,omitempty"`
	CuerpoDocumento      []CuerpoItem           `json:"cuerpoDocumento"`
	Resumen              Resumen                `json:"resumen"`
	Extension            *Extension             `json:"extension,omitempty"`
}

// Identificacion encabeza todo DTE.
type Identificacion struct {
	Version          int    `json:"version"`
	Ambiente         string `json:"ambiente"` // "00" pruebas, "01" producción
	TipoDte          string `json:"tipoDte"`
	NumeroControl    string `json:"numeroControl"`
	CodigoGeneracion string `json:"codigoGeneracion"`
	TipoModelo       int    `json:"tipoModelo"`
	TipoOperacion    int    `json:"tipoOperacion"`
	FecEmi           string `json:"fecEmi"` // YYYY-MM-DD
	HorEmi           string `json:"horEmi"` // HH:MM:SS
	TipoMoneda       string `json:"tipoMoneda"`
}

// Direccion según CAT-012/CAT-013.
type Direccion struct {
	Departamento string `json:"departamento"`
	Municipio    string `json:"municipio"`
	Complemento  string `json:"complemento"`
}

// Emisor es el snapshot del contribuyente emisor.
type Emisor struct {
	NIT             string    `json:"nit"`
	NRC             string    `json:"nrc"`
	Nombre          string    `json:"nombre"`
	CodActividad    string    `json:"codActividad"`
	DescActividad   string    `json:"descActividad"`
	NombreComercial string    `json:"nombreComercial,omitempty"`
	TipoEstablec    string    `json:"tipoEstablecimiento"`
	Direccion       Direccion `json:"direccion"`
	Telefono        string    `json:"telefono,omitempty"`
	Correo          string    `json:"correo,omitempty"`
	CodEstableMH    string    `json:"codEstableMH"`
	CodPuntoVentaMH string    `json:"codPuntoVentaMH"`
}

// Receptor es el snapshot del cliente (01, 03 y 05).
// En factura de consumidor puede ser nil o venir sin documento.
type Receptor struct {
	TipoDocumento string     `json:"tipoDocumento,omitempty"`
	NumDocumento  string     `json:"numDocumento,omitempty"`
	NRC           string     `json:"nrc,omitempty"`
	Nombre        string     `json:"nombre,omitempty"`
	CodActividad  string     `json:"codActividad,omitempty"`
	DescActividad string     `json:"descActividad,omitempty"`
	Direccion     *Direccion `json:"direccion,omitempty"`
	Telefono      string     `json:"telefono,omitempty"`
	Correo        string     `json:"correo,omitempty"`
}

// SujetoExcluido reemplaza al receptor en la FSE (14). Nunca lleva NRC.
type SujetoExcluido struct {
	TipoDocumento string     `json:"tipoDocumento"`
	NumDocumento  string     `json:"numDocumento"`
	Nombre        string     `json:"nombre"`
	CodActividad  string     `json:"codActividad,omitempty"`
	DescActividad string     `json:"descActividad,omitempty"`
	Direccion     *Direccion `json:"direccion,omitempty"`
	Telefono      string     `json:"telefono,omitempty"`
	Correo        string     `json:"correo,omitempty"`
}

// DocumentoRelacionado referencia al DTE original en notas de crédito/débito.
type DocumentoRelacionado struct {
	TipoDocumento   string `json:"tipoDocumento"`
	TipoGeneracion  int    `json:"tipoGeneracion"` // 2 = electrónico
	NumeroDocumento string `json:"numeroDocumento"` // codigoGeneracion del original
	FechaEmision    string `json:"fechaEmision"`
}

// CuerpoItem es una línea del cuerpo del documento.
// Solo uno de VentaGravada/VentaExenta/VentaNoSuj es distinto de cero.
type CuerpoItem struct {
	NumItem     int             `json:"numItem"`
	TipoItem    int             `json:"tipoItem"`
	Codigo      string          `json:"codigo,omitempty"`
	UniMedida   int             `json:"uniMedida"`
	Descripcion string          `json:"descripcion"`
	Cantidad    decimal.Decimal `json:"cantidad"`
	PrecioUni   decimal.Decimal `json:"precioUni"`
	MontoDescu  decimal.Decimal `json:"montoDescu"`
	VentaNoSuj  decimal.Decimal `json:"ventaNoSuj"`
	VentaExenta decimal.Decimal `json:"ventaExenta"`
	VentaGravada decimal.Decimal `json:"ventaGravada"`
	Tributos    []string        `json:"tributos,omitempty"`
	// IvaItem solo se reporta en documentos con precio IVA-incluido (01, 14).
	IvaItem decimal.Decimal `json:"ivaItem,omitempty"`
}

// TributoResumen es una entrada de impuestos del resumen (03/05).
type TributoResumen struct {
	Codigo      string          `json:"codigo"`
	Descripcion string          `json:"descripcion"`
	Valor       decimal.Decimal `json:"valor"`
}

// Resumen agrupa los totales del documento.
type Resumen struct {
	TotalNoSuj          decimal.Decimal  `json:"totalNoSuj"`
	TotalExenta         decimal.Decimal  `json:"totalExenta"`
	TotalGravada        decimal.Decimal  `json:"totalGravada"`
	SubTotalVentas      decimal.Decimal  `json:"subTotalVentas"`
	DescuNoSuj          decimal.Decimal  `json:"descuNoSuj"`
	DescuExenta         decimal.Decimal  `json:"descuExenta"`
	DescuGravada        decimal.Decimal  `json:"descuGravada"`
	TotalDescu          decimal.Decimal  `json:"totalDescu"`
	Tributos            []TributoResumen `json:"tributos,omitempty"`
	SubTotal            decimal.Decimal  `json:"subTotal"`
	MontoTotalOperacion decimal.Decimal  `json:"montoTotalOperacion"`
	TotalNoGravado      decimal.Decimal  `json:"totalNoGravado"`
	TotalPagar          decimal.Decimal  `json:"totalPagar"`
	TotalLetras         string           `json:"totalLetras"`
	// TotalIva solo aplica a documentos IVA-incluido (01, 14).
	TotalIva            decimal.Decimal  `json:"totalIva,omitempty"`
	CondicionOperacion  int              `json:"condicionOperacion"`
}

// Extension lleva observaciones libres.
type Extension struct {
	Observaciones string `json:"observaciones,omitempty"`
}

// Totales resume los montos calculados que los orquestadores persisten en la
// entidad DTE además del payload completo.
type Totales struct {
	Gravada   decimal.Decimal
	Exenta    decimal.Decimal
	NoSujeta  decimal.Decimal
	Descuento decimal.Decimal
	Iva       decimal.Decimal
	Pagar     decimal.Decimal
	Letras    string
}
