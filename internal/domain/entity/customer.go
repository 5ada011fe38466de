package entity

import "time"

// Customer representa un cliente/abonado (receptor del DTE).
// Un cliente con NIT y NRC recibe Crédito Fiscal (03); sin ellos, Factura (01).
type Customer struct {
	ID            string
	CompanyID     string
	Name          string
	TipoDocumento string // CAT-022: 36 NIT, 13 DUI, 37 otro, 03 pasaporte
	NumDocumento  string
	NRC           string // vacío si no es contribuyente
	CodActividad  string
	DescActividad string
	Departamento  string
	Municipio     string
	Complemento   string
	Telefono      string
	Email         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EsContribuyente indica si el cliente califica para Crédito Fiscal (NIT + NRC).
func (c *Customer) EsContribuyente() bool {
	return c != nil && c.NumDocumento != "" && c.TipoDocumento == "36" && c.NRC != ""
}
